package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that cross the tool-call boundary. Every
// error returned to a remote caller carries one of these kinds so the agent
// can decide whether to re-observe, alter its payload, or give up.
type ErrorKind string

const (
	// KindInvalidDetection means the detector returned malformed output
	// (missing bbox, out-of-range confidence). The observe call fails
	// entirely and is not retried.
	KindInvalidDetection ErrorKind = "InvalidDetectionOutput"
	// KindNoState means no observation has occurred yet.
	KindNoState ErrorKind = "NoStateAvailable"
	// KindStaleState means the referenced state has been superseded by a
	// newer observation. The caller should re-observe.
	KindStaleState ErrorKind = "StaleState"
	// KindUnknownElement means the element ID is out of range for the state.
	KindUnknownElement ErrorKind = "UnknownElement"
	// KindInjectionFailed means the OS rejected the synthetic input.
	KindInjectionFailed ErrorKind = "InputInjectionFailed"
	// KindUnsupportedCharacter means the text payload contains a rune that
	// cannot be submitted as a keystroke.
	KindUnsupportedCharacter ErrorKind = "UnsupportedCharacter"
	// KindInvalidArgument means the tool call itself was malformed (unknown
	// action, missing payload field). Rejected before any side effect.
	KindInvalidArgument ErrorKind = "InvalidArgument"
)

// Error is a structured failure with a caller-actionable kind. It is what
// the tool-call gateway serializes instead of throwing an unstructured
// error across the RPC boundary.
type Error struct {
	Kind    ErrorKind `yaml:"kind"    json:"kind"`
	Message string    `yaml:"message" json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errf builds a structured Error with a formatted message.
func Errf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err. Errors without a structured kind
// are surfaced as injection-layer failures, the only unstructured error
// source past argument validation.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInjectionFailed
}

// AsError converts err to a structured *Error, wrapping unstructured errors
// with the given fallback kind.
func AsError(err error, fallback ErrorKind) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return &Error{Kind: fallback, Message: err.Error()}
}
