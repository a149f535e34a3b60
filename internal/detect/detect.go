// Package detect defines the element-detector contract and its
// implementations. The detector is an opaque capability: one operation that
// turns an image into candidate UI elements. The real vision model, the
// built-in heuristic fallback, and test doubles all satisfy it.
package detect

import (
	"context"
	"image"
)

// RawElement is one candidate UI element as reported by a detector, before
// the registry assigns IDs and converts to screen pixels.
type RawElement struct {
	// BBox is [x, y, width, height] normalized to 0-1 of the analyzed image.
	BBox [4]float64 `json:"bbox"`
	// Confidence is the detector's score, 0.0-1.0.
	Confidence float64 `json:"confidence"`
	// Label is the caption or OCR text, when the detector produces one.
	Label string `json:"label,omitempty"`
	// Kind is a best-effort hint such as "icon" or "text".
	Kind string `json:"kind,omitempty"`
	// Interactive reports whether the detector believes the element accepts input.
	Interactive bool `json:"interactive,omitempty"`
}

// Detector analyzes a screenshot and returns candidate elements in a stable
// order. Implementations must honor ctx cancellation: model inference is the
// dominant latency cost of the whole system.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]RawElement, error)
}
