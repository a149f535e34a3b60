package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"structured", Errf(KindStaleState, "state %q superseded", "abc"), KindStaleState},
		{"wrapped structured", fmt.Errorf("resolve: %w", Errf(KindUnknownElement, "id 9")), KindUnknownElement},
		{"unstructured", errors.New("boom"), KindInjectionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAsError(t *testing.T) {
	se := AsError(errors.New("denied"), KindInjectionFailed)
	if se.Kind != KindInjectionFailed || se.Message != "denied" {
		t.Errorf("AsError() = %+v", se)
	}

	orig := Errf(KindNoState, "no observation yet")
	if got := AsError(fmt.Errorf("current: %w", orig), KindInvalidArgument); got.Kind != KindNoState {
		t.Errorf("AsError() kind = %q, want %q", got.Kind, KindNoState)
	}
}

func TestErrorMessage(t *testing.T) {
	err := Errf(KindUnknownElement, "element 12 out of range (state has 5 elements)")
	want := "UnknownElement: element 12 out of range (state has 5 elements)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
