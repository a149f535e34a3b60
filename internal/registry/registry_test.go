package registry

import (
	"testing"
	"time"

	"github.com/screenlens/screenlens/internal/detect"
	"github.com/screenlens/screenlens/internal/model"
)

func testMeta() Meta {
	return Meta{Width: 1000, Height: 800, TakenAt: time.Now()}
}

func raw(x, y, w, h, conf float64) detect.RawElement {
	return detect.RawElement{BBox: [4]float64{x, y, w, h}, Confidence: conf}
}

func TestRegister_SequentialIDsInOrder(t *testing.T) {
	r := New()
	in := []detect.RawElement{
		raw(0.1, 0.1, 0.2, 0.2, 0.9),
		raw(0.5, 0.5, 0.1, 0.1, 0.8),
		raw(0.0, 0.0, 0.05, 0.05, 0.7),
	}

	state, err := r.Register(in, testMeta())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if len(state.Elements) != len(in) {
		t.Fatalf("got %d elements, want %d", len(state.Elements), len(in))
	}
	for i, el := range state.Elements {
		if el.ID != i {
			t.Errorf("element %d has ID %d", i, el.ID)
		}
	}
	if state.Elements[0].Confidence != 0.9 || state.Elements[2].Confidence != 0.7 {
		t.Error("elements not in detector order")
	}

	curr, err := r.Current()
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if curr.ID != state.ID {
		t.Errorf("Current() ID = %q, want %q", curr.ID, state.ID)
	}
}

func TestRegister_PixelGeometry(t *testing.T) {
	// bbox [0.1,0.1,0.2,0.2] on a 1000x800 capture, no offset
	// → pixel bbox (100,80,200,160), centroid (200,160).
	r := New()
	state, err := r.Register([]detect.RawElement{raw(0.1, 0.1, 0.2, 0.2, 0.9)}, testMeta())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	el := state.Elements[0]
	want := [4]int{100, 80, 200, 160}
	if el.Bounds != want {
		t.Errorf("Bounds = %v, want %v", el.Bounds, want)
	}

	pt, err := r.Resolve(state.ID, 0)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if pt.X != 200 || pt.Y != 160 {
		t.Errorf("Resolve() = (%d,%d), want (200,160)", pt.X, pt.Y)
	}
}

func TestRegister_MonitorOffset(t *testing.T) {
	r := New()
	meta := Meta{Width: 1000, Height: 800, OffsetX: -1920, OffsetY: 50, TakenAt: time.Now()}
	state, err := r.Register([]detect.RawElement{raw(0.1, 0.1, 0.2, 0.2, 0.9)}, meta)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	want := [4]int{100 - 1920, 80 + 50, 200, 160}
	if state.Elements[0].Bounds != want {
		t.Errorf("Bounds = %v, want %v", state.Elements[0].Bounds, want)
	}
}

func TestRegister_ClampsRoundingSlop(t *testing.T) {
	r := New()
	// A box nudged slightly past the edge by float noise is clamped, not rejected.
	state, err := r.Register([]detect.RawElement{raw(-0.005, 0.9, 0.2, 0.105, 0.9)}, testMeta())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	b := state.Elements[0].Bounds
	if b[0] != 0 {
		t.Errorf("x = %d, want clamped to 0", b[0])
	}
	if b[1]+b[3] > 800 {
		t.Errorf("bottom edge %d beyond capture height", b[1]+b[3])
	}
}

func TestRegister_InvalidDetectionOutput(t *testing.T) {
	tests := []struct {
		name string
		in   detect.RawElement
	}{
		{"confidence above 1", raw(0.1, 0.1, 0.2, 0.2, 1.5)},
		{"negative confidence", raw(0.1, 0.1, 0.2, 0.2, -0.1)},
		{"zero size", raw(0.1, 0.1, 0, 0.2, 0.5)},
		{"negative size", raw(0.1, 0.1, -0.2, 0.2, 0.5)},
		{"far out of range", raw(3.0, 0.1, 0.2, 0.2, 0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			_, err := r.Register([]detect.RawElement{tt.in}, testMeta())
			if err == nil {
				t.Fatal("expected error")
			}
			if kind := model.KindOf(err); kind != model.KindInvalidDetection {
				t.Errorf("kind = %q, want %q", kind, model.KindInvalidDetection)
			}
		})
	}
}

func TestCurrent_NoState(t *testing.T) {
	r := New()
	if _, err := r.Current(); model.KindOf(err) != model.KindNoState {
		t.Errorf("Current() on empty registry = %v, want NoStateAvailable", err)
	}
	if _, err := r.Resolve("anything", 0); model.KindOf(err) != model.KindNoState {
		t.Errorf("Resolve() on empty registry = %v, want NoStateAvailable", err)
	}
}

func TestResolve_StaleState(t *testing.T) {
	r := New()
	first, err := r.Register([]detect.RawElement{raw(0.1, 0.1, 0.2, 0.2, 0.9)}, testMeta())
	if err != nil {
		t.Fatal(err)
	}

	// Valid against the current state.
	if _, err := r.Resolve(first.ID, 0); err != nil {
		t.Fatalf("Resolve() against current state: %v", err)
	}

	second, err := r.Register([]detect.RawElement{raw(0.1, 0.1, 0.2, 0.2, 0.9)}, testMeta())
	if err != nil {
		t.Fatal(err)
	}
	if second.ID == first.ID {
		t.Fatal("two observations share a state ID")
	}

	// The old ID was valid a moment ago; now it must fail with StaleState.
	_, err = r.Resolve(first.ID, 0)
	if model.KindOf(err) != model.KindStaleState {
		t.Errorf("Resolve(stale) = %v, want StaleState", err)
	}
}

func TestResolve_UnknownElement(t *testing.T) {
	r := New()
	state, err := r.Register([]detect.RawElement{raw(0.1, 0.1, 0.2, 0.2, 0.9)}, testMeta())
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []int{1, 99, -1} {
		if _, err := r.Resolve(state.ID, id); model.KindOf(err) != model.KindUnknownElement {
			t.Errorf("Resolve(id=%d) = %v, want UnknownElement", id, err)
		}
	}
}

func TestResolve_CentroidInsideBounds(t *testing.T) {
	r := New()
	in := []detect.RawElement{
		raw(0.0, 0.0, 0.01, 0.01, 0.5),
		raw(0.3, 0.2, 0.4, 0.6, 0.5),
		raw(0.95, 0.95, 0.05, 0.05, 0.5),
	}
	state, err := r.Register(in, testMeta())
	if err != nil {
		t.Fatal(err)
	}

	for _, el := range state.Elements {
		pt, err := r.Resolve(state.ID, el.ID)
		if err != nil {
			t.Fatalf("Resolve(%d): %v", el.ID, err)
		}
		if !el.Contains(pt.X, pt.Y) {
			t.Errorf("centroid (%d,%d) outside bounds %v", pt.X, pt.Y, el.Bounds)
		}
	}
}

func TestRegister_IdempotentGeometry(t *testing.T) {
	// Two observes of an unchanged screen: different state IDs, identical
	// element geometry (deterministic test-double detector output).
	r := New()
	in := []detect.RawElement{
		raw(0.1, 0.1, 0.2, 0.2, 0.9),
		raw(0.4, 0.4, 0.3, 0.1, 0.6),
	}

	first, err := r.Register(in, testMeta())
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Register(in, testMeta())
	if err != nil {
		t.Fatal(err)
	}

	if first.ID == second.ID {
		t.Error("state IDs must differ between observations")
	}
	for i := range first.Elements {
		if first.Elements[i].Bounds != second.Elements[i].Bounds {
			t.Errorf("element %d geometry differs: %v vs %v", i, first.Elements[i].Bounds, second.Elements[i].Bounds)
		}
	}
}
