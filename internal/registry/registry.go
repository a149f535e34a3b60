// Package registry assigns stable short-lived IDs to detected elements for
// one screen state and resolves an ID back to on-screen coordinates. It is
// the single source of truth for "what the agent can currently act on".
package registry

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/screenlens/screenlens/internal/detect"
	"github.com/screenlens/screenlens/internal/model"
)

// Meta describes the capture a detection run was performed on.
type Meta struct {
	Width   int // Captured region width in screen pixels
	Height  int // Captured region height in screen pixels
	OffsetX int // Region origin on the virtual screen
	OffsetY int
	TakenAt time.Time
}

// normSlop is how far outside 0-1 a normalized coordinate may fall before
// it is treated as malformed rather than rounding noise. Values within the
// slop are clamped; anything beyond fails the whole registration.
const normSlop = 0.01

// Registry holds at most one live ScreenState. Each observe replaces the
// slot; the previous state becomes stale and IDs minted against it are
// rejected. Access is serialized so an act call always resolves against a
// consistent snapshot even when the host dispatches tool calls concurrently.
type Registry struct {
	mu      sync.Mutex
	current *model.ScreenState
}

// New returns an empty registry. No state exists until the first Register.
func New() *Registry {
	return &Registry{}
}

// Register validates raw detector output, assigns sequential IDs starting
// at 0 in detector order, converts normalized geometry to absolute screen
// pixels, and installs the result as the current state.
func (r *Registry) Register(raw []detect.RawElement, meta Meta) (*model.ScreenState, error) {
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, model.Errf(model.KindInvalidDetection, "capture dimensions %dx%d are not usable", meta.Width, meta.Height)
	}

	elements := make([]model.Element, len(raw))
	for i, re := range raw {
		el, err := buildElement(i, re, meta)
		if err != nil {
			return nil, err
		}
		elements[i] = el
	}

	state := &model.ScreenState{
		ID:       uuid.NewString(),
		TakenAt:  meta.TakenAt,
		Width:    meta.Width,
		Height:   meta.Height,
		OffsetX:  meta.OffsetX,
		OffsetY:  meta.OffsetY,
		Elements: elements,
	}

	r.mu.Lock()
	r.current = state
	r.mu.Unlock()

	return state, nil
}

// Current returns the most recently registered state.
func (r *Registry) Current() (*model.ScreenState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil, model.Errf(model.KindNoState, "no observation yet — call observe first")
	}
	return r.current, nil
}

// Resolve maps (stateID, elementID) to the element's centroid in screen
// pixels. The centroid is recomputed from the stored bounds on every call;
// nothing about a resolution is cached.
func (r *Registry) Resolve(stateID string, elementID int) (model.Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return model.Point{}, model.Errf(model.KindNoState, "no observation yet — call observe first")
	}
	if r.current.ID != stateID {
		return model.Point{}, model.Errf(model.KindStaleState, "state %q has been superseded by %q — re-observe before acting", stateID, r.current.ID)
	}
	el := r.current.Element(elementID)
	if el == nil {
		return model.Point{}, model.Errf(model.KindUnknownElement, "element %d out of range (state has %d elements)", elementID, len(r.current.Elements))
	}

	x, y := el.Center()
	return model.Point{X: x, Y: y}, nil
}

// buildElement validates one raw element and converts it to screen pixels.
func buildElement(id int, re detect.RawElement, meta Meta) (model.Element, error) {
	for _, v := range re.BBox {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.Element{}, model.Errf(model.KindInvalidDetection, "element %d: bbox contains non-finite values %v", id, re.BBox)
		}
	}
	if re.BBox[2] <= 0 || re.BBox[3] <= 0 {
		return model.Element{}, model.Errf(model.KindInvalidDetection, "element %d: bbox %v has non-positive size", id, re.BBox)
	}
	if re.Confidence < 0 || re.Confidence > 1 {
		return model.Element{}, model.Errf(model.KindInvalidDetection, "element %d: confidence %v out of range", id, re.Confidence)
	}

	x1, err := normCoord(id, re.BBox[0])
	if err != nil {
		return model.Element{}, err
	}
	y1, err := normCoord(id, re.BBox[1])
	if err != nil {
		return model.Element{}, err
	}
	x2, err := normCoord(id, re.BBox[0]+re.BBox[2])
	if err != nil {
		return model.Element{}, err
	}
	y2, err := normCoord(id, re.BBox[1]+re.BBox[3])
	if err != nil {
		return model.Element{}, err
	}

	// Scale to pixels against the unscaled capture dimensions, then shift by
	// the monitor offset.
	px1 := int(math.Round(x1 * float64(meta.Width)))
	py1 := int(math.Round(y1 * float64(meta.Height)))
	px2 := int(math.Round(x2 * float64(meta.Width)))
	py2 := int(math.Round(y2 * float64(meta.Height)))

	return model.Element{
		ID:          id,
		Bounds:      [4]int{px1 + meta.OffsetX, py1 + meta.OffsetY, px2 - px1, py2 - py1},
		Confidence:  re.Confidence,
		Label:       re.Label,
		Kind:        re.Kind,
		Interactive: re.Interactive,
	}, nil
}

// normCoord clamps a normalized coordinate into 0-1, tolerating rounding
// slop but failing hard on anything farther out.
func normCoord(id int, v float64) (float64, error) {
	if v < -normSlop || v > 1+normSlop {
		return 0, model.Errf(model.KindInvalidDetection, "element %d: coordinate %v outside normalized range", id, v)
	}
	if v < 0 {
		return 0, nil
	}
	if v > 1 {
		return 1, nil
	}
	return v, nil
}
