package input

import (
	"fmt"
	"unicode"

	"github.com/screenlens/screenlens/internal/model"
)

// Action kinds accepted by the dispatcher.
const (
	ActionClick       = "click"
	ActionDoubleClick = "doubleClick"
	ActionType        = "type"
	ActionScroll      = "scroll"
	ActionDrag        = "drag"
	ActionMove        = "move"
)

// Request is one validated action against a resolved coordinate. It is
// constructed, executed, and discarded; nothing about it persists.
type Request struct {
	Action string
	Button string // click/drag mouse button, normalized by ParseButton
	// Type payload. NeedsFocus controls the implicit click before typing —
	// an explicit field rather than inferred behavior.
	Text       string
	NeedsFocus bool
	DelayMs    int
	// Scroll payload, in wheel clicks.
	DeltaX, DeltaY int
	// Drag target, resolved by the gateway (element centroid or explicit point).
	To *model.Point
}

// Result reports an executed action. The acted-upon coordinate is echoed
// back so the caller can verify what was hit.
type Result struct {
	Success bool         `yaml:"success"           json:"success"`
	Action  string       `yaml:"action"            json:"action"`
	Point   *model.Point `yaml:"point,omitempty"   json:"point,omitempty"`
	To      *model.Point `yaml:"to,omitempty"      json:"to,omitempty"`
	Message string       `yaml:"message,omitempty" json:"message,omitempty"`
}

// Dispatcher executes action requests through an Injector. Calls block until
// the OS confirms dispatch; they do not wait for the target application to
// repaint — that verification belongs to the caller's next observe.
type Dispatcher struct {
	inj Injector
}

// NewDispatcher wraps an injector.
func NewDispatcher(inj Injector) *Dispatcher {
	return &Dispatcher{inj: inj}
}

// Validate checks a request without side effects. The gateway calls this
// before resolving coordinates so malformed requests never partially execute.
func (r Request) Validate() error {
	switch r.Action {
	case ActionClick, ActionDoubleClick:
		if _, err := ParseButton(r.Button); err != nil {
			return model.Errf(model.KindInvalidArgument, "%v", err)
		}
	case ActionType:
		if r.Text == "" {
			return model.Errf(model.KindInvalidArgument, "type action requires non-empty text")
		}
		if err := checkTypeable(r.Text); err != nil {
			return err
		}
	case ActionScroll:
		if r.DeltaX == 0 && r.DeltaY == 0 {
			return model.Errf(model.KindInvalidArgument, "scroll action requires a non-zero delta")
		}
	case ActionDrag:
		if r.To == nil {
			return model.Errf(model.KindInvalidArgument, "drag action requires a target (to_element_id or to_x/to_y)")
		}
		if _, err := ParseButton(r.Button); err != nil {
			return model.Errf(model.KindInvalidArgument, "%v", err)
		}
	case ActionMove:
		// Pointer move carries no payload.
	case "":
		return model.Errf(model.KindInvalidArgument, "action is required")
	default:
		return model.Errf(model.KindInvalidArgument, "unknown action %q (expected click, doubleClick, type, scroll, drag, or move)", r.Action)
	}
	return nil
}

// Execute performs the request at the resolved coordinate.
func (d *Dispatcher) Execute(req Request, at model.Point) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Action: req.Action, Point: &at}

	switch req.Action {
	case ActionClick, ActionDoubleClick:
		button, _ := ParseButton(req.Button)
		double := req.Action == ActionDoubleClick
		if err := d.inj.Click(at.X, at.Y, button, double); err != nil {
			return nil, model.AsError(err, model.KindInjectionFailed)
		}
		res.Message = fmt.Sprintf("%s %s at (%d,%d)", button, req.Action, at.X, at.Y)

	case ActionType:
		if req.NeedsFocus {
			if err := d.inj.Click(at.X, at.Y, "left", false); err != nil {
				return nil, model.AsError(err, model.KindInjectionFailed)
			}
		}
		if err := d.inj.TypeText(req.Text, req.DelayMs); err != nil {
			return nil, model.AsError(err, model.KindInjectionFailed)
		}
		res.Message = fmt.Sprintf("typed %d characters at (%d,%d)", len([]rune(req.Text)), at.X, at.Y)

	case ActionScroll:
		if err := d.inj.Scroll(at.X, at.Y, req.DeltaX, req.DeltaY); err != nil {
			return nil, model.AsError(err, model.KindInjectionFailed)
		}
		res.Message = fmt.Sprintf("scrolled (%d,%d) at (%d,%d)", req.DeltaX, req.DeltaY, at.X, at.Y)

	case ActionDrag:
		button, _ := ParseButton(req.Button)
		if err := d.inj.Drag(at.X, at.Y, req.To.X, req.To.Y, button); err != nil {
			return nil, model.AsError(err, model.KindInjectionFailed)
		}
		res.To = req.To
		res.Message = fmt.Sprintf("dragged (%d,%d) -> (%d,%d)", at.X, at.Y, req.To.X, req.To.Y)

	case ActionMove:
		// Hover without clicking, for tooltips and hover menus.
		if err := d.inj.MoveMouse(at.X, at.Y); err != nil {
			return nil, model.AsError(err, model.KindInjectionFailed)
		}
		res.Message = fmt.Sprintf("moved pointer to (%d,%d)", at.X, at.Y)
	}

	res.Success = true
	return res, nil
}

// PressKeys taps a key combo (modifier-first order, e.g. ["ctrl","v"]).
func (d *Dispatcher) PressKeys(keys []string) (*Result, error) {
	if len(keys) == 0 {
		return nil, model.Errf(model.KindInvalidArgument, "keys are required")
	}
	for _, k := range keys {
		if !IsKnownKey(k) {
			return nil, model.Errf(model.KindInvalidArgument, "unknown key %q — see the keys tool for supported names", k)
		}
	}
	if err := d.inj.KeyTap(keys); err != nil {
		return nil, model.AsError(err, model.KindInjectionFailed)
	}
	return &Result{Success: true, Action: "press_key", Message: fmt.Sprintf("pressed %v", keys)}, nil
}

// checkTypeable rejects runes that cannot be submitted as keystrokes. Text
// goes through synthetic key events rather than clipboard paste so the
// target application's input validation still runs; control characters
// other than newline and tab have no keystroke mapping.
func checkTypeable(text string) error {
	for _, r := range text {
		if r == '\n' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return model.Errf(model.KindUnsupportedCharacter, "character %q cannot be typed as a keystroke", r)
		}
	}
	return nil
}
