package input

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/screenlens/screenlens/internal/model"
)

// RobotInjector injects input through the OS event layer. Most injection
// primitives report nothing back, so failures surface as coordinate
// validation errors before any event is posted.
type RobotInjector struct{}

// NewRobotInjector returns the OS-backed injector.
func NewRobotInjector() *RobotInjector {
	return &RobotInjector{}
}

// checkOnScreen rejects coordinates outside the primary virtual screen. The
// OS would otherwise silently clamp the pointer, clicking something the
// caller never asked for.
func checkOnScreen(x, y int) error {
	w, h := robotgo.GetScreenSize()
	if x < 0 || y < 0 || x >= w || y >= h {
		return model.Errf(model.KindInjectionFailed, "coordinate (%d,%d) outside screen %dx%d", x, y, w, h)
	}
	return nil
}

func (r *RobotInjector) Click(x, y int, button string, double bool) error {
	if err := checkOnScreen(x, y); err != nil {
		return err
	}
	robotgo.Move(x, y)
	robotgo.Click(button, double)
	return nil
}

func (r *RobotInjector) MoveMouse(x, y int) error {
	if err := checkOnScreen(x, y); err != nil {
		return err
	}
	robotgo.Move(x, y)
	return nil
}

func (r *RobotInjector) Scroll(x, y int, dx, dy int) error {
	if err := checkOnScreen(x, y); err != nil {
		return err
	}
	robotgo.Move(x, y)
	robotgo.Scroll(dx, dy)
	return nil
}

func (r *RobotInjector) Drag(fromX, fromY, toX, toY int, button string) error {
	if err := checkOnScreen(fromX, fromY); err != nil {
		return err
	}
	if err := checkOnScreen(toX, toY); err != nil {
		return err
	}
	robotgo.Move(fromX, fromY)
	if err := robotgo.Toggle(button); err != nil {
		return model.Errf(model.KindInjectionFailed, "press %s button: %v", button, err)
	}
	robotgo.MoveSmooth(toX, toY)
	if err := robotgo.Toggle(button, "up"); err != nil {
		return model.Errf(model.KindInjectionFailed, "release %s button: %v", button, err)
	}
	return nil
}

func (r *RobotInjector) TypeText(text string, delayMs int) error {
	if delayMs > 0 {
		for _, ch := range text {
			robotgo.TypeStr(string(ch))
			robotgo.MilliSleep(delayMs)
		}
		return nil
	}
	robotgo.TypeStr(text)
	return nil
}

func (r *RobotInjector) KeyTap(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("no keys to tap")
	}
	// Combos are given modifier-first ("ctrl", "v"): the last key is tapped
	// while the preceding keys are held.
	tap := keys[len(keys)-1]
	mods := make([]interface{}, 0, len(keys)-1)
	for _, m := range keys[:len(keys)-1] {
		mods = append(mods, m)
	}
	if err := robotgo.KeyTap(tap, mods...); err != nil {
		return model.Errf(model.KindInjectionFailed, "key tap %v: %v", keys, err)
	}
	return nil
}
