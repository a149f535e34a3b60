// Package input translates validated action requests into OS-level input
// events. The Injector interface mirrors the primitives the host platform
// provides; the Dispatcher layers click/type/scroll/drag semantics on top.
package input

import (
	"fmt"
	"strings"
)

// Injector simulates mouse and keyboard input.
type Injector interface {
	Click(x, y int, button string, double bool) error
	MoveMouse(x, y int) error
	Scroll(x, y int, dx, dy int) error
	Drag(fromX, fromY, toX, toY int, button string) error
	TypeText(text string, delayMs int) error
	KeyTap(keys []string) error
}

// ParseButton normalizes a mouse-button name.
func ParseButton(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return "left", nil
	case "right":
		return "right", nil
	case "middle", "center":
		return "center", nil
	default:
		return "", fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}
