package model

import "time"

// ScreenState is one immutable snapshot of detected on-screen elements.
// A new state is created on each observe call; the previous one becomes
// stale and any element ID referencing it must be rejected.
type ScreenState struct {
	ID       string    `yaml:"state"    json:"state"`    // Unique per observation
	TakenAt  time.Time `yaml:"ts"       json:"ts"`       // Capture timestamp
	Width    int       `yaml:"w"        json:"w"`        // Captured region width in screen pixels
	Height   int       `yaml:"h"        json:"h"`        // Captured region height in screen pixels
	OffsetX  int       `yaml:"ox"       json:"ox"`       // Monitor / region origin on the virtual screen
	OffsetY  int       `yaml:"oy"       json:"oy"`
	Elements []Element `yaml:"elements" json:"elements"` // In detector order, IDs 0..N-1
}

// Element returns the element with the given ID, or nil if the ID is out of
// range for this state.
func (s *ScreenState) Element(id int) *Element {
	if id < 0 || id >= len(s.Elements) {
		return nil
	}
	return &s.Elements[id]
}
