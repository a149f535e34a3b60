package model

// Point is a resolved absolute screen coordinate.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Element is one detected interactive region on screen. IDs are sequential
// within one ScreenState and assigned in detector order.
type Element struct {
	ID          int     `yaml:"i"            json:"i"`            // Sequential integer ID, 0-based
	Bounds      [4]int  `yaml:"b"            json:"b"`            // [x, y, width, height] in absolute screen pixels
	Confidence  float64 `yaml:"conf"         json:"conf"`         // Detector confidence 0.0-1.0
	Label       string  `yaml:"t,omitempty"  json:"t,omitempty"`  // Caption / OCR text from the detector
	Kind        string  `yaml:"k,omitempty"  json:"k,omitempty"`  // Best-effort hint ("icon", "text"), never a dispatch decision
	Interactive bool    `yaml:"ix,omitempty" json:"ix,omitempty"` // Detector believes the element accepts input
}

// Center returns the centroid of the element's bounding box. Click targets
// use the centroid rather than the top-left corner: irregular icons are far
// more likely to be hit at their center.
func (el Element) Center() (x, y int) {
	return el.Bounds[0] + el.Bounds[2]/2, el.Bounds[1] + el.Bounds[3]/2
}

// Contains reports whether the point (x, y) lies inside the bounding box.
func (el Element) Contains(x, y int) bool {
	return x >= el.Bounds[0] && x < el.Bounds[0]+el.Bounds[2] &&
		y >= el.Bounds[1] && y < el.Bounds[1]+el.Bounds[3]
}
