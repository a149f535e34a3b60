// Package capture grabs raw screenshots of a display or region, along with
// the capture metadata the registry needs to map normalized detector
// coordinates back to absolute screen pixels.
package capture

import (
	"fmt"
	"image"
	"time"
)

// Region is a sub-rectangle of a display, in display-relative pixels.
type Region struct {
	X, Y, Width, Height int
}

// Options controls what to capture.
type Options struct {
	Display int     // Display index (0 = primary)
	Region  *Region // Optional sub-region of the display (nil = whole display)
	Scale   float64 // Downscale factor 0.1-1.0 applied to the returned image (0 = no scaling)
}

// Capture is one raw screenshot plus its metadata. Width/Height and the
// offsets describe the captured screen region at full resolution; Image may
// be smaller when a scale factor was applied. Detector output is normalized
// 0-1, so element geometry is always recovered from Width/Height and the
// scale factor cancels out.
type Capture struct {
	Image   image.Image
	Width   int // Captured region width in screen pixels (unscaled)
	Height  int // Captured region height in screen pixels (unscaled)
	OffsetX int // Region origin on the virtual screen
	OffsetY int
	TakenAt time.Time
}

// Capturer takes a screenshot of the active display.
type Capturer interface {
	Capture(opts Options) (*Capture, error)
}

// validate rejects option combinations before any OS call.
func (o Options) validate() error {
	if o.Display < 0 {
		return fmt.Errorf("display index must be >= 0, got %d", o.Display)
	}
	if o.Scale != 0 && (o.Scale < 0.1 || o.Scale > 1.0) {
		return fmt.Errorf("scale must be in 0.1-1.0, got %g", o.Scale)
	}
	if o.Region != nil && (o.Region.Width <= 0 || o.Region.Height <= 0) {
		return fmt.Errorf("region must have positive dimensions, got %dx%d", o.Region.Width, o.Region.Height)
	}
	return nil
}
