package capture

import (
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"
)

// DisplayCapturer captures physical displays via the OS screenshot API.
type DisplayCapturer struct{}

// NewDisplayCapturer returns a Capturer for the local displays.
func NewDisplayCapturer() *DisplayCapturer {
	return &DisplayCapturer{}
}

// Capture grabs the requested display (or sub-region) and applies the
// optional downscale. The returned metadata always describes the unscaled
// screen region.
func (c *DisplayCapturer) Capture(opts Options) (*Capture, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays (is a desktop session running?)")
	}
	if opts.Display >= n {
		return nil, fmt.Errorf("display %d not found (%d active)", opts.Display, n)
	}

	bounds := screenshot.GetDisplayBounds(opts.Display)
	if opts.Region != nil {
		r := opts.Region
		rect := image.Rect(
			bounds.Min.X+r.X,
			bounds.Min.Y+r.Y,
			bounds.Min.X+r.X+r.Width,
			bounds.Min.Y+r.Y+r.Height,
		)
		rect = rect.Intersect(bounds)
		if rect.Empty() {
			return nil, fmt.Errorf("region %dx%d+%d+%d lies outside display %d", r.Width, r.Height, r.X, r.Y, opts.Display)
		}
		bounds = rect
	}

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", opts.Display, err)
	}

	shot := &Capture{
		Image:   img,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		OffsetX: bounds.Min.X,
		OffsetY: bounds.Min.Y,
		TakenAt: time.Now(),
	}

	if opts.Scale != 0 && opts.Scale != 1.0 {
		w := int(float64(bounds.Dx()) * opts.Scale)
		if w < 1 {
			w = 1
		}
		shot.Image = imaging.Resize(img, w, 0, imaging.Lanczos)
	}

	return shot, nil
}
