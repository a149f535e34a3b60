// Package overlay renders set-of-marks screenshots: each detected element's
// bounding box drawn in a distinct color with its ID label, so the calling
// agent can match element IDs against what it sees in the image.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/screenlens/screenlens/internal/model"
)

// MaxEdge is the longest edge of the annotated image returned over the
// wire. Larger screenshots are downscaled to keep token cost bounded.
const MaxEdge = 960

// Annotate draws each element's box and "[id]" label onto a copy of the
// capture. Element bounds are absolute screen pixels; offsetX/offsetY shift
// them into image space, and the ratio of image to capture dimensions
// absorbs any downscale applied before detection.
func Annotate(img image.Image, elements []model.Element, capW, capH, offsetX, offsetY int) *image.RGBA {
	rgba := toRGBA(img)

	b := rgba.Bounds()
	scaleX, scaleY := 1.0, 1.0
	if capW > 0 {
		scaleX = float64(b.Dx()) / float64(capW)
	}
	if capH > 0 {
		scaleY = float64(b.Dy()) / float64(capH)
	}

	palette := markPalette(len(elements))
	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor := color.RGBA{A: 200}

	for i, el := range elements {
		x := int(float64(el.Bounds[0]-offsetX) * scaleX)
		y := int(float64(el.Bounds[1]-offsetY) * scaleY)
		w := int(float64(el.Bounds[2]) * scaleX)
		h := int(float64(el.Bounds[3]) * scaleY)

		drawRectangle(rgba, x, y, x+w, y+h, palette[i])
		drawTextWithOutline(rgba, fmt.Sprintf("[%d]", el.ID), x+w/2, y+h/2, textColor, outlineColor)
	}

	return rgba
}

// EncodePNG serializes the annotated image, shrinking it to MaxEdge first.
func EncodePNG(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() > MaxEdge || b.Dy() > MaxEdge {
		if b.Dx() >= b.Dy() {
			img = imaging.Resize(img, MaxEdge, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, MaxEdge, imaging.Lanczos)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode annotated image: %w", err)
	}
	return buf.Bytes(), nil
}

// markPalette returns n visually distinct, high-saturation colors. The happy
// palette keeps labels readable against both light and dark UI chrome.
func markPalette(n int) []color.RGBA {
	if n == 0 {
		return nil
	}
	out := make([]color.RGBA, n)
	cols, err := colorful.HappyPalette(n)
	if err != nil {
		// Palette generation only fails for absurd n; fall back to red.
		for i := range out {
			out[i] = color.RGBA{R: 255, A: 255}
		}
		return out
	}
	for i, c := range cols {
		r, g, b := c.RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		out := image.NewRGBA(rgba.Bounds())
		draw.Draw(out, out.Bounds(), rgba, rgba.Bounds().Min, draw.Src)
		return out
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

// drawRectangle draws a one-pixel rectangle outline, clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()

	if x1 < bounds.Min.X {
		x1 = bounds.Min.X
	}
	if y1 < bounds.Min.Y {
		y1 = bounds.Min.Y
	}
	if x2 > bounds.Max.X {
		x2 = bounds.Max.X
	}
	if y2 > bounds.Max.Y {
		y2 = bounds.Max.Y
	}
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x < x2; x++ {
		img.Set(x, y1, c)
		img.Set(x, y2-1, c)
	}
	for y := y1; y < y2; y++ {
		img.Set(x1, y, c)
		img.Set(x2-1, y, c)
	}
}

// drawTextWithOutline draws text centered at (x, y) with a dark outline so
// the label stays legible over any background.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	textWidth := len(text) * 7 // basicfont.Face7x13 glyph width
	offsetX := x - textWidth/2
	offsetY := y + 13/2

	drawString := func(ox, oy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.Point26_6{X: fixed.Int26_6(ox * 64), Y: fixed.Int26_6(oy * 64)},
		}
		d.DrawString(text)
	}

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(offsetX+dx, offsetY+dy, outlineColor)
		}
	}
	drawString(offsetX, offsetY, textColor)
}
