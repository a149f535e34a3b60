package detect

import (
	"context"
	"image"
	"sort"

	"github.com/anthonynsimon/bild/effect"
)

// Heuristic is a pure-Go fallback detector used when no model server is
// configured. It scans an edge map for windows of high edge density, which
// picks up text blocks, buttons, and icons well enough to drive coarse
// automation. It produces no captions and everything it finds is reported
// as kind "region".
type Heuristic struct {
	// MinConfidence drops candidate windows below this edge-density score.
	MinConfidence float64
}

// NewHeuristic returns a fallback detector with the default density cutoff.
func NewHeuristic() *Heuristic {
	return &Heuristic{MinConfidence: 0.12}
}

// window sizes swept across the edge map, chosen for common UI element
// shapes: toolbar icons, buttons, and single text lines.
var windowSizes = [][2]int{
	{32, 32},  // icons
	{96, 28},  // buttons / short labels
	{220, 30}, // text lines
}

// Detect analyzes the image locally. The context is checked between window
// sweeps so a host-side abort does not leave a scan running.
func (h *Heuristic) Detect(ctx context.Context, img image.Image) ([]RawElement, error) {
	edges := effect.EdgeDetection(img, 1.0)
	b := edges.Bounds()
	w, hgt := b.Dx(), b.Dy()
	if w == 0 || hgt == 0 {
		return nil, nil
	}

	// Binary edge mask with a row-prefix sum per line for O(1) window sums.
	mask := make([][]int, hgt)
	for y := 0; y < hgt; y++ {
		row := make([]int, w+1)
		for x := 0; x < w; x++ {
			r, g, bl, _ := edges.At(b.Min.X+x, b.Min.Y+y).RGBA()
			v := 0
			if (r+g+bl)/3 > 0x7fff {
				v = 1
			}
			row[x+1] = row[x] + v
		}
		mask[y] = row
	}

	var candidates []RawElement
	for _, ws := range windowSizes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		candidates = append(candidates, h.sweep(mask, w, hgt, ws[0], ws[1])...)
	}

	merged := mergeOverlaps(candidates)
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].BBox[1] != merged[j].BBox[1] {
			return merged[i].BBox[1] < merged[j].BBox[1]
		}
		return merged[i].BBox[0] < merged[j].BBox[0]
	})
	return merged, nil
}

// sweep slides one window size across the mask and keeps windows whose edge
// density clears the cutoff.
func (h *Heuristic) sweep(mask [][]int, imgW, imgH, winW, winH int) []RawElement {
	if winW > imgW || winH > imgH {
		return nil
	}
	stepX, stepY := winW/2, winH/2
	area := float64(winW * winH)

	var out []RawElement
	for y := 0; y+winH <= imgH; y += stepY {
		for x := 0; x+winW <= imgW; x += stepX {
			count := 0
			for yy := y; yy < y+winH; yy++ {
				count += mask[yy][x+winW] - mask[yy][x]
			}
			density := float64(count) / area
			if density < h.MinConfidence {
				continue
			}
			conf := density * 2
			if conf > 1 {
				conf = 1
			}
			out = append(out, RawElement{
				BBox: [4]float64{
					float64(x) / float64(imgW),
					float64(y) / float64(imgH),
					float64(winW) / float64(imgW),
					float64(winH) / float64(imgH),
				},
				Confidence: conf,
				Kind:       "region",
			})
		}
	}
	return out
}

// mergeOverlaps collapses candidates whose boxes overlap significantly,
// keeping the union box and the higher confidence. Sweeping multiple window
// sizes over the same text block otherwise yields a pile of duplicates.
func mergeOverlaps(elems []RawElement) []RawElement {
	var merged []RawElement
	for _, e := range elems {
		absorbed := false
		for i := range merged {
			if overlapRatio(merged[i].BBox, e.BBox) > 0.4 {
				merged[i].BBox = union(merged[i].BBox, e.BBox)
				if e.Confidence > merged[i].Confidence {
					merged[i].Confidence = e.Confidence
				}
				absorbed = true
				break
			}
		}
		if !absorbed {
			merged = append(merged, e)
		}
	}
	return merged
}

// overlapRatio returns intersection area over the smaller box's area.
func overlapRatio(a, b [4]float64) float64 {
	ix := overlap1D(a[0], a[0]+a[2], b[0], b[0]+b[2])
	iy := overlap1D(a[1], a[1]+a[3], b[1], b[1]+b[3])
	inter := ix * iy
	if inter <= 0 {
		return 0
	}
	areaA := a[2] * a[3]
	areaB := b[2] * b[3]
	smaller := areaA
	if areaB < smaller {
		smaller = areaB
	}
	if smaller <= 0 {
		return 0
	}
	return inter / smaller
}

func overlap1D(a1, a2, b1, b2 float64) float64 {
	lo := a1
	if b1 > lo {
		lo = b1
	}
	hi := a2
	if b2 < hi {
		hi = b2
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

func union(a, b [4]float64) [4]float64 {
	x1 := a[0]
	if b[0] < x1 {
		x1 = b[0]
	}
	y1 := a[1]
	if b[1] < y1 {
		y1 = b[1]
	}
	x2 := a[0] + a[2]
	if b[0]+b[2] > x2 {
		x2 = b[0] + b[2]
	}
	y2 := a[1] + a[3]
	if b[1]+b[3] > y2 {
		y2 = b[1] + b[3]
	}
	return [4]float64{x1, y1, x2 - x1, y2 - y1}
}
