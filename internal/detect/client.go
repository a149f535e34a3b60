package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultBoxThreshold is the detection confidence cutoff sent to the model
// server when none is configured.
const DefaultBoxThreshold = 0.05

// Client calls a remote screen-parsing model server over HTTP. The server
// receives a base64 PNG and returns detected elements; both pixel-box and
// normalized-bbox response shapes are accepted.
type Client struct {
	baseURL      string
	boxThreshold float64
	httpc        *http.Client
}

// NewClient creates a detector client for the given base URL, e.g.
// "http://127.0.0.1:8000". A timeout of 0 leaves cancellation entirely to
// the caller's context.
func NewClient(baseURL string, boxThreshold float64, timeout time.Duration) *Client {
	if boxThreshold <= 0 {
		boxThreshold = DefaultBoxThreshold
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		boxThreshold: boxThreshold,
		httpc:        &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Image        string  `json:"image"`
	BoxThreshold float64 `json:"box_threshold"`
}

// wireElement covers the element shapes produced by OmniParser-style
// servers: pixel corners in "box" (paired with image_size) or normalized
// corners in "bbox". Captions arrive as "caption" or "content".
type wireElement struct {
	Box           []float64 `json:"box"`
	BBox          []float64 `json:"bbox"`
	Score         float64   `json:"score"`
	Confidence    float64   `json:"confidence"`
	Caption       string    `json:"caption"`
	Content       string    `json:"content"`
	Type          string    `json:"type"`
	Interactivity bool      `json:"interactivity"`
}

type analyzeResponse struct {
	Elements  []wireElement `json:"elements"`
	ImageSize []int         `json:"image_size"`
}

// Detect sends the screenshot to the model server and converts the response
// to normalized RawElements.
func (c *Client) Detect(ctx context.Context, img image.Image) ([]RawElement, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}

	body, err := json.Marshal(analyzeRequest{
		Image:        base64.StdEncoding.EncodeToString(buf.Bytes()),
		BoxThreshold: c.boxThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal detect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("detector returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode detector response: %w", err)
	}

	return convertElements(parsed, img.Bounds().Dx(), img.Bounds().Dy())
}

// convertElements maps the wire shapes onto normalized RawElements. Pixel
// boxes are divided by the server-reported image size, falling back to the
// submitted image dimensions when the server omits it.
func convertElements(parsed analyzeResponse, imgW, imgH int) ([]RawElement, error) {
	refW, refH := float64(imgW), float64(imgH)
	if len(parsed.ImageSize) == 2 && parsed.ImageSize[0] > 0 && parsed.ImageSize[1] > 0 {
		refW, refH = float64(parsed.ImageSize[0]), float64(parsed.ImageSize[1])
	}

	out := make([]RawElement, 0, len(parsed.Elements))
	for i, we := range parsed.Elements {
		raw := RawElement{
			Label:       we.Caption,
			Kind:        we.Type,
			Interactive: we.Interactivity,
			Confidence:  we.Score,
		}
		if raw.Label == "" {
			raw.Label = we.Content
		}
		if raw.Confidence == 0 {
			raw.Confidence = we.Confidence
		}

		switch {
		case len(we.BBox) == 4:
			raw.BBox = cornersToBox(we.BBox[0], we.BBox[1], we.BBox[2], we.BBox[3])
		case len(we.Box) == 4:
			if refW <= 0 || refH <= 0 {
				return nil, fmt.Errorf("element %d: pixel box without usable image size", i)
			}
			raw.BBox = cornersToBox(we.Box[0]/refW, we.Box[1]/refH, we.Box[2]/refW, we.Box[3]/refH)
		default:
			return nil, fmt.Errorf("element %d: missing bounding box", i)
		}

		out = append(out, raw)
	}
	return out, nil
}

// cornersToBox converts normalized (x1,y1,x2,y2) corners to (x,y,w,h).
func cornersToBox(x1, y1, x2, y2 float64) [4]float64 {
	return [4]float64{x1, y1, x2 - x1, y2 - y1}
}
