package cmd

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/capture"
	"github.com/screenlens/screenlens/internal/detect"
	"github.com/screenlens/screenlens/internal/model"
	"github.com/screenlens/screenlens/internal/registry"
)

// Environment defaults so agents can configure once instead of passing
// flags on every invocation.
const (
	envDetectorURL = "SCREENLENS_DETECTOR_URL"
	envDisplay     = "SCREENLENS_DISPLAY"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// addObserveFlags registers the capture + detector flags shared by every
// command that needs a fresh screen state.
func addObserveFlags(cmd *cobra.Command) {
	cmd.Flags().String("detector-url", envOr(envDetectorURL, ""), "Element detector base URL (empty: built-in heuristic)")
	cmd.Flags().Float64("box-threshold", detect.DefaultBoxThreshold, "Minimum detector confidence")
	cmd.Flags().Int("timeout", 60, "Detector request timeout in seconds")
	cmd.Flags().Int("display", envOrInt(envDisplay, 0), "Display index to capture")
	cmd.Flags().Float64("scale", 0, "Downscale factor 0.1-1.0 applied before detection (0 = none)")
}

// newDetector builds the detector the flags select: the HTTP vision model
// when a URL is configured, the built-in heuristic otherwise.
func newDetector(cmd *cobra.Command) detect.Detector {
	url, _ := cmd.Flags().GetString("detector-url")
	if url == "" {
		return detect.NewHeuristic()
	}
	threshold, _ := cmd.Flags().GetFloat64("box-threshold")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	return detect.NewClient(url, threshold, time.Duration(timeoutSec)*time.Second)
}

// observeOnce captures, detects, and registers a fresh screen state.
func observeOnce(ctx context.Context, cmd *cobra.Command, reg *registry.Registry) (*model.ScreenState, *capture.Capture, error) {
	display, _ := cmd.Flags().GetInt("display")
	scale, _ := cmd.Flags().GetFloat64("scale")

	capturer := capture.NewDisplayCapturer()
	shot, err := capturer.Capture(capture.Options{Display: display, Scale: scale})
	if err != nil {
		return nil, nil, err
	}

	raw, err := newDetector(cmd).Detect(ctx, shot.Image)
	if err != nil {
		return nil, nil, err
	}

	state, err := reg.Register(raw, registry.Meta{
		Width:   shot.Width,
		Height:  shot.Height,
		OffsetX: shot.OffsetX,
		OffsetY: shot.OffsetY,
		TakenAt: shot.TakenAt,
	})
	if err != nil {
		return nil, nil, err
	}
	return state, shot, nil
}
