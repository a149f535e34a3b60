package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/capture"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot",
	Long:  "Capture a raw screenshot of a display, without element detection.",
	RunE:  runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().Int("display", envOrInt(envDisplay, 0), "Display index to capture")
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().String("format", "png", "Output format: png, jpg")
	screenshotCmd.Flags().Int("quality", 80, "JPEG quality 1-100")
	screenshotCmd.Flags().Float64("scale", 0.5, "Scale factor 0.1-1.0 (for token efficiency)")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	display, _ := cmd.Flags().GetInt("display")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	quality, _ := cmd.Flags().GetInt("quality")
	scale, _ := cmd.Flags().GetFloat64("scale")

	shot, err := capture.NewDisplayCapturer().Capture(capture.Options{Display: display, Scale: scale})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, shot.Image)
	case "jpg", "jpeg":
		err = jpeg.Encode(&buf, shot.Image, &jpeg.Options{Quality: quality})
	default:
		return fmt.Errorf("unsupported format: %s (use png or jpg)", format)
	}
	if err != nil {
		return fmt.Errorf("encode screenshot: %w", err)
	}

	if outputPath != "" {
		return os.WriteFile(outputPath, buf.Bytes(), 0644)
	}

	// Default: write to stdout as base64 for easy agent consumption
	encoder := base64.NewEncoder(base64.StdEncoding, os.Stdout)
	if _, err := encoder.Write(buf.Bytes()); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Println() // newline after base64
	return nil
}
