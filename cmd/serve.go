package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/detect"
	"github.com/screenlens/screenlens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing screen observation and input tools",
	Long: `Start a Model Context Protocol (MCP) server with observe, act, press_key,
and screenshot tools. AI agents call tools directly without shell overhead.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  screenlens serve
  screenlens serve --detector-url http://localhost:8000
  screenlens serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().String("detector-url", envOr(envDetectorURL, ""), "Element detector base URL (empty: built-in heuristic)")
	serveCmd.Flags().Float64("box-threshold", detect.DefaultBoxThreshold, "Minimum detector confidence")
	serveCmd.Flags().Int("timeout", 60, "Detector request timeout in seconds")
	serveCmd.Flags().Int("display", envOrInt(envDisplay, 0), "Default display index to capture")
	serveCmd.Flags().Float64("scale", 0, "Default downscale factor before detection (0 = none)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	detectorURL, _ := cmd.Flags().GetString("detector-url")
	boxThreshold, _ := cmd.Flags().GetFloat64("box-threshold")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	display, _ := cmd.Flags().GetInt("display")
	scale, _ := cmd.Flags().GetFloat64("scale")

	cfg := server.Config{
		Transport:    transport,
		Port:         port,
		DetectorURL:  detectorURL,
		BoxThreshold: boxThreshold,
		Timeout:      time.Duration(timeoutSec) * time.Second,
		Display:      display,
		Scale:        scale,
	}

	return server.New(cfg).Serve(cfg)
}
