// Package server exposes screen observation and input actions as MCP tools.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/screenlens/screenlens/internal/capture"
	"github.com/screenlens/screenlens/internal/detect"
	"github.com/screenlens/screenlens/internal/input"
	"github.com/screenlens/screenlens/internal/registry"
	"github.com/screenlens/screenlens/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	Transport    string
	Port         int
	DetectorURL  string // Empty selects the built-in heuristic detector
	Display      int
	Scale        float64
	BoxThreshold float64
	Timeout      time.Duration
}

// Server wires the capturer, detector, registry, and dispatcher behind the
// MCP tool surface. One mutex serializes tool calls: the registry holds a
// single live state and input injection must not interleave.
type Server struct {
	capturer   capture.Capturer
	detector   detect.Detector
	registry   *registry.Registry
	dispatcher *input.Dispatcher
	display    int
	scale      float64

	mu  sync.Mutex
	mcp *mcpserver.MCPServer
}

// New creates an MCP server with all screenlens tools registered.
func New(cfg Config) *Server {
	var det detect.Detector
	if cfg.DetectorURL != "" {
		det = detect.NewClient(cfg.DetectorURL, cfg.BoxThreshold, cfg.Timeout)
	} else {
		det = detect.NewHeuristic()
	}

	s := &Server{
		capturer:   capture.NewDisplayCapturer(),
		detector:   det,
		registry:   registry.New(),
		dispatcher: input.NewDispatcher(input.NewRobotInjector()),
		display:    cfg.Display,
		scale:      cfg.Scale,
	}

	s.mcp = mcpserver.NewMCPServer(
		"screenlens",
		version.Version,
	)

	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport and blocks.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	// observe
	s.mcp.AddTool(
		mcp.NewTool("observe",
			mcp.WithDescription("Capture the screen, detect UI elements, and return a fresh screen state. Element IDs are only valid against the returned state_id and expire on the next observe."),
			mcp.WithBoolean("include_image", mcp.Description("Return the screenshot annotated with element ID labels (default: true)")),
			mcp.WithNumber("display", mcp.Description("Display index to capture (default: server setting)")),
			mcp.WithNumber("scale", mcp.Description("Downscale factor 0.1-1.0 applied before detection")),
		),
		s.handleObserve,
	)

	// act
	s.mcp.AddTool(
		mcp.NewTool("act",
			mcp.WithDescription("Perform an input action on an element from a previous observe. Fails with StaleState if the screen has been re-observed since."),
			mcp.WithString("state_id", mcp.Description("State ID returned by observe"), mcp.Required()),
			mcp.WithNumber("element_id", mcp.Description("Element ID within the state"), mcp.Required()),
			mcp.WithString("action", mcp.Description("Action: click, doubleClick, type, scroll, drag, move"), mcp.Required()),
			mcp.WithString("button", mcp.Description("Mouse button: left, right, middle (default: left)")),
			mcp.WithString("text", mcp.Description("Text to type (type action)")),
			mcp.WithBoolean("needs_focus", mcp.Description("Click the element before typing (default: true)")),
			mcp.WithNumber("delay_ms", mcp.Description("Delay between keystrokes in ms (type action)")),
			mcp.WithNumber("delta_x", mcp.Description("Horizontal scroll clicks (scroll action)")),
			mcp.WithNumber("delta_y", mcp.Description("Vertical scroll clicks (scroll action)")),
			mcp.WithNumber("to_element_id", mcp.Description("Drag target element ID (drag action)")),
			mcp.WithNumber("to_x", mcp.Description("Drag target X coordinate (drag action, alternative to to_element_id)")),
			mcp.WithNumber("to_y", mcp.Description("Drag target Y coordinate (drag action)")),
		),
		s.handleAct,
	)

	// press_key
	s.mcp.AddTool(
		mcp.NewTool("press_key",
			mcp.WithDescription("Press a key or key combination, modifiers first (e.g. [\"ctrl\",\"c\"])"),
			mcp.WithArray("keys", mcp.Description("Key names to press together"), mcp.Required()),
		),
		s.handlePressKey,
	)

	// keys
	s.mcp.AddTool(
		mcp.NewTool("keys",
			mcp.WithDescription("List the key names accepted by press_key"),
		),
		s.handleKeys,
	)

	// screenshot
	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture a raw screenshot without element detection"),
			mcp.WithNumber("display", mcp.Description("Display index (default: server setting)")),
			mcp.WithNumber("scale", mcp.Description("Scale factor 0.1-1.0 (default: 0.5)")),
			mcp.WithString("format", mcp.Description("Image format: png, jpg (default: png)")),
			mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100 (default: 80)")),
		),
		s.handleScreenshot,
	)
}
