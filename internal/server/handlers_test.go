package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/screenlens/screenlens/internal/capture"
	"github.com/screenlens/screenlens/internal/detect"
	"github.com/screenlens/screenlens/internal/input"
	"github.com/screenlens/screenlens/internal/registry"
)

type fakeCapturer struct {
	width, height    int
	offsetX, offsetY int
	err              error
}

func (f *fakeCapturer) Capture(opts capture.Options) (*capture.Capture, error) {
	if f.err != nil {
		return nil, f.err
	}
	// The returned image is a quarter-size render of the captured region,
	// as a real scaled capture would be.
	img := image.NewRGBA(image.Rect(0, 0, f.width/4, f.height/4))
	return &capture.Capture{
		Image:   img,
		Width:   f.width,
		Height:  f.height,
		OffsetX: f.offsetX,
		OffsetY: f.offsetY,
	}, nil
}

type fakeDetector struct {
	elements []detect.RawElement
	err      error
}

func (f *fakeDetector) Detect(_ context.Context, _ image.Image) ([]detect.RawElement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.elements, nil
}

type fakeInjector struct {
	calls []string
	fail  bool
}

func (f *fakeInjector) record(format string, args ...interface{}) error {
	if f.fail {
		return fmt.Errorf("injection refused")
	}
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeInjector) Click(x, y int, button string, double bool) error {
	return f.record("click %s %v (%d,%d)", button, double, x, y)
}
func (f *fakeInjector) MoveMouse(x, y int) error { return f.record("move (%d,%d)", x, y) }
func (f *fakeInjector) Scroll(x, y, dx, dy int) error {
	return f.record("scroll (%d,%d) at (%d,%d)", dx, dy, x, y)
}
func (f *fakeInjector) Drag(fromX, fromY, toX, toY int, button string) error {
	return f.record("drag %s (%d,%d)->(%d,%d)", button, fromX, fromY, toX, toY)
}
func (f *fakeInjector) TypeText(text string, delayMs int) error {
	return f.record("type %q", text)
}
func (f *fakeInjector) KeyTap(keys []string) error { return f.record("keytap %v", keys) }

func newTestServer(det detect.Detector, inj input.Injector) *Server {
	return &Server{
		capturer:   &fakeCapturer{width: 1000, height: 800},
		detector:   det,
		registry:   registry.New(),
		dispatcher: input.NewDispatcher(inj),
		scale:      0.25,
	}
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("first content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func observeState(t *testing.T, s *Server) observeResponse {
	t.Helper()
	res, err := s.handleObserve(context.Background(), callRequest(map[string]interface{}{
		"include_image": false,
	}))
	if err != nil {
		t.Fatalf("handleObserve: %v", err)
	}
	if res.IsError {
		t.Fatalf("observe failed: %s", textContent(t, res))
	}
	var resp observeResponse
	if err := json.Unmarshal([]byte(textContent(t, res)), &resp); err != nil {
		t.Fatalf("parse observe response: %v", err)
	}
	return resp
}

func TestObserveThenAct(t *testing.T) {
	inj := &fakeInjector{}
	s := newTestServer(&fakeDetector{elements: []detect.RawElement{
		{BBox: [4]float64{0.1, 0.1, 0.2, 0.2}, Confidence: 0.9, Label: "OK", Kind: "button"},
	}}, inj)

	resp := observeState(t, s)
	if resp.StateID == "" {
		t.Fatal("observe returned empty state_id")
	}
	if len(resp.Elements) != 1 || resp.Elements[0].ID != 0 {
		t.Fatalf("unexpected elements: %+v", resp.Elements)
	}
	if resp.Width != 1000 || resp.Height != 800 {
		t.Errorf("dims = %dx%d, want 1000x800", resp.Width, resp.Height)
	}

	res, err := s.handleAct(context.Background(), callRequest(map[string]interface{}{
		"state_id":   resp.StateID,
		"element_id": float64(0),
		"action":     "click",
	}))
	if err != nil {
		t.Fatalf("handleAct: %v", err)
	}
	if res.IsError {
		t.Fatalf("act failed: %s", textContent(t, res))
	}
	// Centroid of bbox (0.1,0.1,0.2,0.2) on a 1000x800 capture.
	want := "click left false (200,160)"
	if len(inj.calls) != 1 || inj.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", inj.calls, want)
	}
	if !bytes.Contains([]byte(textContent(t, res)), []byte(`"success":true`)) {
		t.Errorf("missing success: %s", textContent(t, res))
	}
}

func TestObserveIncludesAnnotatedImage(t *testing.T) {
	s := newTestServer(&fakeDetector{elements: []detect.RawElement{
		{BBox: [4]float64{0.2, 0.2, 0.3, 0.3}, Confidence: 0.8},
	}}, &fakeInjector{})

	res, err := s.handleObserve(context.Background(), callRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleObserve: %v", err)
	}
	if res.IsError {
		t.Fatalf("observe failed: %s", textContent(t, res))
	}
	if len(res.Content) != 2 {
		t.Fatalf("content count = %d, want text + image", len(res.Content))
	}
	ic, ok := res.Content[1].(mcp.ImageContent)
	if !ok {
		t.Fatalf("second content is %T, want ImageContent", res.Content[1])
	}
	if ic.MIMEType != "image/png" {
		t.Errorf("mime = %s", ic.MIMEType)
	}
	data, err := base64.StdEncoding.DecodeString(ic.Data)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("annotated image is not valid PNG: %v", err)
	}
}

func TestActAgainstStaleState(t *testing.T) {
	inj := &fakeInjector{}
	s := newTestServer(&fakeDetector{elements: []detect.RawElement{
		{BBox: [4]float64{0.1, 0.1, 0.2, 0.2}, Confidence: 0.9},
	}}, inj)

	first := observeState(t, s)
	observeState(t, s) // supersedes first

	res, err := s.handleAct(context.Background(), callRequest(map[string]interface{}{
		"state_id":   first.StateID,
		"element_id": float64(0),
		"action":     "click",
	}))
	if err != nil {
		t.Fatalf("handleAct: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error for stale state")
	}
	if !bytes.Contains([]byte(textContent(t, res)), []byte("StaleState")) {
		t.Errorf("wrong error kind: %s", textContent(t, res))
	}
	if len(inj.calls) != 0 {
		t.Errorf("stale act must not inject, got %v", inj.calls)
	}
}

func TestActErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		observe  bool
		args     map[string]interface{}
		wantKind string
	}{
		{
			name:     "no state yet",
			args:     map[string]interface{}{"state_id": "x", "element_id": float64(0), "action": "click"},
			wantKind: "NoStateAvailable",
		},
		{
			name:     "unknown element",
			observe:  true,
			args:     map[string]interface{}{"element_id": float64(99), "action": "click"},
			wantKind: "UnknownElement",
		},
		{
			name:     "unknown action validated before state lookup",
			args:     map[string]interface{}{"state_id": "x", "element_id": float64(0), "action": "swipe"},
			wantKind: "InvalidArgument",
		},
		{
			name:     "untypeable text",
			observe:  true,
			args:     map[string]interface{}{"element_id": float64(0), "action": "type", "text": "a\x07b"},
			wantKind: "UnsupportedCharacter",
		},
		{
			name:     "drag without target",
			observe:  true,
			args:     map[string]interface{}{"element_id": float64(0), "action": "drag"},
			wantKind: "InvalidArgument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inj := &fakeInjector{}
			s := newTestServer(&fakeDetector{elements: []detect.RawElement{
				{BBox: [4]float64{0.1, 0.1, 0.2, 0.2}, Confidence: 0.9},
			}}, inj)

			if tt.observe {
				resp := observeState(t, s)
				tt.args["state_id"] = resp.StateID
			}

			res, err := s.handleAct(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("handleAct: %v", err)
			}
			if !res.IsError {
				t.Fatal("expected error result")
			}
			if !bytes.Contains([]byte(textContent(t, res)), []byte(tt.wantKind)) {
				t.Errorf("want kind %s in %s", tt.wantKind, textContent(t, res))
			}
			if len(inj.calls) != 0 {
				t.Errorf("failed act must not inject, got %v", inj.calls)
			}
		})
	}
}

func TestActDragBetweenElements(t *testing.T) {
	inj := &fakeInjector{}
	s := newTestServer(&fakeDetector{elements: []detect.RawElement{
		{BBox: [4]float64{0.1, 0.1, 0.2, 0.2}, Confidence: 0.9},
		{BBox: [4]float64{0.5, 0.5, 0.2, 0.2}, Confidence: 0.9},
	}}, inj)

	resp := observeState(t, s)

	res, err := s.handleAct(context.Background(), callRequest(map[string]interface{}{
		"state_id":      resp.StateID,
		"element_id":    float64(0),
		"action":        "drag",
		"to_element_id": float64(1),
	}))
	if err != nil {
		t.Fatalf("handleAct: %v", err)
	}
	if res.IsError {
		t.Fatalf("drag failed: %s", textContent(t, res))
	}
	want := "drag left (200,160)->(600,480)"
	if len(inj.calls) != 1 || inj.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", inj.calls, want)
	}
}

func TestActDragToExplicitPoint(t *testing.T) {
	inj := &fakeInjector{}
	s := newTestServer(&fakeDetector{elements: []detect.RawElement{
		{BBox: [4]float64{0.1, 0.1, 0.2, 0.2}, Confidence: 0.9},
	}}, inj)

	resp := observeState(t, s)

	res, err := s.handleAct(context.Background(), callRequest(map[string]interface{}{
		"state_id":   resp.StateID,
		"element_id": float64(0),
		"action":     "drag",
		"to_x":       float64(50),
		"to_y":       float64(60),
	}))
	if err != nil {
		t.Fatalf("handleAct: %v", err)
	}
	if res.IsError {
		t.Fatalf("drag failed: %s", textContent(t, res))
	}
	want := "drag left (200,160)->(50,60)"
	if len(inj.calls) != 1 || inj.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", inj.calls, want)
	}
}

func TestActMoveHoversWithoutClicking(t *testing.T) {
	inj := &fakeInjector{}
	s := newTestServer(&fakeDetector{elements: []detect.RawElement{
		{BBox: [4]float64{0.1, 0.1, 0.2, 0.2}, Confidence: 0.9},
	}}, inj)

	resp := observeState(t, s)

	res, err := s.handleAct(context.Background(), callRequest(map[string]interface{}{
		"state_id":   resp.StateID,
		"element_id": float64(0),
		"action":     "move",
	}))
	if err != nil {
		t.Fatalf("handleAct: %v", err)
	}
	if res.IsError {
		t.Fatalf("move failed: %s", textContent(t, res))
	}
	want := "move (200,160)"
	if len(inj.calls) != 1 || inj.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", inj.calls, want)
	}
}

func TestActTypeNeedsFocus(t *testing.T) {
	inj := &fakeInjector{}
	s := newTestServer(&fakeDetector{elements: []detect.RawElement{
		{BBox: [4]float64{0.1, 0.1, 0.2, 0.2}, Confidence: 0.9},
	}}, inj)

	resp := observeState(t, s)

	res, err := s.handleAct(context.Background(), callRequest(map[string]interface{}{
		"state_id":    resp.StateID,
		"element_id":  float64(0),
		"action":      "type",
		"text":        "hello",
		"needs_focus": false,
	}))
	if err != nil {
		t.Fatalf("handleAct: %v", err)
	}
	if res.IsError {
		t.Fatalf("type failed: %s", textContent(t, res))
	}
	if len(inj.calls) != 1 || inj.calls[0] != `type "hello"` {
		t.Errorf("needs_focus=false should type without clicking, got %v", inj.calls)
	}
}

func TestPressKey(t *testing.T) {
	inj := &fakeInjector{}
	s := newTestServer(&fakeDetector{}, inj)

	res, err := s.handlePressKey(context.Background(), callRequest(map[string]interface{}{
		"keys": []interface{}{"ctrl", "v"},
	}))
	if err != nil {
		t.Fatalf("handlePressKey: %v", err)
	}
	if res.IsError {
		t.Fatalf("press_key failed: %s", textContent(t, res))
	}
	if len(inj.calls) != 1 || inj.calls[0] != "keytap [ctrl v]" {
		t.Errorf("calls = %v", inj.calls)
	}

	res, err = s.handlePressKey(context.Background(), callRequest(map[string]interface{}{
		"keys": []interface{}{"warp"},
	}))
	if err != nil {
		t.Fatalf("handlePressKey: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error for unknown key")
	}
	if !bytes.Contains([]byte(textContent(t, res)), []byte("InvalidArgument")) {
		t.Errorf("wrong kind: %s", textContent(t, res))
	}
}

func TestScreenshotTool(t *testing.T) {
	s := newTestServer(&fakeDetector{}, &fakeInjector{})

	res, err := s.handleScreenshot(context.Background(), callRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleScreenshot: %v", err)
	}
	if res.IsError {
		t.Fatalf("screenshot failed: %s", textContent(t, res))
	}
	ic, ok := res.Content[0].(mcp.ImageContent)
	if !ok {
		t.Fatalf("content is %T, want ImageContent", res.Content[0])
	}
	data, err := base64.StdEncoding.DecodeString(ic.Data)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("not valid PNG: %v", err)
	}
}

func TestObserveDetectorFailure(t *testing.T) {
	s := newTestServer(&fakeDetector{err: fmt.Errorf("model timed out")}, &fakeInjector{})

	res, err := s.handleObserve(context.Background(), callRequest(map[string]interface{}{
		"include_image": false,
	}))
	if err != nil {
		t.Fatalf("handleObserve: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}
	if !bytes.Contains([]byte(textContent(t, res)), []byte("InvalidDetectionOutput")) {
		t.Errorf("wrong kind: %s", textContent(t, res))
	}
}
