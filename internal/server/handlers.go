package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"image/png"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/screenlens/screenlens/internal/capture"
	"github.com/screenlens/screenlens/internal/input"
	"github.com/screenlens/screenlens/internal/model"
	"github.com/screenlens/screenlens/internal/overlay"
	"github.com/screenlens/screenlens/internal/registry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// observeResponse is the text payload of a successful observe call.
type observeResponse struct {
	StateID  string          `json:"state_id"`
	Display  int             `json:"display"`
	Width    int             `json:"w"`
	Height   int             `json:"h"`
	TS       int64           `json:"ts"`
	Elements []model.Element `json:"elements"`
}

// errorResult serializes a structured failure. Unstructured errs are wrapped
// with the fallback kind so the caller always gets a machine-readable kind.
func errorResult(err error, fallback model.ErrorKind) *mcp.CallToolResult {
	payload := struct {
		Success bool         `json:"success"`
		Error   *model.Error `json:"error"`
	}{Success: false, Error: model.AsError(err, fallback)}
	b, merr := json.Marshal(payload)
	if merr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(b))
}

func (s *Server) handleObserve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	includeImage := boolParam(params, "include_image", true)
	display := intParam(params, "display", s.display)
	scale := floatParam(params, "scale", s.scale)

	s.mu.Lock()
	defer s.mu.Unlock()

	shot, err := s.capturer.Capture(capture.Options{Display: display, Scale: scale})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("capture: %v", err)), nil
	}

	raw, err := s.detector.Detect(ctx, shot.Image)
	if err != nil {
		return errorResult(err, model.KindInvalidDetection), nil
	}

	state, err := s.registry.Register(raw, registry.Meta{
		Width:   shot.Width,
		Height:  shot.Height,
		OffsetX: shot.OffsetX,
		OffsetY: shot.OffsetY,
		TakenAt: shot.TakenAt,
	})
	if err != nil {
		return errorResult(err, model.KindInvalidDetection), nil
	}

	resp := observeResponse{
		StateID:  state.ID,
		Display:  display,
		Width:    state.Width,
		Height:   state.Height,
		TS:       state.TakenAt.Unix(),
		Elements: state.Elements,
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal state: %v", err)), nil
	}

	content := []mcp.Content{mcp.TextContent{Type: "text", Text: string(b)}}

	if includeImage {
		annotated := overlay.Annotate(shot.Image, state.Elements, shot.Width, shot.Height, shot.OffsetX, shot.OffsetY)
		data, err := overlay.EncodePNG(annotated)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("annotate: %v", err)), nil
		}
		content = append(content, mcp.ImageContent{
			Type:     "image",
			Data:     base64.StdEncoding.EncodeToString(data),
			MIMEType: "image/png",
		})
	}

	return &mcp.CallToolResult{Content: content}, nil
}

func (s *Server) handleAct(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	stateID := stringParam(params, "state_id", "")
	elementID := intParam(params, "element_id", -1)

	req := input.Request{
		Action:     stringParam(params, "action", ""),
		Button:     stringParam(params, "button", ""),
		Text:       stringParam(params, "text", ""),
		NeedsFocus: boolParam(params, "needs_focus", true),
		DelayMs:    intParam(params, "delay_ms", 0),
		DeltaX:     intParam(params, "delta_x", 0),
		DeltaY:     intParam(params, "delta_y", 0),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Drag target: element centroid from the same state, or an explicit point.
	if req.Action == input.ActionDrag {
		if toID := intParam(params, "to_element_id", -1); toID >= 0 {
			to, err := s.registry.Resolve(stateID, toID)
			if err != nil {
				return errorResult(err, model.KindUnknownElement), nil
			}
			req.To = &to
		} else if _, ok := params["to_x"]; ok {
			req.To = &model.Point{
				X: intParam(params, "to_x", 0),
				Y: intParam(params, "to_y", 0),
			}
		}
	}

	// Validate before resolving so malformed requests fail the same way
	// regardless of state freshness.
	if err := req.Validate(); err != nil {
		return errorResult(err, model.KindInvalidArgument), nil
	}

	at, err := s.registry.Resolve(stateID, elementID)
	if err != nil {
		return errorResult(err, model.KindUnknownElement), nil
	}

	res, err := s.dispatcher.Execute(req, at)
	if err != nil {
		return errorResult(err, model.KindInjectionFailed), nil
	}

	b, merr := json.Marshal(res)
	if merr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", merr)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handlePressKey(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	keys := stringSliceParam(params, "keys")

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.dispatcher.PressKeys(keys)
	if err != nil {
		return errorResult(err, model.KindInjectionFailed), nil
	}

	b, merr := json.Marshal(res)
	if merr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", merr)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleKeys(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(struct {
		Keys []string `json:"keys"`
	}{Keys: input.KeyNames})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal keys: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleScreenshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	display := intParam(params, "display", s.display)
	scale := floatParam(params, "scale", 0.5)
	format := stringParam(params, "format", "png")
	quality := intParam(params, "quality", 80)

	s.mu.Lock()
	defer s.mu.Unlock()

	shot, err := s.capturer.Capture(capture.Options{Display: display, Scale: scale})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("capture: %v", err)), nil
	}

	var buf bytes.Buffer
	mimeType := "image/png"
	switch format {
	case "png":
		err = png.Encode(&buf, shot.Image)
	case "jpg", "jpeg":
		mimeType = "image/jpeg"
		err = jpeg.Encode(&buf, shot.Image, &jpeg.Options{Quality: quality})
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format: %s (use png or jpg)", format)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode: %v", err)), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
				MIMEType: mimeType,
			},
		},
	}, nil
}
