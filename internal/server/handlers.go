package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/ironsheep/image-crop-mcp/internal/editor"
	"github.com/ironsheep/image-crop-mcp/internal/geometry"
	"github.com/ironsheep/image-crop-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_apply").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments jsoniter.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed",
			zap.String("tool", params.Name),
			zap.String("kind", errorKind(err)),
			zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool call", zap.String("tool", params.Name), zap.Duration("elapsed", time.Since(start)))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Decodes and validates its arguments
//  2. Applies configured defaults for optional parameters
//  3. Calls the geometry, imaging or editor function
//  4. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args jsoniter.RawMessage) (interface{}, error) {
	switch name {
	// Geometry
	case "image_load":
		return s.handleImageLoad(args)
	case "image_aspect_ratio":
		return s.handleAspectRatio(args)
	case "image_default_crop":
		return s.handleDefaultCrop(args)
	case "image_reconcile_crop":
		return s.handleReconcileCrop(args)

	// Engines
	case "image_apply":
		return s.handleApply(ctx, args)
	case "image_sharpen":
		return s.handleSharpen(ctx, args)
	case "image_crop_preview":
		return s.handleCropPreview(ctx, args)
	case "image_compare":
		return s.handleCompare(ctx, args)

	// Export records
	case "image_export":
		return s.handleExport(args)
	case "image_import":
		return s.handleImport(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func errorKind(err error) string {
	var ae argsError
	switch {
	case errors.Is(err, imaging.ErrDecode):
		return "decode"
	case errors.Is(err, imaging.ErrContextAcquisition):
		return "context_acquisition"
	case errors.Is(err, imaging.ErrEncode):
		return "encode"
	case errors.As(err, &ae):
		return "invalid_arguments"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}

// === Argument decoding ===

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// argsError reports arguments that failed to decode or validate.
type argsError struct {
	msg string
}

func (e argsError) Error() string { return e.msg }

func decodeArgs(args jsoniter.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = jsoniter.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return argsError{msg: "invalid arguments: " + err.Error()}
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return argsError{msg: "invalid arguments: " + err.Error()}
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("field '%s' %s", fieldPath(fe), validationMessage(fe)))
		}
		return argsError{msg: "invalid arguments: " + strings.Join(msgs, "; ")}
	}
	return nil
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed %q", fe.Tag())
	}
}

type sizeArgs struct {
	Width  int `json:"width" validate:"gt=0"`
	Height int `json:"height" validate:"gt=0"`
}

func (a sizeArgs) Size() geometry.Size {
	return geometry.Size{Width: a.Width, Height: a.Height}
}

type rectArgs struct {
	X      int `json:"x" validate:"gte=0"`
	Y      int `json:"y" validate:"gte=0"`
	Width  int `json:"width" validate:"gt=0"`
	Height int `json:"height" validate:"gt=0"`
}

func (a rectArgs) Rect() geometry.Rect {
	return geometry.Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
}

// resolveTarget picks the output size: an explicit target wins over a
// bucket preset index.
func (s *Server) resolveTarget(target *sizeArgs, bucket *int) (geometry.Size, error) {
	if target != nil {
		return target.Size(), nil
	}
	if bucket != nil {
		b, ok := s.presets.At(*bucket)
		if !ok {
			return geometry.Size{}, argsError{msg: fmt.Sprintf("invalid arguments: bucket %d out of range [0,%d)", *bucket, len(s.presets))}
		}
		return b.Size, nil
	}
	return geometry.Size{}, argsError{msg: "invalid arguments: either 'target' or 'bucket' is required"}
}

func (s *Server) quality(q string) (imaging.Quality, error) {
	return imaging.ParseQuality(q, s.defaults.ResizeQuality)
}

// === Geometry Handlers ===

type imageLoadArgs struct {
	Path  string `json:"path" validate:"required"`
	Title string `json:"title"`
}

type imageLoadResult struct {
	Info    *imaging.ImageInfo `json:"info"`
	Image   *editor.Image      `json:"image"`
	Buckets editor.Presets     `json:"buckets"`
}

func (s *Server) handleImageLoad(args jsoniter.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path, s.defaults.CropRatio)
	if err != nil {
		return nil, err
	}
	title := a.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(a.Path), filepath.Ext(a.Path))
	}
	img, err := editor.NewImage(a.Path, title, geometry.Size{Width: info.Width, Height: info.Height}, s.defaults)
	if err != nil {
		return nil, err
	}
	return &imageLoadResult{Info: info, Image: img, Buckets: s.presets}, nil
}

func (s *Server) handleAspectRatio(args jsoniter.RawMessage) (interface{}, error) {
	var a sizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return geometry.CalculateAspectRatio(a.Width, a.Height), nil
}

type defaultCropArgs struct {
	Width  int     `json:"width" validate:"gt=0"`
	Height int     `json:"height" validate:"gt=0"`
	Ratio  float64 `json:"ratio" validate:"gte=0,lte=1"`
}

func (s *Server) handleDefaultCrop(args jsoniter.RawMessage) (interface{}, error) {
	var a defaultCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	ratio := a.Ratio
	if ratio == 0 {
		ratio = s.defaults.CropRatio
	}
	return geometry.CalculateDefaultCrop(geometry.Size{Width: a.Width, Height: a.Height}, ratio), nil
}

type reconcileCropArgs struct {
	Crop   rectArgs  `json:"crop"`
	Target *sizeArgs `json:"target"`
	Bucket *int      `json:"bucket"`
}

type reconcileCropResult struct {
	Crop   geometry.Rect `json:"crop"`
	Target geometry.Size `json:"target"`
	Ratio  geometry.Size `json:"ratio"`
}

func (s *Server) handleReconcileCrop(args jsoniter.RawMessage) (interface{}, error) {
	var a reconcileCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	target, err := s.resolveTarget(a.Target, a.Bucket)
	if err != nil {
		return nil, err
	}
	crop := geometry.ReconcileCrop(a.Crop.Rect(), target)
	return &reconcileCropResult{
		Crop:   crop,
		Target: target,
		Ratio:  geometry.CalculateAspectRatio(target.Width, target.Height),
	}, nil
}

// === Engine Handlers ===

type applyArgs struct {
	Source          string    `json:"source" validate:"required"`
	Crop            rectArgs  `json:"crop"`
	Target          *sizeArgs `json:"target"`
	Bucket          *int      `json:"bucket"`
	Quality         string    `json:"quality" validate:"omitempty,oneof=low medium high"`
	ResponseType    string    `json:"response_type" validate:"omitempty,oneof=base64 blob"`
	SharpenRadius   float64   `json:"sharpen_radius" validate:"gte=0"`
	SharpenStrength float64   `json:"sharpen_strength" validate:"gte=0"`
}

func (s *Server) handleApply(ctx context.Context, args jsoniter.RawMessage) (interface{}, error) {
	var a applyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	target, err := s.resolveTarget(a.Target, a.Bucket)
	if err != nil {
		return nil, err
	}
	q, err := s.quality(a.Quality)
	if err != nil {
		return nil, err
	}
	rt, err := imaging.ParseResponseType(a.ResponseType)
	if err != nil {
		return nil, err
	}

	src := imaging.SourceFromString(a.Source)
	sharpen := a.SharpenRadius > 0 && a.SharpenStrength != 0
	if !sharpen {
		return s.engine.ApplyImage(ctx, src, a.Crop.Rect(), target, q, rt)
	}
	if rt == imaging.ResponseBlob {
		return nil, argsError{msg: "invalid arguments: sharpened output is only available as base64"}
	}

	return s.engine.ApplySharpenedImage(ctx, src, a.Crop.Rect(), target, q, a.SharpenRadius, a.SharpenStrength)
}

type sharpenArgs struct {
	Source   string   `json:"source" validate:"required"`
	Radius   *float64 `json:"radius" validate:"omitempty,gte=0"`
	Strength *float64 `json:"strength" validate:"omitempty,gte=0"`
}

func (s *Server) handleSharpen(ctx context.Context, args jsoniter.RawMessage) (interface{}, error) {
	var a sharpenArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	radius, strength := s.defaults.Sharpness.Radius, s.defaults.Sharpness.Strength
	if a.Radius != nil {
		radius = *a.Radius
	}
	if a.Strength != nil {
		strength = *a.Strength
	}
	return s.engine.SharpenImage(ctx, imaging.SourceFromString(a.Source), radius, strength)
}

type cropPreviewArgs struct {
	Source string    `json:"source" validate:"required"`
	Crop   rectArgs  `json:"crop"`
	Target *sizeArgs `json:"target"`
	Bucket *int      `json:"bucket"`
	Color  string    `json:"color"`
}

func (s *Server) handleCropPreview(ctx context.Context, args jsoniter.RawMessage) (interface{}, error) {
	var a cropPreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	target, err := s.resolveTarget(a.Target, a.Bucket)
	if err != nil {
		return nil, err
	}
	img, err := s.engine.Decode(ctx, imaging.SourceFromString(a.Source))
	if err != nil {
		return nil, err
	}
	return imaging.PreviewCrop(img, a.Crop.Rect(), target, a.Color)
}

type compareArgs struct {
	SourceA string `json:"source_a" validate:"required"`
	SourceB string `json:"source_b" validate:"required"`
}

func (s *Server) handleCompare(ctx context.Context, args jsoniter.RawMessage) (interface{}, error) {
	var a compareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	imgA, err := s.engine.Decode(ctx, imaging.SourceFromString(a.SourceA))
	if err != nil {
		return nil, err
	}
	imgB, err := s.engine.Decode(ctx, imaging.SourceFromString(a.SourceB))
	if err != nil {
		return nil, err
	}
	return imaging.Compare(imgA, imgB)
}

// === Export Record Handlers ===

type exportArgs struct {
	Image   editor.Image `json:"image"`
	Version int          `json:"version" validate:"omitempty,oneof=1 2"`
}

type exportResult struct {
	Version int                 `json:"version"`
	Data    jsoniter.RawMessage `json:"data"`
}

func (s *Server) handleExport(args jsoniter.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Version == 0 {
		a.Version = 2
	}

	var record interface{ Validate() error }
	if a.Version == 1 {
		record = editor.ExportV1(&a.Image, s.presets)
	} else {
		record = editor.ExportV2(&a.Image, s.presets)
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	data, err := editor.Marshal(record)
	if err != nil {
		return nil, err
	}
	return &exportResult{Version: a.Version, Data: data}, nil
}

type importArgs struct {
	Data  jsoniter.RawMessage `json:"data" validate:"required"`
	Src   string              `json:"src"`
	Title string              `json:"title"`
}

type importResult struct {
	Version int           `json:"version"`
	Image   *editor.Image `json:"image"`
}

func (s *Server) handleImport(args jsoniter.RawMessage) (interface{}, error) {
	var a importArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	// Accept the record either inline or as a JSON string.
	data := []byte(a.Data)
	var quoted string
	if err := json.Unmarshal(data, &quoted); err == nil {
		data = []byte(quoted)
	}

	record, err := editor.UnmarshalV2(data)
	if err != nil {
		return nil, err
	}
	return &importResult{
		Version: editor.Version(data),
		Image:   record.Image(a.Src, a.Title, s.presets),
	}, nil
}
