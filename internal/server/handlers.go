package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/image-label-mcp/internal/fontcat"
	"github.com/ironsheep/image-label-mcp/internal/imaging"
	"github.com/ironsheep/image-label-mcp/internal/label"
	"github.com/ironsheep/image-label-mcp/internal/ocr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_put_text", "font_list").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
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

	s.logger.Debug("tool call", "tool", params.Name)
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Labels
	case "image_put_text":
		return s.handleImagePutText(ctx, args)
	case "image_contrast_color":
		return s.handleImageContrastColor(args)
	case "image_read_label":
		return s.handleImageReadLabel(args)

	// Inspection
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_grid_overlay":
		return s.handleImageGridOverlay(ctx, args)

	// Fonts
	case "font_list":
		return s.handleFontList()
	case "font_resolve":
		return s.handleFontResolve(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Missing arguments decode as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`

	// Reload drops the cached copy, and any labels drawn into it, first.
	Reload bool `json:"reload"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Label Handlers ===

type imagePutTextArgs struct {
	Path          string  `json:"path"`
	Text          string  `json:"text"`
	X             int     `json:"x"`
	Y             int     `json:"y"`
	Mode          string  `json:"mode"`
	Background    string  `json:"background"`
	Color         string  `json:"color"`
	Font          string  `json:"font"`
	Size          float64 `json:"size"`
	OnOutOfBounds string  `json:"on_out_of_bounds"`
	OutputPath    string  `json:"output_path"`
	Preview       bool    `json:"preview"`
	Verify        bool    `json:"verify"`
}

// PutTextResult describes one composited label.
type PutTextResult struct {
	// OutputPath is the file written, empty when the result was only cached.
	OutputPath string `json:"output_path,omitempty"`

	// Drawn reports whether any pixel was written.
	Drawn bool `json:"drawn"`

	Placement label.Placement `json:"placement"`
	Font      string          `json:"font"`
	Size      float64         `json:"size"`
	Mode      string          `json:"mode"`

	Background    string  `json:"background"`
	TextColor     string  `json:"text_color"`
	ContrastRatio float64 `json:"contrast_ratio"`

	Preview  *imaging.CropResult `json:"preview,omitempty"`
	ReadBack *ocr.ReadBack       `json:"read_back,omitempty"`
}

// handleImagePutText draws a label on a copy of the cached image. The copy
// replaces the cache entry for output_path, or for path when no output is
// given, so successive calls accumulate labels.
func (s *Server) handleImagePutText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imagePutTextArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	mode, err := s.anchorMode(a.Mode)
	if err != nil {
		return nil, err
	}
	policy, err := s.boundsPolicy(a.OnOutOfBounds)
	if err != nil {
		return nil, err
	}
	bg, err := s.background(a.Background)
	if err != nil {
		return nil, err
	}
	var fg *label.Color
	if a.Color != "" {
		c, err := label.ParseColor(a.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid color: %w", err)
		}
		fg = &c
	}
	key := s.fontKey(a.Font, a.Size, policy)

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	img := src.Clone()

	var p label.Placement
	err = s.withCompositor(ctx, key, func(c *label.TextCompositor) error {
		var err error
		p, err = c.PutPlaced(img, a.Text, image.Pt(a.X, a.Y), bg, fg, mode)
		return err
	})
	if err != nil {
		return nil, err
	}

	textColor := label.ContrastColor(bg)
	if fg != nil {
		textColor = *fg
	}
	result := &PutTextResult{
		Drawn:         !p.Empty(),
		Placement:     p,
		Font:          key.font,
		Size:          key.size,
		Mode:          mode.String(),
		Background:    bg.Hex(),
		TextColor:     textColor.Hex(),
		ContrastRatio: label.ContrastRatio(bg, textColor),
	}

	target := a.Path
	if a.OutputPath != "" {
		if err := imaging.Save(img, a.OutputPath); err != nil {
			return nil, err
		}
		target = a.OutputPath
		result.OutputPath = a.OutputPath
	}
	s.cache.Store(target, img)

	if a.Preview {
		if result.Preview, err = imaging.Preview(img, p, 1.0); err != nil {
			return nil, err
		}
	}
	if a.Verify && result.Drawn {
		if result.ReadBack, err = ocr.ReadLabel(img, p.Visible, a.Text, s.cfg.OCR.Language); err != nil {
			return nil, err
		}
	}

	return result, nil
}

type imageContrastColorArgs struct {
	Background string `json:"background"`
}

func (s *Server) handleImageContrastColor(args json.RawMessage) (interface{}, error) {
	var a imageContrastColorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	bg, err := label.ParseColor(a.Background)
	if err != nil {
		return nil, fmt.Errorf("invalid background: %w", err)
	}
	return imaging.Describe(bg), nil
}

type imageReadLabelArgs struct {
	Path     string `json:"path"`
	X1       int    `json:"x1"`
	Y1       int    `json:"y1"`
	X2       int    `json:"x2"`
	Y2       int    `json:"y2"`
	Expected string `json:"expected"`
	Language string `json:"language"`
}

func (s *Server) handleImageReadLabel(args json.RawMessage) (interface{}, error) {
	var a imageReadLabelArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.cfg.OCR.Language
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return ocr.ReadLabel(img, image.Rect(a.X1, a.Y1, a.X2, a.Y2), a.Expected, a.Language)
}

// === Inspection Handlers ===

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}

type imageGridOverlayArgs struct {
	Path            string  `json:"path"`
	GridSpacing     int     `json:"grid_spacing"`
	ShowCoordinates *bool   `json:"show_coordinates"`
	GridColor       string  `json:"grid_color"`
	Font            string  `json:"font"`
	Size            float64 `json:"size"`
}

// gridLabelSize is the default coordinate label size.
const gridLabelSize = 10

func (s *Server) handleImageGridOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageGridOverlayArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.GridSpacing == 0 {
		a.GridSpacing = 50
	}
	if a.GridColor == "" {
		a.GridColor = "#FF0000"
	}
	if a.Size == 0 {
		a.Size = gridLabelSize
	}
	lineColor, err := label.ParseColor(a.GridColor)
	if err != nil {
		return nil, fmt.Errorf("invalid grid_color: %w", err)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	if a.ShowCoordinates != nil && !*a.ShowCoordinates {
		return imaging.GridOverlay(img, a.GridSpacing, lineColor, nil)
	}

	var result *imaging.GridOverlayResult
	err = s.withCompositor(ctx, s.fontKey(a.Font, a.Size, label.Clip), func(c *label.TextCompositor) error {
		var err error
		result, err = imaging.GridOverlay(img, a.GridSpacing, lineColor, c)
		return err
	})
	return result, err
}

// === Font Handlers ===

// FontListResult lists the known font names.
type FontListResult struct {
	Default string   `json:"default"`
	Fonts   []string `json:"fonts"`
	Count   int      `json:"count"`

	// DownloadDir is where fonts fetched by URL are kept, once one has been.
	DownloadDir string `json:"download_dir,omitempty"`
}

func (s *Server) handleFontList() (interface{}, error) {
	names := s.fonts.Names()
	return &FontListResult{
		Default:     s.cfg.Font.Default,
		Fonts:       names,
		Count:       len(names),
		DownloadDir: s.fonts.DownloadDir(),
	}, nil
}

type fontResolveArgs struct {
	Font string  `json:"font"`
	Size float64 `json:"size"`
	Text string  `json:"text"`
}

// FontResolveResult describes a resolved font and, optionally, the label
// block a text would need with it.
type FontResolveResult struct {
	fontcat.Source
	Size    float64            `json:"size"`
	Metrics *label.TextMetrics `json:"metrics,omitempty"`
}

func (s *Server) handleFontResolve(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a fontResolveArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	key := s.fontKey(a.Font, a.Size, label.Clip)

	src, err := s.fonts.Resolve(ctx, key.font)
	if err != nil {
		return nil, err
	}
	result := &FontResolveResult{Source: src, Size: key.size}

	if a.Text != "" {
		err := s.withCompositor(ctx, key, func(c *label.TextCompositor) error {
			m := c.Font().Measure(a.Text)
			result.Metrics = &m
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// === Defaults ===

func (s *Server) fontKey(font string, size float64, policy label.BoundsPolicy) compositorKey {
	if font == "" {
		font = s.cfg.Font.Default
	}
	if size <= 0 {
		size = s.cfg.Font.Size
	}
	return compositorKey{font: font, size: size, policy: policy}
}

func (s *Server) anchorMode(v string) (label.AnchorMode, error) {
	if v == "" {
		return s.cfg.AnchorMode()
	}
	return label.ParseAnchorMode(v)
}

func (s *Server) boundsPolicy(v string) (label.BoundsPolicy, error) {
	if v == "" {
		return s.cfg.BoundsPolicy()
	}
	return label.ParseBoundsPolicy(v)
}

func (s *Server) background(v string) (label.Color, error) {
	if v == "" {
		return s.cfg.Background()
	}
	c, err := label.ParseColor(v)
	if err != nil {
		return label.Color{}, fmt.Errorf("invalid background: %w", err)
	}
	return c, nil
}
