package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/image-label-mcp/internal/config"
	"github.com/ironsheep/image-label-mcp/internal/imaging"
	"github.com/ironsheep/image-label-mcp/internal/label"
)

// createTestImageFile writes a solid-color PNG and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and decodes the text content into out.
// It returns the JSON-RPC error, if any.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPError {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return resp.Error
	}

	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %+v", content)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
			t.Fatalf("failed to decode tool result: %v", err)
		}
	}
	return nil
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info imaging.ImageInfo
	if rpcErr := callTool(t, s, "image_load", map[string]interface{}{"path": path}, &info); rpcErr != nil {
		t.Fatalf("image_load failed: %+v", rpcErr)
	}
	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("info: got %+v", info)
	}

	var dims imaging.DimensionsResult
	if rpcErr := callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}, &dims); rpcErr != nil {
		t.Fatalf("image_dimensions failed: %+v", rpcErr)
	}
	if dims.Width != 100 || dims.Height != 80 {
		t.Errorf("dims: got %+v", dims)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	rpcErr := callTool(t, s, "image_detect_circles", map[string]interface{}{}, nil)
	if rpcErr == nil || rpcErr.Code != -32000 {
		t.Fatalf("expected tool failure, got %+v", rpcErr)
	}
	if !strings.Contains(rpcErr.Data.(string), "unknown tool") {
		t.Errorf("error data: got %v", rpcErr.Data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_PutText(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 200, 60, color.RGBA{0, 0, 255, 255})
	out := filepath.Join(t.TempDir(), "labelled.png")

	var result PutTextResult
	rpcErr := callTool(t, s, "image_put_text", map[string]interface{}{
		"path":        path,
		"text":        "Label",
		"x":           10,
		"y":           40,
		"background":  "#FFFF00",
		"output_path": out,
		"preview":     true,
	}, &result)
	if rpcErr != nil {
		t.Fatalf("image_put_text failed: %+v", rpcErr)
	}

	if !result.Drawn {
		t.Error("label should be drawn")
	}
	if result.Font != "goregular" || result.Size != 16 || result.Mode != "bottom-left" {
		t.Errorf("defaults: got font=%s size=%v mode=%s", result.Font, result.Size, result.Mode)
	}
	if result.TextColor != "#000000" {
		t.Errorf("text on yellow: got %s, want #000000", result.TextColor)
	}
	if result.OutputPath != out {
		t.Errorf("OutputPath: got %s, want %s", result.OutputPath, out)
	}
	if result.Preview == nil || result.Preview.Width != result.Placement.Visible.Dx() {
		t.Errorf("preview: got %+v for visible %v", result.Preview, result.Placement.Visible)
	}

	// The file on disk has a yellow patch at the block origin and blue elsewhere.
	saved, err := imaging.NewImageCache().Load(out)
	if err != nil {
		t.Fatalf("failed to load output: %v", err)
	}
	block := result.Placement.Block
	if got := saved.Pixel(block.Min.X, block.Max.Y-1); got != label.BGR(0, 255, 255) {
		t.Errorf("patch padding pixel: got %v, want yellow", got)
	}
	if got := saved.Pixel(190, 5); got != label.BGR(255, 0, 0) {
		t.Errorf("pixel outside label: got %v, want blue", got)
	}

	// The source image is untouched in the cache.
	src, _ := s.cache.Load(path)
	if got := src.Pixel(block.Min.X, block.Max.Y-1); got != label.BGR(255, 0, 0) {
		t.Errorf("source image was modified: %v", got)
	}
}

func TestHandleToolsCall_PutTextAccumulates(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 200, 100, color.White)

	var first, second PutTextResult
	if rpcErr := callTool(t, s, "image_put_text", map[string]interface{}{
		"path": path, "text": "one", "x": 0, "y": 0, "mode": "top-left", "background": "#000000",
	}, &first); rpcErr != nil {
		t.Fatalf("first put failed: %+v", rpcErr)
	}
	if rpcErr := callTool(t, s, "image_put_text", map[string]interface{}{
		"path": path, "text": "two", "x": 100, "y": 50, "mode": "center", "background": "#000000",
	}, &second); rpcErr != nil {
		t.Fatalf("second put failed: %+v", rpcErr)
	}

	img, _ := s.cache.Load(path)
	for _, p := range []label.Placement{first.Placement, second.Placement} {
		pt := image.Pt(p.Block.Min.X, p.Block.Max.Y-1)
		if got := img.Pixel(pt.X, pt.Y); got != label.Black {
			t.Errorf("label padding at %v: got %v, want black", pt, got)
		}
	}
}

func TestHandleToolsCall_ImageLoadReload(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 100, 40, color.White)

	var put PutTextResult
	if rpcErr := callTool(t, s, "image_put_text", map[string]interface{}{
		"path": path, "text": "x", "x": 0, "y": 0, "mode": "top-left", "background": "#000000",
	}, &put); rpcErr != nil {
		t.Fatalf("image_put_text failed: %+v", rpcErr)
	}
	corner := image.Pt(put.Placement.Block.Min.X, put.Placement.Block.Max.Y-1)

	if rpcErr := callTool(t, s, "image_load", map[string]interface{}{"path": path}, nil); rpcErr != nil {
		t.Fatalf("image_load failed: %+v", rpcErr)
	}
	if img, _ := s.cache.Load(path); img.Pixel(corner.X, corner.Y) != label.Black {
		t.Error("plain image_load should keep the labelled copy")
	}

	if rpcErr := callTool(t, s, "image_load", map[string]interface{}{"path": path, "reload": true}, nil); rpcErr != nil {
		t.Fatalf("image_load reload failed: %+v", rpcErr)
	}
	if img, _ := s.cache.Load(path); img.Pixel(corner.X, corner.Y) != label.White {
		t.Error("reload should discard drawn labels")
	}
}

func TestHandleToolsCall_PutTextOutOfBounds(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 50, 50, color.White)

	var result PutTextResult
	if rpcErr := callTool(t, s, "image_put_text", map[string]interface{}{
		"path": path, "text": "far", "x": 500, "y": 500,
	}, &result); rpcErr != nil {
		t.Fatalf("clip policy should not fail: %+v", rpcErr)
	}
	if result.Drawn {
		t.Error("label outside the image should not be drawn")
	}

	rpcErr := callTool(t, s, "image_put_text", map[string]interface{}{
		"path": path, "text": "far", "x": 500, "y": 500, "on_out_of_bounds": "reject",
	}, nil)
	if rpcErr == nil || !strings.Contains(rpcErr.Data.(string), "out of image bounds") {
		t.Errorf("reject policy: got %+v", rpcErr)
	}
}

func TestHandleToolsCall_PutTextConfigDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Mode = "top-left"
	cfg.Render.Background = "#000000"
	cfg.Font.Default = "gomono"
	cfg.Font.Size = 12

	s := newTestServer(t, WithConfig(cfg))
	path := createTestImageFile(t, 100, 40, color.White)

	var result PutTextResult
	if rpcErr := callTool(t, s, "image_put_text", map[string]interface{}{
		"path": path, "text": "x", "x": 0, "y": 0,
	}, &result); rpcErr != nil {
		t.Fatalf("image_put_text failed: %+v", rpcErr)
	}
	if result.Font != "gomono" || result.Size != 12 || result.Mode != "top-left" {
		t.Errorf("defaults: got font=%s size=%v mode=%s", result.Font, result.Size, result.Mode)
	}
	if result.Placement.Block.Min != (image.Point{}) {
		t.Errorf("top-left block origin: got %v", result.Placement.Block.Min)
	}
	if result.Background != "#000000" || result.TextColor != "#FFFFFF" {
		t.Errorf("colours: got bg=%s text=%s", result.Background, result.TextColor)
	}
}

func TestHandleToolsCall_PutTextInvalidArgs(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 20, 20, color.White)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"bad mode", map[string]interface{}{"path": path, "text": "a", "mode": "middle"}},
		{"bad background", map[string]interface{}{"path": path, "text": "a", "background": "teal"}},
		{"bad color", map[string]interface{}{"path": path, "text": "a", "color": "#12"}},
		{"bad policy", map[string]interface{}{"path": path, "text": "a", "on_out_of_bounds": "wrap"}},
		{"unknown font", map[string]interface{}{"path": path, "text": "a", "font": "No Such Font"}},
		{"missing image", map[string]interface{}{"path": filepath.Join(t.TempDir(), "none.png"), "text": "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rpcErr := callTool(t, s, "image_put_text", tt.args, nil); rpcErr == nil {
				t.Error("image_put_text should fail")
			}
		})
	}
}

func TestHandleToolsCall_ContrastColor(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		background string
		want       string
	}{
		{"#000000", "#FFFFFF"},
		{"#FFFFFF", "#000000"},
		{"#0000FF", "#FFFFFF"},
		{"0,0,255", "#000000"}, // b,g,r: red
	}

	for _, tt := range tests {
		t.Run(tt.background, func(t *testing.T) {
			var result imaging.ColorResult
			if rpcErr := callTool(t, s, "image_contrast_color", map[string]interface{}{"background": tt.background}, &result); rpcErr != nil {
				t.Fatalf("image_contrast_color failed: %+v", rpcErr)
			}
			if result.TextColor != tt.want {
				t.Errorf("TextColor: got %s, want %s", result.TextColor, tt.want)
			}
		})
	}

	if rpcErr := callTool(t, s, "image_contrast_color", map[string]interface{}{"background": ""}, nil); rpcErr == nil {
		t.Error("empty background should fail")
	}
}

func TestHandleToolsCall_SampleColor(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 10, 10, color.RGBA{0, 255, 0, 255})

	var result imaging.ColorResult
	if rpcErr := callTool(t, s, "image_sample_color", map[string]interface{}{"path": path, "x": 3, "y": 4}, &result); rpcErr != nil {
		t.Fatalf("image_sample_color failed: %+v", rpcErr)
	}
	if result.Hex != "#00FF00" {
		t.Errorf("Hex: got %s, want #00FF00", result.Hex)
	}

	if rpcErr := callTool(t, s, "image_sample_color", map[string]interface{}{"path": path, "x": 30, "y": 4}, nil); rpcErr == nil {
		t.Error("out-of-bounds sample should fail")
	}
}

func TestHandleToolsCall_Crop(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 100, 100, color.White)

	var result imaging.CropResult
	if rpcErr := callTool(t, s, "image_crop", map[string]interface{}{
		"path": path, "x1": 10, "y1": 10, "x2": 30, "y2": 20,
	}, &result); rpcErr != nil {
		t.Fatalf("image_crop failed: %+v", rpcErr)
	}
	if result.Width != 20 || result.Height != 10 {
		t.Errorf("crop: got %dx%d, want 20x10", result.Width, result.Height)
	}
}

func TestHandleToolsCall_GridOverlay(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 120, 120, color.White)

	var labelled imaging.GridOverlayResult
	if rpcErr := callTool(t, s, "image_grid_overlay", map[string]interface{}{"path": path}, &labelled); rpcErr != nil {
		t.Fatalf("image_grid_overlay failed: %+v", rpcErr)
	}
	if labelled.GridSpacing != 50 {
		t.Errorf("GridSpacing: got %d, want 50", labelled.GridSpacing)
	}
	// Intersections at (50,50), (100,50), (50,100), (100,100).
	if labelled.Labels != 4 {
		t.Errorf("Labels: got %d, want 4", labelled.Labels)
	}

	var plain imaging.GridOverlayResult
	if rpcErr := callTool(t, s, "image_grid_overlay", map[string]interface{}{
		"path": path, "show_coordinates": false, "grid_spacing": 30,
	}, &plain); rpcErr != nil {
		t.Fatalf("image_grid_overlay failed: %+v", rpcErr)
	}
	if plain.Labels != 0 || plain.GridSpacing != 30 {
		t.Errorf("plain grid: got %+v", plain)
	}
}

func TestHandleToolsCall_FontList(t *testing.T) {
	s := newTestServer(t)

	var result FontListResult
	if rpcErr := callTool(t, s, "font_list", nil, &result); rpcErr != nil {
		t.Fatalf("font_list failed: %+v", rpcErr)
	}
	if result.Default != "goregular" {
		t.Errorf("Default: got %s", result.Default)
	}
	if result.Count != len(result.Fonts) || result.Count < 4 {
		t.Errorf("fonts: got %v", result.Fonts)
	}
}

func TestHandleToolsCall_FontResolve(t *testing.T) {
	s := newTestServer(t)

	var result FontResolveResult
	if rpcErr := callTool(t, s, "font_resolve", map[string]interface{}{
		"font": "GoBold", "size": 20, "text": "Hello",
	}, &result); rpcErr != nil {
		t.Fatalf("font_resolve failed: %+v", rpcErr)
	}
	if result.Name != "gobold" || !result.Builtin {
		t.Errorf("source: got %+v", result.Source)
	}
	if result.Size != 20 {
		t.Errorf("Size: got %v, want 20", result.Size)
	}
	if result.Metrics == nil || result.Metrics.Width <= 0 {
		t.Errorf("Metrics: got %+v", result.Metrics)
	}

	if rpcErr := callTool(t, s, "font_resolve", map[string]interface{}{"font": "No Such Font"}, nil); rpcErr == nil {
		t.Error("unknown font should fail")
	}
}
