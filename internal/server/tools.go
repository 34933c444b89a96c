package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Re-read the file, discarding labels drawn on the cached copy",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Labels
		{
			Name: "image_put_text",
			Description: "Draw a single-line text label with a solid background patch onto an image. " +
				"The text colour is chosen automatically (black or white, whichever contrasts more with the background) unless color is given. " +
				"Labels accumulate in the server's copy of the image; pass output_path to also write a file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Label text (single line)",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Anchor X coordinate (0-based, may be outside the image)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Anchor Y coordinate (0-based, may be outside the image)",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"bottom-left", "top-left", "center"},
						"description": "Which point of the label the anchor refers to. Default from config (bottom-left)",
					},
					"background": map[string]interface{}{
						"type":        "string",
						"description": "Background colour as #RRGGBB or a b,g,r triple. Default from config (#FFFFFF)",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Text colour as #RRGGBB or a b,g,r triple. Default: automatic contrast colour",
					},
					"font": map[string]interface{}{
						"type":        "string",
						"description": "Font family name, font file path, or http(s) URL of a font file. Default from config",
					},
					"size": map[string]interface{}{
						"type":        "number",
						"description": "Font size in pixels. Default from config",
					},
					"on_out_of_bounds": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"clip", "reject"},
						"description": "clip: draw nothing when the label misses the image; reject: fail instead",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to write the labelled image to (format from extension)",
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Return a base64 PNG of the drawn label area",
						"default":     false,
					},
					"verify": map[string]interface{}{
						"type":        "boolean",
						"description": "Read the label back with OCR and report whether it matches",
						"default":     false,
					},
				},
				"required": []string{"path", "text", "x", "y"},
			},
		},
		{
			Name:        "image_contrast_color",
			Description: "Return the text colour (black or white) that contrasts most with a background colour, with luminance and WCAG contrast ratio.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"background": map[string]interface{}{
						"type":        "string",
						"description": "Background colour as #RRGGBB or a b,g,r triple",
					},
				},
				"required": []string{"background"},
			},
		},
		{
			Name:        "image_read_label",
			Description: "Read the text inside a rectangle with OCR and compare it with the expected label text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty,
					"x1":       map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
					"y1":       map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
					"x2":       map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
					"y2":       map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
					"expected": map[string]interface{}{"type": "string", "description": "Text the label should contain"},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Default from config (eng)",
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},

		// Inspection
		{
			Name:        "image_sample_color",
			Description: "Get the exact color at a pixel, with the label text colour that would be chosen on it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x":    map[string]interface{}{"type": "integer", "description": "X coordinate (0-based)"},
					"y":    map[string]interface{}{"type": "integer", "description": "Y coordinate (0-based)"},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded PNG. Use this to inspect a drawn label.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x1":   map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
					"y1":   map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
					"x2":   map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
					"y2":   map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "image_grid_overlay",
			Description: "Overlay a coordinate grid on the image, with x,y labels at each intersection, to help choose label anchors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between grid lines. Default 50",
						"default":     50,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each intersection with its coordinates. Default true",
						"default":     true,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line colour as #RRGGBB. Default #FF0000",
						"default":     "#FF0000",
					},
					"font": map[string]interface{}{
						"type":        "string",
						"description": "Font for coordinate labels. Default from config",
					},
					"size": map[string]interface{}{
						"type":        "number",
						"description": "Coordinate label size in pixels. Default 10",
					},
				},
				"required": []string{"path"},
			},
		},

		// Fonts
		{
			Name:        "font_list",
			Description: "List the font names that can be used for labels, including system fonts and the built-in Go fonts.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "font_resolve",
			Description: "Resolve a font name, path or URL to a font file, and optionally measure the label block a text needs.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"font": map[string]interface{}{
						"type":        "string",
						"description": "Font family name, font file path, or http(s) URL. Default from config",
					},
					"size": map[string]interface{}{
						"type":        "number",
						"description": "Font size in pixels for measurement. Default from config",
					},
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Optional text to measure",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
