// Package server implements the MCP (Model Context Protocol) server for image labelling tools.
//
// This package provides a JSON-RPC 2.0 server that lets MCP clients draw text
// labels onto images, choose legible label colours and check the result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: stderr, through the hclog logger given to New
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Labels:
//   - image_put_text: Draw a text label with a background patch
//   - image_contrast_color: Black or white text for a background
//   - image_read_label: OCR a label area and compare with the expected text
//
// Inspection:
//   - image_sample_color: Get color at pixel
//   - image_crop: Extract rectangular region
//   - image_grid_overlay: Add labelled coordinate grid
//
// Fonts:
//   - font_list: Known font names
//   - font_resolve: Resolve a font descriptor, optionally measuring text
//
// # Image Caching
//
// Images are cached by path and reused across tool calls. image_put_text never
// draws on a cached buffer: it draws on a copy and stores the copy under the
// output path (or the input path), so labels accumulate across calls.
//
// # Fonts
//
// Fonts are resolved through a fontcat.Catalog. One TextCompositor is kept per
// (font, size, bounds policy); compositors are not safe for concurrent use, so
// all drawing is serialised.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.WithConfig(cfg), server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Error("server stopped", "error", err)
//	}
package server
