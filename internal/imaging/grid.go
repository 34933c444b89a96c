package imaging

import (
	"fmt"
	"image"

	"github.com/ironsheep/image-label-mcp/internal/label"
)

// GridOverlayResult contains the image with grid overlay
type GridOverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	GridSpacing int    `json:"grid_spacing"`
	Labels      int    `json:"labels"`
}

// gridLabelOffset is the gap between an intersection and its coordinate label.
const gridLabelOffset = 2

// DrawGrid returns a copy of buf with grid lines every spacing pixels.
//
// When labels is non-nil every intersection gets an "x,y" label drawn with it
// on a black patch, top-left anchored just below and right of the crossing.
// The second result is the number of labels that drew at least one pixel.
func DrawGrid(buf *label.ImageBuffer, spacing int, lineColor label.Color, labels *label.TextCompositor) (*label.ImageBuffer, int, error) {
	if spacing <= 0 {
		return nil, 0, fmt.Errorf("grid spacing must be > 0, got %d", spacing)
	}

	out := buf.Clone()

	for x := spacing; x < out.Width; x += spacing {
		out.FillRect(image.Rect(x, 0, x+1, out.Height), lineColor)
	}
	for y := spacing; y < out.Height; y += spacing {
		out.FillRect(image.Rect(0, y, out.Width, y+1), lineColor)
	}

	if labels == nil {
		return out, 0, nil
	}

	drawn := 0
	for y := spacing; y < out.Height; y += spacing {
		for x := spacing; x < out.Width; x += spacing {
			text := fmt.Sprintf("%d,%d", x, y)
			anchor := image.Pt(x+gridLabelOffset, y+gridLabelOffset)
			p, err := labels.PutPlaced(out, text, anchor, label.Black, nil, label.TopLeft)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to label grid point (%d,%d): %w", x, y, err)
			}
			if !p.Empty() {
				drawn++
			}
		}
	}

	return out, drawn, nil
}

// GridOverlay draws a coordinate grid and encodes the result as a base64 PNG.
func GridOverlay(buf *label.ImageBuffer, spacing int, lineColor label.Color, labels *label.TextCompositor) (*GridOverlayResult, error) {
	out, drawn, err := DrawGrid(buf, spacing, lineColor, labels)
	if err != nil {
		return nil, err
	}

	data, err := EncodePNG(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &GridOverlayResult{
		Width:       out.Width,
		Height:      out.Height,
		ImageBase64: data,
		MimeType:    "image/png",
		GridSpacing: spacing,
		Labels:      drawn,
	}, nil
}
