package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-label-mcp/internal/label"
)

// CropResult contains the cropped image data
type CropResult struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts a rectangular region from an image as a base64 PNG.
// A scale other than 1 resizes the crop with a Lanczos filter.
func Crop(buf *label.ImageBuffer, x1, y1, x2, y2 int, scale float64) (*CropResult, error) {
	if x1 < 0 || y1 < 0 || x2 > buf.Width || y2 > buf.Height {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			x1, y1, x2, y2, buf.Width, buf.Height)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	cropped := imaging.Crop(buf, image.Rect(x1, y1, x2, y2))

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	data, err := EncodePNG(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		X:           x1,
		Y:           y1,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: data,
		MimeType:    "image/png",
	}, nil
}

// Preview crops the visible part of a placed label. It returns nil and no
// error when the placement drew nothing.
func Preview(buf *label.ImageBuffer, p label.Placement, scale float64) (*CropResult, error) {
	if p.Empty() {
		return nil, nil
	}
	r := p.Visible
	return Crop(buf, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, scale)
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (string, error) {
	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.PNG); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out.Bytes()), nil
}
