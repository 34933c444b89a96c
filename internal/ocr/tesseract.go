package ocr

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/image-label-mcp/internal/label"
)

// minReadHeight is the crop height below which a region is upscaled before OCR.
const minReadHeight = 48

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this text in the source image.
	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the results of text extraction.
type OCRResult struct {
	// FullText is all recognized text as a single string with original spacing/newlines.
	FullText string `json:"full_text"`

	// Regions contains individual words with their bounding boxes and confidence scores.
	// May be empty if bounding box extraction fails (text will still be in FullText).
	Regions []TextRegion `json:"regions"`
}

// ExtractTextFromRegion reads the text inside one rectangle of a buffer.
//
// The rectangle is clipped to the buffer. Small crops are upscaled before
// recognition and page segmentation is set to a single line, which suits
// labels drawn by a TextCompositor. Word bounds in the result are in buffer
// coordinates.
//
// Parameters:
//   - buf: The source image.
//   - r: The region to read; (Min inclusive, Max exclusive).
//   - language: Tesseract language code (e.g., "eng").
func ExtractTextFromRegion(buf *label.ImageBuffer, r image.Rectangle, language string) (*OCRResult, error) {
	clipped := r.Intersect(buf.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("region %v outside %dx%d image", r, buf.Width, buf.Height)
	}
	r = clipped

	var crop image.Image = imaging.Crop(buf, r)
	scale := 1
	if r.Dy() < minReadHeight {
		scale = (minReadHeight + r.Dy() - 1) / r.Dy()
		crop = imaging.Resize(crop, r.Dx()*scale, r.Dy()*scale, imaging.Lanczos)
	}

	var png bytes.Buffer
	if err := imaging.Encode(&png, crop, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(png.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return run(client, language, scale, r.Min)
}

// run performs recognition on a prepared client. Word boxes are divided by
// scale and shifted by offset to map them back to source coordinates.
func run(client *gosseract.Client, language string, scale int, offset image.Point) (*OCRResult, error) {
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{
			FullText: text,
			Regions:  []TextRegion{},
		}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X/scale + offset.X,
				Y1: box.Box.Min.Y/scale + offset.Y,
				X2: (box.Box.Max.X+scale-1)/scale + offset.X,
				Y2: (box.Box.Max.Y+scale-1)/scale + offset.Y,
			},
		})
	}

	return &OCRResult{
		FullText: text,
		Regions:  regions,
	}, nil
}

// ReadBack is the outcome of reading a label back from an image.
type ReadBack struct {
	OCRResult

	// Expected is the text the label was drawn with.
	Expected string `json:"expected"`

	// Match reports whether the recognized text equals Expected, ignoring
	// case and whitespace runs.
	Match bool `json:"match"`
}

// ReadLabel reads the text in r and compares it with the expected label text.
func ReadLabel(buf *label.ImageBuffer, r image.Rectangle, expected, language string) (*ReadBack, error) {
	result, err := ExtractTextFromRegion(buf, r, language)
	if err != nil {
		return nil, err
	}
	return &ReadBack{
		OCRResult: *result,
		Expected:  expected,
		Match:     normalize(result.FullText) == normalize(expected),
	}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
