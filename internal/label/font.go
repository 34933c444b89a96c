package label

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// fontDPI makes one point equal one pixel, so Size is a pixel size.
const fontDPI = 72

// FontHandle is a font face at a fixed size.
//
// A handle is immutable after construction. It is owned by whoever created
// it; Close releases the face.
type FontHandle struct {
	face font.Face
	size float64
	name string
}

// TextMetrics describes the label block for one string.
type TextMetrics struct {
	// Width is the block width in pixels.
	Width int `json:"width"`

	// Height is the glyph area height: from the block top to the lowest inked row.
	Height int `json:"height"`

	// Padding is the extra space below the glyphs, floor(0.1*Height).
	Padding int `json:"padding"`

	// Ascent is the baseline offset from the block top.
	Ascent int `json:"ascent"`
}

// BlockHeight returns Height+Padding.
func (m TextMetrics) BlockHeight() int {
	return m.Height + m.Padding
}

// NewFontHandle wraps an existing face. size is informational for faces that
// were not built by this package.
func NewFontHandle(face font.Face, size float64, name string) *FontHandle {
	return &FontHandle{face: face, size: size, name: name}
}

// ParseFont builds a handle from raw TrueType/OpenType data.
//
// Parameters:
//   - data: font file contents. Collections (.ttc/.otc) are supported.
//   - index: face index inside a collection; 0 for single-font files.
//   - size: font size in pixels.
//   - name: display name stored on the handle.
func ParseFont(data []byte, index int, size float64, name string) (*FontHandle, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size: %v", size)
	}

	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	if index < 0 || index >= coll.NumFonts() {
		return nil, fmt.Errorf("font index %d out of range (collection has %d fonts)", index, coll.NumFonts())
	}
	f, err := coll.Font(index)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %d: %w", index, err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	return &FontHandle{face: face, size: size, name: name}, nil
}

// OpenFontFile reads a font file and builds a handle from it.
func OpenFontFile(path string, index int, size float64) (*FontHandle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	return ParseFont(data, index, size, path)
}

// Face returns the underlying font face.
func (h *FontHandle) Face() font.Face {
	return h.face
}

// Size returns the font size in pixels.
func (h *FontHandle) Size() float64 {
	return h.size
}

// Name returns the display name given at construction.
func (h *FontHandle) Name() string {
	return h.name
}

// Close releases the face.
func (h *FontHandle) Close() error {
	return h.face.Close()
}

// Measure returns the block metrics for text.
//
// Width is the larger of the advance and the inked extent, so trailing
// overhang is not cut off. Height runs from the ascent line to the lowest
// inked row, and never ends above the baseline. Empty text has zero width and
// the height of one line.
func (h *FontHandle) Measure(text string) TextMetrics {
	m := h.face.Metrics()
	ascent := m.Ascent.Ceil()

	if text == "" {
		height := ascent + m.Descent.Ceil()
		return TextMetrics{Height: height, Padding: baselinePadding(height), Ascent: ascent}
	}

	bounds, advance := font.BoundString(h.face, text)

	width := advance.Ceil()
	if inked := bounds.Max.X.Ceil(); inked > width {
		width = inked
	}

	below := bounds.Max.Y.Ceil()
	if below < 0 {
		below = 0
	}
	height := ascent + below

	return TextMetrics{
		Width:   width,
		Height:  height,
		Padding: baselinePadding(height),
		Ascent:  ascent,
	}
}

// baselinePadding returns floor(0.1*height).
func baselinePadding(height int) int {
	return int(math.Floor(0.1 * float64(height)))
}
