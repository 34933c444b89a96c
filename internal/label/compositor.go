package label

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// ErrOutOfBounds is returned by Put and Layout under the Reject policy when
// the label block lies entirely outside the image.
var ErrOutOfBounds = errors.New("label out of image bounds")

// fillOverscan is how far left of the block origin the background fill starts.
const fillOverscan = 10

// Placement is the geometry of one label on one image.
type Placement struct {
	// Block is the full label block in image coordinates. It may extend past
	// the image edges.
	Block image.Rectangle `json:"block"`

	// Visible is Block clipped to the image. Empty when nothing is drawn.
	Visible image.Rectangle `json:"visible"`

	// Metrics are the measured text metrics.
	Metrics TextMetrics `json:"metrics"`
}

// Empty reports whether the placement draws no pixels.
func (p Placement) Empty() bool {
	return p.Visible.Empty()
}

// Option configures a TextCompositor.
type Option func(*TextCompositor)

// WithBoundsPolicy sets what happens to blocks that miss the image.
// The default is Clip.
func WithBoundsPolicy(p BoundsPolicy) Option {
	return func(c *TextCompositor) {
		c.policy = p
	}
}

// TextCompositor draws text labels with a solid background onto ImageBuffers.
//
// The compositor holds one FontHandle for its lifetime; it does not close it.
type TextCompositor struct {
	font   *FontHandle
	policy BoundsPolicy
}

// New creates a compositor that renders with font.
func New(font *FontHandle, opts ...Option) *TextCompositor {
	c := &TextCompositor{font: font, policy: Clip}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Font returns the compositor's font handle.
func (c *TextCompositor) Font() *FontHandle {
	return c.font
}

// Policy returns the compositor's bounds policy.
func (c *TextCompositor) Policy() BoundsPolicy {
	return c.policy
}

// Layout computes where text would land on an image with the given bounds.
//
// Parameters:
//   - bounds: the target image rectangle; only its size is used, the origin
//     is taken as (0,0).
//   - text: the label text.
//   - anchor: the anchor point in image coordinates.
//   - mode: which point of the block the anchor refers to.
//
// Returns the placement, or ErrOutOfBounds when the policy is Reject and the
// block misses the image. Empty text has a zero-width block: it is never
// rejected, whatever the anchor, and its placement is Empty.
func (c *TextCompositor) Layout(bounds image.Rectangle, text string, anchor image.Point, mode AnchorMode) (Placement, error) {
	m := c.font.Measure(text)
	return place(bounds.Dx(), bounds.Dy(), m, anchor, mode, c.policy)
}

// place is the pure geometry step of Put.
func place(imgW, imgH int, m TextMetrics, anchor image.Point, mode AnchorMode, policy BoundsPolicy) (Placement, error) {
	w, h := m.Width, m.BlockHeight()

	var origin image.Point
	switch mode {
	case TopLeft:
		origin = anchor
	case Center:
		origin = image.Pt(anchor.X-floorDiv(w, 2), anchor.Y-floorDiv(h, 2))
	default:
		origin = image.Pt(anchor.X, anchor.Y-m.Height)
	}

	block := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}
	p := Placement{Block: block, Metrics: m}

	// Nothing to draw; not an error under either policy.
	if w <= 0 || h <= 0 {
		return p, nil
	}

	if policy == Reject {
		if origin.X <= -w || origin.X >= imgW || origin.Y <= -h || origin.Y >= imgH {
			return p, fmt.Errorf("block %v outside %dx%d image: %w", block, imgW, imgH, ErrOutOfBounds)
		}
	}

	p.Visible = block.Intersect(image.Rect(0, 0, imgW, imgH))
	return p, nil
}

// Put draws text onto img and returns img.
//
// Parameters:
//   - img: the target buffer, mutated in place inside the visible block only.
//   - text: the label text, rendered as a single line.
//   - anchor: the anchor point in image coordinates.
//   - bg: the background colour of the label block.
//   - fg: the glyph colour; nil selects ContrastColor(bg).
//   - mode: which point of the block the anchor refers to.
//
// The block is assembled offscreen: filled with bg, overlaid with the
// overlapping part of img, covered with a bg rectangle and then the glyphs,
// and finally copied back over the overlapping part of img. Pixels of img
// outside the block are never read or written.
//
// Empty text draws nothing and returns no error under either policy.
func (c *TextCompositor) Put(img *ImageBuffer, text string, anchor image.Point, bg Color, fg *Color, mode AnchorMode) (*ImageBuffer, error) {
	_, err := c.PutPlaced(img, text, anchor, bg, fg, mode)
	return img, err
}

// PutPlaced is Put that also returns the placement it used.
func (c *TextCompositor) PutPlaced(img *ImageBuffer, text string, anchor image.Point, bg Color, fg *Color, mode AnchorMode) (Placement, error) {
	textColor := ContrastColor(bg)
	if fg != nil {
		textColor = *fg
	}

	p, err := c.Layout(img.Bounds(), text, anchor, mode)
	if err != nil {
		return p, err
	}
	if p.Empty() {
		return p, nil
	}

	origin := p.Block.Min
	m := p.Metrics

	// Block-local view of the visible rectangle.
	local := p.Visible.Sub(origin)

	block := NewImageBuffer(m.Width, m.BlockHeight())
	block.Fill(bg)
	copyRect(block, local.Min, img, p.Visible)

	// Inclusive corners (-10,-h) and (w, y2-y0).
	block.FillRect(image.Rect(-fillOverscan, -m.Height, m.Width+1, local.Max.Y+1), bg)

	d := &font.Drawer{
		Dst:  block,
		Src:  image.NewUniform(textColor.RGBA()),
		Face: c.font.Face(),
		Dot:  fixed.P(0, m.Ascent),
	}
	d.DrawString(text)

	copyRect(img, p.Visible.Min, block, local)
	return p, nil
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
