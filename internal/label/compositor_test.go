package label

import (
	"errors"
	"image"
	"testing"

	"golang.org/x/image/font/basicfont"
)

// Face7x13: ascent 11, descent 2, advance 7. "Hi" measures 14x13 with 1 row
// of padding, so its block is 14x14.
var (
	imageColor = BGR(50, 100, 150)
	labelBG    = BGR(10, 20, 30)
)

func newTestCompositor(opts ...Option) *TextCompositor {
	return New(NewFontHandle(basicfont.Face7x13, 13, "basic7x13"), opts...)
}

func newFilledBuffer(w, h int, c Color) *ImageBuffer {
	buf := NewImageBuffer(w, h)
	buf.Fill(c)
	return buf
}

// assertUnchangedOutside fails if any pixel outside r differs from want.
func assertUnchangedOutside(t *testing.T, buf *ImageBuffer, r image.Rectangle, want Color) {
	t.Helper()
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			if (image.Point{x, y}).In(r) {
				continue
			}
			if got := buf.Pixel(x, y); got != want {
				t.Fatalf("pixel (%d,%d) outside %v changed: got %v, want %v", x, y, r, got, want)
			}
		}
	}
}

// assertLabelPixels fails unless every pixel in r is bg or fg and at least one is fg.
func assertLabelPixels(t *testing.T, buf *ImageBuffer, r image.Rectangle, bg, fg Color) {
	t.Helper()
	inked := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			switch buf.Pixel(x, y) {
			case bg:
			case fg:
				inked++
			default:
				t.Fatalf("pixel (%d,%d) in label: got %v, want %v or %v", x, y, buf.Pixel(x, y), bg, fg)
			}
		}
	}
	if inked == 0 {
		t.Errorf("no glyph pixels found in %v", r)
	}
}

func TestMeasure_BasicFont(t *testing.T) {
	h := NewFontHandle(basicfont.Face7x13, 13, "basic7x13")

	m := h.Measure("Hi")
	want := TextMetrics{Width: 14, Height: 13, Padding: 1, Ascent: 11}
	if m != want {
		t.Errorf("Measure(Hi): got %+v, want %+v", m, want)
	}
	if m.BlockHeight() != 14 {
		t.Errorf("BlockHeight: got %d, want 14", m.BlockHeight())
	}

	empty := h.Measure("")
	if empty.Width != 0 {
		t.Errorf("Measure(\"\").Width: got %d, want 0", empty.Width)
	}
}

func TestPut_TopLeftAtOrigin(t *testing.T) {
	c := newTestCompositor()
	img := newFilledBuffer(100, 50, imageColor)

	out, err := c.Put(img, "Hi", image.Pt(0, 0), labelBG, nil, TopLeft)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if out != img {
		t.Error("Put should return the buffer it was given")
	}

	block := image.Rect(0, 0, 14, 14)
	assertUnchangedOutside(t, img, block, imageColor)
	assertLabelPixels(t, img, block, labelBG, ContrastColor(labelBG))

	// Row 13 is the padding row.
	if got := img.Pixel(0, 13); got != labelBG {
		t.Errorf("padding pixel (0,13): got %v, want background %v", got, labelBG)
	}
}

func TestPut_DefaultForegroundIsContrastColor(t *testing.T) {
	tests := []struct {
		name string
		bg   Color
	}{
		{"dark background", BGR(10, 10, 10)},
		{"light background", BGR(240, 240, 240)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompositor()
			img := newFilledBuffer(60, 30, imageColor)

			if _, err := c.Put(img, "Hi", image.Pt(5, 5), tt.bg, nil, TopLeft); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			assertLabelPixels(t, img, image.Rect(5, 5, 19, 19), tt.bg, ContrastColor(tt.bg))
		})
	}
}

func TestPut_ExplicitForeground(t *testing.T) {
	c := newTestCompositor()
	img := newFilledBuffer(60, 30, imageColor)
	fg := BGR(0, 0, 255)

	if _, err := c.Put(img, "Hi", image.Pt(5, 5), labelBG, &fg, TopLeft); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	assertLabelPixels(t, img, image.Rect(5, 5, 19, 19), labelBG, fg)
}

func TestPut_BottomLeft(t *testing.T) {
	c := newTestCompositor()
	img := newFilledBuffer(100, 50, imageColor)

	p, err := c.PutPlaced(img, "Hi", image.Pt(20, 40), labelBG, nil, BottomLeft)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	want := image.Rect(20, 27, 34, 41)
	if p.Block != want {
		t.Errorf("Block: got %v, want %v", p.Block, want)
	}
	if bottom := p.Block.Min.Y + p.Metrics.Height; bottom != 40 {
		t.Errorf("glyph area bottom: got row %d, want 40", bottom)
	}
	assertUnchangedOutside(t, img, want, imageColor)

	// The padding row below the glyph area is solid background.
	for x := want.Min.X; x < want.Max.X; x++ {
		if got := img.Pixel(x, 40); got != labelBG {
			t.Fatalf("padding pixel (%d,40): got %v, want %v", x, got, labelBG)
		}
	}
}

func TestPut_Center(t *testing.T) {
	tests := []struct {
		name string
		text string
		want image.Rectangle
	}{
		// w=14, h+b=14: origin (50-7, 25-7)
		{"even width", "Hi", image.Rect(43, 18, 57, 32)},
		// w=7: 7/2 floors to 3
		{"odd width", "H", image.Rect(47, 18, 54, 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompositor()
			img := newFilledBuffer(100, 50, imageColor)

			p, err := c.PutPlaced(img, tt.text, image.Pt(50, 25), labelBG, nil, Center)
			if err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			if p.Block != tt.want {
				t.Errorf("Block: got %v, want %v", p.Block, tt.want)
			}
			assertUnchangedOutside(t, img, tt.want, imageColor)
		})
	}
}

func TestPut_FullyOutside_Clip(t *testing.T) {
	anchors := []image.Point{
		{200, 10},
		{10, 200},
		{-14, 10}, // block ends exactly at x=0
		{10, -14}, // block ends exactly at y=0
		{-500, -500},
	}

	for _, a := range anchors {
		c := newTestCompositor()
		img := newFilledBuffer(50, 30, imageColor)

		p, err := c.PutPlaced(img, "Hi", a, labelBG, nil, TopLeft)
		if err != nil {
			t.Fatalf("anchor %v: Put failed: %v", a, err)
		}
		if !p.Empty() {
			t.Errorf("anchor %v: Visible should be empty, got %v", a, p.Visible)
		}
		assertUnchangedOutside(t, img, image.Rectangle{}, imageColor)
	}
}

func TestPut_FullyOutside_Reject(t *testing.T) {
	anchors := []image.Point{
		{50, 10},
		{10, 30},
		{-14, 10},
		{10, -14},
	}

	for _, a := range anchors {
		c := newTestCompositor(WithBoundsPolicy(Reject))
		img := newFilledBuffer(50, 30, imageColor)

		_, err := c.Put(img, "Hi", a, labelBG, nil, TopLeft)
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("anchor %v: got error %v, want ErrOutOfBounds", a, err)
		}
		assertUnchangedOutside(t, img, image.Rectangle{}, imageColor)
	}
}

func TestPut_PartialOverlap(t *testing.T) {
	tests := []struct {
		name    string
		anchor  image.Point
		visible image.Rectangle
	}{
		{"top-left corner", image.Pt(-5, -3), image.Rect(0, 0, 9, 11)},
		{"bottom-right corner", image.Pt(45, 25), image.Rect(45, 25, 50, 30)},
		{"last column only", image.Pt(49, 5), image.Rect(49, 5, 50, 19)},
		{"first row only", image.Pt(10, -13), image.Rect(10, 0, 24, 1)},
	}

	for _, policy := range []BoundsPolicy{Clip, Reject} {
		for _, tt := range tests {
			t.Run(policy.String()+"/"+tt.name, func(t *testing.T) {
				c := newTestCompositor(WithBoundsPolicy(policy))
				img := newFilledBuffer(50, 30, imageColor)

				p, err := c.PutPlaced(img, "Hi", tt.anchor, labelBG, nil, TopLeft)
				if err != nil {
					t.Fatalf("Put failed: %v", err)
				}
				if p.Visible != tt.visible {
					t.Errorf("Visible: got %v, want %v", p.Visible, tt.visible)
				}
				assertUnchangedOutside(t, img, tt.visible, imageColor)

				// Every visible pixel now belongs to the label.
				fg := ContrastColor(labelBG)
				for y := tt.visible.Min.Y; y < tt.visible.Max.Y; y++ {
					for x := tt.visible.Min.X; x < tt.visible.Max.X; x++ {
						if got := img.Pixel(x, y); got != labelBG && got != fg {
							t.Fatalf("pixel (%d,%d): got %v, want label colour", x, y, got)
						}
					}
				}
			})
		}
	}
}

func TestPut_EmptyText(t *testing.T) {
	for _, policy := range []BoundsPolicy{Clip, Reject} {
		// The far anchor would be rejected for any non-empty text.
		for _, anchor := range []image.Point{image.Pt(10, 10), image.Pt(500, -500)} {
			c := newTestCompositor(WithBoundsPolicy(policy))
			img := newFilledBuffer(40, 20, imageColor)

			p, err := c.PutPlaced(img, "", anchor, BGR(10, 20, 30), nil, BottomLeft)
			if err != nil {
				t.Fatalf("%v at %v: Put with empty text failed: %v", policy, anchor, err)
			}
			if p.Block.Dx() != 0 || !p.Empty() {
				t.Errorf("%v at %v: empty text placement: got %+v", policy, anchor, p)
			}
			assertUnchangedOutside(t, img, image.Rectangle{}, imageColor)
		}
	}
}

func TestPut_PreservesOtherLabels(t *testing.T) {
	c := newTestCompositor()
	img := newFilledBuffer(80, 40, imageColor)

	first := BGR(200, 0, 0)
	second := BGR(0, 200, 0)

	if _, err := c.Put(img, "Hi", image.Pt(0, 0), first, nil, TopLeft); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if _, err := c.Put(img, "Hi", image.Pt(40, 20), second, nil, TopLeft); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	assertLabelPixels(t, img, image.Rect(0, 0, 14, 14), first, ContrastColor(first))
	assertLabelPixels(t, img, image.Rect(40, 20, 54, 34), second, ContrastColor(second))
}

func TestLayout_RejectMargins(t *testing.T) {
	c := newTestCompositor(WithBoundsPolicy(Reject))
	bounds := image.Rect(0, 0, 50, 30)

	tests := []struct {
		name    string
		anchor  image.Point
		wantErr bool
	}{
		{"one column in from the left", image.Pt(-13, 0), false},
		{"one row in from the top", image.Pt(0, -13), false},
		{"last column", image.Pt(49, 0), false},
		{"last row", image.Pt(0, 29), false},
		{"touching left edge", image.Pt(-14, 0), true},
		{"touching top edge", image.Pt(0, -14), true},
		{"past right edge", image.Pt(50, 0), true},
		{"past bottom edge", image.Pt(0, 30), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Layout(bounds, "Hi", tt.anchor, TopLeft)
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Errorf("Layout(%v): err = %v, wantErr %v", tt.anchor, err, tt.wantErr)
			}
		})
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{7, 2, 3},
		{6, 2, 3},
		{0, 2, 0},
		{-7, 2, -4},
		{-6, 2, -3},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d,%d): got %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
