package label

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
)

// bytesPerPixel is the channel depth of an ImageBuffer.
const bytesPerPixel = 3

// ImageBuffer is a mutable 8-bit image stored row-major in B, G, R order.
//
// The dimensions are fixed at construction. ImageBuffer implements draw.Image,
// so it can be used directly as the destination of a font.Drawer or
// draw.Draw. Pixels written through Set are stored opaque.
type ImageBuffer struct {
	Width  int
	Height int

	// Pix holds Height rows of Width*3 bytes each.
	Pix []uint8
}

// NewImageBuffer allocates a black buffer. Negative dimensions are treated as zero.
func NewImageBuffer(width, height int) *ImageBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &ImageBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*bytesPerPixel),
	}
}

// FromImage copies any image.Image into a new ImageBuffer.
//
// The source is normalised to RGBA first, so translucent pixels end up
// composited over black. The result is rebased so its origin is (0,0).
func FromImage(img image.Image) *ImageBuffer {
	rgba := clone.AsRGBA(img)
	bounds := rgba.Bounds()
	buf := NewImageBuffer(bounds.Dx(), bounds.Dy())

	for y := 0; y < buf.Height; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+buf.Width*4]
		dst := buf.Pix[y*buf.stride() : (y+1)*buf.stride()]
		for x := 0; x < buf.Width; x++ {
			dst[x*3+0] = src[x*4+2]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+0]
		}
	}
	return buf
}

// ToNRGBA converts the buffer to an opaque *image.NRGBA for encoding.
func (b *ImageBuffer) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(b.Bounds())
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.stride() : (y+1)*b.stride()]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Width*4]
		for x := 0; x < b.Width; x++ {
			dst[x*4+0] = src[x*3+2]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+0]
			dst[x*4+3] = 0xff
		}
	}
	return out
}

func (b *ImageBuffer) stride() int {
	return b.Width * bytesPerPixel
}

func (b *ImageBuffer) offset(x, y int) int {
	return y*b.stride() + x*bytesPerPixel
}

// Bounds implements image.Image.
func (b *ImageBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// ColorModel implements image.Image.
func (b *ImageBuffer) ColorModel() color.Model {
	return color.RGBAModel
}

// At implements image.Image. Points outside the buffer are transparent black.
func (b *ImageBuffer) At(x, y int) color.Color {
	if !(image.Point{x, y}).In(b.Bounds()) {
		return color.RGBA{}
	}
	return b.Pixel(x, y).RGBA()
}

// Set implements draw.Image. Points outside the buffer are ignored.
func (b *ImageBuffer) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}).In(b.Bounds()) {
		return
	}
	b.SetPixel(x, y, FromRGBA(c))
}

// Pixel returns the colour at (x, y). The point must be inside the buffer.
func (b *ImageBuffer) Pixel(x, y int) Color {
	i := b.offset(x, y)
	return Color{b.Pix[i], b.Pix[i+1], b.Pix[i+2]}
}

// SetPixel stores c at (x, y). The point must be inside the buffer.
func (b *ImageBuffer) SetPixel(x, y int, c Color) {
	i := b.offset(x, y)
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = c[0], c[1], c[2]
}

// Fill paints the whole buffer with c.
func (b *ImageBuffer) Fill(c Color) {
	b.FillRect(b.Bounds(), c)
}

// FillRect paints r, clipped to the buffer, with c.
func (b *ImageBuffer) FillRect(r image.Rectangle, c Color) {
	r = r.Intersect(b.Bounds())
	if r.Empty() {
		return
	}
	row := b.Pix[b.offset(r.Min.X, r.Min.Y):b.offset(r.Max.X, r.Min.Y)]
	for i := 0; i < len(row); i += bytesPerPixel {
		row[i], row[i+1], row[i+2] = c[0], c[1], c[2]
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		copy(b.Pix[b.offset(r.Min.X, y):b.offset(r.Max.X, y)], row)
	}
}

// Clone returns a deep copy of the buffer.
func (b *ImageBuffer) Clone() *ImageBuffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &ImageBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// copyRect copies the pixels of src inside sr to dst with sr.Min landing on dp.
// Both rectangles must lie inside their buffers.
func copyRect(dst *ImageBuffer, dp image.Point, src *ImageBuffer, sr image.Rectangle) {
	n := sr.Dx() * bytesPerPixel
	for dy := 0; dy < sr.Dy(); dy++ {
		si := src.offset(sr.Min.X, sr.Min.Y+dy)
		di := dst.offset(dp.X, dp.Y+dy)
		copy(dst.Pix[di:di+n], src.Pix[si:si+n])
	}
}
