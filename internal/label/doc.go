// Package label draws text labels with a solid background patch onto raster images.
//
// The package has two halves: ContrastColor, which picks a legible foreground
// (black or white) for a background colour, and TextCompositor, which measures
// a string, works out where its label block lands for a given anchor, and
// composites the block onto an ImageBuffer.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X growing
// rightward and Y growing downward. Rectangles follow image.Rectangle: Min is
// inclusive, Max is exclusive.
//
// # Channel Order
//
// Color and ImageBuffer store channels in B, G, R order. Conversions to and
// from image/color values swap the order explicitly, so callers working with
// image.Image never see the storage order.
//
// # Label Geometry
//
// A label block is Width pixels wide and Height+Padding pixels tall, where
// Padding is floor(0.1*Height) and sits below the glyphs. The block origin
// depends on AnchorMode:
//
//   - BottomLeft: (x, y-Height)
//   - TopLeft:    (x, y)
//   - Center:     (x-Width/2, y-(Height+Padding)/2), floor division
//
// # Bounds
//
// Blocks that run off the image are clipped to the intersection. With the
// Clip policy a block that misses the image entirely is a no-op; with the
// Reject policy it fails with ErrOutOfBounds.
//
// # Thread Safety
//
// A TextCompositor is not safe for concurrent use because the underlying font
// face caches rasterised glyphs. Use one compositor per goroutine. Concurrent
// Put calls on the same ImageBuffer must be serialised by the caller.
package label
