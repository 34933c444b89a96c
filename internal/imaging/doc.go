// Package imaging loads, saves and inspects the images that labels are drawn on.
//
// Images are decoded with disintegration/imaging into label.ImageBuffer values
// (3 bytes per pixel, blue first) and kept in an ImageCache. The package also
// produces the PNG previews the server returns: crops, label previews and a
// coordinate grid whose labels are drawn with a label.TextCompositor.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Buffers it returns are shared
// between callers and must be cloned before drawing on them.
//
// # Color Representation
//
// Sampled colors are returned in several formats:
//   - Hex: 6-character format "#RRGGBB"
//   - RGB: 8-bit components (0-255)
//   - BGR: the label.Color triple, blue first
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// Each sample also carries the label text colour that ContrastColor picks for
// it and the resulting WCAG contrast ratio.
package imaging
