package label

import (
	"fmt"
	"strings"
)

// AnchorMode selects which point of the label block the anchor refers to.
type AnchorMode int

const (
	// BottomLeft puts the bottom of the glyph area (above the padding) on the anchor row.
	BottomLeft AnchorMode = iota
	// TopLeft puts the block's top-left corner on the anchor.
	TopLeft
	// Center centres the whole block, padding included, on the anchor.
	Center
)

var anchorModeNames = map[AnchorMode]string{
	BottomLeft: "bottom-left",
	TopLeft:    "top-left",
	Center:     "center",
}

// String implements fmt.Stringer.
func (m AnchorMode) String() string {
	if name, ok := anchorModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("AnchorMode(%d)", int(m))
}

// ParseAnchorMode accepts "bottom-left", "top-left", "center" (or "centre")
// and the numeric forms "0", "1", "2". An empty string means BottomLeft.
func ParseAnchorMode(s string) (AnchorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "bottom-left", "bottomleft":
		return BottomLeft, nil
	case "1", "top-left", "topleft":
		return TopLeft, nil
	case "2", "center", "centre":
		return Center, nil
	default:
		return BottomLeft, fmt.Errorf("unknown anchor mode: %s", s)
	}
}

// BoundsPolicy decides what Put does with a block that misses the image.
type BoundsPolicy int

const (
	// Clip silently draws nothing when the block misses the image.
	Clip BoundsPolicy = iota
	// Reject fails with ErrOutOfBounds when the block misses the image.
	Reject
)

// String implements fmt.Stringer.
func (p BoundsPolicy) String() string {
	switch p {
	case Clip:
		return "clip"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("BoundsPolicy(%d)", int(p))
	}
}

// ParseBoundsPolicy accepts "clip" or "reject". An empty string means Clip.
func ParseBoundsPolicy(s string) (BoundsPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clip":
		return Clip, nil
	case "reject":
		return Reject, nil
	default:
		return Clip, fmt.Errorf("unknown bounds policy: %s", s)
	}
}
