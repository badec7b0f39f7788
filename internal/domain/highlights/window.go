package highlights

import (
	"math"

	"github.com/forPelevin/heatclip/internal/types"
)

const (
	// Padding is added on both sides of a segment, in seconds.
	Padding = 10.0
	// MinWindow is the shortest window worth downloading.
	MinWindow = 3.0
)

// Window pads seg and clamps it to [0, totalSeconds]. ok is false when the
// result is shorter than MinWindow; the caller should skip the segment.
func Window(seg types.HighlightSegment, totalSeconds int) (types.ClipWindow, bool) {
	total := float64(totalSeconds)
	start := math.Min(math.Max(0, seg.Start-Padding), total)
	end := math.Min(total, seg.Start+seg.Duration+Padding)
	if end < start {
		end = start
	}
	w := types.ClipWindow{Start: start, End: end}
	if !(w.Length() >= MinWindow) {
		return w, false
	}
	return w, true
}
