// Package crop builds the ffmpeg video filters that turn a landscape source
// into a 720x1280 vertical frame.
package crop

import (
	"fmt"
	"strings"
)

const (
	OutputWidth  = 720
	OutputHeight = 1280
	// TopHeight and BottomHeight are the two crops stacked by the split
	// layouts. Together they are 30px taller than OutputHeight and the
	// stacked frame keeps that height.
	TopHeight    = 960
	BottomHeight = 350
)

// OutputLabel is the stream label a complex filter writes its result to.
const OutputLabel = "out"

type Mode int

const (
	Default Mode = iota
	SplitLeft
	SplitRight
)

// Modes lists every layout in menu order.
var Modes = []Mode{Default, SplitLeft, SplitRight}

func (m Mode) String() string {
	switch m {
	case Default:
		return "default"
	case SplitLeft:
		return "split-left"
	case SplitRight:
		return "split-right"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func (m Mode) Description() string {
	switch m {
	case Default:
		return "Center crop from the original video"
	case SplitLeft:
		return "Top: center content, bottom: bottom-left facecam"
	case SplitRight:
		return "Top: center content, bottom: bottom-right facecam"
	}
	return ""
}

// IsComplex reports whether Filter returns a labeled graph that must be
// passed with -filter_complex and mapped from OutputLabel.
func (m Mode) IsComplex() bool {
	switch m {
	case SplitLeft, SplitRight:
		return true
	case Default:
		return false
	}
	return false
}

// Filter returns the ffmpeg filter text for m. It is deterministic.
func (m Mode) Filter() string {
	switch m {
	case SplitLeft:
		return splitFilter("0")
	case SplitRight:
		return splitFilter(fmt.Sprintf("iw-%d", OutputWidth))
	case Default:
	}
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		OutputWidth, OutputHeight, OutputWidth, OutputHeight)
}

// splitFilter scales once, splits the scaled frame and stacks a centered top
// crop over a bottom-corner crop whose x offset is bottomX.
func splitFilter(bottomX string) string {
	nodes := []string{
		fmt.Sprintf("scale=-2:%d[scaled]", OutputHeight),
		"[scaled]split=2[s1][s2]",
		fmt.Sprintf("[s1]crop=%d:%d:(iw-%d)/2:(ih-%d)/2[top]", OutputWidth, TopHeight, OutputWidth, TopHeight),
		fmt.Sprintf("[s2]crop=%d:%d:%s:ih-%d[bottom]", OutputWidth, BottomHeight, bottomX, BottomHeight),
		fmt.Sprintf("[top][bottom]vstack=inputs=2[%s]", OutputLabel),
	}
	return strings.Join(nodes, ";")
}

// ParseMode accepts a menu number or a mode name.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "default":
		return Default, true
	case "2", "split-left", "split_left", "splitleft":
		return SplitLeft, true
	case "3", "split-right", "split_right", "splitright":
		return SplitRight, true
	}
	return Default, false
}
