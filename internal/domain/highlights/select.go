package highlights

import (
	"math"
	"sort"

	"github.com/forPelevin/heatclip/internal/types"
)

const (
	// MinScore is the lowest normalized intensity kept as a highlight.
	MinScore = 0.40
	// MaxDuration caps a single segment, in seconds.
	MaxDuration = 60.0
)

// SelectSegments filters markers by score, caps their duration and ranks them
// by score descending. Equal scores keep their input order.
func SelectSegments(markers []types.EngagementMarker) []types.HighlightSegment {
	out := make([]types.HighlightSegment, 0, len(markers))
	for _, m := range markers {
		if !(m.Score >= MinScore) || !finite(m.Score) || !finite(m.StartSeconds) || !finite(m.DurationSeconds) {
			continue
		}
		out = append(out, types.HighlightSegment{
			Start:    m.StartSeconds,
			Duration: math.Min(m.DurationSeconds, MaxDuration),
			Score:    m.Score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
