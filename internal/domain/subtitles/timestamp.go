package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTimestamp reads "H:MM:SS.ss" or "H:MM:SS,sss" into seconds.
func ParseTimestamp(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var total float64
	for i, mult := range []float64{3600, 60, 1} {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil || v < 0 {
			return 0, false
		}
		total += v * mult
	}
	return total, true
}

// FormatTime renders seconds as an ASS timestamp, H:MM:SS.cc. Centiseconds
// are rounded and carried into seconds.
func FormatTime(sec float64) string {
	cs := int64(math.Round(sec * 100))
	if cs < 0 {
		cs = 0
	}
	h := cs / 360000
	m := cs / 6000 % 60
	s := cs / 100 % 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs%100)
}

// formatSRTTime renders seconds as HH:MM:SS,mmm.
func formatSRTTime(sec float64) string {
	ms := int64(math.Round(sec * 1000))
	if ms < 0 {
		ms = 0
	}
	h := ms / 3600000
	m := ms / 60000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}
