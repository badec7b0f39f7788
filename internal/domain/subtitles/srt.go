package subtitles

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Cue is one numbered block of an SRT file.
type Cue struct {
	Start float64
	End   float64
	Lines []string
}

// ParseSRT reads SRT cues. Blocks whose timing line does not parse are
// skipped.
func ParseSRT(data []byte) []Cue {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(strings.TrimPrefix(string(data), "\ufeff")))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}

	var cues []Cue
	for i := 0; i < len(lines); i++ {
		if _, err := strconv.ParseUint(strings.TrimSpace(lines[i]), 10, 32); err != nil {
			continue
		}
		if i+1 >= len(lines) {
			break
		}
		i++
		start, end, ok := parseSRTTiming(lines[i])
		if !ok {
			continue
		}
		cue := Cue{Start: start, End: end}
		for i+1 < len(lines) {
			i++
			if strings.TrimSpace(lines[i]) == "" {
				break
			}
			cue.Lines = append(cue.Lines, lines[i])
		}
		cues = append(cues, cue)
	}
	return cues
}

func parseSRTTiming(line string) (float64, float64, bool) {
	parts := strings.Split(line, " --> ")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok1 := ParseTimestamp(parts[0])
	end, ok2 := ParseTimestamp(parts[1])
	return start, end, ok1 && ok2
}

// RenderSRT writes cues back out, renumbered from 1.
func RenderSRT(cues []Cue) string {
	var b strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n", i+1, formatSRTTime(c.Start), formatSRTTime(c.End))
		for _, l := range c.Lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
