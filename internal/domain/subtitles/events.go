package subtitles

import (
	"strings"

	"github.com/forPelevin/heatclip/internal/types"
)

const (
	// settleTail keeps a finished phrase on screen after its last word.
	settleTail = 0.5
	// minDisplay is the shortest highlight for a word with no duration.
	minDisplay = 0.1
)

// Inline ASS overrides for the word states of the animated captions.
const (
	tagActive   = `{\c&H00FFFF&\fscx110\fscy110\t(0,50,\fscx100\fscy100)}`
	tagSpoken   = `{\c&HCCCCCC&\fscx95\fscy95}`
	tagUpcoming = `{\c&H666666&\fscx90\fscy90}`
	tagSettled  = `{\c&HFFFFFF&\fscx100\fscy100}`
	tagReset    = `{\r}`
)

// WordEvents renders one event per word of each phrase, highlighting that
// word, plus a trailing event with the whole phrase settled.
func WordEvents(phrases []types.Phrase) []types.CaptionEvent {
	var out []types.CaptionEvent
	for _, p := range phrases {
		if len(p) == 0 {
			continue
		}
		for active, w := range p {
			end := w.End
			if end <= w.Start {
				end = w.Start + minDisplay
			}
			out = append(out, types.CaptionEvent{
				Start: w.Start,
				End:   end,
				Text:  highlightText(p, active),
			})
		}

		last := p[len(p)-1].End
		parts := make([]string, len(p))
		for i, w := range p {
			parts[i] = tagSettled + sanitizeASS(w.Text)
		}
		out = append(out, types.CaptionEvent{Start: last, End: last + settleTail, Text: strings.Join(parts, " ")})
	}
	return out
}

func highlightText(p types.Phrase, active int) string {
	parts := make([]string, len(p))
	for i, w := range p {
		text := sanitizeASS(w.Text)
		switch {
		case i == active:
			parts[i] = tagActive + text + tagReset
		case i < active:
			parts[i] = tagSpoken + text
		default:
			parts[i] = tagUpcoming + text
		}
	}
	return strings.Join(parts, " ")
}

// PlainEvents renders one uniform event per cue.
func PlainEvents(cues []Cue) []types.CaptionEvent {
	out := make([]types.CaptionEvent, 0, len(cues))
	for _, c := range cues {
		lines := make([]string, 0, len(c.Lines))
		for _, l := range c.Lines {
			if l = sanitizeASS(l); l != "" {
				lines = append(lines, l)
			}
		}
		if len(lines) == 0 {
			continue
		}
		out = append(out, types.CaptionEvent{Start: c.Start, End: c.End, Text: strings.Join(lines, `\N`)})
	}
	return out
}

// sanitizeASS keeps transcript text from opening override blocks.
func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
