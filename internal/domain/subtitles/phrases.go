package subtitles

import (
	"strings"
	"unicode/utf8"

	"github.com/forPelevin/heatclip/internal/types"
)

const (
	maxPhraseWords = 3
	maxPhraseChars = 20
)

// GroupPhrases packs words greedily into short on-screen phrases. A phrase
// closes once it holds maxPhraseWords words, its running length (each word
// plus one space) reaches maxPhraseChars, or a word ends a clause.
func GroupPhrases(words []types.TimedWord) []types.Phrase {
	var out []types.Phrase
	var cur types.Phrase
	chars := 0
	for _, w := range words {
		cur = append(cur, w)
		chars += utf8.RuneCountInString(w.Text) + 1
		if len(cur) >= maxPhraseWords || chars >= maxPhraseChars || endsClause(w.Text) {
			out = append(out, cur)
			cur = nil
			chars = 0
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func endsClause(text string) bool {
	return strings.HasSuffix(text, ".") ||
		strings.HasSuffix(text, ",") ||
		strings.HasSuffix(text, "?") ||
		strings.HasSuffix(text, "!")
}
