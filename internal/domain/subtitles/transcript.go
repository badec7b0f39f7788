package subtitles

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/forPelevin/heatclip/internal/types"
)

// ErrTranscriptUnreadable means the artifact is not the expected JSON document.
var ErrTranscriptUnreadable = errors.New("transcript unreadable")

type rawTranscript struct {
	Transcription []json.RawMessage `json:"transcription"`
}

// rawSegment keeps text and timestamps raw so a malformed value only fails
// the attempt that reads it.
type rawSegment struct {
	Text       json.RawMessage   `json:"text"`
	Tokens     []json.RawMessage `json:"tokens"`
	Timestamps json.RawMessage   `json:"timestamps"`
}

type rawTimestamps struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type rawToken struct {
	Text    *string  `json:"text"`
	T0      *float64 `json:"t0"`
	T1      *float64 `json:"t1"`
	Offsets *struct {
		From *float64 `json:"from"`
		To   *float64 `json:"to"`
	} `json:"offsets"`
}

// segmentAttempt turns one transcript segment into words. ok is false when
// the segment does not have the shape the attempt understands.
type segmentAttempt func(seg rawSegment) (words []types.TimedWord, ok bool)

// tokenAttempt times a single token.
type tokenAttempt func(tok rawToken) (types.TimedWord, bool)

var segmentAttempts = []segmentAttempt{tokenWords, interpolatedWords}

var tokenAttempts = []tokenAttempt{centisecondToken, millisecondToken}

// ParseWhisperJSON reads whisper.cpp full JSON output into timed words.
// Segments and tokens are decoded one at a time so one odd entry does not
// spoil the rest. Zero words is not an error.
func ParseWhisperJSON(data []byte) ([]types.TimedWord, error) {
	var doc rawTranscript
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrTranscriptUnreadable, err)
	}

	var words []types.TimedWord
	for _, raw := range doc.Transcription {
		var seg rawSegment
		if err := json.Unmarshal(raw, &seg); err != nil {
			continue
		}
		for _, attempt := range segmentAttempts {
			if ws, ok := attempt(seg); ok {
				words = append(words, ws...)
				break
			}
		}
	}
	return words, nil
}

func tokenWords(seg rawSegment) ([]types.TimedWord, bool) {
	if seg.Tokens == nil {
		return nil, false
	}
	var out []types.TimedWord
	for _, raw := range seg.Tokens {
		var tok rawToken
		if err := json.Unmarshal(raw, &tok); err != nil {
			continue
		}
		for _, attempt := range tokenAttempts {
			if w, ok := attempt(tok); ok {
				if keepWord(w.Text) {
					out = append(out, w)
				}
				break
			}
		}
	}
	return out, true
}

func centisecondToken(tok rawToken) (types.TimedWord, bool) {
	if tok.Text == nil || tok.T0 == nil || tok.T1 == nil {
		return types.TimedWord{}, false
	}
	return types.TimedWord{
		Text:  strings.TrimSpace(*tok.Text),
		Start: *tok.T0 / 100,
		End:   *tok.T1 / 100,
	}, true
}

func millisecondToken(tok rawToken) (types.TimedWord, bool) {
	if tok.Text == nil || tok.Offsets == nil || tok.Offsets.From == nil || tok.Offsets.To == nil {
		return types.TimedWord{}, false
	}
	return types.TimedWord{
		Text:  strings.TrimSpace(*tok.Text),
		Start: *tok.Offsets.From / 1000,
		End:   *tok.Offsets.To / 1000,
	}, true
}

// interpolatedWords spreads a segment's duration evenly over its words.
// The timings are an estimate, not an alignment.
func interpolatedWords(seg rawSegment) ([]types.TimedWord, bool) {
	var text string
	var ts rawTimestamps
	if seg.Text == nil || seg.Timestamps == nil ||
		json.Unmarshal(seg.Text, &text) != nil || json.Unmarshal(seg.Timestamps, &ts) != nil {
		return nil, false
	}
	start, ok1 := ParseTimestamp(ts.From)
	end, ok2 := ParseTimestamp(ts.To)
	if !ok1 || !ok2 {
		return nil, false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, true
	}
	step := (end - start) / float64(len(fields))
	var out []types.TimedWord
	for i, f := range fields {
		if !keepWord(f) {
			continue
		}
		out = append(out, types.TimedWord{
			Text:  f,
			Start: start + float64(i)*step,
			End:   start + float64(i+1)*step,
		})
	}
	return out, true
}

// keepWord drops blanks and recognizer control tokens such as [_BEG_] or <|endoftext|>.
func keepWord(text string) bool {
	text = strings.TrimSpace(text)
	return text != "" && !strings.HasPrefix(text, "[") && !strings.HasPrefix(text, "<")
}
