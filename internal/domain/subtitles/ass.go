package subtitles

import (
	"fmt"
	"strings"

	"github.com/forPelevin/heatclip/internal/types"
)

const eventsHeader = `[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

const animatedHeader = `[Script Info]
Title: Word Highlight Subtitles
ScriptType: v4.00+
PlayResX: 720
PlayResY: 1280
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial Black,52,&H00FFFFFF,&H000000FF,&H00000000,&H80000000,1,0,0,0,100,100,0,0,1,4,0,2,20,20,80,1
Style: Active,Arial Black,58,&H0000FFFF,&H00FFFFFF,&H00000000,&H80000000,1,0,0,0,100,100,0,0,1,4,0,2,20,20,80,1
Style: Inactive,Arial Black,48,&H80FFFFFF,&H000000FF,&H00000000,&H40000000,1,0,0,0,100,100,0,0,1,3,0,2,20,20,80,1

`

// plainHeader uses an opaque box (BorderStyle 4) since there is no per-word
// colouring to carry contrast.
const plainHeader = `[Script Info]
Title: Subtitles
ScriptType: v4.00+
PlayResX: 720
PlayResY: 1280
WrapStyle: 0

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial Black,38,&H00FFFFFF,&H000000FF,&H00000000,&HAA000000,1,0,0,0,100,100,0,0,4,0,3,2,20,20,100,1

`

// RenderAnimatedASS writes the word-highlight script for events built by
// WordEvents.
func RenderAnimatedASS(events []types.CaptionEvent) string {
	return renderASS(animatedHeader, events)
}

// RenderPlainASS writes a single-style script for events built by PlainEvents.
func RenderPlainASS(events []types.CaptionEvent) string {
	return renderASS(plainHeader, events)
}

func renderASS(header string, events []types.CaptionEvent) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(eventsHeader)
	for _, ev := range events {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n", FormatTime(ev.Start), FormatTime(ev.End), ev.Text)
	}
	return b.String()
}
