package highlights

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/heatclip/internal/types"
)

// ErrNoMarkersFound means the page carried no recognizable marker array.
var ErrNoMarkersFound = errors.New("no engagement markers found")

// wrapperKey is the renderer object some page versions nest each marker in.
const wrapperKey = "heatMarkerRenderer"

var markersRe = regexp.MustCompile(`"markers":\s*(\[.*?\])\s*,\s*"?markersMetadata"?`)

// ParseMarkers extracts the engagement markers embedded in a watch page.
// Markers are decoded one by one: an element missing a field is dropped,
// a field that is present but not numeric reads as 0.
func ParseMarkers(page string) ([]types.EngagementMarker, error) {
	m := markersRe.FindStringSubmatch(page)
	if m == nil {
		return nil, ErrNoMarkersFound
	}
	raw := strings.ReplaceAll(m[1], `\"`, `"`)

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, ErrNoMarkersFound
	}

	out := make([]types.EngagementMarker, 0, len(elems))
	for _, e := range elems {
		mk, ok := decodeMarker(e)
		if !ok {
			continue
		}
		out = append(out, mk)
	}
	return out, nil
}

func decodeMarker(raw json.RawMessage) (types.EngagementMarker, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return types.EngagementMarker{}, false
	}
	if inner, ok := obj[wrapperKey]; ok {
		var unwrapped map[string]json.RawMessage
		if err := json.Unmarshal(inner, &unwrapped); err == nil {
			obj = unwrapped
		}
	}

	start, ok1 := obj["startMillis"]
	dur, ok2 := obj["durationMillis"]
	score, ok3 := obj["intensityScoreNormalized"]
	if !ok1 || !ok2 || !ok3 {
		return types.EngagementMarker{}, false
	}
	return types.EngagementMarker{
		StartSeconds:    looseFloat(start) / 1000,
		DurationSeconds: looseFloat(dur) / 1000,
		Score:           looseFloat(score),
	}, true
}

// looseFloat accepts a JSON number or a numeric string. NaN and infinities
// read as 0.
func looseFloat(raw json.RawMessage) float64 {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0
	}
	return f
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
