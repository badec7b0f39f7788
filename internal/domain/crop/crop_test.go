package crop

import (
	"strings"
	"testing"
)

func TestFilter_ExactText(t *testing.T) {
	tests := []struct {
		mode    Mode
		want    string
		complex bool
	}{
		{Default, "scale=720:1280:force_original_aspect_ratio=increase,crop=720:1280", false},
		{SplitLeft, "scale=-2:1280[scaled];[scaled]split=2[s1][s2];[s1]crop=720:960:(iw-720)/2:(ih-960)/2[top];[s2]crop=720:350:0:ih-350[bottom];[top][bottom]vstack=inputs=2[out]", true},
		{SplitRight, "scale=-2:1280[scaled];[scaled]split=2[s1][s2];[s1]crop=720:960:(iw-720)/2:(ih-960)/2[top];[s2]crop=720:350:iw-720:ih-350[bottom];[top][bottom]vstack=inputs=2[out]", true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := tt.mode.Filter(); got != tt.want {
				t.Fatalf("Filter() =\n%s\nwant\n%s", got, tt.want)
			}
			if got := tt.mode.IsComplex(); got != tt.complex {
				t.Fatalf("IsComplex() = %v, want %v", got, tt.complex)
			}
			if tt.mode.Filter() != tt.mode.Filter() {
				t.Fatalf("Filter is not deterministic")
			}
		})
	}
}

func TestFilter_SplitModesDifferOnlyInBottomX(t *testing.T) {
	l := strings.Split(SplitLeft.Filter(), ";")
	r := strings.Split(SplitRight.Filter(), ";")
	if len(l) != len(r) {
		t.Fatalf("node count differs: %d vs %d", len(l), len(r))
	}
	var diffs []int
	for i := range l {
		if l[i] != r[i] {
			diffs = append(diffs, i)
		}
	}
	if len(diffs) != 1 {
		t.Fatalf("expected exactly one differing node, got %v", diffs)
	}
	i := diffs[0]
	if !strings.HasPrefix(l[i], "[s2]crop=720:350:") || strings.Replace(l[i], ":0:", ":iw-720:", 1) != r[i] {
		t.Fatalf("unexpected differing node: %q vs %q", l[i], r[i])
	}
}

func TestComplexFiltersEndInOutputLabel(t *testing.T) {
	for _, m := range Modes {
		if m.IsComplex() && !strings.HasSuffix(m.Filter(), "["+OutputLabel+"]") {
			t.Fatalf("%s: complex filter must end in [%s]: %s", m, OutputLabel, m.Filter())
		}
		if m.Description() == "" {
			t.Fatalf("%s: missing description", m)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"1", Default, true},
		{"default", Default, true},
		{"2", SplitLeft, true},
		{"split_left", SplitLeft, true},
		{"SplitLeft", SplitLeft, true},
		{"3", SplitRight, true},
		{" split-right ", SplitRight, true},
		{"diagonal", Default, false},
		{"", Default, false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseMode(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	for _, m := range Modes {
		if got, ok := ParseMode(m.String()); !ok || got != m {
			t.Fatalf("ParseMode(%q) does not round-trip", m.String())
		}
	}
}
