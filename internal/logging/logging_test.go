package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_JSONFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heatclip.log")
	log, closer, err := New(Config{Level: "debug", Format: FormatJSON, Output: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	componentLog := WithComponent(log, "ffmpeg")
	componentLog.Debug().Int("clip", 3).Msg("cropped")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(b))), &line); err != nil {
		t.Fatalf("expected one json line, got %q: %v", b, err)
	}
	if line["component"] != "ffmpeg" || line["message"] != "cropped" || line["level"] != "debug" {
		t.Fatalf("unexpected entry: %v", line)
	}
	if _, ok := line["time"]; !ok {
		t.Fatalf("timestamp missing: %v", line)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")
	log, closer, err := New(Config{Level: "WARN", Format: FormatJSON, Output: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	_ = closer.Close()

	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "hidden") || !strings.Contains(string(b), "shown") {
		t.Fatalf("unexpected output: %q", b)
	}
	if log.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("level %v", log.GetLevel())
	}
}

func TestNew_DefaultsAndErrors(t *testing.T) {
	log, _, err := New(Config{Level: "nonsense"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("unknown level should fall back to info, got %v", log.GetLevel())
	}

	if _, _, err := New(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, _, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")}); err == nil {
		t.Fatalf("expected error for unwritable output")
	}
}

func TestColorable_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if colorable(os.Stderr) {
		t.Fatalf("NO_COLOR must disable colour")
	}
}
