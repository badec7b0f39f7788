// Package fasterwhisper runs the faster-whisper Python package. It only
// produces segment-level SRT.
package fasterwhisper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/forPelevin/heatclip/internal/logging"
	"github.com/forPelevin/heatclip/internal/ports"
	"github.com/forPelevin/heatclip/internal/types"
)

// script reads argv: audio, output SRT, model, language.
const script = `
import sys
from faster_whisper import WhisperModel

audio, out, model_name, language = sys.argv[1:5]
model = WhisperModel(model_name, device="cpu", compute_type="int8")
segments, _ = model.transcribe(audio, language=language)

def ts(seconds):
    ms = int(round(seconds * 1000))
    return "%02d:%02d:%02d,%03d" % (ms // 3600000, ms // 60000 % 60, ms // 1000 % 60, ms % 1000)

with open(out, "w", encoding="utf-8") as f:
    for i, seg in enumerate(segments, start=1):
        f.write("%d\n%s --> %s\n%s\n\n" % (i, ts(seg.start), ts(seg.end), seg.text.strip()))
`

var errSRTOnly = errors.New("faster-whisper only produces SRT")

// FindPython returns the first interpreter that can import faster_whisper.
func FindPython(ctx context.Context) (string, bool) {
	for _, py := range []string{"python3", "python"} {
		if err := exec.CommandContext(ctx, py, "-c", "import faster_whisper").Run(); err == nil {
			return py, true
		}
	}
	return "", false
}

// Install pip-installs faster-whisper with the first interpreter found.
func Install(ctx context.Context) error {
	for _, py := range []string{"python3", "python"} {
		if _, err := exec.LookPath(py); err != nil {
			continue
		}
		b, err := exec.CommandContext(ctx, py, "-m", "pip", "install", "faster-whisper").CombinedOutput()
		if err != nil {
			return fmt.Errorf("pip install faster-whisper: %w\n%s", err, string(b))
		}
		return nil
	}
	return errors.New("python not found")
}

type Adapter struct {
	python string
	model  types.WhisperModel
	log    zerolog.Logger
}

func New(python string, model types.WhisperModel, log zerolog.Logger) *Adapter {
	return &Adapter{python: python, model: model, log: logging.WithComponent(log, "faster-whisper")}
}

func (a *Adapter) Transcribe(ctx context.Context, req ports.TranscribeRequest) (string, error) {
	if req.Format != ports.FormatSRT {
		return "", errSRTOnly
	}
	out := req.OutBase + req.Format.Ext()
	a.log.Debug().Str("audio", req.Audio).Str("model", string(a.model)).Msg("transcribe")
	b, err := exec.CommandContext(ctx, a.python, "-c", script, req.Audio, out, string(a.model), req.Language).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("faster-whisper failed: %w\n%s", err, string(b))
	}
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("faster-whisper wrote no srt: %w", err)
	}
	return out, nil
}
