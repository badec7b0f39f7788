package whispercpp

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/forPelevin/heatclip/internal/logging"
	"github.com/forPelevin/heatclip/internal/ports"
)

// binaryNames are the names whisper.cpp ships its CLI under, newest first.
var binaryNames = []string{"whisper-cli", "whisper", "whisper-cpp", "main"}

// FindBinary looks for a whisper.cpp CLI on PATH, then in the working
// directory.
func FindBinary() (string, bool) {
	for _, name := range binaryNames {
		if p, err := exec.LookPath(name); err == nil {
			return p, true
		}
	}
	for _, name := range binaryNames {
		for _, candidate := range []string{name + ".exe", name} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return "./" + candidate, true
			}
		}
	}
	return "", false
}

type Adapter struct {
	bin   string
	model string
	log   zerolog.Logger
}

func New(binPath, modelPath string, log zerolog.Logger) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, log: logging.WithComponent(log, "whisper.cpp")}
}

func (a *Adapter) Transcribe(ctx context.Context, req ports.TranscribeRequest) (string, error) {
	args := transcribeArgs(a.model, req)
	a.log.Debug().Strs("args", args).Msg("exec")
	b, err := exec.CommandContext(ctx, a.bin, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	out := req.OutBase + req.Format.Ext()
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("whisper.cpp wrote no %s: %w", req.Format.Ext(), err)
	}
	return out, nil
}

func transcribeArgs(model string, req ports.TranscribeRequest) []string {
	args := []string{
		"-m", model,
		"-f", req.Audio,
		"-l", req.Language,
	}
	switch req.Format {
	case ports.FormatFullJSON:
		// One token per segment gives word-level timings.
		args = append(args, "--output-json-full", "--split-on-word", "--max-len", "1")
	case ports.FormatSRT:
		args = append(args, "--output-srt")
	}
	return append(args, "-of", req.OutBase)
}
