package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/heatclip/internal/domain/crop"
	"github.com/forPelevin/heatclip/internal/logging"
	"github.com/forPelevin/heatclip/internal/types"
)

// subtitleForceStyle restyles SRT captions to match the vertical canvas.
const subtitleForceStyle = "FontName=Arial Black,FontSize=42,Bold=1," +
	"PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,BackColour=&H80000000," +
	"BorderStyle=1,Outline=3,Shadow=2,MarginV=120"

type Adapter struct {
	ffmpeg string
	log    zerolog.Logger
}

func New(ffmpegPath string, log zerolog.Logger) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Adapter{ffmpeg: ffmpegPath, log: logging.WithComponent(log, "ffmpeg")}
}

func (a *Adapter) Crop(ctx context.Context, inPath, outPath string, mode crop.Mode, enc types.Encoder) error {
	return a.run(ctx, "crop", cropArgs(inPath, outPath, mode, enc))
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inPath, outWav string) error {
	return a.run(ctx, "extract audio", []string{
		"-y",
		"-hide_banner", "-loglevel", "error",
		"-i", inPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		outWav,
	})
}

func (a *Adapter) BurnSubtitles(ctx context.Context, inPath, subPath, outPath string, enc types.Encoder) error {
	return a.run(ctx, "burn subtitles", burnArgs(inPath, subPath, outPath, enc))
}

func (a *Adapter) run(ctx context.Context, op string, args []string) error {
	a.log.Debug().Str("op", op).Strs("args", args).Msg("exec")
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w\n%s", op, err, string(b))
	}
	return nil
}

// cropArgs uses -vf for a linear chain. A labeled graph goes through
// -filter_complex, so its output and the source audio are mapped explicitly.
func cropArgs(inPath, outPath string, mode crop.Mode, enc types.Encoder) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	args = append(args, enc.InputArgs...)
	args = append(args, "-i", inPath)

	filter := withUpload(mode.Filter(), mode.IsComplex(), enc.Upload)
	if mode.IsComplex() {
		args = append(args,
			"-filter_complex", filter,
			"-map", "["+crop.OutputLabel+"]",
			"-map", "0:a?",
		)
	} else {
		args = append(args, "-vf", filter)
	}
	args = append(args, enc.Args...)
	args = append(args, "-c:a", "aac", "-b:a", "128k", outPath)
	return args
}

func burnArgs(inPath, subPath, outPath string, enc types.Encoder) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	args = append(args, enc.InputArgs...)
	args = append(args,
		"-i", inPath,
		"-vf", withUpload(subtitleFilter(subPath), false, enc.Upload),
	)
	args = append(args, enc.Args...)
	args = append(args, "-c:a", "copy", outPath)
	return args
}

func subtitleFilter(subPath string) string {
	p := escapeFilterPath(subPath)
	if strings.EqualFold(filepath.Ext(subPath), ".ass") {
		return "ass='" + p + "'"
	}
	return "subtitles='" + p + "':force_style='" + subtitleForceStyle + "'"
}

// withUpload appends the device upload step. For a graph the final label is
// re-pointed through the upload node.
func withUpload(filter string, complex bool, upload string) string {
	if upload == "" {
		return filter
	}
	if !complex {
		return filter + "," + upload
	}
	label := "[" + crop.OutputLabel + "]"
	base := strings.TrimSuffix(filter, label)
	return base + "[pre];[pre]" + upload + label
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
