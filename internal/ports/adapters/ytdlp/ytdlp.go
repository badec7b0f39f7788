package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/heatclip/internal/logging"
	"github.com/forPelevin/heatclip/internal/ports"
	"github.com/forPelevin/heatclip/internal/ports/adapters/youtube"
	"github.com/forPelevin/heatclip/internal/types"
)

// formatSelector prefers 1080p mp4 video with m4a audio.
const formatSelector = "bestvideo[height<=1080][ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

type Adapter struct {
	bin string
	log zerolog.Logger
}

func New(binPath string, log zerolog.Logger) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath, log: logging.WithComponent(log, "yt-dlp")}
}

func (a *Adapter) Duration(ctx context.Context, videoID string) (int, error) {
	cmd := exec.CommandContext(ctx, a.bin, "--get-duration", youtube.ShortURL(videoID))
	b, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: yt-dlp --get-duration: %v", ports.ErrDurationUnavailable, err)
	}
	sec, err := ParseDuration(string(b))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrDurationUnavailable, err)
	}
	return sec, nil
}

func (a *Adapter) Download(ctx context.Context, videoID string, w types.ClipWindow, outPath string) error {
	args := downloadArgs(videoID, w, outPath)
	a.log.Debug().Strs("args", args).Msg("exec")
	b, err := exec.CommandContext(ctx, a.bin, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("yt-dlp download: %w\n%s", err, string(b))
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("yt-dlp download: no output file: %w", err)
	}
	return nil
}

// Update runs yt-dlp's self updater.
func (a *Adapter) Update(ctx context.Context) (string, error) {
	b, err := exec.CommandContext(ctx, a.bin, "-U").CombinedOutput()
	if err != nil {
		return string(b), fmt.Errorf("yt-dlp -U: %w\n%s", err, string(b))
	}
	return strings.TrimSpace(string(b)), nil
}

// downloadArgs seeks on the input side so only the window is fetched.
func downloadArgs(videoID string, w types.ClipWindow, outPath string) []string {
	return []string{
		"--force-ipv4",
		"--quiet", "--no-warnings",
		"--downloader", "ffmpeg",
		"--downloader-args", fmt.Sprintf("ffmpeg_i:-ss %s -to %s -hide_banner -loglevel error", fmtSeconds(w.Start), fmtSeconds(w.End)),
		"-f", formatSelector,
		"--merge-output-format", "mp4",
		"-o", outPath,
		youtube.ShortURL(videoID),
	}
}

// ParseDuration reads "H:MM:SS", "MM:SS" or a bare number of seconds.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	parts := strings.Split(s, ":")
	if s == "" || len(parts) > 3 {
		return 0, fmt.Errorf("unrecognized duration %q", s)
	}
	total := 0
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return 0, fmt.Errorf("unrecognized duration %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
