package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/forPelevin/heatclip/internal/domain/crop"
	"github.com/forPelevin/heatclip/internal/ports"
	"github.com/forPelevin/heatclip/internal/ports/adapters/fasterwhisper"
	"github.com/forPelevin/heatclip/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/heatclip/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/heatclip/internal/ports/adapters/youtube"
	"github.com/forPelevin/heatclip/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/heatclip/internal/types"
	"github.com/forPelevin/heatclip/internal/usecase"
)

// ErrOutputBusy means another job holds the output directory.
var ErrOutputBusy = errors.New("output directory is busy with another job")

const (
	lockFileName     = ".heatclip.lock"
	manifestFileName = "manifest.json"
)

type Config struct {
	URL      string
	OutDir   string
	MaxClips int
	Crop     crop.Mode
	HWAccel  bool

	Subtitles bool
	Model     types.WhisperModel
	Language  string
	// ModelsDir holds whisper.cpp weights; empty means ~/.cache/whisper.cpp.
	ModelsDir         string
	AutoDownloadModel bool

	FFmpegPath string
	YTDLPPath  string
	// WhisperBin and PythonPath are discovered when empty.
	WhisperBin string
	PythonPath string

	YouTubeBaseURL      string
	YouTubeAllowedHosts []string
	// HTTPClient is used for the page fetch and model downloads.
	HTTPClient *http.Client

	Log zerolog.Logger
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("url is empty")
	}
	if c.OutDir == "" {
		return errors.New("output directory is empty")
	}
	if c.MaxClips < 0 {
		return fmt.Errorf("max clips must be >= 0")
	}
	if c.Subtitles && c.Language == "" {
		return errors.New("subtitle language is required")
	}
	if _, ok := types.ParseWhisperModel(string(c.Model)); c.Subtitles && !ok {
		return fmt.Errorf("unknown whisper model %q", c.Model)
	}
	return youtube.ValidateBaseURL(c.YouTubeBaseURL, c.YouTubeAllowedHosts)
}

// Report is what a finished run produced.
type Report struct {
	JobID        string
	VideoID      string
	OutDir       string
	Backend      types.SubtitleBackend
	// Captions reports whether a recognizer was ready for this run.
	Captions     bool
	Encoder      types.Encoder
	Result       usecase.Result
	Manifest     types.Manifest
	ManifestPath string
}

// Run processes one video URL into clips under cfg.OutDir. Only one run
// may use an output directory at a time.
func Run(ctx context.Context, cfg Config) (Report, error) {
	log := cfg.Log
	videoID, err := youtube.VideoID(cfg.URL)
	if err != nil {
		return Report{}, err
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create output dir: %w", err)
	}
	lock := flock.New(filepath.Join(cfg.OutDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return Report{}, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return Report{}, fmt.Errorf("%w: %s", ErrOutputBusy, cfg.OutDir)
	}
	defer func() { _ = lock.Unlock() }()

	jobID := uuid.NewString()
	log = log.With().Str("job", jobID[:8]).Logger()

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Minute}
	}
	page, err := youtube.New(cfg.YouTubeBaseURL, cfg.YouTubeAllowedHosts)
	if err != nil {
		return Report{}, err
	}
	if cfg.HTTPClient != nil {
		page.WithHTTPClient(cfg.HTTPClient)
	}

	video := ffmpeg.New(cfg.FFmpegPath, log)
	enc := video.SelectEncoder(ctx, cfg.HWAccel)
	log.Info().Str("encoder", enc.Codec).Str("accel", string(enc.Accelerator)).Msg("encoder selected")

	backend := types.BackendNone
	var asr ports.ASR
	if cfg.Subtitles {
		var tool string
		backend, tool = DetectBackend(ctx, cfg.WhisperBin, cfg.PythonPath)
		asr = newASR(ctx, cfg, client, backend, tool, log)
		log.Info().Str("backend", backend.String()).Bool("ready", asr != nil).Msg("subtitle backend")
	}

	uc := usecase.New(usecase.Deps{
		Page:   page,
		Source: ytdlp.New(cfg.YTDLPPath, log),
		Video:  video,
		ASR:    asr,
		Log:    log,
	})
	res, err := uc.Run(ctx, usecase.Input{
		VideoID:  videoID,
		OutDir:   cfg.OutDir,
		MaxClips: cfg.MaxClips,
		Crop:     cfg.Crop,
		Captions: cfg.Subtitles,
		Backend:  backend,
		Language: cfg.Language,
		Encoder:  enc,
	})
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		JobID:    jobID,
		VideoID:  videoID,
		OutDir:   cfg.OutDir,
		Backend:  backend,
		Captions: asr != nil,
		Encoder:  enc,
		Result:   res,
	}
	rep.Manifest = buildManifest(rep, cfg, time.Now().UTC())
	rep.ManifestPath = filepath.Join(cfg.OutDir, manifestFileName)
	if err := writeManifest(rep.ManifestPath, rep.Manifest); err != nil {
		return Report{}, err
	}
	log.Info().Int("clips", len(rep.Manifest.Clips)).Str("manifest", rep.ManifestPath).Msg("manifest written")
	return rep, nil
}

// DetectBackend picks the speech recognizer for this run: whisper.cpp when
// its CLI is found, else faster-whisper when python can import it.
// Explicit paths skip discovery.
func DetectBackend(ctx context.Context, whisperBin, python string) (types.SubtitleBackend, string) {
	if whisperBin != "" {
		if p, err := exec.LookPath(whisperBin); err == nil {
			return types.WordLevelEngine, p
		}
	} else if p, ok := whispercpp.FindBinary(); ok {
		return types.WordLevelEngine, p
	}

	if python != "" {
		if err := exec.CommandContext(ctx, python, "-c", "import faster_whisper").Run(); err == nil {
			return types.SegmentLevelEngine, python
		}
		return types.BackendNone, ""
	}
	if p, ok := fasterwhisper.FindPython(ctx); ok {
		return types.SegmentLevelEngine, p
	}
	return types.BackendNone, ""
}

// newASR returns nil when the backend cannot run; clips then finalize
// without captions.
func newASR(ctx context.Context, cfg Config, client *http.Client, backend types.SubtitleBackend, tool string, log zerolog.Logger) ports.ASR {
	switch backend {
	case types.WordLevelEngine:
		dir := cfg.ModelsDir
		if dir == "" {
			dir = whispercpp.DefaultModelsDir()
		}
		model := whispercpp.ModelPath(dir, cfg.Model)
		if _, err := os.Stat(model); err != nil {
			if !cfg.AutoDownloadModel {
				log.Warn().Str("model", model).Msg("whisper model missing and auto download disabled")
				return nil
			}
			if model, err = whispercpp.EnsureModel(ctx, client, dir, cfg.Model, log); err != nil {
				log.Warn().Err(err).Msg("whisper model download failed")
				return nil
			}
		}
		return whispercpp.New(tool, model, log)

	case types.SegmentLevelEngine:
		return fasterwhisper.New(tool, cfg.Model, log)

	case types.BackendNone:
		log.Warn().Msg("no speech recognizer found; install whisper.cpp or faster-whisper for captions")
	}
	return nil
}

func buildManifest(rep Report, cfg Config, now time.Time) types.Manifest {
	m := types.Manifest{
		JobID:      rep.JobID,
		Source:     youtube.ShortURL(rep.VideoID),
		VideoID:    rep.VideoID,
		CreatedAt:  now,
		CropMode:   cfg.Crop.String(),
		Subtitles:  cfg.Subtitles,
		Backend:    rep.Backend.String(),
		Encoder:    rep.Encoder.Codec,
		Considered: rep.Result.Considered,
		Produced:   rep.Result.Produced,
		Clips:      []types.ManifestClip{},
	}
	for _, o := range rep.Result.Outcomes {
		if !o.State.Counts() {
			continue
		}
		m.Clips = append(m.Clips, types.ManifestClip{
			ID:             fmt.Sprintf("clip_%d", o.Index),
			File:           filepath.Base(o.File),
			StartSec:       o.Window.Start,
			EndSec:         o.Window.End,
			Score:          o.Segment.Score,
			CaptionApplied: o.CaptionApplied,
			Note:           o.Note,
		})
	}
	return m
}

func writeManifest(path string, m types.Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// ensure adapters implement ports
var _ ports.EngagementSource = (*youtube.Adapter)(nil)
var _ ports.VideoSource = (*ytdlp.Adapter)(nil)
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.ASR = (*fasterwhisper.Adapter)(nil)
