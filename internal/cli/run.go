package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/forPelevin/heatclip/internal/config"
	"github.com/forPelevin/heatclip/internal/domain/crop"
	"github.com/forPelevin/heatclip/internal/pipeline"
	"github.com/forPelevin/heatclip/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/heatclip/internal/types"
)

func run(cmd *cobra.Command, app *appContext, url string) error {
	cfg := *app.cfg
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if err := checkDependencies(cfg.Tools); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if update, _ := cmd.Flags().GetBool("update"); update {
		msg, err := ytdlp.New(cfg.Tools.YTDLP, app.log).Update(ctx)
		if err != nil {
			app.log.Warn().Err(err).Msg("yt-dlp update failed")
		} else {
			fmt.Fprintln(out, msg)
		}
		if url == "" {
			return nil
		}
	}

	if strings.TrimSpace(url) == "" {
		return errors.New("no URL provided: heatclip <youtube-url>")
	}

	pcfg := pipelineConfig(&cfg, app.log)
	pcfg.URL = url
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	printPlan(out, pcfg)
	start := time.Now()
	rep, err := pipeline.Run(ctx, pcfg)
	if err != nil {
		return err
	}

	if len(rep.Result.Outcomes) > 0 {
		fmt.Fprintln(out, outcomeTable(rep.Result.Outcomes))
	}
	fmt.Fprintf(out, "\nFinished processing in %s. %d clip(s) successfully saved to '%s'.\n",
		time.Since(start).Round(time.Second), rep.Result.Produced, pcfg.OutDir)
	return nil
}

// applyFlags lets explicitly set flags override file and env values.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("crop") {
		cfg.Clips.Crop, _ = f.GetString("crop")
	}
	if f.Changed("subtitle") {
		cfg.Subtitles.Enabled, _ = f.GetBool("subtitle")
	}
	if f.Changed("model") {
		cfg.Subtitles.Model, _ = f.GetString("model")
	}
	if f.Changed("language") {
		cfg.Subtitles.Language, _ = f.GetString("language")
	}
	if f.Changed("out") {
		raw, _ := f.GetString("out")
		dir, err := config.ExpandPath(raw)
		if err != nil {
			return fmt.Errorf("--out: %w", err)
		}
		cfg.Paths.OutDir = dir
	}
	if f.Changed("hwaccel") {
		cfg.Clips.HWAccel, _ = f.GetBool("hwaccel")
	}
	if f.Changed("max-clips") {
		cfg.Clips.MaxClips, _ = f.GetInt("max-clips")
	}
	return nil
}

// pipelineConfig maps configuration onto a job. Unknown crop or model names
// fall back to the defaults.
func pipelineConfig(cfg *config.Config, log zerolog.Logger) pipeline.Config {
	mode, ok := crop.ParseMode(cfg.Clips.Crop)
	if !ok {
		log.Warn().Str("crop", cfg.Clips.Crop).Msg("unknown crop mode, using default")
		mode = crop.Default
	}
	model, ok := types.ParseWhisperModel(cfg.Subtitles.Model)
	if !ok {
		log.Warn().Str("model", cfg.Subtitles.Model).Msg("unknown whisper model, using small")
	}
	return pipeline.Config{
		OutDir:              cfg.Paths.OutDir,
		MaxClips:            cfg.Clips.MaxClips,
		Crop:                mode,
		HWAccel:             cfg.Clips.HWAccel,
		Subtitles:           cfg.Subtitles.Enabled,
		Model:               model,
		Language:            strings.ToLower(strings.TrimSpace(cfg.Subtitles.Language)),
		ModelsDir:           cfg.Paths.ModelsDir,
		AutoDownloadModel:   cfg.Subtitles.AutoDownload,
		FFmpegPath:          cfg.Tools.FFmpeg,
		YTDLPPath:           cfg.Tools.YTDLP,
		WhisperBin:          cfg.Tools.Whisper,
		PythonPath:          cfg.Tools.Python,
		YouTubeBaseURL:      cfg.Tools.YouTubeBaseURL,
		YouTubeAllowedHosts: cfg.Tools.AllowedHosts,
		Log:                 log,
	}
}

func checkDependencies(t config.Tools) error {
	if _, err := exec.LookPath(t.FFmpeg); err != nil {
		return errors.New("FFmpeg not found. Please install FFmpeg and ensure it is in PATH")
	}
	if _, err := exec.LookPath(t.YTDLP); err != nil {
		return errors.New("yt-dlp not found. Please install it and ensure it is in PATH (https://github.com/yt-dlp/yt-dlp/releases)")
	}
	return nil
}

func printPlan(w io.Writer, c pipeline.Config) {
	fmt.Fprintln(w, "=== Processing ===")
	fmt.Fprintf(w, "URL: %s\n", c.URL)
	fmt.Fprintf(w, "Crop mode: %s\n", c.Crop.Description())
	if c.Subtitles {
		fmt.Fprintf(w, "Subtitle: enabled (%s, %s)\n", c.Model, c.Language)
	} else {
		fmt.Fprintln(w, "Subtitle: disabled")
	}
	fmt.Fprintf(w, "Output: %s\n\n", c.OutDir)
}
