package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/forPelevin/heatclip/internal/config"
	"github.com/forPelevin/heatclip/internal/domain/crop"
	"github.com/forPelevin/heatclip/internal/types"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return p
}

func TestApplyFlagsOnlyOverridesChanged(t *testing.T) {
	cmd := newRootCommand()
	if err := cmd.ParseFlags([]string{"--crop", "split-right", "--subtitle", "--max-clips", "3"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := config.Default()
	cfg.Subtitles.Language = "en"
	cfg.Paths.OutDir = "/srv/clips"
	if err := applyFlags(cmd, &cfg); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}

	if cfg.Clips.Crop != "split-right" || !cfg.Subtitles.Enabled || cfg.Clips.MaxClips != 3 {
		t.Fatalf("changed flags not applied: %+v %+v", cfg.Clips, cfg.Subtitles)
	}
	if cfg.Subtitles.Language != "en" || cfg.Paths.OutDir != "/srv/clips" {
		t.Fatalf("unchanged flags must keep config values: %+v %+v", cfg.Subtitles, cfg.Paths)
	}
}

func TestApplyFlagsExpandsOut(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	cmd := newRootCommand()
	if err := cmd.ParseFlags([]string{"--out", "~/heatclip-out"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := config.Default()
	if err := applyFlags(cmd, &cfg); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if want := filepath.Join(home, "heatclip-out"); cfg.Paths.OutDir != want {
		t.Fatalf("out dir %q, want %q", cfg.Paths.OutDir, want)
	}
}

func TestRootFlagsListEveryCropMode(t *testing.T) {
	usage := newRootCommand().Flags().Lookup("crop").Usage
	for _, m := range crop.Modes {
		if !strings.Contains(usage, m.String()) {
			t.Fatalf("crop usage %q misses %s", usage, m)
		}
	}
}

func TestNoColorFlagReachesLogger(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "heatclip.log")
	cfgPath := filepath.Join(dir, "heatclip.toml")
	body := "[logging]\nformat = \"console\"\noutput = \"" + logPath + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCommand()
	if err := cmd.ParseFlags([]string{"--no-color", "--config", cfgPath}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	noColor, _ := cmd.Flags().GetBool("no-color")
	app := &appContext{configPath: cfgPath, noColor: noColor}
	if err := app.ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	app.log.Warn().Msg("plain")
	app.close()

	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "plain") || strings.Contains(string(b), "\x1b[") {
		t.Fatalf("unexpected log output %q", b)
	}
}

func TestPipelineConfigFallsBackOnUnknownNames(t *testing.T) {
	cfg := config.Default()
	cfg.Clips.Crop = "diagonal"
	cfg.Subtitles.Model = "huge"
	cfg.Subtitles.Language = " JA "

	p := pipelineConfig(&cfg, zerolog.Nop())
	if p.Crop != crop.Default || p.Model != types.ModelSmall || p.Language != "ja" {
		t.Fatalf("unexpected job config: %+v", p)
	}

	cfg.Clips.Crop = "3"
	cfg.Subtitles.Model = "large-v2"
	p = pipelineConfig(&cfg, zerolog.Nop())
	if p.Crop != crop.SplitRight || p.Model != types.ModelLarge {
		t.Fatalf("unexpected job config: %+v", p)
	}
}

func TestCheckDependencies(t *testing.T) {
	dir := t.TempDir()
	ff := writeScript(t, dir, "ffmpeg", "exit 0")
	yt := writeScript(t, dir, "yt-dlp", "exit 0")

	if err := checkDependencies(config.Tools{FFmpeg: ff, YTDLP: yt}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := checkDependencies(config.Tools{FFmpeg: filepath.Join(dir, "nope"), YTDLP: yt})
	if err == nil || !strings.Contains(err.Error(), "FFmpeg not found") {
		t.Fatalf("expected ffmpeg error, got %v", err)
	}
	err = checkDependencies(config.Tools{FFmpeg: ff, YTDLP: filepath.Join(dir, "nope")})
	if err == nil || !strings.Contains(err.Error(), "yt-dlp not found") {
		t.Fatalf("expected yt-dlp error, got %v", err)
	}
}

func TestOutcomeTable(t *testing.T) {
	out := outcomeTable([]types.ClipOutcome{
		{Rank: 1, Index: 1, State: types.StateFinalized, File: "/tmp/clips/clip_1.mp4", CaptionApplied: true,
			Window: types.ClipWindow{Start: 20, End: 50}, Segment: types.HighlightSegment{Score: 0.91}},
		{Rank: 2, State: types.StateSkipped, Note: "window too short"},
	})
	for _, want := range []string{"Rank", "clip_1.mp4", "20.0-50.0s", "0.91", "finalized", "window too short", "skipped"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "/tmp/clips") {
		t.Fatalf("table should show base names:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	if !strings.Contains(out, "only") || strings.Count(out, "\n") < 4 {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatalf("no headers must render nothing")
	}
}

func TestDoctorRows(t *testing.T) {
	dir := t.TempDir()
	models := t.TempDir()
	if err := os.WriteFile(filepath.Join(models, "ggml-base.bin"), []byte("w"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Paths.ModelsDir = models
	cfg.Tools.FFmpeg = writeScript(t, dir, "ffmpeg", "exit 0")
	cfg.Tools.YTDLP = filepath.Join(dir, "missing-yt-dlp")
	cfg.Tools.Whisper = writeScript(t, dir, "whisper-cli", "exit 0")
	cfg.Tools.Python = writeScript(t, dir, "python", "exit 1")

	rows := doctorRows(context.Background(), &cfg, zerolog.Nop())
	got := map[string][]string{}
	for _, r := range rows {
		got[r[0]] = r
	}

	check := func(component, status, detail string) {
		t.Helper()
		r, ok := got[component]
		if !ok {
			t.Fatalf("row %q missing: %v", component, rows)
		}
		if r[1] != status || !strings.Contains(r[2], detail) {
			t.Fatalf("row %q = %v, want %s containing %q", component, r, status, detail)
		}
	}
	check("ffmpeg", "OK", dir)
	check("yt-dlp", "--", "github.com/yt-dlp")
	check("whisper.cpp", "OK", "whisper-cli")
	check("faster-whisper", "--", "python")
	check("subtitle backend", "OK", "whisper.cpp")
	check("video encoder", "OK", "libx264")
	check("model base", "OK", "ggml-base.bin")
	check("model large", "--", "~2.9 GB")
}
