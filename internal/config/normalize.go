package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnv lets HEATCLIP_* variables override file values.
func (c *Config) applyEnv() error {
	str := map[string]*string{
		"HEATCLIP_OUT_DIR":          &c.Paths.OutDir,
		"HEATCLIP_MODELS_DIR":       &c.Paths.ModelsDir,
		"HEATCLIP_CROP":             &c.Clips.Crop,
		"HEATCLIP_MODEL":            &c.Subtitles.Model,
		"HEATCLIP_LANGUAGE":         &c.Subtitles.Language,
		"HEATCLIP_FFMPEG":           &c.Tools.FFmpeg,
		"HEATCLIP_YTDLP":            &c.Tools.YTDLP,
		"HEATCLIP_WHISPER":          &c.Tools.Whisper,
		"HEATCLIP_PYTHON":           &c.Tools.Python,
		"HEATCLIP_YOUTUBE_BASE_URL": &c.Tools.YouTubeBaseURL,
		"HEATCLIP_LOG_LEVEL":        &c.Logging.Level,
		"HEATCLIP_LOG_FORMAT":       &c.Logging.Format,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv("HEATCLIP_MAX_CLIPS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("HEATCLIP_MAX_CLIPS: %w", err)
		}
		c.Clips.MaxClips = n
	}
	if v, ok := os.LookupEnv("HEATCLIP_PORT"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("HEATCLIP_PORT: %w", err)
		}
		c.Server.Port = n
	}
	for key, dst := range map[string]*bool{
		"HEATCLIP_SUBTITLES": &c.Subtitles.Enabled,
		"HEATCLIP_HWACCEL":   &c.Clips.HWAccel,
	} {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Paths.OutDir) == "" {
		c.Paths.OutDir = defaultOutDir
	}
	if c.Paths.OutDir, err = expandPath(c.Paths.OutDir); err != nil {
		return fmt.Errorf("paths.out_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ModelsDir) == "" {
		c.Paths.ModelsDir = defaultModelsDir
	}
	if c.Paths.ModelsDir, err = expandPath(c.Paths.ModelsDir); err != nil {
		return fmt.Errorf("paths.models_dir: %w", err)
	}

	c.Clips.Crop = strings.ToLower(strings.TrimSpace(c.Clips.Crop))
	if c.Clips.Crop == "" {
		c.Clips.Crop = defaultCrop
	}
	c.Subtitles.Model = strings.ToLower(strings.TrimSpace(c.Subtitles.Model))
	if c.Subtitles.Model == "" {
		c.Subtitles.Model = defaultModel
	}
	c.Subtitles.Language = strings.ToLower(strings.TrimSpace(c.Subtitles.Language))
	if c.Subtitles.Language == "" {
		c.Subtitles.Language = defaultLanguage
	}

	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if strings.TrimSpace(c.Tools.YTDLP) == "" {
		c.Tools.YTDLP = "yt-dlp"
	}

	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	return nil
}
