package config

import (
	"errors"
	"fmt"

	"github.com/forPelevin/heatclip/internal/domain/crop"
	"github.com/forPelevin/heatclip/internal/types"
)

const maxClipsLimit = 50

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Clips.MaxClips < 1 || c.Clips.MaxClips > maxClipsLimit {
		return fmt.Errorf("clips.max_clips must be between 1 and %d", maxClipsLimit)
	}
	if _, ok := crop.ParseMode(c.Clips.Crop); !ok {
		return fmt.Errorf("clips.crop: unknown crop mode %q", c.Clips.Crop)
	}
	if _, ok := types.ParseWhisperModel(c.Subtitles.Model); !ok {
		return fmt.Errorf("subtitles.model: unknown whisper model %q", c.Subtitles.Model)
	}
	if c.Subtitles.Language == "" {
		return errors.New("subtitles.language must be set")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("server.port must be between 1 and 65535")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
