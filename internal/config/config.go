package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Paths holds filesystem locations.
type Paths struct {
	OutDir    string `toml:"out_dir"`
	ModelsDir string `toml:"models_dir"`
}

// Clips controls how candidates become clips.
type Clips struct {
	MaxClips int    `toml:"max_clips"`
	Crop     string `toml:"crop"`
	HWAccel  bool   `toml:"hwaccel"`
}

type Subtitles struct {
	Enabled  bool   `toml:"enabled"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
	// AutoDownload fetches a missing whisper.cpp model before the run.
	AutoDownload bool `toml:"auto_download"`
}

// Tools names external executables. Empty whisper or python paths are
// discovered on PATH.
type Tools struct {
	FFmpeg         string   `toml:"ffmpeg"`
	YTDLP          string   `toml:"ytdlp"`
	Whisper        string   `toml:"whisper"`
	Python         string   `toml:"python"`
	YouTubeBaseURL string   `toml:"youtube_base_url"`
	AllowedHosts   []string `toml:"allowed_hosts"`
}

type Server struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Config is the full heatclip configuration.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Clips     Clips     `toml:"clips"`
	Subtitles Subtitles `toml:"subtitles"`
	Tools     Tools     `toml:"tools"`
	Server    Server    `toml:"server"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/heatclip/config.toml")
}

// Load reads path (or the first default location that exists), applies
// environment overrides, normalizes and validates. It also reports the
// resolved path and whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("heatclip.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath applies the same ~ and absolute path rules used for config
// fields.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
