package whispercpp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/forPelevin/heatclip/internal/types"
)

// DefaultModelsDir is where ggml weights are cached.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(home, ".cache", "whisper.cpp")
}

// ModelPath returns the weights path for m inside dir.
func ModelPath(dir string, m types.WhisperModel) string {
	return filepath.Join(dir, m.GGMLFile())
}

// EnsureModel returns the weights path for m, downloading it into dir first
// when missing. The file only appears under its final name once complete.
func EnsureModel(ctx context.Context, client *http.Client, dir string, m types.WhisperModel, log zerolog.Logger) (string, error) {
	return ensureModelFrom(ctx, client, dir, m, m.DownloadURL(), log)
}

func ensureModelFrom(ctx context.Context, client *http.Client, dir string, m types.WhisperModel, url string, log zerolog.Logger) (string, error) {
	path := ModelPath(dir, m)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create models dir: %w", err)
	}

	log.Info().Str("model", string(m)).Str("size", m.SizeDisplay()).Str("url", url).Msg("downloading whisper model")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download model %s: %w", m, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("download model %s: status %d", m, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, m.GGMLFile()+".*.part")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("download model %s: %w", m, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
