package config

const (
	defaultOutDir    = "clips"
	defaultModelsDir = "~/.cache/whisper.cpp"
	defaultMaxClips  = 10
	defaultCrop      = "default"
	defaultModel     = "small"
	defaultLanguage  = "id"
	defaultBind      = "0.0.0.0"
	defaultPort      = 3000
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Paths: Paths{
			OutDir:    defaultOutDir,
			ModelsDir: defaultModelsDir,
		},
		Clips: Clips{
			MaxClips: defaultMaxClips,
			Crop:     defaultCrop,
		},
		Subtitles: Subtitles{
			Model:        defaultModel,
			Language:     defaultLanguage,
			AutoDownload: true,
		},
		Tools: Tools{
			FFmpeg: "ffmpeg",
			YTDLP:  "yt-dlp",
		},
		Server: Server{
			Bind: defaultBind,
			Port: defaultPort,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}
