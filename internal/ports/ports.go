package ports

import (
	"context"
	"errors"

	"github.com/forPelevin/heatclip/internal/domain/crop"
	"github.com/forPelevin/heatclip/internal/types"
)

var (
	// ErrInvalidSource means the source reference is not a recognizable video URL.
	ErrInvalidSource = errors.New("invalid source reference")
	// ErrDurationUnavailable means the source length could not be looked up.
	ErrDurationUnavailable = errors.New("video duration unavailable")
)

// EngagementSource fetches the watch page that embeds the engagement markers.
type EngagementSource interface {
	FetchPage(ctx context.Context, videoID string) (string, error)
}

type VideoSource interface {
	// Duration returns the source length in whole seconds.
	Duration(ctx context.Context, videoID string) (int, error)
	// Download writes the window of the source to outPath.
	Download(ctx context.Context, videoID string, w types.ClipWindow, outPath string) error
}

type VideoTool interface {
	Crop(ctx context.Context, inPath, outPath string, mode crop.Mode, enc types.Encoder) error
	ExtractAudioMono16k(ctx context.Context, inPath, outWav string) error
	BurnSubtitles(ctx context.Context, inPath, subPath, outPath string, enc types.Encoder) error
}

type TranscriptFormat int

const (
	// FormatFullJSON asks for per-token JSON.
	FormatFullJSON TranscriptFormat = iota
	// FormatSRT asks for segment-level SRT.
	FormatSRT
)

func (f TranscriptFormat) Ext() string {
	if f == FormatSRT {
		return ".srt"
	}
	return ".json"
}

type TranscribeRequest struct {
	Audio    string
	OutBase  string // artifact path without extension
	Language string
	Format   TranscriptFormat
}

// ASR runs speech recognition and returns the path of the written artifact.
type ASR interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (string, error)
}
