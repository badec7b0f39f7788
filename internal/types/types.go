package types

import (
	"strings"
	"time"
)

// EngagementMarker is one raw sample of the "most replayed" curve.
type EngagementMarker struct {
	StartSeconds    float64
	DurationSeconds float64
	Score           float64
}

// HighlightSegment is a marker that passed the score threshold, with its
// duration capped.
type HighlightSegment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Score    float64 `json:"score"`
}

// ClipWindow is the padded, clamped range cut from the source video.
type ClipWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (w ClipWindow) Length() float64 { return w.End - w.Start }

type TimedWord struct {
	Text  string
	Start float64
	End   float64
}

// Phrase is a short run of consecutive words shown on screen together.
type Phrase []TimedWord

type CaptionEvent struct {
	Start float64
	End   float64
	Text  string
}

// SubtitleBackend selects the transcript shape and the subtitle container.
type SubtitleBackend int

const (
	// BackendNone means no speech recognition tool was found.
	BackendNone SubtitleBackend = iota
	// WordLevelEngine is whisper.cpp: per-token JSON, animated ASS output.
	WordLevelEngine
	// SegmentLevelEngine is faster-whisper: segment SRT output.
	SegmentLevelEngine
)

func (b SubtitleBackend) String() string {
	switch b {
	case WordLevelEngine:
		return "whisper.cpp"
	case SegmentLevelEngine:
		return "faster-whisper"
	case BackendNone:
		return "none"
	}
	return "unknown"
}

// ClipState is the position of one candidate in the per-clip state machine.
type ClipState string

const (
	StateWindowed                ClipState = "windowed"
	StateDownloaded              ClipState = "downloaded"
	StateCropped                 ClipState = "cropped"
	StateCaptioned               ClipState = "captioned"
	StateFinalized               ClipState = "finalized"
	StateCaptionFailed           ClipState = "caption_failed"
	StateFinalizedWithoutCaption ClipState = "finalized_without_caption"
	StateSkipped                 ClipState = "skipped"
)

// Terminal reports whether no further transition exists from s.
func (s ClipState) Terminal() bool {
	return s == StateFinalized || s == StateFinalizedWithoutCaption || s == StateSkipped
}

// Counts reports whether s consumes the success quota.
func (s ClipState) Counts() bool {
	return s == StateFinalized || s == StateFinalizedWithoutCaption
}

// ClipOutcome records what happened to one ranked candidate.
type ClipOutcome struct {
	Rank           int              `json:"rank"`
	Index          int              `json:"index,omitempty"`
	Segment        HighlightSegment `json:"segment"`
	Window         ClipWindow       `json:"window"`
	State          ClipState        `json:"state"`
	File           string           `json:"file,omitempty"`
	CaptionApplied bool             `json:"caption_applied"`
	Note           string           `json:"note,omitempty"`
}

type Manifest struct {
	JobID      string         `json:"job_id"`
	Source     string         `json:"source"`
	VideoID    string         `json:"video_id"`
	CreatedAt  time.Time      `json:"created_at"`
	CropMode   string         `json:"crop_mode"`
	Subtitles  bool           `json:"subtitles"`
	Backend    string         `json:"backend"`
	Encoder    string         `json:"encoder"`
	Considered int            `json:"considered"`
	Produced   int            `json:"produced"`
	Clips      []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID             string  `json:"id"`
	File           string  `json:"file"`
	StartSec       float64 `json:"start_sec"`
	EndSec         float64 `json:"end_sec"`
	Score          float64 `json:"score"`
	CaptionApplied bool    `json:"caption_applied"`
	Note           string  `json:"note,omitempty"`
}

type Accelerator string

const (
	AccelNone         Accelerator = "none"
	AccelCUDA         Accelerator = "cuda"
	AccelQSV          Accelerator = "qsv"
	AccelVideoToolbox Accelerator = "videotoolbox"
	AccelVAAPI        Accelerator = "vaapi"
)

// Encoder is the video encoder chosen once per run.
type Encoder struct {
	Accelerator Accelerator `json:"accelerator"`
	Codec       string      `json:"codec"`
	// InputArgs go before -i.
	InputArgs []string `json:"-"`
	// Args select and tune the codec.
	Args []string `json:"-"`
	// Upload is appended to the video filter to move frames onto the device.
	Upload string `json:"-"`
}

// WhisperModel is the speech recognition model size.
type WhisperModel string

const (
	ModelTiny   WhisperModel = "tiny"
	ModelBase   WhisperModel = "base"
	ModelSmall  WhisperModel = "small"
	ModelMedium WhisperModel = "medium"
	ModelLarge  WhisperModel = "large"
)

var WhisperModels = []WhisperModel{ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge}

// ParseWhisperModel accepts a model name; the large-v* aliases map to large.
func ParseWhisperModel(s string) (WhisperModel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tiny":
		return ModelTiny, true
	case "base":
		return ModelBase, true
	case "small":
		return ModelSmall, true
	case "medium":
		return ModelMedium, true
	case "large", "large-v1", "large-v2", "large-v3":
		return ModelLarge, true
	}
	return ModelSmall, false
}

// GGMLFile is the whisper.cpp weights file name.
func (m WhisperModel) GGMLFile() string { return "ggml-" + string(m) + ".bin" }

func (m WhisperModel) DownloadURL() string {
	return "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/" + m.GGMLFile()
}

func (m WhisperModel) SizeDisplay() string {
	switch m {
	case ModelTiny:
		return "~75 MB"
	case ModelBase:
		return "~142 MB"
	case ModelSmall:
		return "~466 MB"
	case ModelMedium:
		return "~1.5 GB"
	case ModelLarge:
		return "~2.9 GB"
	}
	return "unknown"
}
