package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/forPelevin/heatclip/internal/domain/crop"
	"github.com/forPelevin/heatclip/internal/domain/highlights"
	"github.com/forPelevin/heatclip/internal/ports"
	"github.com/forPelevin/heatclip/internal/types"
)

// DefaultMaxClips bounds the clips produced per run.
const DefaultMaxClips = 10

type Deps struct {
	Page   ports.EngagementSource
	Source ports.VideoSource
	Video  ports.VideoTool
	// ASR may be nil when no recognizer is installed.
	ASR ports.ASR
	Log zerolog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	VideoID  string
	OutDir   string
	MaxClips int
	Crop     crop.Mode
	Captions bool
	Backend  types.SubtitleBackend
	Language string
	Encoder  types.Encoder
}

type Result struct {
	// Considered counts ranked candidates that were tried.
	Considered int
	Produced   int
	Outcomes   []types.ClipOutcome
}

// Files lists the finished clips in index order.
func (r Result) Files() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.State.Counts() {
			out = append(out, o.File)
		}
	}
	return out
}

// Run ranks the video's engagement markers and turns candidates into clips
// until MaxClips succeed or candidates run out. Errors returned here are
// fatal to the run; per-candidate failures are reported in Result.Outcomes.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	if in.MaxClips <= 0 {
		in.MaxClips = DefaultMaxClips
	}
	log := u.d.Log.With().Str("video", in.VideoID).Logger()

	page, err := u.d.Page.FetchPage(ctx, in.VideoID)
	if err != nil {
		return Result{}, fmt.Errorf("fetch engagement data: %w", err)
	}
	markers, err := highlights.ParseMarkers(page)
	if err != nil {
		return Result{}, err
	}
	segs := highlights.SelectSegments(markers)
	log.Info().Int("markers", len(markers)).Int("segments", len(segs)).Msg("engagement data parsed")
	if len(segs) == 0 {
		log.Warn().Msg("no segment reached the score threshold")
		return Result{}, nil
	}

	total, err := u.d.Source.Duration(ctx, in.VideoID)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for rank, seg := range segs {
		if res.Produced >= in.MaxClips {
			break
		}
		c := &clip{
			in:    in,
			rank:  rank + 1,
			index: res.Produced + 1,
			seg:   seg,
			log:   log.With().Int("rank", rank+1).Int("clip", res.Produced+1).Logger(),
		}
		out := u.runClip(ctx, c, total)
		res.Considered++
		if out.State.Counts() {
			res.Produced++
		}
		res.Outcomes = append(res.Outcomes, out)
	}
	log.Info().Int("considered", res.Considered).Int("produced", res.Produced).Msg("run finished")
	return res, nil
}

// clip carries one candidate through the state machine.
type clip struct {
	in     Input
	rank   int
	index  int
	seg    types.HighlightSegment
	window types.ClipWindow
	log    zerolog.Logger

	captioned bool
	note      string
	temps     []string
}

func (c *clip) temp(format string) string {
	p := filepath.Join(c.in.OutDir, fmt.Sprintf(format, c.index))
	c.temps = append(c.temps, p)
	return p
}

func (c *clip) rawPath() string     { return filepath.Join(c.in.OutDir, fmt.Sprintf("temp_%d.mp4", c.index)) }
func (c *clip) croppedPath() string { return filepath.Join(c.in.OutDir, fmt.Sprintf("temp_cropped_%d.mp4", c.index)) }
func (c *clip) finalPath() string   { return filepath.Join(c.in.OutDir, fmt.Sprintf("clip_%d.mp4", c.index)) }
