package usecase

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/forPelevin/heatclip/internal/domain/highlights"
	"github.com/forPelevin/heatclip/internal/types"
)

// failureTargets is where a candidate goes when the transition out of a
// state fails: download and crop failures skip it, caption failures degrade
// to the uncaptioned crop.
var failureTargets = map[types.ClipState]types.ClipState{
	types.StateWindowed:      types.StateSkipped,
	types.StateDownloaded:    types.StateSkipped,
	types.StateCropped:       types.StateCaptionFailed,
	types.StateCaptioned:     types.StateCaptionFailed,
	types.StateCaptionFailed: types.StateSkipped,
}

// FailureTarget returns the state a failed transition out of from leads to.
func FailureTarget(from types.ClipState) types.ClipState {
	if to, ok := failureTargets[from]; ok {
		return to
	}
	return types.StateSkipped
}

var errCaptionsDisabled = errors.New("captions disabled")

func (u Usecase) runClip(ctx context.Context, c *clip, total int) types.ClipOutcome {
	out := types.ClipOutcome{Rank: c.rank, Segment: c.seg}
	defer c.cleanup()

	w, ok := highlights.Window(c.seg, total)
	c.window = w
	out.Window = w
	if !ok {
		c.log.Info().Float64("start", w.Start).Float64("end", w.End).Msg("window too short, skipping")
		out.State = types.StateSkipped
		out.Note = "window too short"
		return out
	}

	state := types.StateWindowed
	for !state.Terminal() {
		next, err := u.step(ctx, c, state)
		if err != nil {
			next = FailureTarget(state)
			c.note = summarize(err)
			c.log.Warn().Err(err).Str("from", string(state)).Str("to", string(next)).Msg("transition failed")
		}
		state = next
	}

	out.State = state
	out.Note = c.note
	out.CaptionApplied = c.captioned
	if !state.Counts() {
		_ = os.Remove(c.finalPath())
	} else {
		out.Index = c.index
		out.File = c.finalPath()
		c.log.Info().Str("file", out.File).Bool("caption", c.captioned).Msg("clip finalized")
	}
	return out
}

// step performs the transition out of state.
func (u Usecase) step(ctx context.Context, c *clip, state types.ClipState) (types.ClipState, error) {
	switch state {
	case types.StateWindowed:
		c.temps = append(c.temps, c.rawPath())
		if err := u.d.Source.Download(ctx, c.in.VideoID, c.window, c.rawPath()); err != nil {
			return state, err
		}
		return types.StateDownloaded, nil

	case types.StateDownloaded:
		c.temps = append(c.temps, c.croppedPath())
		if err := u.d.Video.Crop(ctx, c.rawPath(), c.croppedPath(), c.in.Crop, c.in.Encoder); err != nil {
			return state, err
		}
		return types.StateCropped, nil

	case types.StateCropped:
		if !c.in.Captions {
			if err := os.Rename(c.croppedPath(), c.finalPath()); err != nil {
				return state, err
			}
			c.note = errCaptionsDisabled.Error()
			return types.StateFinalizedWithoutCaption, nil
		}
		if err := u.caption(ctx, c); err != nil {
			return state, err
		}
		return types.StateCaptioned, nil

	case types.StateCaptioned:
		if _, err := os.Stat(c.finalPath()); err != nil {
			return state, err
		}
		c.captioned = true
		return types.StateFinalized, nil

	case types.StateCaptionFailed:
		if err := os.Rename(c.croppedPath(), c.finalPath()); err != nil {
			return state, err
		}
		return types.StateFinalizedWithoutCaption, nil
	}
	return types.StateSkipped, nil
}

func (c *clip) cleanup() {
	for _, p := range c.temps {
		_ = os.Remove(p)
	}
}

// summarize keeps the first line of err; tool errors carry their whole
// output after it.
func summarize(err error) string {
	s := err.Error()
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
