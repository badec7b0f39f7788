package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/forPelevin/heatclip/internal/domain/subtitles"
	"github.com/forPelevin/heatclip/internal/ports"
	"github.com/forPelevin/heatclip/internal/types"
)

var (
	errASRUnavailable = errors.New("speech recognition unavailable")
	errNoSpeech       = errors.New("no speech recognized")
)

// caption transcribes the cropped clip and burns the result into the final
// clip path.
func (u Usecase) caption(ctx context.Context, c *clip) error {
	if u.d.ASR == nil || c.in.Backend == types.BackendNone {
		return errASRUnavailable
	}

	wav := c.temp("temp_%d.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, c.croppedPath(), wav); err != nil {
		return err
	}

	subPath, err := u.subtitleScript(ctx, c, wav)
	if err != nil {
		return err
	}
	return u.d.Video.BurnSubtitles(ctx, c.croppedPath(), subPath, c.finalPath(), c.in.Encoder)
}

// subtitleScript writes the caption file for the run's backend and returns
// its path.
func (u Usecase) subtitleScript(ctx context.Context, c *clip, wav string) (string, error) {
	asrBase := c.temp("temp_%d_asr")
	c.temps = append(c.temps, asrBase+".json", asrBase+".srt")

	switch c.in.Backend {
	case types.WordLevelEngine:
		assPath := c.temp("temp_%d.ass")
		script, err := u.animatedScript(ctx, c, wav, asrBase)
		if err != nil {
			c.log.Info().Err(err).Msg("word timings unavailable, falling back to plain captions")
			cues, err := u.srtCues(ctx, c, wav, asrBase)
			if err != nil {
				return "", err
			}
			script = subtitles.RenderPlainASS(subtitles.PlainEvents(cues))
		}
		return assPath, os.WriteFile(assPath, []byte(script), 0o644)

	case types.SegmentLevelEngine:
		srtPath := c.temp("temp_%d.srt")
		cues, err := u.srtCues(ctx, c, wav, asrBase)
		if err != nil {
			return "", err
		}
		return srtPath, os.WriteFile(srtPath, []byte(subtitles.RenderSRT(cues)), 0o644)

	case types.BackendNone:
	}
	return "", errASRUnavailable
}

func (u Usecase) animatedScript(ctx context.Context, c *clip, wav, asrBase string) (string, error) {
	artifact, err := u.d.ASR.Transcribe(ctx, ports.TranscribeRequest{
		Audio: wav, OutBase: asrBase, Language: c.in.Language, Format: ports.FormatFullJSON,
	})
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(artifact)
	if err != nil {
		return "", err
	}
	words, err := subtitles.ParseWhisperJSON(data)
	if err != nil {
		return "", err
	}
	if len(words) == 0 {
		return "", errNoSpeech
	}
	c.log.Debug().Int("words", len(words)).Msg("word timings parsed")
	return subtitles.RenderAnimatedASS(subtitles.WordEvents(subtitles.GroupPhrases(words))), nil
}

func (u Usecase) srtCues(ctx context.Context, c *clip, wav, asrBase string) ([]subtitles.Cue, error) {
	artifact, err := u.d.ASR.Transcribe(ctx, ports.TranscribeRequest{
		Audio: wav, OutBase: asrBase, Language: c.in.Language, Format: ports.FormatSRT,
	})
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(artifact)
	if err != nil {
		return nil, err
	}
	cues := subtitles.ParseSRT(data)
	if len(cues) == 0 {
		return nil, fmt.Errorf("%w in %s", errNoSpeech, artifact)
	}
	return cues, nil
}
