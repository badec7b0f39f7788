package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/forPelevin/heatclip/internal/config"
	"github.com/forPelevin/heatclip/internal/pipeline"
	"github.com/forPelevin/heatclip/internal/ports/adapters/fasterwhisper"
	"github.com/forPelevin/heatclip/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/heatclip/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/heatclip/internal/types"
)

func newDoctorCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report external tools, subtitle backends and whisper models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg := app.cfg
			out := cmd.OutOrStdout()

			if install, _ := cmd.Flags().GetBool("install-faster-whisper"); install {
				fmt.Fprintln(out, "Installing faster-whisper...")
				if err := fasterwhisper.Install(ctx); err != nil {
					return err
				}
			}
			if download, _ := cmd.Flags().GetBool("download-model"); download {
				model, _ := types.ParseWhisperModel(cfg.Subtitles.Model)
				path, err := whispercpp.EnsureModel(ctx, http.DefaultClient, cfg.Paths.ModelsDir, model, app.log)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Model ready: %s\n", path)
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Component", "Status", "Detail"},
				doctorRows(ctx, cfg, app.log),
				nil,
			))
			return nil
		},
	}
	cmd.Flags().Bool("install-faster-whisper", false, "pip install faster-whisper first")
	cmd.Flags().Bool("download-model", false, "Download the configured whisper.cpp model first")
	return cmd
}

func doctorRows(ctx context.Context, cfg *config.Config, log zerolog.Logger) [][]string {
	var rows [][]string
	status := func(ok bool) string {
		if ok {
			return "OK"
		}
		return "--"
	}

	ffmpegPath, ffErr := exec.LookPath(cfg.Tools.FFmpeg)
	rows = append(rows, []string{"ffmpeg", status(ffErr == nil), orHint(ffmpegPath, "install FFmpeg and ensure it is in PATH")})
	ytPath, ytErr := exec.LookPath(cfg.Tools.YTDLP)
	rows = append(rows, []string{"yt-dlp", status(ytErr == nil), orHint(ytPath, "https://github.com/yt-dlp/yt-dlp/releases")})

	whisper, whisperOK := "", false
	if cfg.Tools.Whisper != "" {
		if p, err := exec.LookPath(cfg.Tools.Whisper); err == nil {
			whisper, whisperOK = p, true
		}
	} else {
		whisper, whisperOK = whispercpp.FindBinary()
	}
	rows = append(rows, []string{"whisper.cpp", status(whisperOK), orHint(whisper, "https://github.com/ggerganov/whisper.cpp/releases")})

	py, pyOK := cfg.Tools.Python, false
	if py != "" {
		pyOK = exec.CommandContext(ctx, py, "-c", "import faster_whisper").Run() == nil
	} else {
		py, pyOK = fasterwhisper.FindPython(ctx)
	}
	rows = append(rows, []string{"faster-whisper", status(pyOK), orHint(py, "pip install faster-whisper")})

	backend, _ := pipeline.DetectBackend(ctx, cfg.Tools.Whisper, cfg.Tools.Python)
	rows = append(rows, []string{"subtitle backend", status(backend != types.BackendNone), backend.String()})

	if ffErr == nil {
		enc := ffmpeg.New(cfg.Tools.FFmpeg, log).SelectEncoder(ctx, true)
		rows = append(rows, []string{"video encoder", "OK", fmt.Sprintf("%s (%s)", enc.Codec, enc.Accelerator)})
	}

	for _, m := range types.WhisperModels {
		path := whispercpp.ModelPath(cfg.Paths.ModelsDir, m)
		_, err := os.Stat(path)
		detail := m.SizeDisplay()
		if err == nil {
			detail = path
		}
		rows = append(rows, []string{"model " + string(m), status(err == nil), detail})
	}
	return rows
}

func orHint(value, hint string) string {
	if value != "" {
		return value
	}
	return hint
}
