package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/forPelevin/heatclip/internal/config"
	"github.com/forPelevin/heatclip/internal/domain/crop"
	"github.com/forPelevin/heatclip/internal/logging"
)

// appContext lazily loads configuration and the logger shared by commands.
type appContext struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

func (a *appContext) ensure() error {
	if a.cfg != nil {
		return nil
	}
	cfg, _, _, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	log, closer, err := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		NoColor: a.noColor,
	})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	a.cfg, a.log, a.closer = cfg, log, closer
	return nil
}

func (a *appContext) close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

func newRootCommand() *cobra.Command {
	app := &appContext{}

	root := &cobra.Command{
		Use:           "heatclip [url]",
		Short:         "Cut vertical highlight clips from a YouTube video's most replayed moments",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.ensure()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			return run(cmd, app, url)
		},
	}

	root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Configuration file path")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&app.noColor, "no-color", false, "Disable colored console logs")

	root.Flags().String("crop", "default", cropUsage())
	root.Flags().Bool("subtitle", false, "Burn in auto-generated subtitles")
	root.Flags().String("model", "small", "Whisper model: tiny, base, small, medium, large")
	root.Flags().String("language", "id", "Subtitle language code (e.g. id, en, ja)")
	root.Flags().StringP("out", "o", "clips", "Output directory")
	root.Flags().Bool("hwaccel", false, "Use a hardware video encoder when one is available")
	root.Flags().Bool("update", false, "Update yt-dlp before processing")

	// Hidden tuning flag (internal)
	root.Flags().Int("max-clips", 10, "Max clips per run")
	_ = root.Flags().MarkHidden("max-clips")

	root.AddCommand(newServeCommand(app))
	root.AddCommand(newDoctorCommand(app))
	return root
}

func cropUsage() string {
	names := make([]string, 0, len(crop.Modes))
	for _, m := range crop.Modes {
		names = append(names, m.String())
	}
	return "Crop mode: " + strings.Join(names, ", ")
}
