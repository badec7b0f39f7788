package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forPelevin/heatclip/internal/pipeline"
	"github.com/forPelevin/heatclip/internal/server"
)

func newServeCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and serve finished clips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *app.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			if err := checkDependencies(cfg.Tools); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			srv := server.New(server.Config{
				Host:     cfg.Server.Bind,
				Port:     cfg.Server.Port,
				ClipsDir: cfg.Paths.OutDir,
				Base:     pipelineConfig(&cfg, app.log),
			}, pipeline.Run, app.log)
			if err := srv.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return srv.Stop(context.Background())
		},
	}
	cmd.Flags().IntP("port", "p", 3000, "Port to listen on")
	return cmd
}
