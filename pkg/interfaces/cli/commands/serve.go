package commands

import (
	"context"
	"log/slog"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vsinha/supplyadvisor/pkg/infrastructure/graceful"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/logging"
	"github.com/vsinha/supplyadvisor/pkg/interfaces/httpapi"
)

func newServeCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := logging.SetupWriter(cfg.Env, cmd.ErrOrStderr())
			if cfg.Env == logging.EnvProd {
				gin.SetMode(gin.ReleaseMode)
			}

			env, err := NewEnvironment(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			server := httpapi.NewServer(logger,
				net.JoinHostPort(cfg.HttpServer.Address, cfg.HttpServer.Port),
				cfg.HttpServer.Timeout,
				env.Orchestrator,
				httpapi.WithMetrics(env.Metrics),
				httpapi.WithReadiness(env.Ping),
			)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			wait := graceful.GracefulShutdown(ctx, cfg.HttpServer.Timeout, map[string]graceful.Operation{
				"http server": server.Shutdown,
				"environment": env.Close,
			}, logger)

			var runErr error
			go func() {
				if err := server.Run(); err != nil {
					logger.Error("http server failed", logging.Err(err))
					runErr = err
					cancel()
				}
			}()

			<-wait
			logger.Info("advisor stopped", slog.String("run_id", env.RunID))
			return runErr
		},
	}
}
