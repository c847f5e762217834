package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/cli/config"
	httpctrl "github.com/secmon-lab/fredboard/pkg/controller/http"
	"github.com/secmon-lab/fredboard/pkg/service/worker"
	"github.com/secmon-lab/fredboard/pkg/usecase"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var secureCookie bool
	var repoCfg config.Repository
	var fredCfg config.FRED
	var dashboardCfg config.Dashboard
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("FREDBOARD_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "secure-cookie",
			Usage:       "Mark the session cookie Secure (serve behind TLS)",
			Sources:     cli.EnvVars("FREDBOARD_SECURE_COOKIE"),
			Destination: &secureCookie,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, fredCfg.Flags()...)
	flags = append(flags, dashboardCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			dashboardSettings, err := dashboardCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load dashboard configuration")
			}

			gateway, err := fredCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure FRED client")
			}

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			logging.Default().Info("Configuration loaded",
				"repository", repoCfg,
				"fred", fredCfg,
				"dashboard", dashboardCfg,
				"sentry", sentryCfg,
			)

			uc := usecase.New(repo, gateway,
				usecase.WithDashboardConfig(dashboardSettings),
				usecase.WithMetadataCacheTTL(fredCfg.MetadataTTL()),
			)

			sweeper := worker.NewSessionSweepWorker(uc.Dashboard, dashboardCfg.SessionTTL(), dashboardCfg.SweepInterval())
			if err := sweeper.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start session sweep worker")
			}
			defer sweeper.Stop()

			httpHandler := httpctrl.New(uc.Dashboard, uc.Series,
				httpctrl.WithSecureCookie(secureCookie),
				httpctrl.WithCookieMaxAge(dashboardCfg.SessionTTL()),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				sweeper.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
