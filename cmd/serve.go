package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"riskwatch/internal/bootstrap"
	"riskwatch/internal/bootstrap/logging"
	"riskwatch/internal/errs"
	"riskwatch/internal/transport/httpapi"
	"riskwatch/internal/usecase/observations"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the observation intake HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *observations.Service) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		srv := &http.Server{
			Addr:              app.Config.Server.Addr,
			Handler:           httpapi.NewServer(svc).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening", slog.String("addr", srv.Addr))
			serveErr <- srv.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errs.Wrap(err, "serve http")
			}
			return nil
		case <-ctx.Done():
		}

		logging.Info(ctx, "shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
