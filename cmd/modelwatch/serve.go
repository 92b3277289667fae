package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"modelwatch/internal/daemon"
)

const shutdownTimeout = 10 * time.Second

func buildServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the watcher and its HTTP API",
		Example: "  modelwatch serve --config /etc/modelwatch.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			log := daemon.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			daemon.InstallLogger(log)

			fs, err := daemon.NewFileSystem(cfg.Storage)
			if err != nil {
				return err
			}
			d, err := daemon.New(cfg, fs)
			if err != nil {
				return err
			}
			defer func() {
				if err := d.Close(); err != nil {
					log.Error().Err(err).Msg("shutdown")
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{Addr: cfg.Addr, Handler: d.Handler(), ReadHeaderTimeout: 10 * time.Second}
			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Int("servables", len(cfg.Source.Servables)).Msg("modelwatch listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			if err := d.Start(ctx); err != nil {
				shutdown(srv)
				return err
			}
			log.Info().Msg("initial load complete")

			select {
			case <-ctx.Done():
				log.Info().Msg("shutting down")
			case err := <-errCh:
				return err
			}
			shutdown(srv)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Override the HTTP listen address, e.g. :8080")
	return cmd
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
