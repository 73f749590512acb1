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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mentalmate/mindbot/backend/internal/handler"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bootLog := logger.Nop()
			cfg, err := loadConfig(bootLog)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
			if err != nil {
				return err
			}
			defer log.Sync()
			undo := zap.ReplaceGlobals(log.Zap())
			defer undo()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			router := handler.NewRouter(handler.Deps{
				Personas:       a.personas,
				Resources:      a.resources,
				Sessions:       a.sessions,
				Pipeline:       a.pipeline,
				Admin:          a.admin,
				Profiles:       a.profiles,
				Settings:       a.settings,
				History:        a.history,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				AdminToken:     cfg.Admin.Token,
				Log:            log,
			})
			if cfg.Admin.Token == "" {
				log.Warn("ADMIN_TOKEN not set, admin routes are unprotected")
			}

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			log.Info("MindBot backend listening", "addr", cfg.Server.Addr)
			return runServer(ctx, srv, log)
		},
	}
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server, log *logger.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
