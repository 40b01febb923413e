package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workpro/internal/app/server/api"
	"workpro/internal/app/server/config"
	"workpro/internal/app/server/crypto"
	"workpro/internal/infrastructure/scheduler"
	"workpro/internal/infrastructure/storage/postgres"
	"workpro/internal/utils/logger"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	jobTimeout        = time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and background jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer storage.Close()

	services, err := api.NewServices(storage, cfg, log)
	if err != nil {
		return err
	}

	tokens := crypto.NewTokenManager(cfg.Auth.JWTSecret, 0)
	srv := &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           api.New(services, tokens, storage.Pool(), log),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	runner := scheduler.New(ctx, log, jobTimeout)
	if _, err := runner.Add("telemetry-reconcile", cfg.Sync.TelemetryReconcileCron, services.Telemetry.Reconcile); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server started", "address", cfg.Server.RunAddress, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		runner.Start()
		<-gctx.Done()
		runner.Stop()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
