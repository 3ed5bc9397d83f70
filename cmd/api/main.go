package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"cv-generator/internal/bootstrap"
	"cv-generator/internal/shared/config"
	"cv-generator/internal/shared/server"
	"cv-generator/internal/shared/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sessions idle for longer than a workspace may live are dropped.
	go func() {
		_ = app.Sessions.RunEviction(ctx, time.Hour, cfg.SweepMaxAge)
	}()

	if cfg.BackgroundSweep {
		go func() {
			_ = app.Sweeper.Run(ctx, cfg.SweepInterval)
		}()
	}

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		// Conversions may run for the full converter timeout.
		WriteTimeout: cfg.ConvertTimeout + 30*time.Second,
	}

	go func() {
		telemetry.Info("server.start", map[string]any{"addr": srv.Addr, "env": cfg.Env, "temp_root": cfg.TempRoot})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	telemetry.Info("server.shutdown", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("server.shutdown_failed", map[string]any{"error": err})
	}
}
