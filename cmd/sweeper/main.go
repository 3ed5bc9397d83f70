package main

// Remove stale per-session workspaces:
//   go run ./cmd/sweeper          # every SWEEP_INTERVAL until interrupted
//   go run ./cmd/sweeper -once    # single pass

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"cv-generator/internal/bootstrap"
	"cv-generator/internal/shared/config"
	"cv-generator/internal/shared/telemetry"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	cfg := config.Load()
	sweeper := bootstrap.NewSweeper(cfg)

	if *once {
		report, err := sweeper.SweepExpired(cfg.TempRoot, cfg.SweepMaxAge)
		if err != nil {
			telemetry.Error("sweeper.failed", map[string]any{"error": err})
			os.Exit(1)
		}
		if len(report.Failures) > 0 {
			os.Exit(2)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := sweeper.Run(ctx, cfg.SweepInterval); err != nil && !errors.Is(err, context.Canceled) {
		telemetry.Error("sweeper.stopped", map[string]any{"error": err})
		os.Exit(1)
	}
}
