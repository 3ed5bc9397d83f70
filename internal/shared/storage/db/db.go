package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"cv-generator/internal/shared/telemetry"
)

// Options controls the generation-history pool and how hard Open tries to reach Postgres.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration

	// Attempts is how many pings Open makes before giving up; at least one.
	Attempts   int
	RetryDelay time.Duration
}

var (
	openDB = sql.Open
	sleep  = func(ctx context.Context, d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
)

// ServerOptions suits the API: a small pool, since each generation writes one row,
// and a few connect attempts for a database that starts alongside the app.
func ServerOptions() Options {
	return Options{
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
		Attempts:        5,
		RetryDelay:      2 * time.Second,
	}
}

// CLIOptions suits one-shot commands such as cmd/migrate.
func CLIOptions() Options {
	return Options{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
		Attempts:     1,
	}
}

// Open connects to databaseURL and pings it, retrying with a linear backoff.
func Open(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	attempts := max(opts.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, time.Duration(attempt-1)*opts.RetryDelay); err != nil {
				return nil, fmt.Errorf("connect database: %w (last error: %v)", err, lastErr)
			}
		}
		db, err := connect(ctx, databaseURL, opts)
		if err == nil {
			telemetry.Info("db.connected", map[string]any{
				"attempt":  attempt,
				"max_open": db.Stats().MaxOpenConnections,
			})
			return db, nil
		}
		lastErr = err
		telemetry.Warn("db.connect_failed", map[string]any{
			"attempt":  attempt,
			"attempts": attempts,
			"error":    err,
		})
	}
	return nil, lastErr
}

func connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(db, opts)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}
