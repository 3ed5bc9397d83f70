package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// ErrUnknownCommand is returned by Migrate for anything but up, down or status.
var ErrUnknownCommand = errors.New("unknown migrate command")

func prepare() error {
	goose.SetBaseFS(migrationFiles)
	return goose.SetDialect("postgres")
}

// RunMigrations applies the embedded generations schema. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, "up")
}

// Migrate runs one goose command ("up", "down" or "status") against the embedded migrations.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	switch command {
	case "up", "down", "status":
	default:
		return fmt.Errorf("%w %q (want up, down or status)", ErrUnknownCommand, command)
	}
	if database == nil {
		return nil
	}
	if err := prepare(); err != nil {
		return err
	}
	switch command {
	case "down":
		return goose.DownContext(ctx, database, migrationsDir)
	case "status":
		return goose.StatusContext(ctx, database, migrationsDir)
	default:
		return goose.UpContext(ctx, database, migrationsDir)
	}
}
