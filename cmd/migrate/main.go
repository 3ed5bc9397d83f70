package main

// Run database migrations:
//   go run ./cmd/migrate          # up
//   go run ./cmd/migrate down
//   go run ./cmd/migrate status

import (
	"context"
	"errors"
	"log"
	"os"

	"cv-generator/internal/shared/config"
	"cv-generator/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.CLIOptions())
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		log.Printf("migrate %s: %v", command, err)
		if errors.Is(err, db.ErrUnknownCommand) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
