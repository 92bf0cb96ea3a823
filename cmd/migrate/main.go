package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"reportai-backend/internal/shared/config"
	"reportai-backend/internal/shared/storage/db"
	"reportai-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate_connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate_done", nil)
}
