package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"smartcareer-backend/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

func useEmbeddedMigrations() error {
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(goose.NopLogger())
	return goose.SetDialect("postgres")
}

// RunMigrations brings the schema for users, resumes, analyses and the
// document archive up to date. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	if err := useEmbeddedMigrations(); err != nil {
		return err
	}
	before, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if err := goose.UpContext(ctx, database, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	after, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	telemetry.Info("db.migrated", map[string]any{"from": before, "to": after})
	return nil
}

// SchemaVersion reports the latest applied migration.
func SchemaVersion(ctx context.Context, database *sql.DB) (int64, error) {
	if err := useEmbeddedMigrations(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, database)
}
