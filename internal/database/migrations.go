package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/muratoffalex/manobot/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the profiles and histories schema up to date and
// returns the resulting schema version.
func RunMigrations(ctx context.Context, db *sql.DB, log logger.Logger) (int64, error) {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(logger.MigrationAdapter{Logger: log.WithField("component", "migrations")})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
