package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// migrationsFS returns the embedded schema migrations rooted at their directory.
func migrationsFS() (fs.FS, error) {
	return fs.Sub(embedMigrations, "migrations")
}

// RunMigrations brings the farm schema up to date and returns the number of
// migrations applied by this call. A schema already at the latest version
// applies none.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	fsys, err := migrationsFS()
	if err != nil {
		return 0, fmt.Errorf("open embedded migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("run migrations: %w", err)
	}
	for _, r := range results {
		slog.Debug("migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration,
		)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return len(results), fmt.Errorf("get schema version: %w", err)
	}

	slog.Info("migrations completed", "applied", len(results), "version", version)

	return len(results), nil
}
