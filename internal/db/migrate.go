package db

import (
	"context"
	"fmt"
	"io/fs"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/billcheck/internal/sql"
)

const createMigrationsTable = `
CREATE SCHEMA IF NOT EXISTS billcheck;
CREATE TABLE IF NOT EXISTS billcheck.schema_migrations (
    name       text PRIMARY KEY,
    applied_at timestamptz NOT NULL DEFAULT now()
)`

// ApplyMigrations runs the embedded migrations that have not been applied
// yet, in filename order, each in its own transaction. It returns the names
// of the migrations it applied.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) ([]string, error) {
	names, err := fs.Glob(embedsql.Migrations, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	slices.Sort(names)

	if _, err := pool.Exec(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	var applied []string
	for _, path := range names {
		name := path[len("migrations/"):]
		data, err := fs.ReadFile(embedsql.Migrations, path)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", name, err)
		}

		done, err := applyOne(ctx, pool, name, string(data))
		if err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", name, err)
		}
		if done {
			log.Info().Str("migration", name).Msg("migration applied")
			applied = append(applied, name)
		} else {
			log.Debug().Str("migration", name).Msg("migration already applied")
		}
	}

	log.Info().Int("applied", len(applied)).Int("total", len(names)).Msg("migrations up to date")
	return applied, nil
}

func applyOne(ctx context.Context, pool *pgxpool.Pool, name, ddl string) (bool, error) {
	var done bool
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"INSERT INTO billcheck.schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING", name)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return err
		}
		done = true
		return nil
	})
	return done, err
}
