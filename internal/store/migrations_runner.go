package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jw6ventures/dyncal/internal/migrations"
)

// PgxPool is the subset of pgxpool.Pool the store uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// migrationLockKey serializes schema changes between server instances that
// start against the same database.
const migrationLockKey int64 = 0x64796e63616c

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// ApplyMigrations runs the embedded migrations that are not yet recorded.
func ApplyMigrations(ctx context.Context, pool PgxPool) error {
	list, err := migrations.Load()
	if err != nil {
		return err
	}
	return migrate(ctx, pool, list)
}

// migrate brings the schema up to date with list. A database that already has
// the availability tables but no recorded versions was created before
// versions were tracked; the first migration is recorded for it, not run.
func migrate(ctx context.Context, pool PgxPool, list []migrations.Migration) error {
	if len(list) == 0 {
		return nil
	}

	const createTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
        version TEXT PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		var present bool
		const q = `SELECT to_regclass('public.availability_sets') IS NOT NULL`
		if err := pool.QueryRow(ctx, q).Scan(&present); err != nil {
			return fmt.Errorf("inspect existing schema: %w", err)
		}
		if present {
			if err := recordVersion(ctx, pool, list[0].Version); err != nil {
				return err
			}
			applied[list[0].Version] = true
			log.Printf("[INFO] recorded existing schema as %s", list[0].Version)
		}
	}

	for _, m := range list {
		if applied[m.Version] {
			continue
		}
		ran, err := applyOne(ctx, pool, m)
		if err != nil {
			return err
		}
		if ran {
			log.Printf("[INFO] applied migration %s", m.Version)
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, pool PgxPool) (map[string]bool, error) {
	var versions []string
	const q = `SELECT COALESCE(array_agg(version), '{}') FROM schema_migrations`
	if err := pool.QueryRow(ctx, q).Scan(&versions); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// applyOne runs m in its own transaction under the migration lock. It reports
// false when another instance applied m first.
func applyOne(ctx context.Context, pool PgxPool, m migrations.Migration) (bool, error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin migration %s: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
		return false, fmt.Errorf("lock migrations: %w", err)
	}
	var done bool
	const q = `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version=$1)`
	if err := tx.QueryRow(ctx, q, m.Version).Scan(&done); err != nil {
		return false, fmt.Errorf("check migration %s: %w", m.Version, err)
	}
	if done {
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return false, fmt.Errorf("apply migration %s: %w", m.Version, err)
	}
	if err := recordVersion(ctx, tx, m.Version); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit migration %s: %w", m.Version, err)
	}
	return true, nil
}

func recordVersion(ctx context.Context, db execer, version string) error {
	const q = `INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`
	if _, err := db.Exec(ctx, q, version); err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	return nil
}
