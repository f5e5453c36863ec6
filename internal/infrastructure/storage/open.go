package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const createMemoryTable = `CREATE TABLE IF NOT EXISTS campaign_memory (
	campaign_id TEXT PRIMARY KEY,
	total_lifetime_raised DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_lifetime_km_run DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_update_date TEXT NOT NULL,
	past_posts TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Open connects to dsn with the dialect's driver and ensures the schema exists.
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	driver := string(dialect)
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the memory table when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createMemoryTable); err != nil {
		return fmt.Errorf("migrate memory table: %w", err)
	}
	return nil
}
