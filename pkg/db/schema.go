package db

import (
	"context"
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

// Schema SQL for version 1
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version     INTEGER PRIMARY KEY,
    applied_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Known base stations. The primary key enforces the registry's address
-- uniqueness invariant; rowid order is insertion order.
CREATE TABLE IF NOT EXISTS devices (
    address     TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    first_seen  TEXT NOT NULL DEFAULT (datetime('now')),
    last_seen   TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Single-row settings: orchestration tunables plus display preferences.
CREATE TABLE IF NOT EXISTS settings (
    id                  INTEGER PRIMARY KEY CHECK (id = 1),
    api_host            TEXT NOT NULL DEFAULT '127.0.0.1',
    api_port            INTEGER NOT NULL DEFAULT 8271,
    scan_window_ms      INTEGER NOT NULL DEFAULT 5000,
    connect_timeout_ms  INTEGER NOT NULL DEFAULT 10000,
    connect_attempts    INTEGER NOT NULL DEFAULT 3,
    backoff_base_ms     INTEGER NOT NULL DEFAULT 500,
    call_budget_ms      INTEGER NOT NULL DEFAULT 90000,
    theme               TEXT NOT NULL DEFAULT 'dark',
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_devices_last_seen ON devices(last_seen);
`

// Migrate runs database migrations to bring the schema up to date.
func (db *DB) Migrate(ctx context.Context) error {
	version, err := db.getSchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if version >= currentSchemaVersion {
		return nil // Already up to date
	}

	if version < 1 {
		if err := db.applySchemaV1(ctx); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
	}

	return nil
}

// getSchemaVersion returns the highest applied schema version, or 0 if the
// version table does not exist yet.
func (db *DB) getSchemaVersion(ctx context.Context) (int, error) {
	var exists int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name = 'schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version sql.NullInt64
	err = db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

func (db *DB) applySchemaV1(ctx context.Context) error {
	return db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO schema_version (version) VALUES (1)`)
		return err
	})
}
