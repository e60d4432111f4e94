package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/openlh/lighthoused/pkg/lighthouse"
)

// RegistryStore is the persisted set of known base stations.
// All mutations are serialized through transactions (single-writer
// discipline); reads copy rows out so callers always hold an immutable
// snapshot.
type RegistryStore interface {
	// List returns all known devices in insertion order.
	List(ctx context.Context) ([]lighthouse.Device, error)

	// Merge upserts the scan results keyed by address: unknown addresses are
	// inserted, known ones get their name and last-seen refreshed. Addresses
	// absent from the scan are kept. Returns the snapshot after the merge.
	Merge(ctx context.Context, discovered []lighthouse.Advertisement) ([]lighthouse.Device, error)

	// Clear empties the registry and persists the empty state immediately.
	Clear(ctx context.Context) error

	// Len returns the number of known devices.
	Len(ctx context.Context) (int, error)
}

// Registry returns a RegistryStore for this database.
func (db *DB) Registry() RegistryStore {
	return &registryStore{db: db}
}

type registryStore struct {
	db *DB
}

func (s *registryStore) List(ctx context.Context) ([]lighthouse.Device, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, name, last_seen FROM devices ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []lighthouse.Device
	for rows.Next() {
		var d lighthouse.Device
		var lastSeen string
		if err := rows.Scan(&d.Address, &d.Name, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}
		d.LastSeen, _ = time.Parse(time.DateTime, lastSeen)
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read device rows: %w", err)
	}
	return devices, nil
}

func (s *registryStore) Merge(ctx context.Context, discovered []lighthouse.Advertisement) ([]lighthouse.Device, error) {
	if len(discovered) > 0 {
		err := s.db.Tx(ctx, func(tx *sql.Tx) error {
			for _, adv := range discovered {
				// A blank advertised name never clobbers a known one; the
				// scan is the more recent source, so a non-blank name wins.
				_, err := tx.ExecContext(ctx, `
					INSERT INTO devices (address, name, last_seen)
					VALUES (?, ?, datetime('now'))
					ON CONFLICT(address) DO UPDATE SET
						name = CASE WHEN excluded.name != '' THEN excluded.name ELSE devices.name END,
						last_seen = excluded.last_seen
				`, adv.Address, adv.Name)
				if err != nil {
					return fmt.Errorf("failed to merge device %s: %w", adv.Address, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return s.List(ctx)
}

func (s *registryStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM devices`); err != nil {
		return fmt.Errorf("failed to clear registry: %w", err)
	}
	return nil
}

func (s *registryStore) Len(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM devices`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return count, nil
}
