package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
)

// legacyDevice matches the JSON registry format of pre-SQLite releases.
type legacyDevice struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ImportLegacyJSON reads a JSON array of {name, address} pairs and upserts
// it into the devices table. A file violating address uniqueness is repaired
// by keeping the last occurrence per address. A missing file is a no-op.
// Returns the number of devices imported.
func (db *DB) ImportLegacyJSON(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read legacy registry: %w", err)
	}

	var entries []legacyDevice
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("failed to parse legacy registry: %w", err)
	}

	// Keep the last occurrence per address, preserving first-seen order.
	latest := make(map[string]legacyDevice, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Address == "" {
			continue
		}
		if _, ok := latest[e.Address]; !ok {
			order = append(order, e.Address)
		}
		latest[e.Address] = e
	}

	err = db.Tx(ctx, func(tx *sql.Tx) error {
		for _, addr := range order {
			e := latest[addr]
			_, err := tx.ExecContext(ctx, `
				INSERT INTO devices (address, name)
				VALUES (?, ?)
				ON CONFLICT(address) DO UPDATE SET
					name = CASE WHEN excluded.name != '' THEN excluded.name ELSE devices.name END
			`, e.Address, e.Name)
			if err != nil {
				return fmt.Errorf("failed to import device %s: %w", e.Address, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(order), nil
}
