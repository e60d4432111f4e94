package db

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Bootstrap initializes the database with default data if it's empty.
// This is called after migrations and handles first-run setup, including a
// one-shot import of the legacy JSON device registry when one exists.
func (db *DB) Bootstrap(ctx context.Context) error {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check settings: %w", err)
	}

	if count > 0 {
		return nil // Already bootstrapped
	}

	_, err = db.ExecContext(ctx, `INSERT INTO settings (id) VALUES (1)`)
	if err != nil {
		return fmt.Errorf("failed to create default settings: %w", err)
	}

	// Older releases kept the registry as a JSON array next to the config.
	if path, err := legacyDevicesPath(); err == nil {
		n, err := db.ImportLegacyJSON(ctx, path)
		if err != nil {
			// Import failure never blocks startup; the registry just starts empty.
			log.Warn().Err(err).Str("path", path).Msg("Failed to import legacy device registry")
		} else if n > 0 {
			log.Info().Int("devices", n).Str("path", path).Msg("Imported legacy device registry")
		}
	}

	return nil
}

// NeedsBootstrap returns true if the database needs initial setup.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// legacyDevicesPath returns the location of the pre-SQLite device registry.
func legacyDevicesPath() (string, error) {
	base, err := configBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "lighthoused", "lighthouse_devices.json"), nil
}
