package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrSettingsNotFound = errors.New("settings not found")

// Settings holds the orchestration tunables and display preferences. The
// exact numeric values are deliberately configurable rather than load-bearing
// constants.
type Settings struct {
	APIHost          string
	APIPort          int
	ScanWindowMS     int
	ConnectTimeoutMS int
	ConnectAttempts  int
	BackoffBaseMS    int
	CallBudgetMS     int
	Theme            string
	UpdatedAt        time.Time
}

// Address returns the API server listen address (host:port).
func (s *Settings) Address() string {
	return fmt.Sprintf("%s:%d", s.APIHost, s.APIPort)
}

// ScanWindow returns the scan window as a duration.
func (s *Settings) ScanWindow() time.Duration {
	return time.Duration(s.ScanWindowMS) * time.Millisecond
}

// ConnectTimeout returns the per-attempt connect timeout as a duration.
func (s *Settings) ConnectTimeout() time.Duration {
	return time.Duration(s.ConnectTimeoutMS) * time.Millisecond
}

// BackoffBase returns the initial retry backoff as a duration.
func (s *Settings) BackoffBase() time.Duration {
	return time.Duration(s.BackoffBaseMS) * time.Millisecond
}

// CallBudget returns the total per-call time budget as a duration.
func (s *Settings) CallBudget() time.Duration {
	return time.Duration(s.CallBudgetMS) * time.Millisecond
}

// SettingsStore provides access to the single settings row.
type SettingsStore interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}

// Settings returns a SettingsStore for this database.
func (db *DB) Settings() SettingsStore {
	return &settingsStore{db: db}
}

type settingsStore struct {
	db *DB
}

func (s *settingsStore) Get(ctx context.Context) (*Settings, error) {
	out := &Settings{}
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT api_host, api_port, scan_window_ms, connect_timeout_ms,
		       connect_attempts, backoff_base_ms, call_budget_ms, theme, updated_at
		FROM settings WHERE id = 1
	`).Scan(
		&out.APIHost, &out.APIPort, &out.ScanWindowMS, &out.ConnectTimeoutMS,
		&out.ConnectAttempts, &out.BackoffBaseMS, &out.CallBudgetMS, &out.Theme, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	out.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return out, nil
}

func (s *settingsStore) Update(ctx context.Context, settings *Settings) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE settings SET
			api_host = ?, api_port = ?, scan_window_ms = ?, connect_timeout_ms = ?,
			connect_attempts = ?, backoff_base_ms = ?, call_budget_ms = ?, theme = ?,
			updated_at = datetime('now')
		WHERE id = 1
	`,
		settings.APIHost, settings.APIPort, settings.ScanWindowMS, settings.ConnectTimeoutMS,
		settings.ConnectAttempts, settings.BackoffBaseMS, settings.CallBudgetMS, settings.Theme,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSettingsNotFound
	}
	return nil
}
