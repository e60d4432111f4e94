package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSettings_BootstrapDefaults(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	needs, err := database.NeedsBootstrap(ctx)
	if err != nil {
		t.Fatalf("needs bootstrap check failed: %v", err)
	}
	if !needs {
		t.Fatal("fresh database must need bootstrap")
	}

	if err := database.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	needs, err = database.NeedsBootstrap(ctx)
	if err != nil {
		t.Fatalf("needs bootstrap check failed: %v", err)
	}
	if needs {
		t.Fatal("bootstrapped database must not need bootstrap again")
	}

	settings, err := database.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if settings.APIHost != "127.0.0.1" || settings.APIPort != 8271 {
		t.Errorf("unexpected API defaults: %s:%d", settings.APIHost, settings.APIPort)
	}
	if settings.ScanWindow() != 5*time.Second {
		t.Errorf("unexpected scan window default: %s", settings.ScanWindow())
	}
	if settings.ConnectAttempts != 3 {
		t.Errorf("unexpected connect attempts default: %d", settings.ConnectAttempts)
	}
	if settings.Theme != "dark" {
		t.Errorf("unexpected theme default: %s", settings.Theme)
	}
}

func TestSettings_GetBeforeBootstrap(t *testing.T) {
	database := openTestDB(t)

	_, err := database.Settings().Get(context.Background())
	if !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}
}

func TestSettings_UpdateRoundTrip(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := database.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	store := database.Settings()
	settings, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}

	settings.ScanWindowMS = 8000
	settings.ConnectAttempts = 5
	settings.Theme = "light"
	if err := store.Update(ctx, settings); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if got.ScanWindowMS != 8000 || got.ConnectAttempts != 5 || got.Theme != "light" {
		t.Fatalf("update did not persist: %+v", got)
	}
	// Untouched fields keep their values
	if got.APIPort != 8271 {
		t.Errorf("unrelated field changed: %d", got.APIPort)
	}
}

func TestSettings_Address(t *testing.T) {
	s := &Settings{APIHost: "127.0.0.1", APIPort: 8271}
	if s.Address() != "127.0.0.1:8271" {
		t.Fatalf("unexpected address: %s", s.Address())
	}
}

func TestBootstrap_Idempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := database.Bootstrap(ctx); err != nil {
		t.Fatalf("first bootstrap failed: %v", err)
	}

	settings, err := database.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	settings.Theme = "light"
	if err := database.Settings().Update(ctx, settings); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// A second bootstrap must not reset anything
	if err := database.Bootstrap(ctx); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	got, err := database.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if got.Theme != "light" {
		t.Fatalf("bootstrap reset settings: %+v", got)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// openTestDB already migrated once
	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("repeated migrate failed: %v", err)
	}

	version, err := database.getSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("get schema version failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Fatalf("expected schema version %d, got %d", currentSchemaVersion, version)
	}
}
