package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeLegacyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lighthouse_devices.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write legacy file: %v", err)
	}
	return path
}

func TestImportLegacyJSON_Basic(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	path := writeLegacyFile(t, `[
		{"name": "LHB-AAAA1111", "address": "AA:01"},
		{"name": "LHB-BBBB2222", "address": "AA:02"}
	]`)

	n, err := database.ImportLegacyJSON(ctx, path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 imported devices, got %d", n)
	}

	devices, err := database.Registry().List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(devices) != 2 || devices[0].Address != "AA:01" {
		t.Fatalf("unexpected registry contents: %+v", devices)
	}
}

func TestImportLegacyJSON_DuplicateAddressesKeepLast(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// A hand-edited file can violate address uniqueness; the last
	// occurrence wins.
	path := writeLegacyFile(t, `[
		{"name": "LHB-STALE0000", "address": "AA:01"},
		{"name": "LHB-BBBB2222", "address": "AA:02"},
		{"name": "LHB-FRESH1111", "address": "AA:01"}
	]`)

	n, err := database.ImportLegacyJSON(ctx, path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 unique devices, got %d", n)
	}

	devices, err := database.Registry().List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if devices[0].Address != "AA:01" || devices[0].Name != "LHB-FRESH1111" {
		t.Fatalf("expected last occurrence to win for AA:01, got %+v", devices[0])
	}
}

func TestImportLegacyJSON_MissingFileIsNoop(t *testing.T) {
	database := openTestDB(t)

	n, err := database.ImportLegacyJSON(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing file must be a no-op, got %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 imports, got %d", n)
	}
}

func TestImportLegacyJSON_MalformedFileFails(t *testing.T) {
	database := openTestDB(t)

	path := writeLegacyFile(t, `{"not": "an array"}`)
	if _, err := database.ImportLegacyJSON(context.Background(), path); err == nil {
		t.Fatal("expected error for malformed legacy file")
	}

	// A failed import leaves the registry untouched
	n, err := database.Registry().Len(context.Background())
	if err != nil {
		t.Fatalf("len failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty registry after failed import, got %d", n)
	}
}

func TestImportLegacyJSON_SkipsBlankAddresses(t *testing.T) {
	database := openTestDB(t)

	path := writeLegacyFile(t, `[
		{"name": "LHB-AAAA1111", "address": "AA:01"},
		{"name": "LHB-GHOST0000", "address": ""}
	]`)

	n, err := database.ImportLegacyJSON(context.Background(), path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 imported device, got %d", n)
	}
}
