package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/openlh/lighthoused/pkg/lighthouse"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestRegistry_MergeInsertsAndKeepsKnown(t *testing.T) {
	reg := openTestDB(t).Registry()
	ctx := context.Background()

	devices, err := reg.Merge(ctx, []lighthouse.Advertisement{
		{Address: "AA:01", Name: "LHB-AAAA1111"},
		{Address: "AA:02", Name: "LHB-BBBB2222"},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}

	// A later scan missing AA:01 must not remove it
	devices, err = reg.Merge(ctx, []lighthouse.Advertisement{
		{Address: "AA:02", Name: "LHB-BBBB2222"},
		{Address: "AA:03", Name: "LHB-CCCC3333"},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(devices) != 3 {
		t.Fatalf("expected 3 devices after second merge, got %d", len(devices))
	}
	if devices[0].Address != "AA:01" {
		t.Errorf("expected insertion order preserved, got %s first", devices[0].Address)
	}
}

func TestRegistry_MergeIsIdempotentPerAddress(t *testing.T) {
	reg := openTestDB(t).Registry()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := reg.Merge(ctx, []lighthouse.Advertisement{
			{Address: "AA:01", Name: "LHB-AAAA1111"},
		}); err != nil {
			t.Fatalf("merge %d failed: %v", i, err)
		}
	}

	n, err := reg.Len(ctx)
	if err != nil {
		t.Fatalf("len failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 device after repeated merges, got %d", n)
	}
}

func TestRegistry_BlankNameNeverClobbers(t *testing.T) {
	reg := openTestDB(t).Registry()
	ctx := context.Background()

	if _, err := reg.Merge(ctx, []lighthouse.Advertisement{
		{Address: "AA:01", Name: "LHB-AAAA1111"},
	}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	// Advertisements sometimes arrive without a local name
	devices, err := reg.Merge(ctx, []lighthouse.Advertisement{
		{Address: "AA:01", Name: ""},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if devices[0].Name != "LHB-AAAA1111" {
		t.Fatalf("blank name clobbered the known one: %q", devices[0].Name)
	}

	// A fresh non-blank name wins
	devices, err = reg.Merge(ctx, []lighthouse.Advertisement{
		{Address: "AA:01", Name: "LHB-RENAMED1"},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if devices[0].Name != "LHB-RENAMED1" {
		t.Fatalf("expected refreshed name, got %q", devices[0].Name)
	}
}

func TestRegistry_ClearThenList(t *testing.T) {
	reg := openTestDB(t).Registry()
	ctx := context.Background()

	if _, err := reg.Merge(ctx, []lighthouse.Advertisement{
		{Address: "AA:01", Name: "LHB-AAAA1111"},
		{Address: "AA:02", Name: "LHB-BBBB2222"},
	}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if err := reg.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	devices, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(devices) != 0 {
		t.Fatalf("expected empty registry after clear, got %d devices", len(devices))
	}

	// A scan after clear repopulates from live discovery only
	devices, err = reg.Merge(ctx, []lighthouse.Advertisement{
		{Address: "AA:03", Name: "LHB-CCCC3333"},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(devices) != 1 || devices[0].Address != "AA:03" {
		t.Fatalf("expected only the fresh discovery, got %+v", devices)
	}
}

func TestRegistry_EmptyMergeReturnsSnapshot(t *testing.T) {
	reg := openTestDB(t).Registry()
	ctx := context.Background()

	if _, err := reg.Merge(ctx, []lighthouse.Advertisement{
		{Address: "AA:01", Name: "LHB-AAAA1111"},
	}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	devices, err := reg.Merge(ctx, nil)
	if err != nil {
		t.Fatalf("empty merge failed: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("expected existing snapshot from empty merge, got %d", len(devices))
	}
}
