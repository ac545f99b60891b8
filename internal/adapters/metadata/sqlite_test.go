package metadata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

func sampleRecords() []entities.Record {
	return []entities.Record{
		{SourceFile: "a.txt", Content: "first chunk"},
		{SourceFile: "a.txt", Content: "second chunk"},
		{SourceFile: "b.xlsx", Content: "Accounting | Sonya Premeaux"},
	}
}

func TestSQLiteStore_PersistLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.db")
	store := NewSQLiteStore()
	ctx := context.Background()

	if err := store.Persist(ctx, sampleRecords(), path); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	loaded, err := store.Load(ctx, path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := sampleRecords()
	if len(loaded) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(loaded))
	}
	for i := range want {
		if loaded[i] != want[i] {
			t.Errorf("record %d: expected %+v, got %+v", i, want[i], loaded[i])
		}
	}
}

func TestSQLiteStore_PersistReplacesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.db")
	store := NewSQLiteStore()
	ctx := context.Background()

	if err := store.Persist(ctx, sampleRecords(), path); err != nil {
		t.Fatalf("first persist failed: %v", err)
	}

	replacement := []entities.Record{{SourceFile: "new.txt", Content: "only record"}}
	if err := store.Persist(ctx, replacement, path); err != nil {
		t.Fatalf("second persist failed: %v", err)
	}

	loaded, err := store.Load(ctx, path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != replacement[0] {
		t.Errorf("store should hold only the replacement records, got %+v", loaded)
	}
}

func TestSQLiteStore_LoadMissingFile(t *testing.T) {
	store := NewSQLiteStore()

	_, err := store.Load(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	if !errors.Is(err, entities.ErrMetadataLoad) {
		t.Errorf("expected ErrMetadataLoad, got %v", err)
	}
}

func TestSQLiteStore_LoadWrongShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(path, []byte("this is not a database"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewSQLiteStore()
	_, err := store.Load(context.Background(), path)
	if !errors.Is(err, entities.ErrMetadataLoad) {
		t.Errorf("expected ErrMetadataLoad, got %v", err)
	}
}

func TestSQLiteStore_PersistEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.db")
	store := NewSQLiteStore()
	ctx := context.Background()

	if err := store.Persist(ctx, nil, path); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	loaded, err := store.Load(ctx, path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected 0 records, got %d", len(loaded))
	}
}
