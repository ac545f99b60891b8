package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

func testVectors() [][]float32 {
	return [][]float32{
		{0, 0, 0},
		{1, 0, 0},
		{0, 2, 0},
		{3, 3, 3},
	}
}

func buildIndex(t *testing.T) *FlatL2 {
	t.Helper()
	idx := NewFlatL2(3)
	if err := idx.Add(testVectors()...); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	return idx
}

func TestFlatL2_ExactMatchIsTopHit(t *testing.T) {
	idx := buildIndex(t)

	for i, v := range testVectors() {
		hits, err := idx.Search(v, 1)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if hits[0].Position != i {
			t.Errorf("query equal to vector %d: top hit is %d", i, hits[0].Position)
		}
		if hits[0].Distance != 0 {
			t.Errorf("exact match distance should be 0, got %f", hits[0].Distance)
		}
	}
}

func TestFlatL2_AscendingDistances(t *testing.T) {
	idx := buildIndex(t)

	hits, err := idx.Search([]float32{0, 0, 0}, 4)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("distances not ascending at %d: %f < %f", i, hits[i].Distance, hits[i-1].Distance)
		}
	}
}

func TestFlatL2_KLargerThanStoredReturnsAll(t *testing.T) {
	idx := buildIndex(t)

	hits, err := idx.Search([]float32{0, 0, 0}, 100)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 4 {
		t.Errorf("expected all 4 hits, got %d", len(hits))
	}
}

func TestFlatL2_TiesBrokenByInsertionOrder(t *testing.T) {
	idx := NewFlatL2(2)
	// Vectors 0 and 1 are equidistant from the query.
	if err := idx.Add([]float32{1, 0}, []float32{-1, 0}, []float32{5, 5}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	hits, err := idx.Search([]float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if hits[0].Position != 0 || hits[1].Position != 1 {
		t.Errorf("tie should keep insertion order, got positions %d, %d", hits[0].Position, hits[1].Position)
	}
}

func TestFlatL2_DimensionMismatch(t *testing.T) {
	idx := buildIndex(t)

	if err := idx.Add([]float32{1, 2}); !errors.Is(err, entities.ErrDimensionMismatch) {
		t.Errorf("add with wrong dimension: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := idx.Search([]float32{1, 2}, 1); !errors.Is(err, entities.ErrDimensionMismatch) {
		t.Errorf("search with wrong dimension: expected ErrDimensionMismatch, got %v", err)
	}
}

func TestFlatL2_EmptyIndexSearch(t *testing.T) {
	idx := NewFlatL2(3)

	_, err := idx.Search([]float32{0, 0, 0}, 1)
	if !errors.Is(err, entities.ErrEmptyIndex) {
		t.Errorf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestFlatL2_PersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.gob")

	idx := buildIndex(t)
	if err := idx.Persist(path); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Len() != idx.Len() {
		t.Fatalf("loaded %d vectors, expected %d", loaded.Len(), idx.Len())
	}
	if loaded.Dimension() != 3 {
		t.Errorf("loaded dimension %d, expected 3", loaded.Dimension())
	}

	query := []float32{0.5, 0.1, 0}
	before, err := idx.Search(query, 4)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	after, err := loaded.Search(query, 4)
	if err != nil {
		t.Fatalf("search on loaded index failed: %v", err)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("hit %d differs after round trip: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestFlatL2_LoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gob"))
	if !errors.Is(err, entities.ErrIndexLoad) {
		t.Errorf("expected ErrIndexLoad, got %v", err)
	}
}

func TestFlatL2_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.gob")
	if err := os.WriteFile(path, []byte("not a gob stream"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, entities.ErrIndexLoad) {
		t.Errorf("expected ErrIndexLoad, got %v", err)
	}
}

func TestFlatL2_PersistLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.gob")

	idx := buildIndex(t)
	if err := idx.Persist(path); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be renamed away")
	}
}
