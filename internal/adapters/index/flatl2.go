// Package index provides the vector index adapter.
// Clean Architecture: Adapter implementing ports.VectorIndex.
// FlatL2 is an exact brute-force index; an approximate structure can be
// swapped in behind the same interface for larger corpora.
package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

// FlatL2 stores vectors of a fixed dimension and searches them by squared
// Euclidean distance with a linear scan. Reads are safe concurrently once
// building is done; Add is not safe against concurrent Search.
type FlatL2 struct {
	dim     int
	vectors [][]float32
}

// NewFlatL2 creates an empty index for vectors of the given dimension.
func NewFlatL2(dim int) *FlatL2 {
	return &FlatL2{dim: dim}
}

// Add appends vectors in input order, assigning them the next positions.
func (idx *FlatL2) Add(vectors ...[]float32) error {
	for i, v := range vectors {
		if len(v) != idx.dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
				entities.ErrDimensionMismatch, i, len(v), idx.dim)
		}
	}
	idx.vectors = append(idx.vectors, vectors...)
	return nil
}

// Search returns the k nearest stored vectors, ascending by squared L2
// distance. Ties go to the lower position. k larger than the stored count
// returns everything.
func (idx *FlatL2) Search(query []float32, k int) ([]entities.Hit, error) {
	if len(idx.vectors) == 0 {
		return nil, entities.ErrEmptyIndex
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			entities.ErrDimensionMismatch, len(query), idx.dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("invalid k %d", k)
	}

	hits := make([]entities.Hit, len(idx.vectors))
	for i, v := range idx.vectors {
		hits[i] = entities.Hit{Position: i, Distance: squaredL2(query, v)}
	}

	// Stable sort keeps insertion order for equal distances.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (idx *FlatL2) Len() int {
	return len(idx.vectors)
}

// Dimension returns the vector width the index was created with.
func (idx *FlatL2) Dimension() int {
	return idx.dim
}

// indexFile is the on-disk gob layout.
type indexFile struct {
	Dimension int
	Vectors   [][]float32
}

// Persist writes the index to path via a temporary file and an atomic
// rename, so a concurrent reader never sees a partial write.
func (idx *FlatL2) Persist(path string) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}

	enc := gob.NewEncoder(file)
	if err := enc.Encode(indexFile{Dimension: idx.dim, Vectors: idx.vectors}); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing index file: %w", err)
	}

	return os.Rename(tmp, path)
}

// Load reads an index persisted by Persist. A missing or corrupt file is an
// error; a partially usable index is never returned.
func Load(path string) (*FlatL2, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrIndexLoad, err)
	}
	defer file.Close()

	var data indexFile
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", entities.ErrIndexLoad, path, err)
	}
	if data.Dimension <= 0 {
		return nil, fmt.Errorf("%w: %s has dimension %d", entities.ErrIndexLoad, path, data.Dimension)
	}
	for i, v := range data.Vectors {
		if len(v) != data.Dimension {
			return nil, fmt.Errorf("%w: vector %d in %s has dimension %d, expected %d",
				entities.ErrIndexLoad, i, path, len(v), data.Dimension)
		}
	}

	return &FlatL2{dim: data.Dimension, vectors: data.Vectors}, nil
}

// squaredL2 computes the squared Euclidean distance between two vectors of
// equal length.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
