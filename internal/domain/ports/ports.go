// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

// EmbeddingService converts text to fixed-dimension vectors.
// It is the single seam where the embedding dimension is enforced:
// implementations must reject any provider response of the wrong width.
type EmbeddingService interface {
	// Embed generates a vector for a single text (the query-time path).
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one vector per input, in input order.
	// The whole call fails or succeeds as a unit; callers decide the skip policy.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the configured vector width.
	Dimension() int
}

// VectorIndex stores embedding vectors and answers exact nearest-neighbor
// searches by squared Euclidean distance. Insertion order defines positions.
type VectorIndex interface {
	// Add appends vectors in input order. Fails on any dimension mismatch.
	Add(vectors ...[]float32) error

	// Search returns the k nearest stored vectors, ascending by distance,
	// ties broken by lower position. k > Len() returns all stored vectors.
	Search(query []float32, k int) ([]entities.Hit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimension returns the vector width the index was created with.
	Dimension() int

	// Persist writes the index to a single file, atomically replacing any
	// previous version at that path.
	Persist(path string) error
}

// MetadataStore persists the ordered record sequence aligned with the index.
type MetadataStore interface {
	// Persist writes records in order, atomically replacing the file at path.
	Persist(ctx context.Context, records []entities.Record, path string) error

	// Load returns all records in insertion order. Fails if the file is
	// missing, unreadable, or not the expected shape.
	Load(ctx context.Context, path string) ([]entities.Record, error)
}

// DocumentReader normalizes one source file into raw text units.
// Plain text yields a single unit; tabular sources yield one unit per row.
type DocumentReader interface {
	// Read returns the text units of the file at path.
	// Returns entities.ErrUnsupportedFile for extensions it does not handle.
	Read(ctx context.Context, path string) ([]string, error)

	// SupportedExtensions returns file extensions this reader handles.
	SupportedExtensions() []string
}

// LLMService generates an answer from a prompt and retrieved context.
type LLMService interface {
	Generate(ctx context.Context, prompt string, model string) (string, error)
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
