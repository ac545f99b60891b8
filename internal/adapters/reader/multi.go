package reader

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/campuskb/ragserve/internal/domain/entities"
	"github.com/campuskb/ragserve/internal/domain/ports"
)

// MultiReader dispatches to a format-specific reader by file extension.
// Unrecognized extensions come back as ErrUnsupportedFile so ingestion can
// walk a mixed directory and simply skip what it cannot handle.
type MultiReader struct {
	readers map[string]ports.DocumentReader
}

// NewMultiReader creates a reader covering all supported formats.
func NewMultiReader() *MultiReader {
	m := &MultiReader{readers: make(map[string]ports.DocumentReader)}
	m.register(NewTextReader())
	m.register(NewExcelReader())
	return m
}

func (m *MultiReader) register(r ports.DocumentReader) {
	for _, ext := range r.SupportedExtensions() {
		m.readers[ext] = r
	}
}

// Read dispatches to the reader registered for the file's extension.
func (m *MultiReader) Read(ctx context.Context, path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	r, ok := m.readers[ext]
	if !ok {
		return nil, entities.ErrUnsupportedFile
	}
	return r.Read(ctx, path)
}

// SupportedExtensions returns all registered extensions.
func (m *MultiReader) SupportedExtensions() []string {
	exts := make([]string, 0, len(m.readers))
	for ext := range m.readers {
		exts = append(exts, ext)
	}
	return exts
}
