// Package reader provides document reading adapters.
// Clean Architecture: Adapters implementing ports.DocumentReader. Each
// reader normalizes one source format into raw text units for chunking.
package reader

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

// TextReader reads plain text documents (.txt, .md) as a single unit.
type TextReader struct{}

// NewTextReader creates a plain text reader.
func NewTextReader() *TextReader {
	return &TextReader{}
}

// Read returns the whole file content as one unit.
func (r *TextReader) Read(ctx context.Context, path string) ([]string, error) {
	if !supported(path, r.SupportedExtensions()) {
		return nil, entities.ErrUnsupportedFile
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil, nil
	}
	return []string{string(content)}, nil
}

// SupportedExtensions returns file extensions this reader handles.
func (r *TextReader) SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

func supported(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
