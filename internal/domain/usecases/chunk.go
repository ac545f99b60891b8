// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
package usecases

import (
	"fmt"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

// ChunkText splits text into fixed-size character windows with overlap.
// Each window starts size-overlap characters after the previous one; the
// final window is truncated to the remaining length. Empty text yields no
// chunks. Pure function of its inputs.
func ChunkText(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d must be positive", entities.ErrChunkConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", entities.ErrChunkConfig, overlap)
	}
	if overlap >= size {
		// The window would never advance.
		return nil, fmt.Errorf("%w: overlap %d >= size %d", entities.ErrChunkConfig, overlap, size)
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	step := size - overlap
	chunks := make([]string, 0, (n+step-1)/step)
	for start := 0; start < n; start += step {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
