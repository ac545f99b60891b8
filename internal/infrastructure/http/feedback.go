package http

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

// appendFeedback writes one JSON line per feedback item. Appends are
// best-effort durability: flushed per request, no fsync.
func appendFeedback(path string, fb *entities.Feedback) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening feedback log: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("encoding feedback: %w", err)
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing feedback: %w", err)
	}
	return nil
}
