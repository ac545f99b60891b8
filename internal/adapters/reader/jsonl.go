package reader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

// jsonlLine accepts either an exported-corpus line {"text": ...} or a full
// record line {"source_file": ..., "content": ...}.
type jsonlLine struct {
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	Content    string `json:"content"`
}

// ReadJSONL loads prepared records from a JSON Lines file, one record per
// line, for bulk index rebuilds.
func ReadJSONL(path string) ([]entities.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening jsonl file: %w", err)
	}
	defer file.Close()

	var records []entities.Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry jsonlLine
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		content := entry.Content
		if content == "" {
			content = entry.Text
		}
		if content == "" {
			return nil, fmt.Errorf("line %d: no text or content field", lineNo)
		}
		records = append(records, entities.Record{SourceFile: entry.SourceFile, Content: content})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading jsonl file: %w", err)
	}

	return records, nil
}
