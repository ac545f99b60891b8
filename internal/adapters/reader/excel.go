package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

// ExcelReader reads spreadsheet workbooks. Every non-empty row across every
// sheet becomes its own text unit, so a row is always chunked independently
// and never spans a chunk boundary with its neighbor.
type ExcelReader struct{}

// NewExcelReader creates a spreadsheet reader.
func NewExcelReader() *ExcelReader {
	return &ExcelReader{}
}

// Read flattens each row into a pipe-delimited string of its non-empty
// cells, preserving sheet order and row order.
func (r *ExcelReader) Read(ctx context.Context, path string) ([]string, error) {
	if !supported(path, r.SupportedExtensions()) {
		return nil, entities.ErrUnsupportedFile
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer book.Close()

	var units []string
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				if strings.TrimSpace(cell) != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) == 0 {
				continue
			}
			units = append(units, strings.Join(cells, " | "))
		}
	}
	return units, nil
}

// SupportedExtensions returns file extensions this reader handles.
func (r *ExcelReader) SupportedExtensions() []string {
	return []string{".xlsx", ".xlsm"}
}
