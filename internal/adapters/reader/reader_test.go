package reader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

func TestTextReader_WholeFileIsOneUnit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	os.WriteFile(path, []byte("Hello World"), 0o644)

	units, err := NewTextReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0] != "Hello World" {
		t.Errorf("unexpected content: %q", units[0])
	}
}

func TestTextReader_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	os.WriteFile(path, []byte("  \n\t"), 0o644)

	units, err := NewTextReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("whitespace-only file should yield no units, got %d", len(units))
	}
}

func TestTextReader_NonexistentFile(t *testing.T) {
	_, err := NewTextReader().Read(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Error("should error on nonexistent file")
	}
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close()

	book.SetCellValue("Sheet1", "A1", "Accounting")
	book.SetCellValue("Sheet1", "B1", "Sonya Premeaux")
	// Row 2 left empty on purpose.
	book.SetCellValue("Sheet1", "A3", "Biology")
	book.SetCellValue("Sheet1", "C3", "Jane Doe")

	if _, err := book.NewSheet("Sheet2"); err != nil {
		t.Fatalf("adding sheet: %v", err)
	}
	book.SetCellValue("Sheet2", "A1", "Chemistry")

	if err := book.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
}

func TestExcelReader_RowsBecomeUnits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.xlsx")
	writeWorkbook(t, path)

	units, err := NewExcelReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	want := []string{
		"Accounting | Sonya Premeaux",
		"Biology | Jane Doe",
		"Chemistry",
	}
	if len(units) != len(want) {
		t.Fatalf("expected %d units, got %d: %v", len(want), len(units), units)
	}
	for i := range want {
		if units[i] != want[i] {
			t.Errorf("unit %d: expected %q, got %q", i, want[i], units[i])
		}
	}
}

func TestMultiReader_DispatchByExtension(t *testing.T) {
	dir := t.TempDir()
	txtPath := filepath.Join(dir, "doc.txt")
	os.WriteFile(txtPath, []byte("text content"), 0o644)

	m := NewMultiReader()
	units, err := m.Read(context.Background(), txtPath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(units) != 1 || units[0] != "text content" {
		t.Errorf("txt not read correctly: %v", units)
	}
}

func TestMultiReader_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.png")
	os.WriteFile(path, []byte{0x89, 0x50}, 0o644)

	_, err := NewMultiReader().Read(context.Background(), path)
	if !errors.Is(err, entities.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestReadJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.jsonl")
	content := `{"text": "first entry"}
{"source_file": "grad.xlsx", "content": "Accounting | Sonya Premeaux"}

{"text": "last entry"}
`
	os.WriteFile(path, []byte(content), 0o644)

	records, err := ReadJSONL(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Content != "first entry" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].SourceFile != "grad.xlsx" || records[1].Content != "Accounting | Sonya Premeaux" {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}

func TestReadJSONL_BadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.jsonl")
	os.WriteFile(path, []byte("{\"text\": \"ok\"}\nnot json\n"), 0o644)

	_, err := ReadJSONL(path)
	if err == nil {
		t.Error("should error on malformed line")
	}
}

func TestReadJSONL_MissingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.jsonl")
	os.WriteFile(path, []byte("{\"source_file\": \"a.txt\"}\n"), 0o644)

	_, err := ReadJSONL(path)
	if err == nil {
		t.Error("should error on line without text or content")
	}
}
