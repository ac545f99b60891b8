// Package metadata provides the metadata store adapter.
// Clean Architecture: Adapter implementing ports.MetadataStore.
// Records live in a single SQLite file, ordered by position, and are
// replaced wholesale on every build.
package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/campuskb/ragserve/internal/domain/entities"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore persists build metadata as a SQLite file.
type SQLiteStore struct{}

// NewSQLiteStore creates a metadata store.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

const schema = `
CREATE TABLE records (
	position INTEGER PRIMARY KEY,
	source_file TEXT NOT NULL,
	content TEXT NOT NULL
);
`

// Persist writes records to a fresh database file and atomically renames it
// over path. Positions follow slice order exactly.
func (s *SQLiteStore) Persist(ctx context.Context, records []entities.Record, path string) error {
	tmp := path + ".tmp"
	os.Remove(tmp)

	db, err := sql.Open("sqlite3", tmp)
	if err != nil {
		return fmt.Errorf("opening metadata database: %w", err)
	}

	if err := s.writeAll(ctx, db, records); err != nil {
		db.Close()
		os.Remove(tmp)
		return err
	}
	if err := db.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing metadata database: %w", err)
	}

	return os.Rename(tmp, path)
}

func (s *SQLiteStore) writeAll(ctx context.Context, db *sql.DB, records []entities.Record) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (position, source_file, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i, r.SourceFile, r.Content); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Load returns all records in position order. A missing, unreadable or
// differently-shaped file is a load error, never a partial result.
func (s *SQLiteStore) Load(ctx context.Context, path string) ([]entities.Record, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrMetadataLoad, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrMetadataLoad, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT position, source_file, content FROM records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %v", entities.ErrMetadataLoad, path, err)
	}
	defer rows.Close()

	var records []entities.Record
	next := 0
	for rows.Next() {
		var pos int
		var r entities.Record
		if err := rows.Scan(&pos, &r.SourceFile, &r.Content); err != nil {
			return nil, fmt.Errorf("%w: scanning row: %v", entities.ErrMetadataLoad, err)
		}
		if pos != next {
			return nil, fmt.Errorf("%w: positions not contiguous at %d", entities.ErrMetadataLoad, pos)
		}
		next++
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrMetadataLoad, err)
	}

	return records, nil
}
