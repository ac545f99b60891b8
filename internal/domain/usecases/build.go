// Package usecases - build.go runs the offline index build pipeline.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/campuskb/ragserve/internal/domain/entities"
	"github.com/campuskb/ragserve/internal/domain/ports"
)

const (
	// DefaultBatchSize bounds peak memory per embedding call during a build.
	DefaultBatchSize = 32

	// DefaultRebuildBatchSize is used for bulk rebuilds from prepared records.
	DefaultRebuildBatchSize = 100
)

// BuildUseCase ingests a document directory into a vector index and an
// aligned metadata store, persisted together as a matched pair.
type BuildUseCase struct {
	reader       ports.DocumentReader
	embedder     ports.EmbeddingService
	newIndex     func(dim int) ports.VectorIndex
	store        ports.MetadataStore
	indexPath    string
	metadataPath string
	chunkSize    int
	chunkOverlap int
	batchSize    int
}

// NewBuildUseCase creates a BuildUseCase with injected dependencies.
// newIndex constructs an empty index of the given dimension; each build
// starts from a fresh index so a rebuild replaces the pair wholesale.
func NewBuildUseCase(
	reader ports.DocumentReader,
	embedder ports.EmbeddingService,
	newIndex func(dim int) ports.VectorIndex,
	store ports.MetadataStore,
	indexPath, metadataPath string,
	chunkSize, chunkOverlap, batchSize int,
) (*BuildUseCase, error) {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 {
		chunkOverlap = 100
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d >= size %d", entities.ErrChunkConfig, chunkOverlap, chunkSize)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BuildUseCase{
		reader:       reader,
		embedder:     embedder,
		newIndex:     newIndex,
		store:        store,
		indexPath:    indexPath,
		metadataPath: metadataPath,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		batchSize:    batchSize,
	}, nil
}

// Build chunks every supported file under dataDir, embeds the chunks in
// batches, and persists the index and metadata files.
//
// Filenames are sorted before ingestion so positions are reproducible across
// rebuilds. A document that fails to read is skipped and counted. A failed
// embedding batch is skipped in full - its chunks appear in neither the
// index nor the metadata, so the two stay aligned.
func (uc *BuildUseCase) Build(ctx context.Context, dataDir string) (*entities.BuildReport, error) {
	start := time.Now()
	report := &entities.BuildReport{}

	dirEntries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var records []entities.Record
	for _, name := range names {
		units, err := uc.reader.Read(ctx, filepath.Join(dataDir, name))
		if errors.Is(err, entities.ErrUnsupportedFile) {
			continue
		}
		if err != nil {
			log.Printf("[WARN] skipping %s: %v", name, err)
			report.SkippedDocs++
			continue
		}
		report.Documents++

		for _, unit := range units {
			chunks, err := ChunkText(unit, uc.chunkSize, uc.chunkOverlap)
			if err != nil {
				return nil, err
			}
			for _, c := range chunks {
				records = append(records, entities.Record{SourceFile: name, Content: c})
			}
		}
	}
	report.Chunks = len(records)

	kept, index, err := uc.embedAndIndex(ctx, records, report)
	if err != nil {
		return nil, err
	}

	if err := uc.persistPair(ctx, index, kept); err != nil {
		return nil, err
	}

	report.Elapsed = time.Since(start)
	log.Printf("[INFO] build complete: %d docs (%d skipped), %d chunks, %d indexed, %d batches skipped, %s",
		report.Documents, report.SkippedDocs, report.Chunks, report.Indexed, report.SkippedBatches, report.Elapsed)
	return report, nil
}

// BuildFromRecords runs the embed-and-persist half of the pipeline over
// prepared records, for bulk rebuilds from an exported corpus.
func (uc *BuildUseCase) BuildFromRecords(ctx context.Context, records []entities.Record) (*entities.BuildReport, error) {
	start := time.Now()
	report := &entities.BuildReport{Chunks: len(records)}

	kept, index, err := uc.embedAndIndex(ctx, records, report)
	if err != nil {
		return nil, err
	}
	if err := uc.persistPair(ctx, index, kept); err != nil {
		return nil, err
	}

	report.Elapsed = time.Since(start)
	log.Printf("[INFO] rebuild complete: %d records, %d indexed, %d batches skipped, %s",
		report.Chunks, report.Indexed, report.SkippedBatches, report.Elapsed)
	return report, nil
}

// embedAndIndex embeds records batch by batch. A batch that fails is dropped
// whole: a partial index is preferred over no index, and dropping vectors and
// records together preserves positional alignment.
func (uc *BuildUseCase) embedAndIndex(ctx context.Context, records []entities.Record, report *entities.BuildReport) ([]entities.Record, ports.VectorIndex, error) {
	if len(records) == 0 {
		return nil, nil, entities.ErrNoDocuments
	}

	index := uc.newIndex(uc.embedder.Dimension())
	kept := make([]entities.Record, 0, len(records))

	for i := 0; i < len(records); i += uc.batchSize {
		end := i + uc.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[i:end]

		texts := make([]string, len(batch))
		for j, r := range batch {
			texts[j] = r.Content
		}

		vectors, err := uc.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			log.Printf("[WARN] embedding batch %d-%d failed, skipping: %v", i, end, err)
			report.SkippedBatches++
			continue
		}

		if err := index.Add(vectors...); err != nil {
			return nil, nil, fmt.Errorf("adding batch %d-%d: %w", i, end, err)
		}
		kept = append(kept, batch...)
	}

	if index.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: every embedding batch failed", entities.ErrNoDocuments)
	}
	report.Indexed = index.Len()
	return kept, index, nil
}

// persistPair writes the index and metadata files together. Both adapters
// replace their files atomically, so a serving process never observes a
// partially written file.
func (uc *BuildUseCase) persistPair(ctx context.Context, index ports.VectorIndex, records []entities.Record) error {
	if err := index.Persist(uc.indexPath); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}
	if err := uc.store.Persist(ctx, records, uc.metadataPath); err != nil {
		return fmt.Errorf("persisting metadata: %w", err)
	}
	return nil
}
