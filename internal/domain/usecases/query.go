// Package usecases - query.go answers queries against a loaded index pair.
package usecases

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/campuskb/ragserve/internal/domain/entities"
	"github.com/campuskb/ragserve/internal/domain/ports"
)

// DefaultTopK is the number of documents retrieved when a query does not ask
// for a specific count.
const DefaultTopK = 3

const systemPrompt = `You are a helpful assistant. Use the following context to answer the question concisely and accurately. If the context is empty or lacks specific details, say so instead of guessing.`

// Retriever composes an embedder, a loaded vector index and the aligned
// metadata records to answer queries. It never mutates its inputs and is
// safe for concurrent use once constructed.
type Retriever struct {
	embedder ports.EmbeddingService
	index    ports.VectorIndex
	records  []entities.Record
	llm      ports.LLMService
	topK     int
}

// NewRetriever creates a Retriever over a loaded index/metadata pair.
// The two files are only valid together: a count mismatch means they come
// from different builds, and serving against them would return wrong text.
func NewRetriever(
	embedder ports.EmbeddingService,
	index ports.VectorIndex,
	records []entities.Record,
	llm ports.LLMService,
	topK int,
) (*Retriever, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if index.Len() != len(records) {
		return nil, fmt.Errorf("%w: index has %d vectors, metadata has %d records",
			entities.ErrCountMismatch, index.Len(), len(records))
	}
	log.Printf("[INFO] retriever ready: %d vectors, dimension %d", index.Len(), index.Dimension())
	return &Retriever{
		embedder: embedder,
		index:    index,
		records:  records,
		llm:      llm,
		topK:     topK,
	}, nil
}

// Retrieve embeds the query text and returns the k nearest records in
// distance order. Positions with no valid metadata are dropped, so the
// result may be shorter than k.
func (r *Retriever) Retrieve(ctx context.Context, text string, k int) ([]entities.RetrievedDoc, error) {
	if strings.TrimSpace(text) == "" {
		return nil, entities.ErrEmptyQuery
	}
	if k <= 0 {
		k = r.topK
	}

	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := r.index.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	docs := make([]entities.RetrievedDoc, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(r.records) {
			log.Printf("[WARN] search position %d outside metadata range %d, dropping", h.Position, len(r.records))
			continue
		}
		rec := r.records[h.Position]
		if rec.Content == "" {
			log.Printf("[WARN] metadata record %d has no content, dropping", h.Position)
			continue
		}
		docs = append(docs, entities.RetrievedDoc{Record: rec, Distance: h.Distance})
	}
	return docs, nil
}

// Answer retrieves context for the query and asks the LLM for an answer.
func (r *Retriever) Answer(ctx context.Context, req *entities.QueryRequest) (*entities.QueryResponse, error) {
	docs, err := r.Retrieve(ctx, req.Query, req.K)
	if err != nil {
		return nil, err
	}

	answer, err := r.llm.Generate(ctx, buildPrompt(req.Query, docs), req.Model)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &entities.QueryResponse{Answer: answer, Retrieved: docs}, nil
}

// buildPrompt concatenates the retrieved content blocks with the question.
func buildPrompt(query string, docs []entities.RetrievedDoc) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nContext:\n")
	for _, d := range docs {
		sb.WriteString(d.Record.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer concisely:")
	return sb.String()
}
