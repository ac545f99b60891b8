// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "time"

// Record is one metadata entry, aligned 1:1 with an index vector by position.
// Records are immutable once a build completes; a rebuild replaces the whole set.
type Record struct {
	SourceFile string `json:"source_file"`
	Content    string `json:"content"`
}

// Chunk is a contiguous window of a source document, created during ingestion.
type Chunk struct {
	SourceFile string
	Content    string
	Position   int // Index in the build-time sequence
}

// Hit is a single nearest-neighbor search result.
type Hit struct {
	Position int
	Distance float32 // Squared Euclidean distance
}

// RetrievedDoc is a metadata record returned from a query, with its distance.
type RetrievedDoc struct {
	Record   Record  `json:"record"`
	Distance float32 `json:"distance"`
}

// QueryRequest is a retrieval-plus-generation request.
type QueryRequest struct {
	Query string
	K     int
	Model string // Optional LLM model override
}

// QueryResponse carries the generated answer and the documents it was grounded on.
type QueryResponse struct {
	Answer    string
	Retrieved []RetrievedDoc
}

// BuildReport summarizes one index build.
type BuildReport struct {
	Documents      int // Source files read successfully
	SkippedDocs    int // Source files that failed to read or parse
	Chunks         int // Chunks produced before embedding
	Indexed        int // Vectors actually stored
	SkippedBatches int // Embedding batches dropped after a call failure
	Elapsed        time.Duration
}

// Feedback is a user rating of an answer, appended to the feedback log.
type Feedback struct {
	Timestamp         time.Time `json:"timestamp"`
	Query             string    `json:"query,omitempty"`
	Response          string    `json:"response,omitempty"`
	FeedbackType      string    `json:"feedback_type"` // thumbs_up, thumbs_down, correction_suggestion
	ThumbsUpReason    string    `json:"thumbs_up_reason,omitempty"`
	ThumbsDownReason  string    `json:"thumbs_down_reason,omitempty"`
	CorrectedQuestion string    `json:"corrected_question,omitempty"`
	CorrectAnswer     string    `json:"correct_answer,omitempty"`
	ModelUsed         string    `json:"model_used,omitempty"`
}
