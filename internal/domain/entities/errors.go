package entities

import "errors"

// Domain errors - used across all layers
var (
	// ErrChunkConfig indicates invalid chunking parameters (overlap >= size)
	ErrChunkConfig = errors.New("invalid chunk configuration")

	// ErrUnsupportedFile indicates a file extension no reader handles
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrEmptyQuery indicates an empty or whitespace-only query
	ErrEmptyQuery = errors.New("empty query")

	// ErrEmptyIndex indicates a search or build against zero vectors
	ErrEmptyIndex = errors.New("index is empty")

	// ErrDimensionMismatch indicates a vector with the wrong dimension
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIndexLoad indicates the index file is missing or corrupt
	ErrIndexLoad = errors.New("index load failed")

	// ErrMetadataLoad indicates the metadata file is missing or corrupt
	ErrMetadataLoad = errors.New("metadata load failed")

	// ErrCountMismatch indicates the index and metadata files disagree on entry count
	ErrCountMismatch = errors.New("index/metadata count mismatch")

	// ErrNoDocuments indicates a build produced nothing to index
	ErrNoDocuments = errors.New("no documents to index")
)
