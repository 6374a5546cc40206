// Package core wires the ingestion-and-retrieval pipeline: chunk the
// institute's PDF corpus, embed it, answer questions strictly from the
// retrieved context.
package core

import (
	"context"
	"errors"

	"sunbeaminfo.com/smart-assistant/internal/store"
)

// Embedder is the opaque text-to-vector collaborator. Both methods
// produce vectors of the same fixed dimension.
type Embedder interface {
	// EmbedDocuments returns one vector per input text, in matching
	// order. A count mismatch is an error, never silently truncated.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator is the opaque language-model collaborator: full prompt in,
// full answer out, no streaming.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CorpusStore is the persistent chunk collection. ReplaceChunks swaps
// generations atomically with respect to SearchChunks.
type CorpusStore interface {
	ReplaceChunks(ctx context.Context, chunks []store.Chunk) error
	SearchChunks(ctx context.Context, vector []float32, k int) ([]store.ScoredChunk, error)
}

var (
	// ErrEmbedding marks failures of the embedding collaborator,
	// including result count mismatches. An ingestion run that hits it
	// aborts without touching the stored corpus.
	ErrEmbedding = errors.New("embedding service failure")

	// ErrIngestInProgress rejects a second ingestion run while one is
	// already in flight.
	ErrIngestInProgress = errors.New("ingestion already in progress")
)
