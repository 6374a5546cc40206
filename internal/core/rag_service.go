package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// RAGService retrieves grounding context for a question from the chunk
// corpus.
type RAGService struct {
	store    CorpusStore
	embedder Embedder
	logger   *slog.Logger
}

func NewRAGService(corpus CorpusStore, embedder Embedder, logger *slog.Logger) *RAGService {
	return &RAGService{
		store:    corpus,
		embedder: embedder,
		logger:   logger,
	}
}

// Retrieve embeds the query, fetches the k most similar chunks and
// joins their texts in ranked order. An empty corpus or an empty match
// set yields an empty string: "no grounding available" is a valid
// outcome, not an error.
func (s *RAGService) Retrieve(ctx context.Context, query string, k int) (string, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.store.SearchChunks(ctx, vector, k)
	if err != nil {
		return "", fmt.Errorf("failed to search corpus: %w", err)
	}
	if len(results) == 0 {
		s.logger.Debug("no chunks retrieved for query")
		return "", nil
	}

	texts := make([]string, len(results))
	for i, result := range results {
		texts[i] = result.Chunk.Content
	}
	s.logger.Debug("retrieved context", "chunks", len(results), "top_similarity", results[0].Similarity)
	return strings.TrimSpace(strings.Join(texts, "\n\n")), nil
}
