package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"sunbeaminfo.com/smart-assistant/internal/chunker"
	"sunbeaminfo.com/smart-assistant/internal/pdf"
	"sunbeaminfo.com/smart-assistant/internal/store"
)

// IngestService rebuilds the chunk corpus from a directory of PDF
// documents. A run either fully replaces the stored generation or, on
// any failure before the final replace, leaves it untouched.
type IngestService struct {
	store    CorpusStore
	embedder Embedder
	splitter *chunker.Splitter
	logger   *slog.Logger

	// extractPages is swappable in tests.
	extractPages func(path string) ([]pdf.Page, error)

	mu sync.Mutex // one run at a time
}

func NewIngestService(corpus CorpusStore, embedder Embedder, splitter *chunker.Splitter, logger *slog.Logger) *IngestService {
	return &IngestService{
		store:        corpus,
		embedder:     embedder,
		splitter:     splitter,
		logger:       logger,
		extractPages: pdf.ExtractPages,
	}
}

// Ingest chunks and embeds every PDF in dir and swaps the result in as
// the new corpus generation. A missing directory is a benign no-op
// returning zero. Unreadable documents are skipped with a warning; the
// rest of the run continues.
func (s *IngestService) Ingest(ctx context.Context, dir string) (int, error) {
	if !s.mu.TryLock() {
		return 0, ErrIngestInProgress
	}
	defer s.mu.Unlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("pdf directory does not exist, nothing to ingest", "dir", dir)
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read pdf directory %s: %w", dir, err)
	}

	var segments []chunker.Segment
	documents, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		documents++
		pages, err := s.extractPages(filepath.Join(dir, entry.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable document", "document", entry.Name(), "error", err)
			skipped++
			continue
		}
		docSegments := s.splitter.Split(pages, entry.Name())
		s.logger.Info("chunked document", "document", entry.Name(), "pages", len(pages), "segments", len(docSegments))
		segments = append(segments, docSegments...)
	}

	// A directory with no PDFs is a deliberate empty generation, but a
	// run where every present document failed extraction is degraded:
	// abort it rather than wipe the corpus.
	if documents > 0 && skipped == documents {
		return 0, fmt.Errorf("all %d documents in %s were unreadable, keeping previous corpus", documents, dir)
	}

	chunks := make([]store.Chunk, len(segments))
	if len(segments) > 0 {
		texts := make([]string, len(segments))
		for i, segment := range segments {
			texts[i] = segment.Text
		}

		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("failed to embed %d segments: %w", len(texts), err)
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("%w: embedded %d of %d segments", ErrEmbedding, len(vectors), len(texts))
		}

		for i, segment := range segments {
			chunks[i] = store.Chunk{
				ID:        uuid.NewString(),
				Source:    segment.Source,
				Page:      segment.Page,
				Position:  segment.Ordinal,
				Content:   segment.Text,
				Embedding: vectors[i],
			}
		}
	}

	if err := s.store.ReplaceChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to replace corpus: %w", err)
	}

	s.logger.Info("ingestion complete", "chunks", len(chunks))
	return len(chunks), nil
}
