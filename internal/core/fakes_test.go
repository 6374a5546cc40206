package core

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"sunbeaminfo.com/smart-assistant/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEmbedder returns canned vectors keyed by input text. Unknown
// texts get a fixed default so dimension stays constant.
type fakeEmbedder struct {
	vectors map[string][]float32
	failAll bool
	calls   int
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failAll {
		return nil, errors.New("embedding backend down")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vectorFor(text)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failAll {
		return nil, errors.New("embedding backend down")
	}
	return f.vectorFor(text), nil
}

func (f *fakeEmbedder) vectorFor(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	return []float32{0.1, 0.1}
}

// fakeGenerator echoes a canned answer and records the prompt it saw.
type fakeGenerator struct {
	answer     string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

// fakeCorpus is an in-memory CorpusStore for tests that do not need
// SQLite.
type fakeCorpus struct {
	chunks     []store.Chunk
	replaceErr error
	searchErr  error
}

func (f *fakeCorpus) ReplaceChunks(_ context.Context, chunks []store.Chunk) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.chunks = chunks
	return nil
}

func (f *fakeCorpus) SearchChunks(_ context.Context, _ []float32, k int) ([]store.ScoredChunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	scored := make([]store.ScoredChunk, 0, len(f.chunks))
	for i, chunk := range f.chunks {
		if i >= k {
			break
		}
		scored = append(scored, store.ScoredChunk{Chunk: chunk, Similarity: 1 - float32(i)*0.1})
	}
	return scored, nil
}
