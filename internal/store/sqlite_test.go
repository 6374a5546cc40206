package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testChunk(id string, embedding []float32) Chunk {
	return Chunk{
		ID:        id,
		Source:    "courses.pdf",
		Page:      1,
		Position:  0,
		Content:   "content of " + id,
		Embedding: embedding,
	}
}

func TestSearchEmptyStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	results, err := s.SearchChunks(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRequiresPositiveK(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SearchChunks(context.Background(), []float32{1, 0}, 0)
	assert.Error(t, err)
}

func TestSearchSimilarityOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunks := []Chunk{
		testChunk("straight", []float32{1, 0}),
		testChunk("close", []float32{0.9, 0.1}),
		testChunk("orthogonal", []float32{0, 1}),
		testChunk("diagonal", []float32{0.5, 0.5}),
		testChunk("opposite", []float32{-1, 0}),
	}
	require.NoError(t, s.ReplaceChunks(ctx, chunks))

	results, err := s.SearchChunks(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "straight", results[0].Chunk.ID)
	assert.Equal(t, "close", results[1].Chunk.ID)
	assert.Equal(t, "diagonal", results[2].Chunk.ID)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Similarity, results[i-1].Similarity)
	}

	// Asking for more than the store holds returns everything, ranked.
	results, err = s.SearchChunks(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, "opposite", results[4].Chunk.ID)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunks := []Chunk{
		testChunk("first", []float32{1, 0}),
		testChunk("second", []float32{1, 0}),
		testChunk("third", []float32{2, 0}), // same direction, same cosine
	}
	require.NoError(t, s.ReplaceChunks(ctx, chunks))

	results, err := s.SearchChunks(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.ID)
	assert.Equal(t, "second", results[1].Chunk.ID)
	assert.Equal(t, "third", results[2].Chunk.ID)
}

func TestSearchDimensionMismatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceChunks(ctx, []Chunk{testChunk("a", []float32{1, 0, 0})}))

	_, err := s.SearchChunks(ctx, []float32{1, 0}, 1)
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestReplaceChunksSwapsGenerations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceChunks(ctx, []Chunk{
		testChunk("old-1", []float32{1, 0}),
		testChunk("old-2", []float32{0, 1}),
	}))
	require.NoError(t, s.ReplaceChunks(ctx, []Chunk{
		testChunk("new-1", []float32{1, 0}),
	}))

	count, err := s.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := s.SearchChunks(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new-1", results[0].Chunk.ID)
}

func TestSearchDuringReplaceSeesOneGeneration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeGeneration := func(tag string) []Chunk {
		chunks := make([]Chunk, 40)
		for i := range chunks {
			chunks[i] = Chunk{
				ID:        fmt.Sprintf("%s-%02d", tag, i),
				Source:    tag + ".pdf",
				Page:      1,
				Position:  i,
				Content:   tag,
				Embedding: []float32{1, float32(i)},
			}
		}
		return chunks
	}
	require.NoError(t, s.ReplaceChunks(ctx, makeGeneration("blue")))

	// Swap generations in the background while searching continuously:
	// every result set must come wholly from one generation.
	replaceErr := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 25; i++ {
			tag := "green"
			if i%2 == 1 {
				tag = "blue"
			}
			if err := s.ReplaceChunks(ctx, makeGeneration(tag)); err != nil {
				replaceErr <- err
				return
			}
		}
	}()

	for alive := true; alive; {
		select {
		case <-done:
			alive = false
		default:
		}
		results, err := s.SearchChunks(ctx, []float32{1, 0}, 100)
		require.NoError(t, err)
		require.Len(t, results, 40)
		for _, result := range results {
			assert.Equal(t, results[0].Chunk.Source, result.Chunk.Source,
				"a single query must never mix generations")
		}
	}

	select {
	case err := <-replaceErr:
		t.Fatalf("background replace failed: %v", err)
	default:
	}
}

func TestReplaceChunksWithEmptySetClearsStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceChunks(ctx, []Chunk{testChunk("a", []float32{1, 0})}))
	require.NoError(t, s.ReplaceChunks(ctx, nil))

	count, err := s.CountChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChunkRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := Chunk{
		ID:        "round-trip",
		Source:    "prospectus.pdf",
		Page:      7,
		Position:  42,
		Content:   "Admissions open in June.",
		Embedding: []float32{0.25, -0.5, 0.125},
	}
	require.NoError(t, s.ReplaceChunks(ctx, []Chunk{want}))

	results, err := s.SearchChunks(ctx, []float32{0.25, -0.5, 0.125}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, want, results[0].Chunk)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
}

func TestReplaceLargeGeneration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var chunks []Chunk
	for i := 0; i < 500; i++ {
		chunks = append(chunks, testChunk(fmt.Sprintf("chunk-%03d", i), []float32{float32(i), 1}))
	}
	require.NoError(t, s.ReplaceChunks(ctx, chunks))

	count, err := s.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500, count)
}
