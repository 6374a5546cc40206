package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore persists the chunk corpus. Generation replacement runs in
// a single transaction, so a concurrent search sees either the old
// generation or the new one, never a mixture.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(dataSourceName string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err = s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS chunks (
        id TEXT PRIMARY KEY, -- UUID
        source TEXT NOT NULL,
        page INTEGER NOT NULL,
        position INTEGER NOT NULL,
        content TEXT NOT NULL,
        embedding_json TEXT NOT NULL -- JSON-encoded []float32
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// ReplaceChunks swaps in a new corpus generation: every stored chunk is
// deleted and the given set inserted, atomically.
func (s *SQLiteStore) ReplaceChunks(ctx context.Context, chunks []Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("failed to clear previous generation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, source, page, position, content, embedding_json) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding for chunk %s: %w", chunk.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Source, chunk.Page, chunk.Position, chunk.Content, string(embeddingJSON)); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit new generation: %w", err)
	}
	return nil
}

// SearchChunks returns the k chunks most similar to the query vector,
// descending by cosine similarity, ties broken by insertion order. An
// empty store returns an empty result, not an error.
func (s *SQLiteStore) SearchChunks(ctx context.Context, vector []float32, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return nil, errors.New("k must be positive")
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, source, page, position, content, embedding_json FROM chunks ORDER BY rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var scored []ScoredChunk
	for rows.Next() {
		var chunk Chunk
		var embeddingJSON string
		if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.Page, &chunk.Position, &chunk.Content, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		if err := json.Unmarshal([]byte(embeddingJSON), &chunk.Embedding); err != nil {
			s.logger.Warn("skipping chunk with unreadable embedding", "chunk_id", chunk.ID, "error", err)
			continue
		}
		similarity, err := cosineSimilarity(vector, chunk.Embedding)
		if err != nil {
			return nil, fmt.Errorf("failed to score chunk %s: %w", chunk.ID, err)
		}
		scored = append(scored, ScoredChunk{Chunk: chunk, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk rows: %w", err)
	}

	// Stable sort keeps insertion order on equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// CountChunks reports the size of the live generation.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}
