package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	chatModelName      = "gemini-1.5-flash-latest"
	embeddingModelName = "text-embedding-004"

	// Gemini caps one BatchEmbedContents call at 100 documents.
	embedBatchLimit = 100
)

// GeminiService implements the Embedder and Generator collaborators on
// top of the Gemini API.
type GeminiService struct {
	client *genai.Client
	logger *slog.Logger
}

func NewGeminiService(ctx context.Context, apiKey string, logger *slog.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiService{client: client, logger: logger}, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Warn("error closing GenAI client", "error", err)
		}
	}
}

// EmbedDocuments embeds texts in batches, preserving input order.
func (s *GeminiService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	em := s.client.EmbeddingModel(embeddingModelName)

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchLimit {
		end := min(start+embedBatchLimit, len(texts))

		batch := em.NewBatch()
		for _, text := range texts[start:end] {
			batch.AddContent(genai.Text(text))
		}
		res, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: batch embed request failed: %v", ErrEmbedding, err)
		}
		if len(res.Embeddings) != end-start {
			return nil, fmt.Errorf("%w: requested %d embeddings, got %d", ErrEmbedding, end-start, len(res.Embeddings))
		}
		for i, embedding := range res.Embeddings {
			if embedding == nil || len(embedding.Values) == 0 {
				return nil, fmt.Errorf("%w: empty embedding at index %d", ErrEmbedding, start+i)
			}
			vectors = append(vectors, embedding.Values)
		}
	}
	return vectors, nil
}

// EmbedQuery embeds a single query text.
func (s *GeminiService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	em := s.client.EmbeddingModel(embeddingModelName)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("%w: query embed request failed: %v", ErrEmbedding, err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding data received", ErrEmbedding)
	}
	return res.Embedding.Values, nil
}

// Generate sends the assembled prompt and returns the full answer text.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(chatModelName)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			answer.WriteString(string(txt))
		} else {
			s.logger.Warn("ignoring non-text response part", "type", fmt.Sprintf("%T", part))
		}
	}
	if answer.Len() == 0 {
		return "", fmt.Errorf("gemini returned an empty answer")
	}
	return strings.TrimSpace(answer.String()), nil
}
