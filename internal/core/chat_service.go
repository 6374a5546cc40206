package core

import (
	"context"
	"fmt"
	"log/slog"

	"sunbeaminfo.com/smart-assistant/internal/session"
)

// ChatService runs one question/answer exchange against a session:
// retrieve context, assemble the grounded prompt, call the language
// model, and append the pair to the transcript.
type ChatService struct {
	rag           *RAGService
	generator     Generator
	topK          int
	historyWindow int
	logger        *slog.Logger
}

func NewChatService(rag *RAGService, generator Generator, topK, historyWindow int, logger *slog.Logger) *ChatService {
	return &ChatService{
		rag:           rag,
		generator:     generator,
		topK:          topK,
		historyWindow: historyWindow,
		logger:        logger,
	}
}

// Ask submits the question to the session, answers it from the corpus
// and completes the exchange. On a retrieval failure the pending
// question is rolled back and the error surfaced; on a generation
// failure the exchange completes with the fallback sentence so the
// transcript never keeps a dangling question.
func (s *ChatService) Ask(ctx context.Context, sess *session.Session, question string) (session.Turn, error) {
	history := recentTurns(sess.Turns(), s.historyWindow)

	if _, err := sess.Submit(question); err != nil {
		return session.Turn{}, err
	}

	contextBlock, err := s.rag.Retrieve(ctx, question, s.topK)
	if err != nil {
		if rbErr := sess.Rollback(); rbErr != nil {
			s.logger.Error("failed to roll back pending question", "session_id", sess.ID, "error", rbErr)
		}
		return session.Turn{}, fmt.Errorf("failed to retrieve context: %w", err)
	}

	prompt := BuildPrompt(contextBlock, history, question, sess.Language())

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("generation failed, answering with fallback", "session_id", sess.ID, "error", err)
		answer = FallbackAnswer
	}

	turn, err := sess.Complete(answer)
	if err != nil {
		return session.Turn{}, fmt.Errorf("failed to complete exchange: %w", err)
	}
	return turn, nil
}

// recentTurns bounds the history included in the prompt to the last n
// turns.
func recentTurns(turns []session.Turn, n int) []session.Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
