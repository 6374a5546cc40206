// Package session holds the conversational transcript for one user and
// enforces the user/assistant alternation invariant.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Language is the target response language, selectable per session.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageHindi   Language = "Hindi"
	LanguageMarathi Language = "Marathi"
)

// ParseLanguage maps user input to a supported language. Empty input
// selects English.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "english":
		return LanguageEnglish, nil
	case "hindi":
		return LanguageHindi, nil
	case "marathi":
		return LanguageMarathi, nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}

// State describes where a session is in the question/answer cycle.
type State string

const (
	// StateEmpty means the transcript has no turns.
	StateEmpty State = "empty"
	// StateAwaitingAnswer means a user turn is dangling, waiting for
	// its assistant turn.
	StateAwaitingAnswer State = "awaiting_answer"
	// StateReady means the last turn is an assistant turn and a new
	// question may be submitted.
	StateReady State = "ready"
)

// Operations attempted in the wrong state indicate a caller bug.
var (
	// ErrQuestionPending rejects a new submission (or a pair deletion)
	// while an answer is still being generated.
	ErrQuestionPending = errors.New("a question is already awaiting its answer")
	// ErrNoQuestionPending rejects Complete or Rollback when no user
	// turn is dangling.
	ErrNoQuestionPending = errors.New("no question is awaiting an answer")
	// ErrExchangeNotFound rejects deletion of an exchange index that
	// does not exist.
	ErrExchangeNotFound = errors.New("exchange not found")
)

// Turn is one message in the transcript. Seq increases strictly over
// the life of the session and is never reused after a deletion.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Seq     int    `json:"seq"`
}

// Session is an ordered transcript of turns. After every completed
// exchange the transcript alternates user, assistant, user, assistant
// from the start; only while a question is in flight does it end in a
// dangling user turn. All methods are safe for concurrent use, though
// a single session is expected to be driven sequentially.
type Session struct {
	ID string

	mu       sync.Mutex
	language Language
	turns    []Turn
	pending  bool
	nextSeq  int
}

func New(language Language) *Session {
	if language == "" {
		language = LanguageEnglish
	}
	return &Session{
		ID:       uuid.NewString(),
		language: language,
	}
}

// State reports the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.pending:
		return StateAwaitingAnswer
	case len(s.turns) == 0:
		return StateEmpty
	default:
		return StateReady
	}
}

// Submit appends a user turn. Valid only when no other question is in
// flight.
func (s *Session) Submit(content string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return Turn{}, ErrQuestionPending
	}
	turn := s.append(RoleUser, content)
	s.pending = true
	return turn, nil
}

// Complete appends the assistant turn answering the pending question.
func (s *Session) Complete(content string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return Turn{}, ErrNoQuestionPending
	}
	turn := s.append(RoleAssistant, content)
	s.pending = false
	return turn, nil
}

// Rollback removes the dangling user turn after a failed exchange, so
// the transcript never keeps an unanswered question.
func (s *Session) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return ErrNoQuestionPending
	}
	s.turns = s.turns[:len(s.turns)-1]
	s.pending = false
	return nil
}

// DeletePair removes the userIndex-th question (0-based) together with
// its answer. Later turns shift down but keep their relative order and
// sequence numbers.
func (s *Session) DeletePair(userIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return ErrQuestionPending
	}
	if userIndex < 0 || 2*userIndex+1 >= len(s.turns) {
		return ErrExchangeNotFound
	}
	i := 2 * userIndex
	s.turns = append(s.turns[:i], s.turns[i+2:]...)
	return nil
}

// Reset clears the transcript in any state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.pending = false
	s.nextSeq = 0
}

// Turns returns a copy of the transcript in order.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Language returns the session's response language.
func (s *Session) Language() Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage changes the response language for subsequent answers.
func (s *Session) SetLanguage(language Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = language
}

// append must be called with the lock held.
func (s *Session) append(role Role, content string) Turn {
	turn := Turn{Role: role, Content: content, Seq: s.nextSeq}
	s.nextSeq++
	s.turns = append(s.turns, turn)
	return turn
}
