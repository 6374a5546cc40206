package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sunbeaminfo.com/smart-assistant/internal/core"
	"sunbeaminfo.com/smart-assistant/internal/session"
)

// Ingester triggers a corpus rebuild; satisfied by core.IngestService.
type Ingester interface {
	Ingest(ctx context.Context, dir string) (int, error)
}

// ChunkCounter reports corpus size for health checks.
type ChunkCounter interface {
	CountChunks(ctx context.Context) (int, error)
}

type APIHandler struct {
	sessions *session.Manager
	chat     *core.ChatService
	ingester Ingester
	counter  ChunkCounter
	pdfDir   string
	logger   *slog.Logger
}

func NewAPIHandler(sessions *session.Manager, chat *core.ChatService, ingester Ingester, counter ChunkCounter, pdfDir string, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		sessions: sessions,
		chat:     chat,
		ingester: ingester,
		counter:  counter,
		pdfDir:   pdfDir,
		logger:   logger,
	}
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	count, err := h.counter.CountChunks(r.Context())
	if err != nil {
		h.logger.Error("health check failed to count chunks", "error", err)
		http.Error(w, "Store unavailable", http.StatusServiceUnavailable)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"chunks":   count,
		"sessions": h.sessions.Len(),
	})
}

func (h *APIHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	count, err := h.ingester.Ingest(r.Context(), h.pdfDir)
	if err != nil {
		if errors.Is(err, core.ErrIngestInProgress) {
			http.Error(w, "Ingestion already in progress", http.StatusConflict)
			return
		}
		h.logger.Error("ingestion failed", "error", err)
		http.Error(w, "Ingestion failed", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]int{"chunks": count})
}

type CreateSessionRequest struct {
	Language string `json:"language,omitempty"`
}

type SessionResponse struct {
	ID       string           `json:"id"`
	Language session.Language `json:"language"`
	Turns    []session.Turn   `json:"turns"`
}

func (h *APIHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	language, err := session.ParseLanguage(req.Language)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := h.sessions.Create(language)
	h.logger.Info("session created", "session_id", sess.ID, "language", language)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sessionResponse(sess))
}

func (h *APIHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(sessionResponse(sess))
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "Message content cannot be empty", http.StatusBadRequest)
		return
	}

	answer, err := h.chat.Ask(r.Context(), sess, req.Content)
	if err != nil {
		if errors.Is(err, session.ErrQuestionPending) {
			http.Error(w, "A question is already being answered", http.StatusConflict)
			return
		}
		h.logger.Error("failed to answer question", "session_id", sess.ID, "error", err)
		http.Error(w, "Failed to answer question", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(answer)
}

func (h *APIHandler) DeleteExchangeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid exchange index", http.StatusBadRequest)
		return
	}

	if err := sess.DeletePair(index); err != nil {
		switch {
		case errors.Is(err, session.ErrExchangeNotFound):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, session.ErrQuestionPending):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to delete exchange", "session_id", sess.ID, "error", err)
			http.Error(w, "Failed to delete exchange", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, ok := h.sessions.Get(sessionID); !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	h.sessions.Remove(sessionID)
	h.logger.Info("session removed", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ResetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	sess.Reset()
	h.logger.Info("session reset", "session_id", sess.ID)
	json.NewEncoder(w).Encode(sessionResponse(sess))
}

type SetLanguageRequest struct {
	Language string `json:"language"`
}

func (h *APIHandler) SetLanguageHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var req SetLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	language, err := session.ParseLanguage(req.Language)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess.SetLanguage(language)
	json.NewEncoder(w).Encode(sessionResponse(sess))
}

// sessionResponse keeps Turns JSON-friendly: an empty transcript
// renders as [] rather than null.
func sessionResponse(sess *session.Session) SessionResponse {
	turns := sess.Turns()
	if turns == nil {
		turns = []session.Turn{}
	}
	return SessionResponse{
		ID:       sess.ID,
		Language: sess.Language(),
		Turns:    turns,
	}
}
