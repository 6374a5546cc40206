package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", apiHandler.HealthHandler)
		r.Post("/ingest", apiHandler.IngestHandler)

		// Session routes
		r.Post("/sessions", apiHandler.CreateSessionHandler)
		r.Get("/sessions/{sessionID}", apiHandler.GetSessionHandler)
		r.Delete("/sessions/{sessionID}", apiHandler.DeleteSessionHandler)
		r.Post("/sessions/{sessionID}/messages", apiHandler.PostMessageHandler)
		r.Delete("/sessions/{sessionID}/exchanges/{index}", apiHandler.DeleteExchangeHandler)
		r.Post("/sessions/{sessionID}/reset", apiHandler.ResetSessionHandler)
		r.Put("/sessions/{sessionID}/language", apiHandler.SetLanguageHandler)
	})

	return r
}
