package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sunbeaminfo.com/smart-assistant/internal/api"
	"sunbeaminfo.com/smart-assistant/internal/chunker"
	"sunbeaminfo.com/smart-assistant/internal/config"
	"sunbeaminfo.com/smart-assistant/internal/core"
	"sunbeaminfo.com/smart-assistant/internal/session"
	"sunbeaminfo.com/smart-assistant/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	level := slog.LevelInfo
	if config.AppConfig.LogLevel == "DEBUG" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Command line flag for corpus ingestion
	ingestFlag := flag.Bool("ingest", false, "Rebuild the chunk corpus from the PDF directory and exit")
	flag.Parse()

	// Initialize corpus store
	corpusStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL, logger.With("component", "store"))
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer corpusStore.Close()

	// Initialize the Gemini collaborators (embedder + generator)
	ctx := context.Background()
	gemini, err := core.NewGeminiService(ctx, config.AppConfig.GeminiAPIKey, logger.With("component", "gemini"))
	if err != nil {
		logger.Error("failed to initialize Gemini client", "error", err)
		os.Exit(1)
	}
	defer gemini.Close()

	splitter := chunker.New(config.AppConfig.ChunkSize, config.AppConfig.ChunkOverlap)
	ingestService := core.NewIngestService(corpusStore, gemini, splitter, logger.With("component", "ingest"))

	// Handle corpus ingestion if the flag is set
	if *ingestFlag {
		logger.Info("starting corpus ingestion", "dir", config.AppConfig.PDFDir)
		count, err := ingestService.Ingest(ctx, config.AppConfig.PDFDir)
		if err != nil {
			logger.Error("ingestion failed", "error", err)
			os.Exit(1)
		}
		logger.Info("ingestion complete, exiting", "chunks", count)
		return
	}

	// First start with an empty store: build the corpus before serving,
	// as the original assistant indexed its PDFs on startup.
	count, err := corpusStore.CountChunks(ctx)
	if err != nil {
		logger.Error("failed to inspect corpus", "error", err)
		os.Exit(1)
	}
	if count == 0 {
		logger.Info("corpus is empty, ingesting before startup", "dir", config.AppConfig.PDFDir)
		if count, err = ingestService.Ingest(ctx, config.AppConfig.PDFDir); err != nil {
			logger.Error("startup ingestion failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("corpus ready", "chunks", count)

	// Wire services
	ragService := core.NewRAGService(corpusStore, gemini, logger.With("component", "rag"))
	chatService := core.NewChatService(ragService, gemini,
		config.AppConfig.RetrievalTopK, config.AppConfig.HistoryWindow,
		logger.With("component", "chat"))
	sessions := session.NewManager()

	apiHandler := api.NewAPIHandler(sessions, chatService, ingestService, corpusStore,
		config.AppConfig.PDFDir, logger.With("component", "api"))
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("starting server", "addr", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "addr", serverAddr, "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting gracefully")
}
