package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey string
	DatabaseURL  string
	HTTPPort     string
	LogLevel     string

	// Knowledge base tuning. Defaults mirror the values the corpus was
	// originally indexed with; changing them requires a re-ingest.
	PDFDir        string
	ChunkSize     int
	ChunkOverlap  int
	RetrievalTopK int
	HistoryWindow int
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		DatabaseURL:   getEnv("DATABASE_URL", "sunbeam_assistant.db"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		PDFDir:        getEnv("PDF_DIR", "pdfs"),
		ChunkSize:     getEnvAsInt("CHUNK_SIZE", 800),
		ChunkOverlap:  getEnvAsInt("CHUNK_OVERLAP", 150),
		RetrievalTopK: getEnvAsInt("RETRIEVAL_TOP_K", 8),
		HistoryWindow: getEnvAsInt("HISTORY_WINDOW", 8),
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	if AppConfig.ChunkOverlap >= AppConfig.ChunkSize {
		log.Fatalf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)",
			AppConfig.ChunkOverlap, AppConfig.ChunkSize)
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
