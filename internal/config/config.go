package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	OllamaHost       string
	EmbedModel       string
	LLMModel         string
	QdrantURL        string
	QdrantCollection string
	QdrantVectorSize int
	DBPath           string
	PagesDir         string
	ChunkSize        int
	ChunkOverlap     int
	Temperature      float64
	MaxNewTokens     int
	EmbedTimeoutSec  int
	GenTimeoutSec    int
	APIPort          string
	LogLevel         slog.Level
	LogFormat        string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the chunking window.
// If a .env file exists in the current directory or project root, it is loaded
// automatically; variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a .env next to go.mod (running from a subdirectory).
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),
		EmbedModel:       getEnv("EMBED_MODEL", "nomic-embed-text"),
		LLMModel:         getEnv("LLM_MODEL", "gemma3:1b"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "cob_docs"),
		DBPath:           getEnv("DB_PATH", "./data/cob-zippy-ai.db"),
		PagesDir:         getEnv("PAGES_DIR", "./data/pages"),
		APIPort:          getEnv("API_PORT", "9000"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.QdrantVectorSize, err = getEnvInt("QDRANT_VECTOR_SIZE", 768); err != nil {
		return nil, err
	}
	if cfg.QdrantVectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 800); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 120); err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	// The chunker only terminates when each window strictly advances.
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE): got overlap %d, size %d", cfg.ChunkOverlap, cfg.ChunkSize)
	}
	if cfg.MaxNewTokens, err = getEnvInt("MAX_NEW_TOKENS", 200); err != nil {
		return nil, err
	}
	if cfg.EmbedTimeoutSec, err = getEnvInt("EMBED_TIMEOUT_SECONDS", 30); err != nil {
		return nil, err
	}
	if cfg.GenTimeoutSec, err = getEnvInt("GENERATE_TIMEOUT_SECONDS", 180); err != nil {
		return nil, err
	}

	tempStr := getEnv("TEMPERATURE", "0.25")
	cfg.Temperature, err = strconv.ParseFloat(tempStr, 64)
	if err != nil {
		return nil, fmt.Errorf("TEMPERATURE must be a valid float: %w", err)
	}

	cfg.LogLevel = parseLogLevel(getEnv("LOG_LEVEL", "info"))

	// Create the data directory for the SQLite file if it doesn't exist.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

// parseLogLevel maps a level name to a slog.Level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
