// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

var ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")

// Config holds all tunables for the RAG service. Values come from environment
// variables with conservative defaults matching the shipped course corpus.
type Config struct {
	QdrantHost string // QDRANT_HOST (default localhost)
	QdrantPort int    // QDRANT_PORT (default 6334, gRPC)

	AnthropicModel string // ANTHROPIC_MODEL

	ChunkSize     int // CHUNK_SIZE, max characters per chunk
	ChunkOverlap  int // CHUNK_OVERLAP, characters shared between adjacent chunks
	MaxResults    int // MAX_RESULTS, search results per tool call
	MaxHistory    int // MAX_HISTORY, conversation exchanges kept per session
	MaxToolRounds int // MAX_TOOL_ROUNDS, tool-call rounds per answer

	GenerationTimeout time.Duration // GENERATION_TIMEOUT_SECS, deadline per answer call

	Port    string // PORT for the HTTP surface
	DocsDir string // DOCS_DIR, course documents folder for startup ingestion
}

// Load reads configuration from the environment and validates it.
// Invalid chunk sizing is a startup failure, never deferred to ingest time.
func Load() (*Config, error) {
	cfg := &Config{
		QdrantHost:        getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:        getEnvInt("QDRANT_PORT", 6334),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		ChunkSize:         getEnvInt("CHUNK_SIZE", 800),
		ChunkOverlap:      getEnvInt("CHUNK_OVERLAP", 100),
		MaxResults:        getEnvInt("MAX_RESULTS", 5),
		MaxHistory:        getEnvInt("MAX_HISTORY", 2),
		MaxToolRounds:     getEnvInt("MAX_TOOL_ROUNDS", 2),
		GenerationTimeout: time.Duration(getEnvInt("GENERATION_TIMEOUT_SECS", 120)) * time.Second,
		Port:              getEnv("PORT", "8080"),
		DocsDir:           getEnv("DOCS_DIR", "./docs"),
	}

	if cfg.ChunkSize <= 0 || cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunking, cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 2
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
