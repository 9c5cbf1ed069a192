package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"QDRANT_HOST", "QDRANT_PORT", "ANTHROPIC_MODEL",
		"CHUNK_SIZE", "CHUNK_OVERLAP", "MAX_RESULTS",
		"MAX_HISTORY", "MAX_TOOL_ROUNDS", "GENERATION_TIMEOUT_SECS",
		"PORT", "DOCS_DIR",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.QdrantHost)
	assert.Equal(t, 6334, cfg.QdrantPort)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, 2, cfg.MaxHistory)
	assert.Equal(t, 2, cfg.MaxToolRounds)
	assert.Equal(t, 120*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("QDRANT_HOST", "qdrant.internal")
	t.Setenv("CHUNK_SIZE", "1200")
	t.Setenv("CHUNK_OVERLAP", "200")
	t.Setenv("GENERATION_TIMEOUT_SECS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "qdrant.internal", cfg.QdrantHost)
	assert.Equal(t, 1200, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
}

func TestLoad_RejectsInvalidChunking(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidChunking)
}
