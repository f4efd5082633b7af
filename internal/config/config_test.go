package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:6333", cfg.QdrantURL)
	assert.Equal(t, "gemini-embedding-001", cfg.EmbeddingModel)
	assert.Equal(t, 768, cfg.EmbeddingDim)
	assert.Equal(t, 1024, cfg.QueueCapacity)
	assert.Equal(t, 8010, cfg.ServerPort)
	assert.Equal(t, "meeting.ingest", cfg.IngestTopic)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("QDRANT_URL", "http://qdrant:6333")
	t.Setenv("EMBEDDING_DIM", "1536")
	t.Setenv("QUEUE_CAPACITY", "32")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://qdrant:6333", cfg.QdrantURL)
	assert.Equal(t, 1536, cfg.EmbeddingDim)
	assert.Equal(t, 32, cfg.QueueCapacity)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		wantOK bool
	}{
		{"valid", func(c *config.Config) {}, true},
		{"missing qdrant url", func(c *config.Config) { c.QdrantURL = "" }, false},
		{"zero embedding dim", func(c *config.Config) { c.EmbeddingDim = 0 }, false},
		{"negative queue capacity", func(c *config.Config) { c.QueueCapacity = -1 }, false},
		{"missing db host", func(c *config.Config) { c.DBHost = "" }, false},
		{"missing db name", func(c *config.Config) { c.DBName = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				DBHost:        "postgres",
				DBName:        "bridge",
				QdrantURL:     "http://localhost:6333",
				EmbeddingDim:  768,
				QueueCapacity: 1024,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, config.ErrMissingRequired)
			}
		})
	}
}
