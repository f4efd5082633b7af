package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/logger"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/middleware"
)

func TestContextHandler_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(logger.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := middleware.WithCorrelationID(context.Background(), "corr-42")
	l.InfoContext(ctx, "message queued", "block_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-42", entry["correlation_id"])
	assert.Equal(t, float64(7), entry["block_id"])
}

func TestContextHandler_NoCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(logger.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	l.Info("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry["correlation_id"]
	assert.False(t, ok)
}

func TestContextHandler_WithAttrsKeepsWrapper(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(logger.NewContextHandler(slog.NewJSONHandler(&buf, nil)))
	l := base.With("queue", "transcripts")

	ctx := middleware.WithCorrelationID(context.Background(), "corr-7")
	l.InfoContext(ctx, "dequeued")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-7", entry["correlation_id"])
	assert.Equal(t, "transcripts", entry["queue"])
}
