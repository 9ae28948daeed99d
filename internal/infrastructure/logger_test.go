package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceHandlerInjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&traceHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "trace-123", record["trace_id"])
}

func TestTraceHandlerNoTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&traceHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	logger.InfoContext(context.Background(), "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	_, present := record["trace_id"]
	assert.False(t, present)
}

func TestGetTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", GetTraceID(ctx))
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("anything"))
}
