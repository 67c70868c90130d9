package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFromContext_IncludesRequestID(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	var buf bytes.Buffer
	initLogger(&buf, "catalog-search", "production")

	ctx := WithRequestID(context.Background(), "req-123")
	LoggerFromContext(ctx).Info().Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "catalog-search", entry["service"])
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "hello", entry["message"])
	assert.NotContains(t, entry, "trace_id")
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	assert.Equal(t, "abc", RequestIDFromContext(WithRequestID(context.Background(), "abc")))
}
