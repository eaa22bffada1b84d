package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLoggerWritesJSONWithContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "u-42")
	logger.InfoContext(ctx, "hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "u-42", rec["user_id"])
	assert.Equal(t, "v", rec["k"])
}

func TestDevelopmentLoggerWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("development", &buf).With("component", "test")

	logger.Info("started")

	out := buf.String()
	assert.Contains(t, out, "msg=started")
	assert.Contains(t, out, "component=test")
	assert.NotContains(t, out, "request_id")
}
