package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceContext_KeepsProvidedIDs(t *testing.T) {
	tc := NewTraceContext("trace-1", "req-1")

	assert.Equal(t, "trace-1", tc.TraceID)
	assert.Equal(t, "req-1", tc.RequestID)
	assert.Len(t, tc.SpanID, 16)
}

func TestNewTraceContext_GeneratesMissingIDs(t *testing.T) {
	tc := NewTraceContext("", "")

	assert.NotEmpty(t, tc.TraceID)
	assert.NotEmpty(t, tc.RequestID)
	assert.NotEqual(t, tc.TraceID, tc.RequestID)
}

func TestWithTrace_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetTrace(ctx))
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithTrace(ctx, NewTraceContext("t", "r"))
	got := GetTrace(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "r", GetRequestID(ctx))
}
