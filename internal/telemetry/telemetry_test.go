package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_ExportsSpansOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(&buf, "dataorch", "test")
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(context.Background(), "orchestrator.run")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "orchestrator.run")
	assert.Contains(t, out, "dataorch")
}

func TestSetup_NilWriterIsNoop(t *testing.T) {
	shutdown, err := Setup(nil, "dataorch", "test")
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(context.Background(), "ignored")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}
