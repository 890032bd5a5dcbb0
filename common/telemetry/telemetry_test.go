package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_StdoutTracing(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), Config{Tracing: TracingOpts{Exporter: ExporterStdout}}, &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(context.Background(), "predict_match")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name": "predict_match"`)
}

func TestSetup_Disabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), Config{}, &buf)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{Metrics: MetricsOpts{Exporter: ExporterStdout}}.Validate())
	assert.Error(t, Config{Tracing: TracingOpts{Exporter: "jaeger"}}.Validate())
}
