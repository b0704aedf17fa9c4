package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_None(t *testing.T) {
	shutdown, err := Setup("none")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_Unknown(t *testing.T) {
	_, err := Setup("jaeger")
	assert.Error(t, err)
}

func TestSetup_StdoutWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := setup("stdout", &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "dashboard")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "dashboard")
}
