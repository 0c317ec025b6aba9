package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), &Config{ServiceName: "stock-service"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	// The exporter connects lazily, so no collector is needed here.
	shutdown, err := Setup(context.Background(), &Config{
		Endpoint:    "localhost:4318",
		ServiceName: "stock-service",
		Version:     "test",
		SampleRatio: 0.5,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
