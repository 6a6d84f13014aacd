package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sellerstats/backend/internal/infrastructure/config"
	"github.com/sellerstats/backend/internal/infrastructure/telemetry"
)

func TestNew_Disabled(t *testing.T) {
	ctx := context.Background()

	p, err := telemetry.New(ctx, telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "test-service",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.False(t, p.Enabled())
	require.NotNil(t, p.Meter())

	// Shutdown with a cancelled context still succeeds for a disabled provider
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.NoError(t, p.Shutdown(cancelled))
}

func TestFromConfig(t *testing.T) {
	cfg := telemetry.FromConfig(config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "otel:4317",
		SamplingRatio:     0.5,
		ServiceName:       "sync",
		Insecure:          true,
		ExportInterval:    5 * time.Second,
	})

	assert.Equal(t, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "otel:4317",
		SamplingRatio:     0.5,
		ServiceName:       "sync",
		Insecure:          true,
		ExportInterval:    5 * time.Second,
	}, cfg)
}
