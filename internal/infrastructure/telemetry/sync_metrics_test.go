package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/sellerstats/backend/internal/infrastructure/telemetry"
)

func setupTestMeter(t *testing.T) (*telemetry.SyncMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	sm, err := telemetry.NewSyncMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return sm, reader
}

// sumByAttr collects an int64 sum keyed by the value of attribute key
func sumByAttr(t *testing.T, reader *sdkmetric.ManualReader, name string, key attribute.Key) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(key)
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestNewSyncMetrics_NilMeter(t *testing.T) {
	sm, err := telemetry.NewSyncMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, sm)
}

func TestNewSyncMetrics_Noop(t *testing.T) {
	sm, err := telemetry.NewSyncMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	// Should not panic
	ctx := context.Background()
	sm.RecordCycle(ctx, telemetry.OutcomeOK, time.Second)
	sm.RecordRecords(ctx, "orders", 3)
	sm.RecordNotices(ctx, 1)
	sm.RecordPass(ctx, time.Minute)
}

func TestSyncMetrics_RecordCycle(t *testing.T) {
	sm, reader := setupTestMeter(t)
	ctx := context.Background()

	sm.RecordCycle(ctx, telemetry.OutcomeOK, time.Second)
	sm.RecordCycle(ctx, telemetry.OutcomeOK, 2*time.Second)
	sm.RecordCycle(ctx, telemetry.OutcomeUnauthorized, time.Second)

	got := sumByAttr(t, reader, "sellerstats_sync_cycles_total", telemetry.AttrOutcome)
	assert.Equal(t, map[string]int64{
		telemetry.OutcomeOK:           2,
		telemetry.OutcomeUnauthorized: 1,
	}, got)
}

func TestSyncMetrics_RecordRecords(t *testing.T) {
	sm, reader := setupTestMeter(t)
	ctx := context.Background()

	sm.RecordRecords(ctx, "orders", 4)
	sm.RecordRecords(ctx, "orders", 1)
	sm.RecordRecords(ctx, "stocks", 500)
	sm.RecordRecords(ctx, "sales", 0)

	got := sumByAttr(t, reader, "sellerstats_sync_records_total", telemetry.AttrStream)
	assert.Equal(t, map[string]int64{"orders": 5, "stocks": 500}, got)
}
