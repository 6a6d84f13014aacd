package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Cycle outcomes recorded on sellerstats_sync_cycles_total
const (
	OutcomeOK           = "ok"
	OutcomePartial      = "partial"
	OutcomeUnauthorized = "unauthorized"
	OutcomeFailed       = "failed"
)

// cycleBuckets span a cached fast cycle up to a slow upstream (seconds)
var cycleBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// SyncMetrics records sync pass activity.
type SyncMetrics struct {
	passes        metric.Int64Counter
	cycles        metric.Int64Counter
	records       metric.Int64Counter
	notices       metric.Int64Counter
	cycleDuration metric.Float64Histogram
	passDuration  metric.Float64Histogram
}

// NewSyncMetrics creates the sync pass instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	counter := func(name, desc, unit string) (metric.Int64Counter, error) {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
		}
		return c, nil
	}

	sm := &SyncMetrics{}
	var err error
	if sm.passes, err = counter("sellerstats_sync_passes_total", "Sync passes run", "{passes}"); err != nil {
		return nil, err
	}
	if sm.cycles, err = counter("sellerstats_sync_cycles_total", "User sync cycles by outcome", "{cycles}"); err != nil {
		return nil, err
	}
	if sm.records, err = counter("sellerstats_sync_records_total", "Records written by stream", "{records}"); err != nil {
		return nil, err
	}
	if sm.notices, err = counter("sellerstats_sync_notices_total", "Order notices handed to the notifier", "{notices}"); err != nil {
		return nil, err
	}

	if sm.cycleDuration, err = meter.Float64Histogram("sellerstats_sync_cycle_duration_seconds",
		metric.WithDescription("Duration of one user sync cycle"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(cycleBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create cycle duration histogram: %w", err)
	}
	if sm.passDuration, err = meter.Float64Histogram("sellerstats_sync_pass_duration_seconds",
		metric.WithDescription("Duration of a whole sync pass"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create pass duration histogram: %w", err)
	}

	return sm, nil
}

// RecordCycle records one finished user cycle.
func (m *SyncMetrics) RecordCycle(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(AttrOutcome.String(outcome))
	m.cycles.Add(ctx, 1, attrs)
	m.cycleDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordRecords adds n records written to stream. Zero is not recorded.
func (m *SyncMetrics) RecordRecords(ctx context.Context, stream string, n int64) {
	if n <= 0 {
		return
	}
	m.records.Add(ctx, n, metric.WithAttributes(AttrStream.String(stream)))
}

// RecordNotices adds n delivered notices.
func (m *SyncMetrics) RecordNotices(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	m.notices.Add(ctx, int64(n))
}

// RecordPass records one finished pass.
func (m *SyncMetrics) RecordPass(ctx context.Context, d time.Duration) {
	m.passes.Add(ctx, 1)
	m.passDuration.Record(ctx, d.Seconds())
}
