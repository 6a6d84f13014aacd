package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by spans and metrics
var (
	AttrUserID  = attribute.Key("user_id")
	AttrRunID   = attribute.Key("run_id")
	AttrTargets = attribute.Key("targets")
	AttrOrders  = attribute.Key("orders")
	AttrSales   = attribute.Key("sales")
	AttrStocks  = attribute.Key("stocks")
	AttrOutcome = attribute.Key("outcome")
	AttrStream  = attribute.Key("stream")
)

// StartSpan starts an internal span named {service}.{method} on the global
// tracer provider. Close it with EndSpan.
//
//	ctx, span := telemetry.StartSpan(ctx, "syncer", "sync_user", telemetry.AttrUserID.Int64(id))
//	defer func() { telemetry.EndSpan(span, err) }()
func StartSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(InstrumentationName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err on the span, or marks it OK, and ends it.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
