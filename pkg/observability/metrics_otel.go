package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName is the scope name used for warden tracers and meters
const InstrumentationName = "github.com/platinummonkey/warden"

// SessionInstruments holds the OpenTelemetry instruments for session operations
type SessionInstruments struct {
	operations metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewSessionInstruments creates the session instruments on meter, or on the
// global meter provider when meter is nil.
func NewSessionInstruments(meter metric.Meter) (*SessionInstruments, error) {
	if meter == nil {
		meter = otel.Meter(InstrumentationName)
	}

	s := &SessionInstruments{}
	var err error

	s.operations, err = meter.Int64Counter(
		"warden.session.operations",
		metric.WithDescription("Session operations by kind and status"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session operations counter: %w", err)
	}

	s.duration, err = meter.Float64Histogram(
		"warden.session.operation.duration",
		metric.WithDescription("Session operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session duration histogram: %w", err)
	}

	return s, nil
}

// Record adds one operation with its outcome and latency
func (s *SessionInstruments) Record(ctx context.Context, operation, status string, elapsed time.Duration) {
	if s == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	s.operations.Add(ctx, 1, attrs)
	s.duration.Record(ctx, elapsed.Seconds(), attrs)
}
