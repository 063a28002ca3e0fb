package booking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const MeterName = "github.com/metinatakli/cinex/internal/booking"

// Instrument names, shared with the views registered on the meter provider.
const (
	MetricCommitted       = "bookings.committed"
	MetricSeats           = "bookings.seats"
	MetricConflicts       = "bookings.conflicts"
	MetricFailures        = "bookings.failed"
	MetricReserveDuration = "bookings.reserve.duration"
	MetricBookingSize     = "bookings.size"
)

// metrics falls back to no-op instruments until a meter provider is installed.
type metrics struct {
	committedTotal  metric.Int64Counter
	seatsBooked     metric.Int64Counter
	conflicts       metric.Int64Counter
	failures        metric.Int64Counter
	reserveDuration metric.Float64Histogram
	bookingSize     metric.Int64Histogram
}

func newMetrics() *metrics {
	meter := otel.Meter(MeterName)

	m := &metrics{}
	m.committedTotal, _ = meter.Int64Counter(MetricCommitted,
		metric.WithDescription("Reservations committed"))
	m.seatsBooked, _ = meter.Int64Counter(MetricSeats,
		metric.WithDescription("Seats booked by committed reservations"),
		metric.WithUnit("{seat}"))
	m.conflicts, _ = meter.Int64Counter(MetricConflicts,
		metric.WithDescription("Reservations rejected because a seat was already booked"))
	m.failures, _ = meter.Int64Counter(MetricFailures,
		metric.WithDescription("Reservations rolled back because of a server side failure"))
	m.reserveDuration, _ = meter.Float64Histogram(MetricReserveDuration,
		metric.WithDescription("Time spent in Reserve, including the wait for the hall lock"),
		metric.WithUnit("s"))
	m.bookingSize, _ = meter.Int64Histogram(MetricBookingSize,
		metric.WithDescription("Seats requested per reservation attempt"),
		metric.WithUnit("{seat}"))

	return m
}

func (m *metrics) committed(ctx context.Context, seats int) {
	if m.committedTotal != nil {
		m.committedTotal.Add(ctx, 1)
	}

	if m.seatsBooked != nil {
		m.seatsBooked.Add(ctx, int64(seats))
	}
}

func (m *metrics) conflict(ctx context.Context) {
	if m.conflicts != nil {
		m.conflicts.Add(ctx, 1)
	}
}

func (m *metrics) fail(ctx context.Context, reason string) {
	if m.failures != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *metrics) observe(ctx context.Context, outcome string, seats int, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))

	if m.reserveDuration != nil {
		m.reserveDuration.Record(ctx, elapsed.Seconds(), attrs)
	}

	if m.bookingSize != nil {
		m.bookingSize.Record(ctx, int64(seats), attrs)
	}
}
