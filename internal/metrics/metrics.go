package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rentlink-backend/internal/domain"
)

type Metrics struct {
	OperationsTotal   *prometheus.CounterVec   // op, result=success|<error kind>
	OperationDuration *prometheus.HistogramVec // op
	StorageRetries    prometheus.Counter
	EventsPublished   *prometheus.CounterVec // type, result=success|fail
}

func New() *Metrics {
	return &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_operations_total",
				Help: "Booking core operations by result",
			},
			[]string{"op", "result"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "booking_operation_duration_seconds",
				Help:    "Latency of booking core operations",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"op"},
		),
		StorageRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_storage_retries_total",
			Help: "Transactions retried after a transient storage error",
		}),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_events_published_total",
				Help: "Domain events handed to the broker by result",
			},
			[]string{"type", "result"},
		),
	}
}

func (m *Metrics) MustRegister(r prometheus.Registerer) {
	r.MustRegister(m.OperationsTotal, m.OperationDuration, m.StorageRetries, m.EventsPublished)
}

// Observe records one operation outcome. Safe on a nil receiver.
func (m *Metrics) Observe(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	m.OperationsTotal.WithLabelValues(op, Result(err)).Inc()
}

func (m *Metrics) Retry() {
	if m == nil {
		return
	}
	m.StorageRetries.Inc()
}

func (m *Metrics) Published(eventType string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "fail"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}

// Result turns an operation error into a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrDuplicateApproval):
		return "duplicate_approval"
	case errors.Is(err, domain.ErrDateConflict):
		return "date_conflict"
	default:
		return string(domain.KindOf(err))
	}
}
