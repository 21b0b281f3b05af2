package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"rentlink-backend/internal/domain"
)

func TestObserve(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	m.MustRegister(reg)

	m.Observe("approve", time.Now(), nil)
	m.Observe("approve", time.Now(), fmt.Errorf("wrap: %w", domain.ErrDuplicateApproval))
	m.Observe("approve", time.Now(), domain.ErrForbidden)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("approve", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("approve", "duplicate_approval")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("approve", "authorization")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe("create", time.Now(), nil)
		m.Retry()
		m.Published("rental.cancelled", nil)
	})
}
