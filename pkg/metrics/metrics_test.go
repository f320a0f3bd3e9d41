package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsUseGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "frontdesk")

	m.Bookings.WithLabelValues("conflict").Inc()
	m.Bookings.WithLabelValues("conflict").Inc()
	m.CachedAppointments.Set(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Bookings.WithLabelValues("conflict")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CachedAppointments))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "frontdesk_scheduling_bookings_total")
	assert.Contains(t, names, "frontdesk_cache_appointments")
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop()
		NewNop()
	})
}
