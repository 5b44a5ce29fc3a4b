package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.BookingsCreated.WithLabelValues("VIP", "confirmed").Inc()
	m.CheckIns.WithLabelValues("admitted").Inc()
	m.NotificationsDropped.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCreated.WithLabelValues("VIP", "confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsDropped))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "eventix_bookings_created_total")
	assert.Contains(t, names, "eventix_checkins_total")
}

func TestNop_IsIndependent(t *testing.T) {
	a := Nop()
	b := Nop()
	a.ReviewsCreated.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ReviewsCreated))
}
