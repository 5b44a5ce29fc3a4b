// Package metrics exposes the Prometheus collectors for the booking core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application collectors
type Metrics struct {
	BookingsCreated      *prometheus.CounterVec
	BookingConflicts     *prometheus.CounterVec
	BookingTransitions   *prometheus.CounterVec
	CheckIns             *prometheus.CounterVec
	ReviewsCreated       prometheus.Counter
	EventsCreated        prometheus.Counter
	NotificationsSent    *prometheus.CounterVec
	NotificationsDropped prometheus.Counter
	NotifyQueueDepth     prometheus.Gauge
	SeatLockWait         prometheus.Histogram
}

// New registers the collectors with reg. A nil reg uses a private registry,
// which keeps tests and repeated constructions from colliding.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		BookingsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventix_bookings_created_total",
				Help: "Total bookings created",
			},
			[]string{"seat_type", "status"},
		),
		BookingConflicts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventix_booking_conflicts_total",
				Help: "Booking attempts rejected because the seat was held",
			},
			[]string{"reason"},
		),
		BookingTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventix_booking_transitions_total",
				Help: "Booking status transitions",
			},
			[]string{"from", "to"},
		),
		CheckIns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventix_checkins_total",
				Help: "Ticket scans at the gate by outcome",
			},
			[]string{"result"},
		),
		ReviewsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "eventix_reviews_created_total",
			Help: "Total reviews created",
		}),
		EventsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "eventix_events_created_total",
			Help: "Total events created",
		}),
		NotificationsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventix_notifications_total",
				Help: "Notification deliveries per sink",
			},
			[]string{"sink", "result"},
		),
		NotificationsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "eventix_notifications_dropped_total",
			Help: "Notifications dropped because the dispatch buffer was full or closed",
		}),
		NotifyQueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "eventix_notify_queue_depth",
			Help: "Notifications waiting for a dispatch worker",
		}),
		SeatLockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventix_seat_lock_seconds",
			Help:    "Time spent acquiring seat locks",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

// Nop returns collectors registered nowhere
func Nop() *Metrics {
	return New(nil)
}
