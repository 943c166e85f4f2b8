package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the booking core.
type Metrics struct {
	BookingsCreated   *prometheus.CounterVec
	BookingConflicts  prometheus.Counter
	BookingsCancelled *prometheus.CounterVec
	NotificationsSent *prometheus.CounterVec
	WebhookEvents     *prometheus.CounterVec
}

// M is the process-wide metric set. promauto registers with the default
// registry, so this must be constructed exactly once.
var M = newMetrics()

func newMetrics() *Metrics {
	return &Metrics{
		BookingsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorhub_bookings_created_total",
			Help: "Total number of confirmed bookings by source",
		}, []string{"source"}),

		BookingConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tutorhub_booking_conflicts_total",
			Help: "Total number of booking attempts rejected for slot conflicts",
		}),

		BookingsCancelled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorhub_bookings_cancelled_total",
			Help: "Total number of cancelled bookings by actor",
		}, []string{"by"}),

		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorhub_notifications_total",
			Help: "Total number of outbound notification attempts by channel and status",
		}, []string{"channel", "status"}),

		WebhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorhub_webhook_events_total",
			Help: "Total number of processed webhook events by type",
		}, []string{"type"}),
	}
}
