package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classflow_bookings_total",
			Help: "Total number of booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classflow_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classflow_waitlist_promotions_total",
			Help: "Total number of waitlist promotions",
		},
	)

	WaitlistPromotionSkipsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classflow_waitlist_promotion_skips_total",
			Help: "Waitlist entries skipped at promotion time because entitlement no longer passed",
		},
	)

	RemindersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classflow_reminders_total",
			Help: "Reminder tasks by action (scheduled, cancelled, fired)",
		},
		[]string{"action"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classflow_notifications_total",
			Help: "Total number of notifications by type and status",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classflow_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classflow_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
		[]string{"plan"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(outcome string) {
	BookingsTotal.WithLabelValues(outcome).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordWaitlistPromotion() {
	WaitlistPromotionsTotal.Inc()
}

func RecordWaitlistPromotionSkip() {
	WaitlistPromotionSkipsTotal.Inc()
}

func RecordReminder(action string) {
	RemindersTotal.WithLabelValues(action).Inc()
}

func RecordNotification(notificationType, status string) {
	NotificationsTotal.WithLabelValues(notificationType, status).Inc()
}

func RecordSubscription(plan string) {
	SubscriptionsCreatedTotal.WithLabelValues(plan).Inc()
}
