package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorly_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutorly_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorly_payments_total",
			Help: "Total number of payments by terminal event",
		},
		[]string{"event", "lesson_type"},
	)

	RefundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorly_refunds_total",
			Help: "Total number of refund attempts",
		},
		[]string{"status"},
	)

	StalePaymentsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorly_stale_payments_swept_total",
			Help: "Payments cancelled by the stale-payment sweeper",
		},
	)

	WalletDepositsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorly_wallet_deposits_total",
			Help: "Total number of wallet deposits",
		},
	)

	WalletWithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorly_wallet_withdrawals_total",
			Help: "Total number of wallet withdrawal events",
		},
		[]string{"event"},
	)

	ClassroomRoomsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorly_classroom_rooms_total",
			Help: "Total number of classroom rooms by event",
		},
		[]string{"event"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorly_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutorly_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPayment(event, lessonType string) {
	PaymentsTotal.WithLabelValues(event, lessonType).Inc()
}

func RecordRefund(status string) {
	RefundsTotal.WithLabelValues(status).Inc()
}

func RecordWalletDeposit() {
	WalletDepositsTotal.Inc()
}

func RecordWalletWithdrawal(event string) {
	WalletWithdrawalsTotal.WithLabelValues(event).Inc()
}

func RecordClassroomRoom(event string) {
	ClassroomRoomsTotal.WithLabelValues(event).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
