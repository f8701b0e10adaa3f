package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentEventsTotal,
		paymentsRevenueTotal,
		checkoutsTotal,
	)
}

var (
	paymentEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_events_total",
			Help: "Provider events by type and outcome (granted/already-granted/no-email/ignored).",
		},
		[]string{"type", "outcome"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of confirmed payments, labeled by currency.",
		},
		[]string{"currency"},
	)

	checkoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Checkout sessions by outcome (created/verified/not-completed/email-mismatch).",
		},
		[]string{"outcome"},
	)
)

func IncPaymentEvent(eventType, outcome string) {
	paymentEventsTotal.WithLabelValues(norm(eventType), norm(outcome)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	if currency == "" {
		currency = "unknown"
	}
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}

func IncCheckout(outcome string) {
	checkoutsTotal.WithLabelValues(norm(outcome)).Inc()
}
