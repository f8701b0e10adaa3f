package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		accessChangesTotal,
		adminChecksTotal,
		couponRedemptionsTotal,
	)
}

var (
	accessChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_changes_total",
			Help: "Access grants and revocations by action and path (admin/paid/coupon).",
		},
		[]string{"action", "path"},
	)

	adminChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_checks_total",
			Help: "Admin capability checks by resolution tier (registry/role/cached/denied/unavailable).",
		},
		[]string{"tier"},
	)

	couponRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_redemptions_total",
			Help: "Coupon redemption attempts by outcome (granted/invalid/exhausted).",
		},
		[]string{"outcome"},
	)
)

func IncAccessChange(action, path string) {
	accessChangesTotal.WithLabelValues(norm(action), norm(path)).Inc()
}

func IncAdminCheck(tier string) {
	adminChecksTotal.WithLabelValues(norm(tier)).Inc()
}

func IncCouponRedemption(outcome string) {
	couponRedemptionsTotal.WithLabelValues(norm(outcome)).Inc()
}
