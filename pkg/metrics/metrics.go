package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DraftOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bistroplan", Name: "draft_ops_total", Help: "Number of draft actions by kind."},
		[]string{"action"},
	)
	SaveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bistroplan", Name: "draft_save_failures_total", Help: "Number of failed background draft saves by operation."},
		[]string{"op"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bistroplan", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bistroplan", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DraftOps)
	reg.MustRegister(SaveFailures)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
