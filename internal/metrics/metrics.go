package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	purchaseOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kassa_purchase_outcomes_total",
			Help: "Purchase attempts by outcome",
		},
		[]string{"outcome"},
	)

	refundOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kassa_refund_outcomes_total",
			Help: "Refund workflow transitions by outcome",
		},
		[]string{"outcome"},
	)

	mutexAcquisitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kassa_mutex_acquisitions_total",
			Help: "Advisory mutex acquisition results",
		},
		[]string{"result"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kassa_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObservePurchase records a purchase attempt outcome
// ("settled", "conflict", "payment_required", "not_found", "error").
func ObservePurchase(outcome string) {
	purchaseOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveRefund records a refund workflow outcome
// ("requested", "approved", "rejected", "invalid_state", "error").
func ObserveRefund(outcome string) {
	refundOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveMutex records an advisory lock acquisition result
// ("acquired", "timeout", "bypassed").
func ObserveMutex(result string) {
	mutexAcquisitions.WithLabelValues(result).Inc()
}

// Middleware measures request latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
