package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "academy_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "academy_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "academy_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BizErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "academy_errors_total",
			Help: "Error responses by error code.",
		},
		[]string{"code"},
	)

	AccessDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "academy_access_decisions_total",
			Help: "Access gate decisions by gate and outcome.",
		},
		[]string{"gate", "outcome"},
	)

	TokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "academy_tokens_issued_total",
		Help: "Access tokens issued.",
	})

	registerOnce sync.Once
)

// Init registers the collectors into the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration,
			BizErrorsTotal, AccessDecisionsTotal, TokensIssuedTotal)
	})
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Instrument measures every request, labelled by the matched route template instead of the raw path.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()
		defer func() {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
			httpInFlight.Dec()
		}()
		c.Next()
	}
}

func ObserveError(code string) {
	BizErrorsTotal.WithLabelValues(code).Inc()
}

func ObserveAccessDecision(gate string, allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	AccessDecisionsTotal.WithLabelValues(gate, outcome).Inc()
}
