// Package metrics exposes Prometheus instruments for the quote engine and
// its HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Outcome labels.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Collector groups the service's instruments.
type Collector struct {
	estimatesTotal      prometheus.Counter
	estimatedPrice      prometheus.Histogram
	targetSolvesTotal   *prometheus.CounterVec
	attachmentsTotal    *prometheus.CounterVec
	submissionsTotal    *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector registers the instruments on reg under namespace.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	factory := promauto.With(reg)
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.estimatesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimates_total",
		Help:      "Total number of quote estimates computed",
	})

	c.estimatedPrice = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "estimated_price",
		Help:      "Distribution of estimated quote prices in currency units",
		Buckets:   prometheus.ExponentialBuckets(100, 2, 12),
	})

	c.targetSolvesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "target_dimension_solves_total",
		Help:      "Total number of inverse scale solves by result",
	}, []string{"axis", "result"})

	c.attachmentsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geometry_attachments_total",
		Help:      "Total number of mesh snapshots attached to sessions by result",
	}, []string{"result"})

	c.submissionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Total number of quote submissions by result",
	}, []string{"result"})

	c.httpRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	c.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	c.logger.Debug("metrics registered", zap.String("namespace", namespace))
	return c
}

func (c *Collector) RecordEstimate(price int64) {
	c.estimatesTotal.Inc()
	c.estimatedPrice.Observe(float64(price))
}

func (c *Collector) RecordTargetSolve(axis, result string) {
	c.targetSolvesTotal.WithLabelValues(axis, result).Inc()
}

func (c *Collector) RecordAttachment(result string) {
	c.attachmentsTotal.WithLabelValues(result).Inc()
}

func (c *Collector) RecordSubmission(result string) {
	c.submissionsTotal.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
