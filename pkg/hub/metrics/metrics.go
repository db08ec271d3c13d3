// Package metrics exposes Prometheus metrics for the hub server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application metrics. A nil *Metrics records nothing.
type Metrics struct {
	totalRequests   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec

	votes        *prometheus.CounterVec
	pendingVotes prometheus.Gauge
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	resources    *prometheus.GaugeVec
	categories   *prometheus.GaugeVec
}

// New registers the metrics with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		totalRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		responseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "Size of HTTP responses in bytes.",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8),
			},
			[]string{"method", "path", "status"},
		),
		votes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_votes_total",
				Help: "Votes by direction and outcome.",
			},
			[]string{"type", "result"},
		),
		pendingVotes: f.NewGauge(prometheus.GaugeOpts{
			Name: "hub_votes_pending",
			Help: "Optimistic votes not yet confirmed by the vote service.",
		}),
		loads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_data_loads_total",
				Help: "Data loads by result.",
			},
			[]string{"result"},
		),
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hub_data_load_duration_seconds",
			Help:    "Duration of data loads in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		resources: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hub_resources",
				Help: "Resources in the current catalog by status.",
			},
			[]string{"status"},
		),
		categories: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hub_categories",
				Help: "Categories in the current catalog by use.",
			},
			[]string{"state"},
		),
	}
}

// Middleware records request count, duration and response size.
// Paths are the matched route, so IDs do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		m.totalRequests.WithLabelValues(method, path, status).Inc()
		m.requestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		m.responseSize.WithLabelValues(method, path, status).Observe(float64(max(c.Writer.Size(), 0)))
	}
}

// ObserveVote counts a vote outcome: ok, rejected, pending or error
func (m *Metrics) ObserveVote(voteType, result string) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(voteType, result).Inc()
}

func (m *Metrics) SetPendingVotes(n int) {
	if m == nil {
		return
	}
	m.pendingVotes.Set(float64(n))
}

// ObserveLoad records a data load
func (m *Metrics) ObserveLoad(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.loads.WithLabelValues(result).Inc()
	m.loadDuration.Observe(d.Seconds())
}

// SetCatalog publishes resource counts by status and category usage
func (m *Metrics) SetCatalog(byStatus map[string]int, usedCategories, unusedCategories int) {
	if m == nil {
		return
	}
	m.resources.Reset()
	for status, n := range byStatus {
		m.resources.WithLabelValues(status).Set(float64(n))
	}
	m.categories.WithLabelValues("used").Set(float64(usedCategories))
	m.categories.WithLabelValues("unused").Set(float64(unusedCategories))
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Register mounts the metrics endpoint on r
func Register(r *gin.Engine, g prometheus.Gatherer) {
	r.GET("/metrics", Handler(g))
}
