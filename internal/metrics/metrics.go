// Package metrics provides Prometheus instrumentation for the risk engine.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "upi_risk"

// Metrics holds every collector on its own registry
type Metrics struct {
	registry *prometheus.Registry

	// Classifications counts identifier verdicts by status.
	Classifications *prometheus.CounterVec

	// TransactionsScored counts scored transactions by risk level.
	TransactionsScored *prometheus.CounterVec

	// TransactionScore observes the final ensemble score.
	TransactionScore prometheus.Histogram

	// DegradedScores counts scores computed with a missing signal.
	DegradedScores prometheus.Counter

	// MessagesAnalyzed counts analysed messages by verdict.
	MessagesAnalyzed *prometheus.CounterVec

	// QRAnalyses counts analysed QR payloads by risk level.
	QRAnalyses *prometheus.CounterVec

	// OracleResults counts oracle consultations by outcome.
	OracleResults *prometheus.CounterVec

	// ReportsSubmitted counts accepted scam reports.
	ReportsSubmitted prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Identifier classifications by status.",
		}, []string{"status"}),
		TransactionsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_scored_total",
			Help:      "Scored transactions by risk level.",
		}, []string{"level"}),
		TransactionScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_score",
			Help:      "Distribution of transaction risk scores.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.85, 1},
		}),
		DegradedScores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_scores_total",
			Help:      "Transaction scores computed without every signal.",
		}),
		MessagesAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_analyzed_total",
			Help:      "Analysed messages by verdict.",
		}, []string{"verdict"}),
		QRAnalyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qr_analyses_total",
			Help:      "Analysed QR payloads by risk level.",
		}, []string{"level"}),
		OracleResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_results_total",
			Help:      "AI oracle consultations by outcome.",
		}, []string{"outcome"}),
		ReportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Accepted scam reports.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Classifications,
		m.TransactionsScored,
		m.TransactionScore,
		m.DegradedScores,
		m.MessagesAnalyzed,
		m.QRAnalyses,
		m.OracleResults,
		m.ReportsSubmitted,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware returns a gin middleware that records request metrics.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		timer := prometheus.NewTimer(m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path))

		c.Next()

		timer.ObserveDuration()
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, statusBucket(c.Writer.Status())).Inc()
	}
}

// Handler returns the /metrics handler for this registry
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
