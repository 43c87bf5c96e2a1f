package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "deliverydesk"

// Metrics owns a private registry so each process (and each test) starts from zero.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	statusUpdates *prometheus.CounterVec
	exports       *prometheus.CounterVec
	escalations   *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler", "method"},
		),
		statusUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_updates_total",
				Help:      "Status update attempts by proposed status and outcome",
			},
			[]string{"status", "outcome"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_exports_total",
				Help:      "History CSV export requests by result",
			},
			[]string{"result"},
		),
		escalations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "escalations_total",
				Help:      "Failed deliveries moved to failed_final by the escalation worker",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.statusUpdates,
		m.exports,
		m.escalations,
	)
	return m
}

// ObserveStatusUpdate counts one status update attempt.
func (m *Metrics) ObserveStatusUpdate(status, outcome string) {
	if status == "" {
		status = "unknown"
	}
	m.statusUpdates.WithLabelValues(status, outcome).Inc()
}

// ObserveExport counts a history export. Empty exports are tracked separately.
func (m *Metrics) ObserveExport(rows int) {
	result := "ok"
	if rows == 0 {
		result = "empty"
	}
	m.exports.WithLabelValues(result).Inc()
}

// ObserveEscalation counts one escalation attempt.
func (m *Metrics) ObserveEscalation(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.escalations.WithLabelValues(outcome).Inc()
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.httpDuration.WithLabelValues(handler, c.Request.Method).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(handler, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
