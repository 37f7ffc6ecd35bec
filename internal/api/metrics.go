package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exposed at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	requests          *prometheus.CounterVec
	receipts          *prometheus.CounterVec
	ledgerLines       prometheus.Counter
	extractFailures   *prometheus.CounterVec
	extractionSeconds *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		receipts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_receipts_processed_total",
			Help: "Receipt uploads by outcome.",
		}, []string{"outcome"}),
		ledgerLines: f.NewCounter(prometheus.CounterOpts{
			Name: "finance_ledger_lines_parsed_total",
			Help: "Ledger rows recognised in uploaded PDFs.",
		}),
		extractFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_extraction_failures_total",
			Help: "Text extraction failures by file format.",
		}, []string{"format"}),
		extractionSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finance_extraction_duration_seconds",
			Help:    "Time spent extracting text from uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"format"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
