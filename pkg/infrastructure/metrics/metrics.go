package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Simulation outcomes
const (
	OutcomeProducible        = "producible"
	OutcomeShortage          = "shortage"
	OutcomeMissingTechnology = "missing_technology"
	OutcomeError             = "error"
)

// Metrics holds the advisor's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	SimulationsTotal    *prometheus.CounterVec
	ForecastPointsTotal *prometheus.CounterVec
	ForecastDuration    *prometheus.HistogramVec
	AdviceTotal         *prometheus.CounterVec
	StockAlerts         *prometheus.GaugeVec
}

// Config holds metrics configuration
type Config struct {
	Namespace string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig() *Config {
	return &Config{Namespace: "supplyadvisor"}
}

// New creates a Metrics instance on its own registry
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	m.SimulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "simulations_total",
			Help:      "Production simulations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	m.ForecastPointsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "forecast_points_total",
			Help:      "Forecasted product weeks by model",
		},
		[]string{"model"},
	)

	m.ForecastDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Forecast run duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	m.AdviceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "advice_total",
			Help:      "Generated advice by narrator availability",
		},
		[]string{"llm"},
	)

	m.StockAlerts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "stock_alerts",
			Help:      "Products per stock status in the last alert run",
		},
		[]string{"status"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SimulationsTotal,
		m.ForecastPointsTotal,
		m.ForecastDuration,
		m.AdviceTotal,
		m.StockAlerts,
	)

	return m
}

// Handler returns the HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records a served request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments the in-flight gauge
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements the in-flight gauge
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// RecordSimulation records one simulation of the given kind
func (m *Metrics) RecordSimulation(kind, outcome string) {
	m.SimulationsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordForecast records a finished forecast run
func (m *Metrics) RecordForecast(model string, points int, duration time.Duration) {
	m.ForecastPointsTotal.WithLabelValues(model).Add(float64(points))
	m.ForecastDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordAdvice records generated advice
func (m *Metrics) RecordAdvice(llmAvailable bool) {
	m.AdviceTotal.WithLabelValues(strconv.FormatBool(llmAvailable)).Inc()
}

// SetStockAlerts replaces the per-status alert gauges
func (m *Metrics) SetStockAlerts(counts map[string]int) {
	m.StockAlerts.Reset()
	for status, n := range counts {
		m.StockAlerts.WithLabelValues(status).Set(float64(n))
	}
}
