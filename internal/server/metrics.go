package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aristath/pricing/internal/modules/optimization"
)

// Metrics holds the Prometheus collectors for the pricing service
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BatchesTotal    *prometheus.CounterVec
	RecommendedDays *prometheus.CounterVec
	BatchDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a dedicated registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricing_http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricing_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"route"},
		),

		BatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricing_recommendation_batches_total",
				Help: "Total recommendation batches generated by strategy",
			},
			[]string{"strategy"},
		),

		RecommendedDays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricing_recommended_days_total",
				Help: "Total per-day recommendations produced by strategy",
			},
			[]string{"strategy"},
		),

		BatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricing_recommendation_batch_duration_seconds",
				Help:    "Time to generate a recommendation batch in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"strategy"},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.BatchesTotal,
		m.RecommendedDays,
		m.BatchDuration,
		collectors.NewGoCollector(),
	)

	return m
}

// ObserveBatch records one generated recommendation batch
func (m *Metrics) ObserveBatch(strategy optimization.Strategy, days int, elapsed time.Duration) {
	label := string(strategy)
	m.BatchesTotal.WithLabelValues(label).Inc()
	m.RecommendedDays.WithLabelValues(label).Add(float64(days))
	m.BatchDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations keyed by the matched route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
