package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the Prometheus collectors of one server
type metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	writes   *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{registry: prometheus.NewRegistry()}

	m.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apptcal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "apptcal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route"},
	)

	m.writes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apptcal",
			Subsystem: "store",
			Name:      "schedule_writes_total",
			Help:      "Appointment writes by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.writes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// handler serves the registry in the Prometheus text format
func (m *metrics) handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// observe records one finished request
func (m *metrics) observe(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())

	if op := writeOp(method, route); op != "" {
		outcome := "ok"
		if status >= 400 {
			outcome = "error"
		}
		m.writes.WithLabelValues(op, outcome).Inc()
	}
}

func writeOp(method, route string) string {
	switch {
	case method == fiber.MethodPost && route == "/api/schedules":
		return "create"
	case method == fiber.MethodPut && route == "/api/schedules/:id":
		return "update"
	case method == fiber.MethodDelete && route == "/api/schedules/:id":
		return "delete"
	}
	return ""
}
