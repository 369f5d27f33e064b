package daemon

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Trigger outcomes recorded on sptnr_trigger_requests_total.
const (
	outcomeStarted      = "started"
	outcomeLaunchFailed = "launch_failed"
	outcomeUnauthorized = "unauthorized"
)

// metrics owns a registry per server so independent servers (and tests) never
// collide on registration.
type metrics struct {
	registry        *prometheus.Registry
	triggerRequests *prometheus.CounterVec
	logRequests     *prometheus.CounterVec
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)
	return &metrics{
		registry: registry,
		triggerRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sptnr_trigger_requests_total",
				Help: "Sync job trigger requests by outcome",
			},
			[]string{"outcome"},
		),
		logRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sptnr_log_requests_total",
				Help: "Run log page requests by endpoint and HTTP status",
			},
			[]string{"endpoint", "status"},
		),
	}
}

func (m *metrics) trigger(outcome string) {
	m.triggerRequests.WithLabelValues(outcome).Inc()
}

func (m *metrics) logRequest(endpoint string, status int) {
	m.logRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
