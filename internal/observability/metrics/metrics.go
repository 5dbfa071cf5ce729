package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsoleMetrics exposes counters/histograms for the console API.
type ConsoleMetrics struct {
	requestsTotal        *prometheus.CounterVec
	requestLatency       *prometheus.HistogramVec
	validationRejections *prometheus.CounterVec
	upstreamTotal        *prometheus.CounterVec
	upstreamLatency      *prometheus.HistogramVec
	outboxDeliveries     *prometheus.CounterVec
}

func NewConsoleMetrics(reg prometheus.Registerer) *ConsoleMetrics {
	m := &ConsoleMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsmile",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total console API requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docsmile",
			Subsystem: "api",
			Name:      "request_latency_seconds",
			Help:      "Latency of console API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		validationRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsmile",
			Subsystem: "api",
			Name:      "validation_rejections_total",
			Help:      "Requests rejected by form validation before reaching the system of record",
		}, []string{"operation"}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsmile",
			Subsystem: "upstream",
			Name:      "calls_total",
			Help:      "Total calls to the system of record",
		}, []string{"operation", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docsmile",
			Subsystem: "upstream",
			Name:      "call_latency_seconds",
			Help:      "Latency of calls to the system of record",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		outboxDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsmile",
			Subsystem: "events",
			Name:      "outbox_deliveries_total",
			Help:      "Outbox entries handed to the publisher",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.validationRejections, m.upstreamTotal, m.upstreamLatency, m.outboxDeliveries)
	return m
}

func (m *ConsoleMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *ConsoleMetrics) ObserveValidationRejection(operation string) {
	if m == nil {
		return
	}
	m.validationRejections.WithLabelValues(operation).Inc()
}

// ObserveUpstream records one call to the system of record. Status 0 means the
// call never produced a response.
func (m *ConsoleMetrics) ObserveUpstream(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamTotal.WithLabelValues(operation, label).Inc()
	m.upstreamLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *ConsoleMetrics) ObserveOutboxDelivery(delivered bool) {
	if m == nil {
		return
	}
	status := "failed"
	if delivered {
		status = "delivered"
	}
	m.outboxDeliveries.WithLabelValues(status).Inc()
}
