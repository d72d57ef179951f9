// Package metrics registers the service's prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry         *prometheus.Registry
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	orderTransitions *prometheus.CounterVec
	messagesSent     prometheus.Counter
	supplierSearches *prometheus.HistogramVec
	eventsPublished  *prometheus.CounterVec
}

// New creates the collectors with every name prefixed by prefix.
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		orderTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_order_transitions_total",
			Help: "Order status transitions applied",
		}, []string{"from", "to"}),
		messagesSent: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_chat_messages_sent_total",
			Help: "Chat messages persisted",
		}),
		supplierSearches: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_supplier_search_results",
			Help:    "Number of suppliers returned by nearby searches",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}, []string{"sort"}),
		eventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_events_published_total",
			Help: "Domain events handed to the broker",
		}, []string{"event", "result"}),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) OrderTransition(from, to string) {
	if m == nil {
		return
	}
	m.orderTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}

func (m *Metrics) SupplierSearch(sort string, results int) {
	if m == nil {
		return
	}
	m.supplierSearches.WithLabelValues(sort).Observe(float64(results))
}

func (m *Metrics) EventPublished(event string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(event, result).Inc()
}
