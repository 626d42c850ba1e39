// Package metrics collects Prometheus metrics for the service and exposes
// them for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services report to. Noop satisfies it for tests and
// for components built without a collector.
type Recorder interface {
	RecordResolution(tier string, err error)
	RecordCatalogRequest(endpoint string, duration time.Duration, err error)
	RecordCheckout(outcome string)
	RecordHTTPStatus(statusCode int)
	SetActiveSessions(n int)
}

// Collector is the Prometheus backed Recorder.
type Collector struct {
	resolutions    *prometheus.CounterVec
	catalog        *prometheus.CounterVec
	catalogLatency *prometheus.HistogramVec
	checkouts      *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// NewCollector creates the collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "summarist_subscription_resolutions_total",
			Help: "Subscription tier resolutions by resulting tier and outcome.",
		}, []string{"tier", "outcome"}),
		catalog: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "summarist_catalog_requests_total",
			Help: "Catalog endpoint calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		catalogLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "summarist_catalog_request_duration_seconds",
			Help:    "Catalog endpoint latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "summarist_checkout_sessions_total",
			Help: "Checkout sessions by outcome.",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "summarist_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "summarist_session_states_active",
			Help: "Session state containers currently held in memory.",
		}),
	}

	reg.MustRegister(
		c.resolutions,
		c.catalog,
		c.catalogLatency,
		c.checkouts,
		c.httpStatus,
		c.activeSessions,
	)
	return c
}

func (c *Collector) RecordResolution(tier string, err error) {
	c.resolutions.WithLabelValues(tier, outcome(err)).Inc()
}

func (c *Collector) RecordCatalogRequest(endpoint string, duration time.Duration, err error) {
	c.catalog.WithLabelValues(endpoint, outcome(err)).Inc()
	c.catalogLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (c *Collector) RecordCheckout(result string) {
	c.checkouts.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordResolution(string, error)                    {}
func (Noop) RecordCatalogRequest(string, time.Duration, error) {}
func (Noop) RecordCheckout(string)                             {}
func (Noop) RecordHTTPStatus(int)                              {}
func (Noop) SetActiveSessions(int)                             {}
