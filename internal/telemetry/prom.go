// Package telemetry holds the prometheus collectors shared by the server.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Collectors struct {
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
	SourceErrors    *prometheus.CounterVec
	Toggles         *prometheus.CounterVec
	Rows            *prometheus.GaugeVec
	HTTPRequests    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adsmanager",
			Name:      "backend_requests_total",
			Help:      "Requests sent to the ads backend by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "adsmanager",
			Name:      "backend_request_seconds",
			Help:      "Latency of ads backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		SourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adsmanager",
			Name:      "source_refresh_errors_total",
			Help:      "Failed refreshes per data source.",
		}, []string{"source"}),
		Toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adsmanager",
			Name:      "status_toggles_total",
			Help:      "Status toggle requests by kind and target status.",
		}, []string{"kind", "status"}),
		Rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "adsmanager",
			Name:      "snapshot_rows",
			Help:      "Rows held in the latest snapshot per source.",
		}, []string{"source"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adsmanager",
			Name:      "http_requests_total",
			Help:      "Requests served by route pattern and status code.",
		}, []string{"method", "route", "code"}),
	}
	if reg != nil {
		reg.MustRegister(c.BackendRequests, c.BackendLatency, c.SourceErrors, c.Toggles, c.Rows, c.HTTPRequests)
	}
	return c
}

// ObserveBackend records one backend call. Safe on a nil receiver.
func (c *Collectors) ObserveBackend(endpoint string, start time.Time, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
	c.BackendLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (c *Collectors) SourceFailed(source string) {
	if c == nil {
		return
	}
	c.SourceErrors.WithLabelValues(source).Inc()
}

func (c *Collectors) SetRows(source string, n int) {
	if c == nil {
		return
	}
	c.Rows.WithLabelValues(source).Set(float64(n))
}

func (c *Collectors) Toggled(kind, status string) {
	if c == nil {
		return
	}
	c.Toggles.WithLabelValues(kind, status).Inc()
}
