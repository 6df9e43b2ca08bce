// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector instruments uploads, sweeps and the live fan-out.
type Collector struct {
	registry         *prometheus.Registry
	uploads          prometheus.Counter
	filesSwept       prometheus.Counter
	broadcasts       *prometheus.CounterVec
	connectedViewers prometheus.Gauge
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hpoverlay_uploads_total",
			Help: "Total number of accepted file uploads.",
		}),
		filesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hpoverlay_files_swept_total",
			Help: "Total number of stale temporary files removed by the sweeper.",
		}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hpoverlay_broadcast_events_total",
			Help: "Total number of events broadcast to viewers, by event name.",
		}, []string{"event"}),
		connectedViewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hpoverlay_connected_viewers",
			Help: "Number of currently connected overlay viewers.",
		}),
	}
	reg.MustRegister(c.uploads, c.filesSwept, c.broadcasts, c.connectedViewers)
	return c
}

// Handler returns the exposition endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordUpload() {
	if c == nil {
		return
	}
	c.uploads.Inc()
}

func (c *Collector) RecordFilesSwept(count int) {
	if c == nil {
		return
	}
	c.filesSwept.Add(float64(count))
}

func (c *Collector) RecordBroadcast(event string) {
	if c == nil {
		return
	}
	c.broadcasts.WithLabelValues(event).Inc()
}

func (c *Collector) ViewerConnected() {
	if c == nil {
		return
	}
	c.connectedViewers.Inc()
}

func (c *Collector) ViewerDisconnected() {
	if c == nil {
		return
	}
	c.connectedViewers.Dec()
}
