// Package prometheus exposes upload metrics for scraping on /metrics.
package prometheus

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emiliopalmerini/echonote/internal/ports"
)

// Collector implements ports.MetricsExporter with Prometheus instruments
// registered on its own registry.
type Collector struct {
	registry        *prometheus.Registry
	uploads         *prometheus.CounterVec
	uploadBytes     prometheus.Counter
	gatewayDuration prometheus.Histogram
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "echonote_uploads_total",
			Help: "Total number of upload requests by outcome",
		}, []string{"outcome"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "echonote_upload_bytes_total",
			Help: "Total number of audio bytes received",
		}),
		gatewayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "echonote_transcription_duration_seconds",
			Help:    "Time spent waiting for the transcription provider",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	c.registry.MustRegister(
		c.uploads,
		c.uploadBytes,
		c.gatewayDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) ExportUpload(ctx context.Context, m *ports.UploadMetrics) error {
	c.uploads.WithLabelValues(m.Outcome).Inc()
	if m.SizeBytes > 0 {
		c.uploadBytes.Add(float64(m.SizeBytes))
	}
	if m.GatewayDuration > 0 {
		c.gatewayDuration.Observe(m.GatewayDuration.Seconds())
	}
	return nil
}

func (c *Collector) Close(ctx context.Context) error {
	return nil
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
