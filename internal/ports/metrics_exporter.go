package ports

import (
	"context"
	"time"
)

// MetricsExporter exports upload metrics to an external observability system.
type MetricsExporter interface {
	ExportUpload(ctx context.Context, m *UploadMetrics) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// UploadMetrics describes the outcome of a single upload request.
type UploadMetrics struct {
	Outcome         string
	MIMEType        string
	SizeBytes       int64
	GatewayDuration time.Duration
}
