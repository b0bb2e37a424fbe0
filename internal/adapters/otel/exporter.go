package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/echonote/internal/ports"
)

const (
	serviceName    = "echonote"
	serviceVersion = "1.0.0"
)

// Exporter exports upload metrics to an OTEL Collector.
type Exporter struct {
	provider     *sdkmetric.MeterProvider
	uploadsTotal metric.Int64Counter
	bytesTotal   metric.Int64Counter
	gatewayHist  metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	uploadsTotal, err := meter.Int64Counter(
		"echonote_uploads_total",
		metric.WithDescription("Upload requests by outcome"),
		metric.WithUnit("{upload}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating uploads counter: %w", err)
	}

	bytesTotal, err := meter.Int64Counter(
		"echonote_upload_bytes_total",
		metric.WithDescription("Audio bytes received"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bytes counter: %w", err)
	}

	gatewayHist, err := meter.Float64Histogram(
		"echonote_transcription_duration_seconds",
		metric.WithDescription("Time spent waiting for the transcription provider"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription duration histogram: %w", err)
	}

	return &Exporter{
		provider:     provider,
		uploadsTotal: uploadsTotal,
		bytesTotal:   bytesTotal,
		gatewayHist:  gatewayHist,
	}, nil
}

// ExportUpload records the outcome of one upload.
func (e *Exporter) ExportUpload(ctx context.Context, m *ports.UploadMetrics) error {
	opt := metric.WithAttributes(
		attribute.String("outcome", m.Outcome),
		attribute.String("mime_type", m.MIMEType),
	)

	e.uploadsTotal.Add(ctx, 1, opt)
	if m.SizeBytes > 0 {
		e.bytesTotal.Add(ctx, m.SizeBytes, opt)
	}
	if m.GatewayDuration > 0 {
		e.gatewayHist.Record(ctx, m.GatewayDuration.Seconds(), opt)
	}

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
