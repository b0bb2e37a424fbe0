package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/emiliopalmerini/echonote/internal/adapters/deepgram"
	"github.com/emiliopalmerini/echonote/internal/adapters/otel"
	"github.com/emiliopalmerini/echonote/internal/adapters/prometheus"
	"github.com/emiliopalmerini/echonote/internal/adapters/storage"
	"github.com/emiliopalmerini/echonote/internal/infrastructure/config"
	"github.com/emiliopalmerini/echonote/internal/infrastructure/database"
	"github.com/emiliopalmerini/echonote/internal/ports"
	"github.com/emiliopalmerini/echonote/internal/upload"
)

// AppContext holds the shared dependencies of the server.
type AppContext struct {
	Store     *database.Store
	Repo      ports.TranscriptRepository
	Blobs     *storage.BlobStore
	Gateway   ports.TranscriptionGateway
	Collector *prometheus.Collector
	Exporter  ports.MetricsExporter
	Uploads   *upload.Service
}

// NewAppContext connects every adapter named in cfg. libSQL databases are
// migrated on the way up.
func NewAppContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*AppContext, error) {
	if err := errors.Join(cfg.Server.Validate(), cfg.Deepgram.Validate(), cfg.Database.Validate()); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	gateway, err := deepgram.NewClient(deepgram.Config{
		APIKey:  cfg.Deepgram.APIKey,
		BaseURL: cfg.Deepgram.BaseURL,
		Model:   cfg.Deepgram.Model,
		Timeout: cfg.Deepgram.Timeout,
	})
	if err != nil {
		return nil, err
	}

	blobs, err := storage.NewBlobStore(cfg.Server.UploadDir, cfg.Server.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	store, err := database.Open(ctx, cfg.Database, database.Options{Migrate: true, Logger: logger})
	if err != nil {
		return nil, err
	}

	collector := prometheus.NewCollector()

	var exporter ports.MetricsExporter = otel.NewNoOpExporter()
	if cfg.OTel.Enabled {
		exp, err := otel.NewExporter(ctx, otel.Config{
			Endpoint: cfg.OTel.Endpoint,
			Enabled:  cfg.OTel.Enabled,
			Insecure: cfg.OTel.Insecure,
		})
		if err != nil {
			logger.Warn("OTEL exporter unavailable, continuing without it", "error", err)
		} else {
			exporter = exp
		}
	}

	svc := upload.NewService(blobs, gateway, store.Repository,
		upload.WithMetrics(collector, exporter),
		upload.WithLogger(logger),
	)

	return &AppContext{
		Store:     store,
		Repo:      store.Repository,
		Blobs:     blobs,
		Gateway:   gateway,
		Collector: collector,
		Exporter:  exporter,
		Uploads:   svc,
	}, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	var errs []error
	if a.Exporter != nil {
		errs = append(errs, a.Exporter.Close(ctx))
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
