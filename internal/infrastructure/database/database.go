// Package database opens the transcript store named by the configured URL.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emiliopalmerini/echonote/internal/adapters/postgres"
	"github.com/emiliopalmerini/echonote/internal/adapters/turso"
	"github.com/emiliopalmerini/echonote/internal/infrastructure/config"
	"github.com/emiliopalmerini/echonote/internal/migrate"
	"github.com/emiliopalmerini/echonote/internal/ports"
)

// Store is an open transcript repository and the connection behind it.
type Store struct {
	Repository ports.TranscriptRepository
	Backend    string
	close      func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Options configures Open.
type Options struct {
	// Migrate applies pending libSQL migrations after connecting. Postgres
	// stores always ensure their schema.
	Migrate bool
	Logger  *slog.Logger
}

// Open connects to the Postgres or libSQL database named by cfg.URL.
func Open(ctx context.Context, cfg config.Database, opts Options) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.IsPostgres() {
		pool, err := postgres.Connect(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("connected to database", "backend", "postgres")
		return &Store{
			Repository: postgres.NewTranscriptRepository(pool),
			Backend:    "postgres",
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil
	}

	db, err := turso.Open(ctx, cfg.URL, cfg.AuthToken, turso.Options{Ping: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Migrate {
		m, err := migrate.New(ctx, db, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		applied, err := m.Up(ctx)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		if applied > 0 {
			logger.Info("applied migrations", "count", applied)
		}
	}
	logger.Info("connected to database", "backend", "libsql")

	return &Store{
		Repository: turso.NewTranscriptRepository(db),
		Backend:    "libsql",
		close:      db.Close,
	}, nil
}
