// Package postgres stores transcripts in a Postgres database, such as a
// hosted Supabase project.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emiliopalmerini/echonote/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	transcription TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at ON transcriptions (created_at DESC)`

// querier is the subset of pgxpool.Pool used by the repository.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type TranscriptRepository struct {
	db  querier
	now func() time.Time
}

// Connect opens a connection pool and makes sure the transcriptions table exists.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return pool, nil
}

func NewTranscriptRepository(pool *pgxpool.Pool) *TranscriptRepository {
	return &TranscriptRepository{db: pool, now: time.Now}
}

func (r *TranscriptRepository) List(ctx context.Context) ([]*domain.Transcript, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, filename, transcription, created_at
		FROM transcriptions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list transcriptions: %v", domain.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	transcripts := []*domain.Transcript{}
	for rows.Next() {
		var t domain.Transcript
		if err := rows.Scan(&t.ID, &t.Filename, &t.Transcription, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan transcription: %v", domain.ErrPersistenceFailed, err)
		}
		transcripts = append(transcripts, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate transcriptions: %v", domain.ErrPersistenceFailed, err)
	}

	return transcripts, nil
}

func (r *TranscriptRepository) Get(ctx context.Context, id string) (*domain.Transcript, error) {
	var t domain.Transcript
	err := r.db.QueryRow(ctx, `
		SELECT id, filename, transcription, created_at
		FROM transcriptions
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Filename, &t.Transcription, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to get transcription: %v", domain.ErrPersistenceFailed, err)
	}
	return &t, nil
}

func (r *TranscriptRepository) Insert(ctx context.Context, filename, transcription string) (*domain.Transcript, error) {
	t := &domain.Transcript{
		ID:            uuid.New().String(),
		Filename:      filename,
		Transcription: transcription,
		CreatedAt:     r.now().UTC().Truncate(time.Microsecond),
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO transcriptions (id, filename, transcription, created_at)
		VALUES ($1, $2, $3, $4)
	`, t.ID, t.Filename, t.Transcription, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert transcription: %v", domain.ErrPersistenceFailed, err)
	}

	return t, nil
}

func (r *TranscriptRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM transcriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%w: failed to delete transcription: %v", domain.ErrPersistenceFailed, err)
	}
	return nil
}
