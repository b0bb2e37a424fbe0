package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/echonote/internal/domain"
)

// createdAtLayout has a fixed width so that lexical order matches time order.
const createdAtLayout = "2006-01-02T15:04:05.000000Z"

type TranscriptRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewTranscriptRepository(db *sql.DB) *TranscriptRepository {
	return &TranscriptRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *TranscriptRepository) List(ctx context.Context) ([]*domain.Transcript, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, filename, transcription, created_at
		FROM transcriptions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list transcriptions: %v", domain.ErrPersistenceFailed, err)
	}
	defer func() { _ = rows.Close() }()

	transcripts := []*domain.Transcript{}
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate transcriptions: %v", domain.ErrPersistenceFailed, err)
	}

	return transcripts, nil
}

func (r *TranscriptRepository) Get(ctx context.Context, id string) (*domain.Transcript, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, filename, transcription, created_at
		FROM transcriptions
		WHERE id = ?
	`, id)

	t, err := scanTranscript(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *TranscriptRepository) Insert(ctx context.Context, filename, transcription string) (*domain.Transcript, error) {
	t := &domain.Transcript{
		ID:            uuid.New().String(),
		Filename:      filename,
		Transcription: transcription,
		CreatedAt:     r.now().UTC().Truncate(time.Microsecond),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transcriptions (id, filename, transcription, created_at)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.Filename, t.Transcription, t.CreatedAt.Format(createdAtLayout))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert transcription: %v", domain.ErrPersistenceFailed, err)
	}

	return t, nil
}

func (r *TranscriptRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transcriptions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: failed to delete transcription: %v", domain.ErrPersistenceFailed, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTranscript(row rowScanner) (*domain.Transcript, error) {
	var t domain.Transcript
	var createdAt string

	if err := row.Scan(&t.ID, &t.Filename, &t.Transcription, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to scan transcription: %v", domain.ErrPersistenceFailed, err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid created_at %q: %v", domain.ErrPersistenceFailed, createdAt, err)
	}
	t.CreatedAt = parsed

	return &t, nil
}
