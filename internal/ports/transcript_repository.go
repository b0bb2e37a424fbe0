package ports

import (
	"context"

	"github.com/emiliopalmerini/echonote/internal/domain"
)

// TranscriptRepository is the sole authority over persisted transcripts.
type TranscriptRepository interface {
	// List returns every transcript, newest first.
	List(ctx context.Context) ([]*domain.Transcript, error)
	// Get returns nil, nil when no transcript has the given id.
	Get(ctx context.Context, id string) (*domain.Transcript, error)
	Insert(ctx context.Context, filename, transcription string) (*domain.Transcript, error)
	// Delete succeeds for unknown ids.
	Delete(ctx context.Context, id string) error
}
