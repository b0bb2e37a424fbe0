// Package browser keeps a local copy of the transcript history and offers the
// list operations of the history view: search, copy, export and delete.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"

	"github.com/emiliopalmerini/echonote/internal/domain"
)

// ErrCancelled is returned by Delete when the confirmation was declined.
var ErrCancelled = errors.New("deletion cancelled")

// API is the remote side of the browser.
type API interface {
	List(ctx context.Context) ([]domain.Transcript, error)
	Delete(ctx context.Context, id string) error
}

// ConfirmFunc is asked before a transcript is deleted.
type ConfirmFunc func(t domain.Transcript) bool

type Browser struct {
	api         API
	clipboard   func(string) error
	transcripts []domain.Transcript
	search      string
}

type Option func(*Browser)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(b *Browser) {
		b.clipboard = write
	}
}

func New(api API, opts ...Option) *Browser {
	b := &Browser{
		api:       api,
		clipboard: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load replaces the local list with the server's.
func (b *Browser) Load(ctx context.Context) error {
	list, err := b.api.List(ctx)
	if err != nil {
		return err
	}
	b.transcripts = list
	return nil
}

func (b *Browser) SetSearch(term string) {
	b.search = term
}

func (b *Browser) Search() string {
	return b.search
}

// Visible returns the loaded transcripts matching the current search.
func (b *Browser) Visible() []domain.Transcript {
	return domain.FilterTranscripts(b.transcripts, b.search)
}

// All returns every loaded transcript, ignoring the search.
func (b *Browser) All() []domain.Transcript {
	return b.transcripts
}

func (b *Browser) Find(id string) (domain.Transcript, error) {
	for _, t := range b.transcripts {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Transcript{}, fmt.Errorf("%w: transcript %s", domain.ErrNotFound, id)
}

// Delete asks confirm, then deletes id on the server and drops it from the
// local list. A nil confirm counts as declined.
func (b *Browser) Delete(ctx context.Context, id string, confirm ConfirmFunc) error {
	t, err := b.Find(id)
	if err != nil {
		return err
	}
	if confirm == nil || !confirm(t) {
		return ErrCancelled
	}

	if err := b.api.Delete(ctx, id); err != nil {
		return err
	}

	kept := make([]domain.Transcript, 0, len(b.transcripts))
	for _, t := range b.transcripts {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	b.transcripts = kept
	return nil
}

// Export writes the text of id to w.
func (b *Browser) Export(w io.Writer, id string) error {
	t, err := b.Find(id)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, t.ExportText())
	return err
}

// Copy puts the text of id on the clipboard.
func (b *Browser) Copy(id string) error {
	t, err := b.Find(id)
	if err != nil {
		return err
	}
	if err := b.clipboard(t.ExportText()); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
