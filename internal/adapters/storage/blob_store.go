package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/emiliopalmerini/echonote/internal/domain"
)

const maxCreateAttempts = 8

// BlobStore keeps uploaded audio on local disk until it has been forwarded.
// Names are "<unix-millis>-<original base name>" with a strictly increasing
// stamp, and files are created exclusively so concurrent uploads of the same
// filename never share a file.
type BlobStore struct {
	dir      string
	maxBytes int64
	now      func() time.Time
	last     atomic.Int64
}

func NewBlobStore(dir string, maxBytes int64) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &BlobStore{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

func (s *BlobStore) Dir() string {
	return s.dir
}

func (s *BlobStore) Create(ctx context.Context, filename string, r io.Reader) (string, int64, error) {
	base := sanitizeName(filename)

	var (
		name string
		f    *os.File
		err  error
	)
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		name = fmt.Sprintf("%d-%s", s.nextStamp(), base)
		f, err = os.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil || !errors.Is(err, os.ErrExist) {
			break
		}
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}

	n, err := io.Copy(f, src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = domain.ErrFileTooLarge
	}
	var bodyTooLarge *http.MaxBytesError
	if errors.As(err, &bodyTooLarge) {
		err = fmt.Errorf("%w: %v", domain.ErrFileTooLarge, err)
	}
	if err != nil {
		_ = os.Remove(s.path(name))
		if errors.Is(err, domain.ErrFileTooLarge) {
			return "", 0, err
		}
		return "", 0, fmt.Errorf("failed to write upload file: %w", err)
	}

	return name, n, nil
}

func (s *BlobStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open upload file: %w", err)
	}
	return f, nil
}

func (s *BlobStore) Remove(ctx context.Context, name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload file: %w", err)
	}
	return nil
}

// Sweep removes files last modified before olderThan ago. With dryRun set it
// only reports them.
func (s *BlobStore) Sweep(ctx context.Context, olderThan time.Duration, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	cutoff := s.now().Add(-olderThan)
	var swept []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return swept, err
		}
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if !dryRun {
			if err := s.Remove(ctx, entry.Name()); err != nil {
				return swept, err
			}
		}
		swept = append(swept, entry.Name())
	}

	return swept, nil
}

func (s *BlobStore) nextStamp() int64 {
	for {
		now := s.now().UnixMilli()
		last := s.last.Load()
		if now <= last {
			now = last + 1
		}
		if s.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

func (s *BlobStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func sanitizeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "audio"
	}
	return base
}
