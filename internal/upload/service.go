// Package upload relays an uploaded audio file to the transcription gateway
// and stores the resulting transcript.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emiliopalmerini/echonote/internal/domain"
	"github.com/emiliopalmerini/echonote/internal/ports"
)

const SuccessMessage = "Transcription successful"

// Outcome labels used for metrics.
const (
	OutcomeSuccess              = "success"
	OutcomeNoFile               = "no_file"
	OutcomeInvalidFileType      = "invalid_file_type"
	OutcomeFileTooLarge         = "file_too_large"
	OutcomeTranscriptionFailed  = "transcription_failed"
	OutcomeTranscriptionTimeout = "transcription_timeout"
	OutcomePersistenceFailed    = "persistence_failed"
	OutcomeError                = "error"
)

type Request struct {
	Filename string
	MIMEType string
	Body     io.Reader
}

type Result struct {
	Message       string `json:"message,omitempty"`
	ID            string `json:"id,omitempty"`
	Filename      string `json:"filename"`
	Transcription string `json:"transcription"`
}

type Service struct {
	blobs   ports.BlobStore
	gateway ports.TranscriptionGateway
	repo    ports.TranscriptRepository
	metrics []ports.MetricsExporter
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithMetrics(exporters ...ports.MetricsExporter) Option {
	return func(s *Service) {
		s.metrics = append(s.metrics, exporters...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(blobs ports.BlobStore, gateway ports.TranscriptionGateway, repo ports.TranscriptRepository, opts ...Option) *Service {
	s := &Service{
		blobs:   blobs,
		gateway: gateway,
		repo:    repo,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload validates the request, stores the audio transiently, transcribes it
// and persists the transcript. The transient file is removed before Upload
// returns.
//
// When only persistence fails, Upload returns both a Result carrying the
// transcript and an error wrapping domain.ErrPersistenceFailed.
func (s *Service) Upload(ctx context.Context, req Request) (res *Result, err error) {
	m := &ports.UploadMetrics{}
	defer func() {
		m.Outcome = Outcome(err)
		s.export(ctx, m)
	}()

	if req.Body == nil || req.Filename == "" {
		return nil, domain.ErrNoFile
	}

	mimeType, ok := domain.NormalizeMIMEType(req.MIMEType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFileType, req.MIMEType)
	}
	m.MIMEType = mimeType

	name, size, err := s.blobs.Create(ctx, req.Filename, req.Body)
	if err != nil {
		return nil, err
	}
	m.SizeBytes = size
	defer s.release(name)

	logger := s.logger.With("filename", name)
	logger.Info("file uploaded", "size", size, "mime_type", mimeType)

	start := s.now()
	text, err := s.transcribe(ctx, name, mimeType)
	m.GatewayDuration = s.now().Sub(start)
	if err != nil {
		logger.Error("transcription failed", "error", err)
		return nil, err
	}
	logger.Info("transcribed", "length", len(text))

	t, err := s.repo.Insert(ctx, name, text)
	if err != nil {
		logger.Error("failed to save transcription", "error", err)
		if !errors.Is(err, domain.ErrPersistenceFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
		}
		return &Result{Filename: name, Transcription: text}, err
	}
	logger.Info("transcription saved", "id", t.ID)

	return &Result{
		Message:       SuccessMessage,
		ID:            t.ID,
		Filename:      name,
		Transcription: text,
	}, nil
}

func (s *Service) transcribe(ctx context.Context, name, mimeType string) (string, error) {
	audio, err := s.blobs.Open(ctx, name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionFailed, err)
	}
	defer func() { _ = audio.Close() }()

	text, err := s.gateway.Transcribe(ctx, audio, mimeType)
	if err != nil {
		if errors.Is(err, domain.ErrTranscriptionFailed) || errors.Is(err, domain.ErrTranscriptionTimeout) {
			return "", err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionFailed, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty transcript", domain.ErrTranscriptionFailed)
	}
	return text, nil
}

func (s *Service) release(name string) {
	if err := s.blobs.Remove(context.Background(), name); err != nil {
		s.logger.Warn("failed to remove upload file", "filename", name, "error", err)
	}
}

func (s *Service) export(ctx context.Context, m *ports.UploadMetrics) {
	for _, exp := range s.metrics {
		if err := exp.ExportUpload(ctx, m); err != nil {
			s.logger.Warn("failed to export upload metrics", "error", err)
		}
	}
}

// Outcome maps an Upload error to its metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrNoFile):
		return OutcomeNoFile
	case errors.Is(err, domain.ErrInvalidFileType):
		return OutcomeInvalidFileType
	case errors.Is(err, domain.ErrFileTooLarge):
		return OutcomeFileTooLarge
	case errors.Is(err, domain.ErrTranscriptionTimeout):
		return OutcomeTranscriptionTimeout
	case errors.Is(err, domain.ErrTranscriptionFailed):
		return OutcomeTranscriptionFailed
	case errors.Is(err, domain.ErrPersistenceFailed):
		return OutcomePersistenceFailed
	default:
		return OutcomeError
	}
}
