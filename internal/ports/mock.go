package ports

import (
	"context"
	"io"

	"github.com/emiliopalmerini/echonote/internal/domain"
)

// MockTranscriptRepository is a mock implementation of TranscriptRepository for testing.
type MockTranscriptRepository struct {
	ListFunc   func(ctx context.Context) ([]*domain.Transcript, error)
	GetFunc    func(ctx context.Context, id string) (*domain.Transcript, error)
	InsertFunc func(ctx context.Context, filename, transcription string) (*domain.Transcript, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockTranscriptRepository) List(ctx context.Context) ([]*domain.Transcript, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*domain.Transcript{}, nil
}

func (m *MockTranscriptRepository) Get(ctx context.Context, id string) (*domain.Transcript, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTranscriptRepository) Insert(ctx context.Context, filename, transcription string) (*domain.Transcript, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, filename, transcription)
	}
	return &domain.Transcript{ID: "mock-id", Filename: filename, Transcription: transcription}, nil
}

func (m *MockTranscriptRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockTranscriptionGateway is a mock implementation of TranscriptionGateway for testing.
type MockTranscriptionGateway struct {
	TranscribeFunc func(ctx context.Context, audio io.Reader, mimeType string) (string, error)
	Calls          int
}

func (m *MockTranscriptionGateway) Transcribe(ctx context.Context, audio io.Reader, mimeType string) (string, error) {
	m.Calls++
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, mimeType)
	}
	return "", nil
}

// MockMetricsExporter records every exported upload.
type MockMetricsExporter struct {
	Uploads []*UploadMetrics
}

func (m *MockMetricsExporter) ExportUpload(ctx context.Context, u *UploadMetrics) error {
	m.Uploads = append(m.Uploads, u)
	return nil
}

func (m *MockMetricsExporter) Close(ctx context.Context) error {
	return nil
}
