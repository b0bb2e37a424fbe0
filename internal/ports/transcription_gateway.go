package ports

import (
	"context"
	"io"
)

// TranscriptionGateway turns audio into plain text using an external
// speech-to-text provider.
type TranscriptionGateway interface {
	Transcribe(ctx context.Context, audio io.Reader, mimeType string) (string, error)
}
