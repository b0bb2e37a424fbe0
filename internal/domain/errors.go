package domain

import "errors"

var (
	ErrNoFile               = errors.New("no audio file uploaded")
	ErrInvalidFileType      = errors.New("invalid file type")
	ErrFileTooLarge         = errors.New("file too large")
	ErrTranscriptionFailed  = errors.New("transcription failed")
	ErrTranscriptionTimeout = errors.New("transcription timed out")
	ErrPersistenceFailed    = errors.New("persistence failed")
	ErrNotFound             = errors.New("not found")
)
