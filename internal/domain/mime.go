package domain

import (
	"mime"
	"path/filepath"
	"strings"
)

// AllowedMIMETypes lists the audio formats accepted for transcription.
var AllowedMIMETypes = []string{
	"audio/mpeg",
	"audio/wav",
	"audio/x-m4a",
	"audio/mp4",
}

var extensionMIMETypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
	".m4a": "audio/x-m4a",
	".mp4": "audio/mp4",
}

// NormalizeMIMEType strips parameters and lowercases the media type, then
// reports whether the result is in AllowedMIMETypes.
func NormalizeMIMEType(contentType string) (string, bool) {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	for _, allowed := range AllowedMIMETypes {
		if mediaType == allowed {
			return mediaType, true
		}
	}
	return mediaType, false
}

// MIMETypeForFile guesses an allowed MIME type from the file extension.
// It returns "application/octet-stream" for unknown extensions.
func MIMETypeForFile(path string) string {
	if t, ok := extensionMIMETypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return "application/octet-stream"
}
