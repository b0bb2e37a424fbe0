package domain

import "time"

type Transcript struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Transcription string    `json:"transcription"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExportName is the file name used when a transcript is downloaded as text.
func (t *Transcript) ExportName() string {
	if t.Filename == "" {
		return "transcription.txt"
	}
	return t.Filename + ".txt"
}

// ExportText is the body of the downloaded text file.
func (t *Transcript) ExportText() string {
	if t.Transcription == "" {
		return "No transcription"
	}
	return t.Transcription
}
