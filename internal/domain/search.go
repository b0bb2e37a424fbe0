package domain

import "strings"

// FilterTranscripts returns the transcripts whose text contains term,
// ignoring case. An empty term returns the input unchanged.
func FilterTranscripts(transcripts []Transcript, term string) []Transcript {
	if term == "" {
		return transcripts
	}

	needle := strings.ToLower(term)
	filtered := make([]Transcript, 0, len(transcripts))
	for _, t := range transcripts {
		if strings.Contains(strings.ToLower(t.Transcription), needle) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
