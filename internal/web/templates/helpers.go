package templates

import (
	"io"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/echonote/internal/util"
)

const previewLength = 160

// htmlWriter remembers the first write error so templates can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func preview(s string) string {
	if s == "" {
		return "No transcription"
	}
	return util.Preview(s, previewLength)
}
