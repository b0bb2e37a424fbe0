package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/echonote/internal/domain"
	sharedmw "github.com/emiliopalmerini/echonote/internal/shared/middleware"
	"github.com/emiliopalmerini/echonote/internal/web/templates"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list transcriptions", "error", err)
		http.Error(w, msgFetchFailed, http.StatusInternalServerError)
		return
	}

	items := make([]domain.Transcript, 0, len(list))
	for _, t := range list {
		items = append(items, *t)
	}

	search := r.URL.Query().Get("q")
	items = domain.FilterTranscripts(items, search)

	var c templ.Component
	if sharedmw.IsHTMX(r) {
		c = templates.HistoryList(items, search)
	} else {
		c = templates.HistoryPage(items, search)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		s.logger.Error("failed to render history", "error", err)
	}
}
