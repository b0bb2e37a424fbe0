package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/echonote/internal/domain"
	"github.com/emiliopalmerini/echonote/internal/util"
)

// HistoryPage renders the full page: upload form, search box and list.
func HistoryPage(items []domain.Transcript, search string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>EchoNote</title>`)
		h.raw(`<link rel="stylesheet" href="/static/style.css">`)
		h.raw(`<script src="https://unpkg.com/htmx.org@1.9.12"></script>`)
		h.raw(`<script src="/static/app.js" defer></script>`)
		h.raw(`</head><body><main class="container">`)
		h.raw(`<header><h1>EchoNote</h1><p>Upload an audio file to get a transcript.</p></header>`)

		h.raw(`<form id="upload-form" class="upload" enctype="multipart/form-data">`)
		h.raw(`<input type="file" name="audio" accept="audio/mpeg,audio/wav,audio/x-m4a,audio/mp4,.mp3,.wav,.m4a" required>`)
		h.raw(`<button type="submit">Transcribe</button>`)
		h.raw(`<p id="upload-status" class="status" role="status"></p>`)
		h.raw(`</form>`)

		h.raw(`<section class="history"><h2>History</h2>`)
		h.raw(`<input type="search" name="q" placeholder="Search transcriptions" value="`)
		h.text(search)
		h.raw(`" hx-get="/" hx-trigger="keyup changed delay:300ms, search" hx-target="#history-list" hx-push-url="true">`)
		if h.err != nil {
			return h.err
		}

		if err := HistoryList(items, search).Render(ctx, w); err != nil {
			return err
		}

		h.raw(`</section></main></body></html>`)
		return h.err
	})
}

// HistoryList renders only the list, for HTMX swaps.
func HistoryList(items []domain.Transcript, search string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<ul id="history-list" class="history-list">`)

		if len(items) == 0 {
			h.raw(`<li class="empty">`)
			if search != "" {
				h.raw(`No transcriptions match "`)
				h.text(search)
				h.raw(`".`)
			} else {
				h.raw(`No transcriptions yet.`)
			}
			h.raw(`</li>`)
		}

		for _, t := range items {
			h.raw(`<li class="transcript" id="transcript-`)
			h.text(t.ID)
			h.raw(`"><div class="meta"><strong>`)
			h.text(t.Filename)
			h.raw(`</strong><time datetime="`)
			h.text(t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
			h.raw(`">`)
			h.text(util.FormatDateTime(t.CreatedAt))
			h.raw(`</time></div><p class="text" title="`)
			h.text(t.ExportText())
			h.raw(`">`)
			h.text(preview(t.Transcription))
			h.raw(`</p><div class="actions">`)
			h.raw(`<button type="button" data-action="copy" data-text="`)
			h.text(t.ExportText())
			h.raw(`">Copy</button>`)
			h.raw(`<button type="button" data-action="download" data-name="`)
			h.text(t.ExportName())
			h.raw(`" data-text="`)
			h.text(t.ExportText())
			h.raw(`">Download</button>`)
			h.raw(`<button type="button" class="danger" data-action="delete" data-id="`)
			h.text(t.ID)
			h.raw(`">Delete</button>`)
			h.raw(`</div></li>`)
		}

		h.raw(`</ul>`)
		return h.err
	})
}
