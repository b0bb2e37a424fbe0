package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/echonote/internal/adapters/storage"
	"github.com/emiliopalmerini/echonote/internal/domain"
	"github.com/emiliopalmerini/echonote/internal/ports"
	"github.com/emiliopalmerini/echonote/internal/upload"
)

type testEnv struct {
	server  *Server
	gateway *ports.MockTranscriptionGateway
	repo    *ports.MockTranscriptRepository
	dir     string
}

func newTestEnv(t *testing.T, maxBytes int64) *testEnv {
	t.Helper()

	dir := t.TempDir()
	blobs, err := storage.NewBlobStore(dir, maxBytes)
	if err != nil {
		t.Fatalf("NewBlobStore: %v", err)
	}

	env := &testEnv{
		gateway: &ports.MockTranscriptionGateway{
			TranscribeFunc: func(ctx context.Context, audio io.Reader, mimeType string) (string, error) {
				return "hello world", nil
			},
		},
		repo: &ports.MockTranscriptRepository{},
		dir:  dir,
	}

	svc := upload.NewService(blobs, env.gateway, env.repo)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("echonote_uploads_total 0\n"))
	})
	env.server = NewServer(Config{Addr: ":0", MaxUploadBytes: maxBytes}, svc, env.repo, metrics, nil)
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.WriteField("note", "ignored"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func assertNoLeftovers(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("%d transient files left behind", len(entries))
	}
}

func TestAPIUpload_Success(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	var saved []string
	env.repo.InsertFunc = func(ctx context.Context, filename, transcription string) (*domain.Transcript, error) {
		saved = append(saved, transcription)
		return &domain.Transcript{ID: "id-1", Filename: filename, Transcription: transcription}, nil
	}

	rec := env.do(uploadRequest(t, "audio", "sample.wav", "audio/wav", []byte("RIFF0000WAVE")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if body["message"] != "Transcription successful" {
		t.Errorf("message = %v", body["message"])
	}
	if body["transcription"] != "hello world" {
		t.Errorf("transcription = %v", body["transcription"])
	}
	if body["id"] != "id-1" {
		t.Errorf("id = %v, want id-1", body["id"])
	}
	if len(body) != 4 {
		t.Errorf("body keys = %v, want message, id, filename, transcription", body)
	}
	filename, _ := body["filename"].(string)
	if !regexp.MustCompile(`^\d+-sample\.wav$`).MatchString(filename) {
		t.Errorf("filename = %q, want <timestamp>-sample.wav", filename)
	}
	if len(saved) != 1 || saved[0] != "hello world" {
		t.Errorf("saved = %v, want one record with the transcript", saved)
	}
	assertNoLeftovers(t, env.dir)
}

func TestAPIUpload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		gatewayErr error
		insertErr  error
		wantStatus int
		wantError  string
		gatewayHit bool
	}{
		{
			name: "disallowed type",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "audio", "notes.txt", "text/plain", []byte("not audio"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid file type. Only MP3, WAV, and M4A are allowed.",
		},
		{
			name: "missing file part",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "", "", "", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No audio file uploaded or invalid file type.",
		},
		{
			name: "wrong field name",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "sample.wav", "audio/wav", []byte("RIFF"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No audio file uploaded or invalid file type.",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{}`))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No audio file uploaded or invalid file type.",
		},
		{
			name: "malformed multipart",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("--xyz\r\nbroken"))
				req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No audio file uploaded or invalid file type.",
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "audio", "big.mp3", "audio/mpeg", bytes.Repeat([]byte("a"), 2048))
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantError:  "File too large. Maximum size is 1.0 KiB.",
		},
		{
			name: "gateway failure",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "audio", "sample.wav", "audio/wav", []byte("RIFF"))
			},
			gatewayErr: domain.ErrTranscriptionFailed,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Transcription failed. Please try again.",
			gatewayHit: true,
		},
		{
			name: "gateway timeout",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "audio", "sample.wav", "audio/wav", []byte("RIFF"))
			},
			gatewayErr: domain.ErrTranscriptionTimeout,
			wantStatus: http.StatusGatewayTimeout,
			wantError:  "Transcription timed out.",
			gatewayHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 1024)
			if tt.gatewayErr != nil {
				env.gateway.TranscribeFunc = func(ctx context.Context, audio io.Reader, mimeType string) (string, error) {
					return "", tt.gatewayErr
				}
			}
			inserted := false
			env.repo.InsertFunc = func(ctx context.Context, filename, transcription string) (*domain.Transcript, error) {
				inserted = true
				return &domain.Transcript{ID: "x"}, nil
			}

			rec := env.do(tt.req(t))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := decode(t, rec)["error"]; got != tt.wantError {
				t.Errorf("error = %v, want %q", got, tt.wantError)
			}
			if hit := env.gateway.Calls > 0; hit != tt.gatewayHit {
				t.Errorf("gateway called = %v, want %v", hit, tt.gatewayHit)
			}
			if inserted {
				t.Error("no record should be inserted")
			}
			assertNoLeftovers(t, env.dir)
		})
	}
}

func TestAPIUpload_PersistenceFailure(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.repo.InsertFunc = func(ctx context.Context, filename, transcription string) (*domain.Transcript, error) {
		return nil, errors.New("disk I/O error")
	}

	rec := env.do(uploadRequest(t, "audio", "sample.wav", "audio/wav", []byte("RIFF")))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	body := decode(t, rec)
	if body["error"] != "Failed to save to database" {
		t.Errorf("error = %v", body["error"])
	}
	if body["transcription"] != "hello world" {
		t.Errorf("transcription = %v, want the transcript text", body["transcription"])
	}
	if name, _ := body["filename"].(string); !strings.HasSuffix(name, "-sample.wav") {
		t.Errorf("filename = %v", body["filename"])
	}
	assertNoLeftovers(t, env.dir)
}

func TestAPIListTranscriptions(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env.repo.ListFunc = func(ctx context.Context) ([]*domain.Transcript, error) {
		return []*domain.Transcript{
			{ID: "b", Filename: "2-b.wav", Transcription: "second", CreatedAt: now},
			{ID: "a", Filename: "1-a.wav", Transcription: "first", CreatedAt: now.Add(-time.Hour)},
		}, nil
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/transcriptions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var list []domain.Transcript
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Errorf("list = %+v, want repository order", list)
	}
	if !list[0].CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", list[0].CreatedAt, now)
	}
}

func TestAPIListTranscriptions_Empty(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.repo.ListFunc = func(ctx context.Context) ([]*domain.Transcript, error) {
		return nil, nil
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/transcriptions", nil))
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestAPIListTranscriptions_Error(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.repo.ListFunc = func(ctx context.Context) ([]*domain.Transcript, error) {
		return nil, domain.ErrPersistenceFailed
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/transcriptions", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "Failed to fetch transcriptions" {
		t.Errorf("error = %v", got)
	}
}

func TestAPIDeleteTranscription(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	var deleted string
	env.repo.DeleteFunc = func(ctx context.Context, id string) error {
		deleted = id
		return nil
	}

	rec := env.do(httptest.NewRequest(http.MethodDelete, "/api/transcriptions/abc-123", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode(t, rec)["message"]; got != "Transcription deleted successfully" {
		t.Errorf("message = %v", got)
	}
	if deleted != "abc-123" {
		t.Errorf("deleted id = %q, want abc-123", deleted)
	}
}

func TestAPIDeleteTranscription_Error(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.repo.DeleteFunc = func(ctx context.Context, id string) error {
		return domain.ErrPersistenceFailed
	}

	rec := env.do(httptest.NewRequest(http.MethodDelete, "/api/transcriptions/abc", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "Failed to delete transcription" {
		t.Errorf("error = %v", got)
	}
}

func TestAPINotFound(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	tests := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/unknown"},
		{http.MethodGet, "/api"},
		{http.MethodPut, "/api/upload"},
		{http.MethodPost, "/api/transcriptions"},
		{http.MethodGet, "/api/transcriptions/abc"},
	}

	for _, tt := range tests {
		rec := env.do(httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: status = %d, want 404", tt.method, tt.path, rec.Code)
			continue
		}
		if got := decode(t, rec)["error"]; got != "Route not found" {
			t.Errorf("%s %s: error = %v", tt.method, tt.path, got)
		}
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/transcriptions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := env.do(req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}

	preflight := httptest.NewRequest(http.MethodOptions, "/api/transcriptions/abc", nil)
	preflight.Header.Set("Origin", "http://localhost:3000")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec = env.do(preflight)
	if rec.Code >= 300 {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete) {
		t.Errorf("Access-Control-Allow-Methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "echonote_uploads_total") {
		t.Errorf("metrics body = %q", rec.Body.String())
	}
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	for _, path := range []string{"/static/app.js", "/static/style.css"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d", path, rec.Code)
		}
	}
}

func TestHistoryPage(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.repo.ListFunc = func(ctx context.Context) ([]*domain.Transcript, error) {
		return []*domain.Transcript{
			{ID: "1", Filename: "1-standup.wav", Transcription: "Daily Standup notes"},
			{ID: "2", Filename: "2-call.mp3", Transcription: "call with the bank"},
		}, nil
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	page := rec.Body.String()
	if !strings.Contains(page, "<!DOCTYPE html>") || !strings.Contains(page, "1-standup.wav") || !strings.Contains(page, "2-call.mp3") {
		t.Errorf("full page missing content: %s", page)
	}

	req := httptest.NewRequest(http.MethodGet, "/?q=STANDUP", nil)
	req.Header.Set("HX-Request", "true")
	rec = env.do(req)
	fragment := rec.Body.String()
	if strings.Contains(fragment, "<!DOCTYPE html>") {
		t.Error("htmx request should get the list fragment only")
	}
	if !strings.Contains(fragment, "1-standup.wav") || strings.Contains(fragment, "2-call.mp3") {
		t.Errorf("fragment not filtered: %s", fragment)
	}
}
