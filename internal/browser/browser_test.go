package browser

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/emiliopalmerini/echonote/internal/domain"
)

type fakeAPI struct {
	list      []domain.Transcript
	listErr   error
	deleteErr error
	deleted   []string
}

func (f *fakeAPI) List(ctx context.Context) ([]domain.Transcript, error) {
	return f.list, f.listErr
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func sampleTranscripts() []domain.Transcript {
	return []domain.Transcript{
		{ID: "3", Filename: "3-retro.wav", Transcription: "Sprint Retro went well"},
		{ID: "2", Filename: "2-memo.m4a", Transcription: ""},
		{ID: "1", Filename: "1-call.mp3", Transcription: "call the retro venue"},
	}
}

func loaded(t *testing.T, api *fakeAPI, opts ...Option) *Browser {
	t.Helper()
	b := New(api, opts...)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func ids(list []domain.Transcript) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func TestBrowser_Search(t *testing.T) {
	b := loaded(t, &fakeAPI{list: sampleTranscripts()})

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"3", "2", "1"}},
		{"retro", []string{"3", "1"}},
		{"RETRO", []string{"3", "1"}},
		{"venue", []string{"1"}},
		{"nothing", []string{}},
	}

	for _, tt := range tests {
		b.SetSearch(tt.term)
		got := ids(b.Visible())
		if len(got) != len(tt.want) {
			t.Errorf("Visible(%q) = %v, want %v", tt.term, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Visible(%q) = %v, want %v", tt.term, got, tt.want)
				break
			}
		}
	}
}

func TestBrowser_LoadError(t *testing.T) {
	b := New(&fakeAPI{listErr: errors.New("offline")})
	if err := b.Load(context.Background()); err == nil {
		t.Error("expected Load error")
	}
	if len(b.All()) != 0 {
		t.Error("state should stay empty after a failed load")
	}
}

func TestBrowser_Delete(t *testing.T) {
	api := &fakeAPI{list: sampleTranscripts()}
	b := loaded(t, api)

	var asked domain.Transcript
	err := b.Delete(context.Background(), "3", func(tr domain.Transcript) bool {
		asked = tr
		return true
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if asked.ID != "3" {
		t.Errorf("confirm asked about %q, want 3", asked.ID)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "3" {
		t.Errorf("api deleted %v, want [3]", api.deleted)
	}
	if got := ids(b.All()); len(got) != 2 || got[0] != "2" || got[1] != "1" {
		t.Errorf("state = %v, want [2 1]", got)
	}
}

func TestBrowser_DeleteDeclined(t *testing.T) {
	api := &fakeAPI{list: sampleTranscripts()}
	b := loaded(t, api)

	for name, confirm := range map[string]ConfirmFunc{
		"declined": func(domain.Transcript) bool { return false },
		"nil":      nil,
	} {
		err := b.Delete(context.Background(), "1", confirm)
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("%s: err = %v, want ErrCancelled", name, err)
		}
	}
	if len(api.deleted) != 0 {
		t.Errorf("api deleted %v, want nothing", api.deleted)
	}
	if len(b.All()) != 3 {
		t.Errorf("state has %d items, want 3", len(b.All()))
	}
}

func TestBrowser_DeleteFailureKeepsState(t *testing.T) {
	api := &fakeAPI{list: sampleTranscripts(), deleteErr: &APIError{Status: 500, Message: "Failed to delete transcription"}}
	b := loaded(t, api)

	err := b.Delete(context.Background(), "1", func(domain.Transcript) bool { return true })
	if err == nil || err.Error() != "Failed to delete transcription" {
		t.Fatalf("err = %v", err)
	}
	if len(b.All()) != 3 {
		t.Errorf("state has %d items, want 3", len(b.All()))
	}
}

func TestBrowser_UnknownID(t *testing.T) {
	b := loaded(t, &fakeAPI{list: sampleTranscripts()})

	if err := b.Delete(context.Background(), "nope", func(domain.Transcript) bool { return true }); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete err = %v, want ErrNotFound", err)
	}
	if err := b.Copy("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Copy err = %v, want ErrNotFound", err)
	}
	if err := b.Export(&bytes.Buffer{}, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Export err = %v, want ErrNotFound", err)
	}
}

func TestBrowser_Export(t *testing.T) {
	b := loaded(t, &fakeAPI{list: sampleTranscripts()})

	var buf bytes.Buffer
	if err := b.Export(&buf, "3"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if buf.String() != "Sprint Retro went well" {
		t.Errorf("export = %q", buf.String())
	}

	buf.Reset()
	if err := b.Export(&buf, "2"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if buf.String() != "No transcription" {
		t.Errorf("export of empty transcript = %q, want No transcription", buf.String())
	}
}

func TestBrowser_Copy(t *testing.T) {
	var copied string
	b := loaded(t, &fakeAPI{list: sampleTranscripts()}, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	if err := b.Copy("1"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if copied != "call the retro venue" {
		t.Errorf("clipboard = %q", copied)
	}

	failing := loaded(t, &fakeAPI{list: sampleTranscripts()}, WithClipboard(func(string) error {
		return errors.New("no clipboard utility")
	}))
	if err := failing.Copy("1"); err == nil {
		t.Error("expected clipboard error")
	}
}
