package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMX(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"plain request", nil, false},
		{"htmx request", map[string]string{"HX-Request": "true"}, true},
		{"boosted navigation", map[string]string{"HX-Request": "true", "HX-Boosted": "true"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = IsHTMX(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got != tt.want {
				t.Errorf("IsHTMX = %v, want %v", got, tt.want)
			}
			if rec.Header().Get("Vary") != "HX-Request" {
				t.Errorf("Vary = %q, want HX-Request", rec.Header().Get("Vary"))
			}
		})
	}
}

func TestIsHTMX_WithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	if IsHTMX(req) {
		t.Error("IsHTMX should be false when the middleware did not run")
	}
}
