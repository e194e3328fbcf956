package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type pingRoutes struct{}

func (pingRoutes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
}

func TestServerRoutes(t *testing.T) {
	s := New(":0", true, pingRoutes{})

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/health", http.StatusOK, "OK"},
		{"/api/ping", http.StatusOK, "pong"},
		{"/metrics", http.StatusOK, "go_goroutines"},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.code, w.Code)
		}
		if tt.body != "" && !strings.Contains(w.Body.String(), tt.body) {
			t.Errorf("%s: body %q does not contain %q", tt.path, w.Body.String(), tt.body)
		}
	}
}

func TestServerWithoutMetrics(t *testing.T) {
	s := New(":0", false)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without metrics, got %d", w.Code)
	}
}
