package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGuardSetsResponseHeaders(t *testing.T) {
	cfg := DefaultConfig(":0")
	cfg.CORSOrigin = "https://example.com"
	s := NewServer(cfg, NewHandlers(testGraph(t), StatsResponse{}))

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want configured origin", got)
	}
}

func TestGuardRejectsWhenSaturated(t *testing.T) {
	cfg := DefaultConfig(":0")
	cfg.MaxInFlight = 1
	s := NewServer(cfg, NewHandlers(testGraph(t), StatsResponse{}))

	// Occupy the only admission slot so the next request must be refused.
	s.inFlight <- struct{}{}
	defer func() { <-s.inFlight }()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want \"1\"", got)
	}
}

func TestGuardUnknownRouteIs404(t *testing.T) {
	s := NewServer(DefaultConfig(":0"), NewHandlers(testGraph(t), StatsResponse{}))

	req := httptest.NewRequest("GET", "/api/v1/nope", nil)
	w := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
