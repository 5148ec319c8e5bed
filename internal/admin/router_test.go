package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// resetMetrics swaps in a fresh default registry so each test can build its
// own router without duplicate-collector registration panics.
func resetMetrics() {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
}

type stubStats struct{ users, songs, comments int }

func (s stubStats) Stats() (int, int, int) { return s.users, s.songs, s.comments }

type stubStorage struct{ err error }

func (s stubStorage) Check() error { return s.err }

type stubConns struct{ n int }

func (s stubConns) Count() int { return s.n }

func TestLiveness(t *testing.T) {
	resetMetrics()
	e := NewRouter(stubStats{}, stubStorage{}, stubConns{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_OK(t *testing.T) {
	resetMetrics()
	e := NewRouter(stubStats{users: 2, songs: 5, comments: 1}, stubStorage{}, stubConns{n: 3})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Status != "ok" || body.Songs != 5 || body.Connections != 3 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReadiness_DegradedOnStorageFailure(t *testing.T) {
	resetMetrics()
	e := NewRouter(stubStats{}, stubStorage{err: errors.New("read-only filesystem")}, stubConns{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Status != "degraded" || body.Dependencies["storage"].Status != "unhealthy" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
