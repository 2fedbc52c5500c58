package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouterMethodGuard(t *testing.T) {
	router := NewRouter(Routes{
		IngestReading: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) },
		Health:        func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readings", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /readings = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("Allow = %q, want POST", allow)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/readings", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /readings = %d, want 201", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rec.Code)
	}
}
