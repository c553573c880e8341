package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWrap_PreflightAndHeaders(t *testing.T) {
	reached := 0
	h := Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached++
		w.WriteHeader(http.StatusOK)
	}), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/control", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status: got %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin: got %q", got)
	}
	if reached != 0 {
		t.Fatalf("preflight reached the router")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/sensor-data", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK || reached != 1 {
		t.Fatalf("GET: status=%d reached=%d", w.Code, reached)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin on GET: got %q", got)
	}
}

func TestWrap_AccessLog(t *testing.T) {
	var buf bytes.Buffer
	h := Wrap(http.NotFoundHandler(), &buf)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/get-available-dates", nil))
	line := buf.String()
	if !strings.Contains(line, "GET /get-available-dates") || !strings.Contains(line, " 404 ") {
		t.Fatalf("unexpected access log line: %q", line)
	}
}
