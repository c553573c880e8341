package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"power_monitor/internal/models"
	"power_monitor/internal/service"
)

func TestCommandsHandler_ListAndValidation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.CommandEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventCommandSent, Description: "Control value 1 sent to switch"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), Type: models.EventStateChanged, Description: "Switch reported state 1"},
	}
	logs := &mockCommandLog{resp: events}
	r := newTestRouter(&service.Service{CommandLog: logs})

	// Invalid 'from' → 400
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/commands?from=notatime", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// Valid range and type (lowercase type is normalized to upper)
	w = httptest.NewRecorder()
	q := "/api/commands?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=state_changed"
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, q, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("commands status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                   `json:"count"`
		Events []models.CommandEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != models.EventStateChanged {
		t.Fatalf("expected lastType STATE_CHANGED, got %q", logs.lastType)
	}
	if !logs.lastFrom.Equal(now) {
		t.Fatalf("from = %v, want %v", logs.lastFrom, now)
	}
}

func TestCommandsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockCommandLog{}
	r := newTestRouter(&service.Service{CommandLog: logs})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/commands?to=2025-08-31", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	want := time.Date(2025, 8, 31, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastTo.Equal(want) {
		t.Fatalf("to = %v, want %v", logs.lastTo, want)
	}
}

func TestCommandsHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrInvalidTimeRange, http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := newTestRouter(&service.Service{CommandLog: &mockCommandLog{err: tc.err}})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/commands", nil))
		if w.Code != tc.code {
			t.Fatalf("err %v: status %d, want %d", tc.err, w.Code, tc.code)
		}
	}
}

func TestParseQueryTime(t *testing.T) {
	for _, s := range []string{"2025-08-27T15:04:05Z", "2025-08-27 15:04:05", "2025-08-27"} {
		if _, err := parseQueryTime(s); err != nil {
			t.Errorf("parseQueryTime(%q): %v", s, err)
		}
	}
	if _, err := parseQueryTime("27/08/2025"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}
