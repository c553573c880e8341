package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"power_monitor/internal/models"
	"power_monitor/internal/service"
)

func postJSON(t *testing.T, s *service.Service, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(s).ServeHTTP(w, req)
	return w
}

func TestSignUp_CreatesOperator(t *testing.T) {
	auth := &mockAuth{enabled: true, registered: models.Operator{ID: 3, Username: "shift-lead"}}
	w := postJSON(t, &service.Service{Authorization: auth}, "/auth/sign-up", `{"username":"shift-lead","password":"correct horse"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var op models.Operator
	if err := json.Unmarshal(w.Body.Bytes(), &op); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if op.ID != 3 || op.Username != "shift-lead" {
		t.Fatalf("unexpected operator: %+v", op)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("response leaks password data: %s", w.Body.String())
	}
	if auth.lastUsername != "shift-lead" || auth.lastPassword != "correct horse" {
		t.Fatalf("credentials not forwarded: %q/%q", auth.lastUsername, auth.lastPassword)
	}
}

func TestSignUp_ErrorStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"auth off", service.ErrAuthDisabled, http.StatusForbidden},
		{"taken", service.ErrOperatorExists, http.StatusConflict},
		{"weak password", service.ErrWeakPassword, http.StatusBadRequest},
		{"blank username", service.ErrInvalidUsername, http.StatusBadRequest},
		{"storage", errors.New("database is locked"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuth{enabled: true, registerErr: tc.err}
			w := postJSON(t, &service.Service{Authorization: auth}, "/auth/sign-up", `{"username":"maint","password":"long enough"}`)
			if w.Code != tc.code {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.code, w.Body.String())
			}
			if tc.code == http.StatusInternalServerError && strings.Contains(w.Body.String(), "locked") {
				t.Fatalf("storage error leaked to client: %s", w.Body.String())
			}
		})
	}
}

func TestSignIn_ReturnsToken(t *testing.T) {
	auth := &mockAuth{enabled: true, token: "tok-night-shift"}
	w := postJSON(t, &service.Service{Authorization: auth}, "/auth/sign-in", `{"username":"night-shift","password":"long enough"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var out tokenResponse
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Token != "tok-night-shift" {
		t.Fatalf("token = %q", out.Token)
	}
}

func TestSignIn_Rejections(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		code int
	}{
		{"bad credentials", `{"username":"maint","password":"nope nope"}`, service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"auth off", `{"username":"maint","password":"nope nope"}`, service.ErrAuthDisabled, http.StatusForbidden},
		{"missing password", `{"username":"maint"}`, nil, http.StatusBadRequest},
		{"wrong types", `{"username":1,"password":2}`, nil, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuth{enabled: true, signInErr: tc.err}
			w := postJSON(t, &service.Service{Authorization: auth}, "/auth/sign-in", tc.body)
			if w.Code != tc.code {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.code, w.Body.String())
			}
		})
	}
}
