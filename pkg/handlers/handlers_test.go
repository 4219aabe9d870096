package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/lacuna/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
	}{
		{
			name:       "200 with map",
			status:     http.StatusOK,
			data:       map[string]string{"key": "value"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "201 with struct",
			status:     http.StatusCreated,
			data:       struct{ ID int }{ID: 42},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondJSON(rec, tt.status, tt.data)

			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.wantStatus {
				t.Errorf("status: got %d, want %d", res.StatusCode, tt.wantStatus)
			}
			if ct := res.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type: got %s", ct)
			}

			body, _ := io.ReadAll(res.Body)
			var parsed map[string]any
			if err := json.Unmarshal(body, &parsed); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()

	handlers.RespondError(rec, logger, http.StatusConflict, errors.New("invalid transition"))

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusConflict {
		t.Errorf("status: got %d, want 409", res.StatusCode)
	}

	var parsed map[string]string
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed["error"] != "invalid transition" {
		t.Errorf("error: got %s, want invalid transition", parsed["error"])
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name       string
		body       string
		limit      int64
		wantErr    error
		wantStatus int
		wantName   string
	}{
		{name: "valid", body: `{"name":"auth"}`, limit: 1024, wantName: "auth"},
		{name: "empty body", body: "", limit: 1024},
		{name: "malformed", body: `{"name":`, limit: 1024, wantErr: handlers.ErrInvalidBody, wantStatus: http.StatusBadRequest},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", 64) + `"}`, limit: 16, wantErr: handlers.ErrBodyTooLarge, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "no limit", body: `{"name":"` + strings.Repeat("x", 64) + `"}`, limit: 0, wantName: strings.Repeat("x", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))

			var p payload
			err := handlers.DecodeJSON(rec, req, &p, tt.limit)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if got := handlers.MapHTTPStatus(err); got != tt.wantStatus {
					t.Errorf("status = %d, want %d", got, tt.wantStatus)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name != tt.wantName {
				t.Errorf("name = %q, want %q", p.Name, tt.wantName)
			}
		})
	}
}
