package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type lengthMock struct {
	n   int
	err error
}

func (m lengthMock) GetQueueLength(context.Context) (int, error) { return m.n, m.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueHandler_Status(t *testing.T) {
	t.Parallel()

	h := NewQueueHandler(discardLogger(), lengthMock{n: 2}, lengthMock{n: 7}, onlineMock(false))
	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/queues", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var got QueueStatus
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := QueueStatus{PendingCaptures: 2, OfflineOperations: 7, Online: false}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestQueueHandler_StorageError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		captures lengthMock
		ops      lengthMock
		wantMsg  string
	}{
		{"captures", lengthMock{err: errors.New("disk")}, lengthMock{}, "capture queue unavailable"},
		{"operations", lengthMock{}, lengthMock{err: errors.New("disk")}, "operation queue unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewQueueHandler(discardLogger(), tt.captures, tt.ops, onlineMock(true))
			rec := httptest.NewRecorder()
			h.Status(rec, httptest.NewRequest(http.MethodGet, "/queues", nil))

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected status 500, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Errorf("body %q missing %q", rec.Body.String(), tt.wantMsg)
			}
		})
	}
}

func TestRouter(t *testing.T) {
	health := NewHealthHandler(&dbPingerMock{}, onlineMock(true), "v1")
	queues := NewQueueHandler(discardLogger(), lengthMock{n: 1}, lengthMock{}, onlineMock(true))
	router := NewRouter(discardLogger(), health, queues)

	tests := []struct {
		method   string
		path     string
		wantCode int
	}{
		{http.MethodGet, "/live", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/queues", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/queues", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Header().Get("X-Request-Id") == "" {
				t.Error("missing X-Request-Id")
			}
		})
	}
}
