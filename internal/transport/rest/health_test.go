package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type dbPingerMock struct {
	err error
}

func (m *dbPingerMock) Ping(_ context.Context) error {
	return m.err
}

type onlineMock bool

func (m onlineMock) IsOnline() bool { return bool(m) }

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestLive_Always200(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{err: errors.New("down")}, onlineMock(false), "test")
	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", resp.Status)
	}
	if resp.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		online     bool
		wantCode   int
		wantStatus string
	}{
		{"remote up", nil, true, http.StatusOK, "ok"},
		{"remote up while offline flag set", nil, false, http.StatusOK, "ok"},
		{"remote down", errors.New("connection refused"), true, http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthHandler(&dbPingerMock{err: tt.pingErr}, onlineMock(tt.online), "test")
			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if resp := decodeHealth(t, rec); resp.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, resp.Status)
			}
		})
	}
}

func TestHealth_AllOK(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{}, onlineMock(true), "v1.0.0")
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Version != "v1.0.0" {
		t.Errorf("expected version 'v1.0.0', got %q", resp.Version)
	}
	remote := resp.Components["remote_store"]
	if remote.Status != "ok" || remote.Latency == "" {
		t.Errorf("remote_store = %+v, want ok with latency", remote)
	}
	if c := resp.Components["connectivity"]; c.Status != "online" {
		t.Errorf("connectivity = %+v, want online", c)
	}
}

func TestHealth_OfflineDoesNotFail(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{}, onlineMock(false), "v1.0.0")
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if c := decodeHealth(t, rec).Components["connectivity"]; c.Status != "offline" {
		t.Errorf("connectivity = %+v, want offline", c)
	}
}

func TestHealth_RemoteDown(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{err: errors.New("connection refused")}, onlineMock(true), "v1.0.0")
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Status != "down" {
		t.Errorf("expected status 'down', got %q", resp.Status)
	}
	if c := resp.Components["remote_store"]; c.Status != "down" {
		t.Errorf("remote_store = %+v, want down", c)
	}
}
