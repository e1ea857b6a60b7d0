package rest

import (
	"context"
	"net/http"
	"time"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type onlineReporter interface {
	IsOnline() bool
}

// HealthHandler serves liveness, readiness and health probes.
type HealthHandler struct {
	db      dbPinger
	conn    onlineReporter
	version string
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db dbPinger, conn onlineReporter, version string) *HealthHandler {
	return &HealthHandler{db: db, conn: conn, version: version, timeout: 3 * time.Second}
}

// HealthResponse is the JSON body of every probe.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of one component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Live always answers 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready answers 200 when the remote store answers a ping, 503 otherwise.
// Being offline is a normal state for the client and does not fail readiness.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "down", Timestamp: time.Now()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Health reports every component with the remote store latency. Only the
// remote store decides the overall status; connectivity is reported as
// "online" or "offline".
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	components := make(map[string]CompStatus, 2)
	overall := "ok"

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		components["remote_store"] = CompStatus{Status: "down"}
		overall = "down"
	} else {
		components["remote_store"] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}

	if h.conn.IsOnline() {
		components["connectivity"] = CompStatus{Status: "online"}
	} else {
		components["connectivity"] = CompStatus{Status: "offline"}
	}

	status := http.StatusOK
	if overall != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
