package rest

import (
	"context"
	"log/slog"
	"net/http"
)

type queueLengther interface {
	GetQueueLength(ctx context.Context) (int, error)
}

// QueueHandler reports the device-local queues.
type QueueHandler struct {
	log      *slog.Logger
	captures queueLengther
	ops      queueLengther
	conn     onlineReporter
}

// NewQueueHandler creates a QueueHandler.
func NewQueueHandler(log *slog.Logger, captures, ops queueLengther, conn onlineReporter) *QueueHandler {
	return &QueueHandler{
		log:      log.With("handler", "queues"),
		captures: captures,
		ops:      ops,
		conn:     conn,
	}
}

// QueueStatus is the JSON body of /queues.
type QueueStatus struct {
	PendingCaptures   int  `json:"pending_captures"`
	OfflineOperations int  `json:"offline_operations"`
	Online            bool `json:"online"`
}

// Status answers the current queue lengths and connectivity.
func (h *QueueHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	captures, err := h.captures.GetQueueLength(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "read capture queue", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "capture queue unavailable")
		return
	}
	ops, err := h.ops.GetQueueLength(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "read operation queue", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "operation queue unavailable")
		return
	}

	writeJSON(w, http.StatusOK, QueueStatus{
		PendingCaptures:   captures,
		OfflineOperations: ops,
		Online:            h.conn.IsOnline(),
	})
}
