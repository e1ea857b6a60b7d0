package opqueue

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/internal/metrics"
	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

// SyncResult reports what a sync pass did.
type SyncResult struct {
	Skipped bool
	Applied int
	Failed  int
	Evicted int
}

// SyncQueue replays every queued operation serially in insertion order.
// It is a no-op while another pass is running, while offline, or when the
// queue is empty. Failed operations stay queued with RetryCount+1 and are
// evicted once they exceed the retry ceiling.
func (s *Service) SyncQueue(ctx context.Context) SyncResult {
	if !s.conn.IsOnline() {
		return SyncResult{Skipped: true}
	}
	if !s.syncing.CompareAndSwap(false, true) {
		s.log.DebugContext(ctx, "sync already running")
		return SyncResult{Skipped: true}
	}
	defer s.syncing.Store(false)

	ctx = ctxutil.NewTrace(ctx)

	ops, err := s.queue.ListAll(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "load operation queue", slog.String("error", err.Error()))
		return SyncResult{Skipped: true}
	}
	if len(ops) == 0 {
		return SyncResult{Skipped: true}
	}

	s.log.InfoContext(ctx, "sync started",
		slog.Int("count", len(ops)),
		slog.String("trace_id", ctxutil.TraceIDFromCtx(ctx)),
	)

	var res SyncResult
	for _, op := range ops {
		s.replay(ctx, op, &res)
	}

	s.log.InfoContext(ctx, "sync finished",
		slog.Int("applied", res.Applied),
		slog.Int("failed", res.Failed),
		slog.Int("evicted", res.Evicted),
		slog.String("trace_id", ctxutil.TraceIDFromCtx(ctx)),
	)
	s.reportLen(ctx)
	return res
}

func (s *Service) replay(ctx context.Context, op domain.QueuedOperation, res *SyncResult) {
	applyErr := s.remote.Apply(ctx, op)
	if applyErr == nil {
		if _, err := s.queue.Remove(ctx, op.ID); err != nil {
			// Stays queued; the next pass replays it again.
			s.log.ErrorContext(ctx, "remove applied operation",
				slog.String("op_id", op.ID),
				slog.String("error", err.Error()),
			)
		}
		res.Applied++
		metrics.Replays.WithLabelValues("applied").Inc()
		return
	}

	op.RetryCount++

	if op.Exhausted() {
		if _, err := s.queue.Remove(ctx, op.ID); err != nil {
			s.log.ErrorContext(ctx, "evict operation",
				slog.String("op_id", op.ID),
				slog.String("error", err.Error()),
			)
			return
		}
		s.log.WarnContext(ctx, "operation dropped after retry ceiling",
			slog.String("op_id", op.ID),
			slog.String("entity", op.EntityType.String()),
			slog.String("action", op.Action.String()),
			slog.Int("retry_count", op.RetryCount),
			slog.String("error", applyErr.Error()),
		)
		res.Evicted++
		metrics.Replays.WithLabelValues("evicted").Inc()
		return
	}

	if err := s.queue.Update(ctx, op); err != nil {
		s.log.ErrorContext(ctx, "record retry",
			slog.String("op_id", op.ID),
			slog.String("error", err.Error()),
		)
	}
	s.log.InfoContext(ctx, "operation replay failed",
		slog.String("op_id", op.ID),
		slog.Int("retry_count", op.RetryCount),
		slog.String("error", applyErr.Error()),
	)
	res.Failed++
	metrics.Replays.WithLabelValues("failed").Inc()
}
