package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

// SyncResult reports what a SyncPendingDreams pass did.
type SyncResult struct {
	Persisted int
	// Recovered counts captures whose record already existed remotely.
	Recovered int
	Failed    int
	Remaining int
	// Errors holds one error per failed capture, in queue order.
	Errors []error
}

// Retryable reports whether any failure is worth another attempt.
func (r SyncResult) Retryable() bool {
	for _, err := range r.Errors {
		if retryable(err) {
			return true
		}
	}
	return false
}

// retryable is false for permanent analysis failures, missing audio and
// missing credentials. Remote store errors count as retryable.
func retryable(err error) bool {
	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotFound) {
		return false
	}
	var ae *domain.AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind == domain.AnalysisTransient
	}
	return true
}

// SyncPendingDreams retries every queued capture, oldest first. Concurrent
// calls share one pass. Per-capture failures are counted and logged, and the
// capture stays queued; only a failure to run the pass at all is returned.
func (s *Service) SyncPendingDreams(ctx context.Context) (SyncResult, error) {
	v, err, _ := s.syncGroup.Do("sync", func() (any, error) {
		return s.syncPending(ctx)
	})
	if err != nil {
		return SyncResult{}, err
	}
	return v.(SyncResult), nil
}

func (s *Service) syncPending(ctx context.Context) (SyncResult, error) {
	if !s.conn.IsOnline() {
		return SyncResult{}, fmt.Errorf("capture.SyncPendingDreams: %w", domain.ErrOffline)
	}
	if !s.processing.CompareAndSwap(false, true) {
		return SyncResult{}, fmt.Errorf("capture.SyncPendingDreams: %w", domain.ErrCaptureInProgress)
	}
	defer s.processing.Store(false)

	ctx = ctxutil.NewTrace(ctx)

	captures, err := s.queue.ListAll(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("capture.SyncPendingDreams: %w", err)
	}
	if len(captures) == 0 {
		return SyncResult{}, nil
	}

	s.log.InfoContext(ctx, "pending capture sync started",
		slog.Int("count", len(captures)),
		slog.String("trace_id", ctxutil.TraceIDFromCtx(ctx)),
	)

	var res SyncResult
	for _, capture := range captures {
		if recovered, err := s.recoverPersisted(ctx, capture); err == nil && recovered {
			res.Recovered++
			continue
		}

		if _, err := s.process(ctx, capture); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Errorf("capture %s: %w", capture.ID, err))
			continue
		}
		res.Persisted++
	}

	if n, err := s.queue.Len(ctx); err == nil {
		res.Remaining = n
	}

	s.log.InfoContext(ctx, "pending capture sync finished",
		slog.Int("persisted", res.Persisted),
		slog.Int("recovered", res.Recovered),
		slog.Int("failed", res.Failed),
		slog.Int("remaining", res.Remaining),
		slog.String("trace_id", ctxutil.TraceIDFromCtx(ctx)),
	)
	return res, nil
}

// recoverPersisted finishes a capture whose record was persisted by an earlier
// attempt that crashed before cleanup. It reports whether it did.
func (s *Service) recoverPersisted(ctx context.Context, capture domain.QueuedCapture) (bool, error) {
	userID, ok := ownerOf(ctx, capture)
	if !ok {
		return false, domain.ErrUnauthorized
	}

	rec, err := s.dreams.GetByCaptureID(ctx, userID, capture.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.log.InfoContext(ctx, "capture already persisted, cleaning up",
		slog.String("capture_id", capture.ID),
		slog.String("dream_id", rec.ID.String()),
	)
	s.finish(ctx, capture, rec)
	return true, nil
}

// GetQueueLength returns the number of captures awaiting analysis.
func (s *Service) GetQueueLength(ctx context.Context) (int, error) {
	return s.queue.Len(ctx)
}

// ListPending returns the queued captures, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]domain.QueuedCapture, error) {
	return s.queue.ListAll(ctx)
}

// Discard drops a queued capture and its audio. It refuses while a capture
// is being analyzed, since that capture may be the one being discarded.
func (s *Service) Discard(ctx context.Context, id string) error {
	if !s.processing.CompareAndSwap(false, true) {
		return fmt.Errorf("capture.Discard %s: %w", id, domain.ErrCaptureInProgress)
	}
	defer s.processing.Store(false)

	capture, err := s.queue.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("capture.Discard %s: %w", id, err)
	}
	if _, err := s.queue.Remove(ctx, id); err != nil {
		return fmt.Errorf("capture.Discard %s: %w", id, err)
	}
	s.reportLen(ctx)

	if err := s.audio.Remove(capture.AudioLocation); err != nil {
		s.log.WarnContext(ctx, "delete discarded audio",
			slog.String("capture_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.log.InfoContext(ctx, "capture discarded", slog.String("capture_id", id))
	return nil
}
