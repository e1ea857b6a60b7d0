package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/internal/metrics"
	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

// ProcessDream queues a finished recording and runs it through analysis.
//
// The capture is queued before anything else. On any later failure it stays
// queued and the error is returned; SyncPendingDreams retries it. While
// another capture is being analyzed the new one is only queued and
// domain.ErrCaptureInProgress is returned. Offline, it is only queued and
// domain.ErrOffline is returned.
func (s *Service) ProcessDream(ctx context.Context, input ProcessDreamInput) (*domain.DreamRecord, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}

	userID, _ := ctxutil.UserIDFromCtx(ctx)
	capture := domain.QueuedCapture{
		ID:              uuid.NewString(),
		UserID:          userID,
		AudioLocation:   input.AudioLocation,
		RecordedAt:      recordedAt,
		DurationSeconds: input.DurationSeconds,
		UserContext:     input.UserContext,
	}

	if err := s.queue.Add(ctx, capture); err != nil {
		return nil, fmt.Errorf("capture.ProcessDream: queue capture: %w", err)
	}
	s.log.InfoContext(ctx, "capture queued",
		slog.String("capture_id", capture.ID),
		slog.Int("duration_seconds", capture.DurationSeconds),
	)
	s.reportLen(ctx)

	if !s.conn.IsOnline() {
		return nil, fmt.Errorf("capture.ProcessDream %s: %w", capture.ID, domain.ErrOffline)
	}

	if !s.processing.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("capture.ProcessDream %s: %w", capture.ID, domain.ErrCaptureInProgress)
	}
	defer s.processing.Store(false)

	rec, err := s.process(ctx, capture)
	if err != nil {
		return nil, fmt.Errorf("capture.ProcessDream %s: %w", capture.ID, err)
	}
	return rec, nil
}

// process runs one queued capture through Analyzing to Persisted. The caller
// holds the processing flag.
func (s *Service) process(ctx context.Context, capture domain.QueuedCapture) (*domain.DreamRecord, error) {
	userID, ok := ownerOf(ctx, capture)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	dec, err := s.analyze(ctx, capture)
	if err != nil {
		metrics.Captures.WithLabelValues("failed").Inc()
		s.log.WarnContext(ctx, "capture analysis failed, kept in queue",
			slog.String("capture_id", capture.ID),
			slog.Bool("transient", domain.IsTransient(err)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	rec := domain.NewDreamRecord(userID, capture, dec, s.now())

	persisted, err := s.dreams.Create(ctx, &rec)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// A previous attempt persisted the record but did not clean up.
		persisted, err = s.dreams.GetByCaptureID(ctx, userID, capture.ID)
	}
	if err != nil {
		metrics.Captures.WithLabelValues("failed").Inc()
		s.log.WarnContext(ctx, "persist dream failed, kept in queue",
			slog.String("capture_id", capture.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("persist dream: %w", err)
	}

	s.finish(ctx, capture, persisted)
	metrics.Captures.WithLabelValues("persisted").Inc()

	s.log.InfoContext(ctx, "dream persisted",
		slog.String("capture_id", capture.ID),
		slog.String("dream_id", persisted.ID.String()),
		slog.Int("word_count", persisted.WordCount),
	)
	return persisted, nil
}

// ownerOf returns the user a capture belongs to. Captures queued without one
// are attributed to the user in ctx.
func ownerOf(ctx context.Context, capture domain.QueuedCapture) (uuid.UUID, bool) {
	ctxUser, _ := ctxutil.UserIDFromCtx(ctx)
	owner := capture.OwnerOr(ctxUser)
	return owner, owner != uuid.Nil
}

func (s *Service) analyze(ctx context.Context, capture domain.QueuedCapture) (domain.Decomposition, error) {
	audio, err := s.audio.Open(capture.AudioLocation)
	if err != nil {
		return domain.Decomposition{}, fmt.Errorf("open audio: %w", err)
	}
	defer audio.Close()

	return s.analysis.Analyze(ctx, audio, filepath.Base(capture.AudioLocation), capture.UserContext)
}

// finish runs once the remote record exists: dequeue, delete the local audio,
// and start enrichment if the record still needs it. Nothing here can undo
// the remote write, so failures are only logged.
func (s *Service) finish(ctx context.Context, capture domain.QueuedCapture, rec *domain.DreamRecord) {
	if _, err := s.queue.Remove(ctx, capture.ID); err != nil {
		s.log.ErrorContext(ctx, "dequeue persisted capture",
			slog.String("capture_id", capture.ID),
			slog.String("error", err.Error()),
		)
	}
	s.reportLen(ctx)

	if err := s.audio.Remove(capture.AudioLocation); err != nil {
		s.log.WarnContext(ctx, "delete local audio",
			slog.String("capture_id", capture.ID),
			slog.String("audio", capture.AudioLocation),
			slog.String("error", err.Error()),
		)
	}

	if rec.NeedsEnrichment() {
		s.enricher.Trigger(*rec)
	}
}

func (s *Service) reportLen(ctx context.Context) {
	n, err := s.queue.Len(ctx)
	if err != nil {
		return
	}
	metrics.QueueLength.WithLabelValues(metrics.QueueCaptures).Set(float64(n))
}
