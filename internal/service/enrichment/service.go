// Package enrichment runs the second, slower analysis pass over persisted
// dreams and writes back only their deep analysis block.
package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/internal/metrics"
	"github.com/heartmarshall/dreamjournal/internal/service/opqueue"
	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

type deepAnalyzer interface {
	DeepAnalyze(ctx context.Context, rec domain.DreamRecord) (domain.DeepAnalysis, error)
}

type dreamRepo interface {
	UpdateDeepAnalysis(ctx context.Context, userID, id uuid.UUID, analysis domain.DeepAnalysis) error
}

// deferTimeout bounds the local enqueue of a deferred write. The enqueue is
// detached from the run's deadline.
const deferTimeout = 5 * time.Second

type operationQueue interface {
	AddToQueue(ctx context.Context, input opqueue.WriteInput) (domain.QueuedOperation, error)
}

// Service runs deep analysis in the background.
type Service struct {
	log      *slog.Logger
	analysis deepAnalyzer
	dreams   dreamRepo
	deferred operationQueue
	timeout  time.Duration
	now      func() time.Time

	wg sync.WaitGroup
}

// NewService creates a new enrichment service. timeout bounds one
// background run.
func NewService(log *slog.Logger, analysis deepAnalyzer, dreams dreamRepo, deferred operationQueue, timeout time.Duration) *Service {
	return &Service{
		log:      log.With("service", "enrichment"),
		analysis: analysis,
		dreams:   dreams,
		deferred: deferred,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Trigger enriches rec in its own goroutine and returns immediately.
// Failures are logged. It does not check whether rec is already enriched;
// callers do.
func (s *Service) Trigger(rec domain.DreamRecord) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx := ctxutil.NewTrace(ctxutil.WithUserID(context.Background(), rec.UserID))
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		_ = s.Enrich(ctx, rec)
	}()
}

// Wait blocks until every triggered run has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Enrich runs deep analysis for rec and stores the result. If the analysis
// succeeds but the write fails, the write is deferred to the offline
// operation queue rather than lost.
func (s *Service) Enrich(ctx context.Context, rec domain.DreamRecord) error {
	start := s.now()

	analysis, err := s.analysis.DeepAnalyze(ctx, rec)
	if err != nil {
		metrics.Enrichments.WithLabelValues("failed").Inc()
		s.log.WarnContext(ctx, "deep analysis failed",
			slog.String("dream_id", rec.ID.String()),
			slog.Bool("transient", domain.IsTransient(err)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("enrichment.Enrich %s: %w", rec.ID, err)
	}
	analysis.AnalyzedAt = s.now()

	err = s.dreams.UpdateDeepAnalysis(ctx, rec.UserID, rec.ID, analysis)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		metrics.Enrichments.WithLabelValues("failed").Inc()
		s.log.WarnContext(ctx, "dream gone before enrichment finished",
			slog.String("dream_id", rec.ID.String()),
		)
		return fmt.Errorf("enrichment.Enrich %s: %w", rec.ID, err)
	default:
		if deferErr := s.deferWrite(ctx, rec, analysis); deferErr != nil {
			metrics.Enrichments.WithLabelValues("failed").Inc()
			s.log.ErrorContext(ctx, "store deep analysis",
				slog.String("dream_id", rec.ID.String()),
				slog.String("error", errors.Join(err, deferErr).Error()),
			)
			return fmt.Errorf("enrichment.Enrich %s: %w", rec.ID, err)
		}
		s.log.InfoContext(ctx, "deep analysis write deferred",
			slog.String("dream_id", rec.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	metrics.Enrichments.WithLabelValues("enriched").Inc()
	s.log.InfoContext(ctx, "dream enriched",
		slog.String("dream_id", rec.ID.String()),
		slog.Int("archetypes", len(analysis.Archetypes)),
		slog.Duration("took", s.now().Sub(start)),
	)
	return nil
}

func (s *Service) deferWrite(ctx context.Context, rec domain.DreamRecord, analysis domain.DeepAnalysis) error {
	payload, err := json.Marshal(domain.DreamUpdate{ID: rec.ID, DeepAnalysis: &analysis})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deferTimeout)
	defer cancel()

	_, err = s.deferred.AddToQueue(ctxutil.WithUserID(ctx, rec.UserID), opqueue.WriteInput{
		EntityType: domain.EntityDream,
		Action:     domain.ActionUpdate,
		Payload:    payload,
	})
	return err
}
