package opqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/internal/metrics"
	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

// AddToQueue appends a write to the queue and, when online, immediately
// runs a sync pass. Only a failure to persist the operation locally is
// returned; replay failures are handled by the queue.
func (s *Service) AddToQueue(ctx context.Context, input WriteInput) (domain.QueuedOperation, error) {
	if err := input.Validate(); err != nil {
		return domain.QueuedOperation{}, err
	}

	userID, _ := ctxutil.UserIDFromCtx(ctx)
	op := domain.QueuedOperation{
		ID:         uuid.NewString(),
		UserID:     userID,
		EntityType: input.EntityType,
		Action:     input.Action,
		Payload:    input.Payload,
		EnqueuedAt: s.now(),
	}

	if err := s.queue.Add(ctx, op); err != nil {
		return domain.QueuedOperation{}, fmt.Errorf("opqueue.AddToQueue: %w", err)
	}
	s.log.InfoContext(ctx, "operation queued",
		slog.String("op_id", op.ID),
		slog.String("entity", op.EntityType.String()),
		slog.String("action", op.Action.String()),
	)
	s.reportLen(ctx)

	if s.conn.IsOnline() {
		s.SyncQueue(ctx)
	}

	return op, nil
}

// Write applies a remote write directly when online and defers it to the
// queue when offline or when the direct attempt fails. The caller never
// sees a remote error.
func (s *Service) Write(ctx context.Context, input WriteInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	if s.conn.IsOnline() {
		userID, _ := ctxutil.UserIDFromCtx(ctx)
		err := s.remote.Apply(ctx, domain.QueuedOperation{
			ID:         uuid.NewString(),
			UserID:     userID,
			EntityType: input.EntityType,
			Action:     input.Action,
			Payload:    input.Payload,
			EnqueuedAt: s.now(),
		})
		if err == nil {
			return nil
		}
		s.log.WarnContext(ctx, "direct write failed, deferring",
			slog.String("entity", input.EntityType.String()),
			slog.String("action", input.Action.String()),
			slog.String("error", err.Error()),
		)
	}

	_, err := s.AddToQueue(ctx, input)
	return err
}

// GetQueueLength returns the number of deferred operations.
func (s *Service) GetQueueLength(ctx context.Context) (int, error) {
	return s.queue.Len(ctx)
}

// List returns the deferred operations in replay order.
func (s *Service) List(ctx context.Context) ([]domain.QueuedOperation, error) {
	return s.queue.ListAll(ctx)
}

func (s *Service) reportLen(ctx context.Context) {
	n, err := s.queue.Len(ctx)
	if err != nil {
		return
	}
	metrics.QueueLength.WithLabelValues(metrics.QueueOperations).Set(float64(n))
}
