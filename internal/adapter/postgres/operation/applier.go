// Package operation replays deferred operations against the remote store.
// Each operation is dispatched by entity type and action to the matching
// repository, scoped to the user who queued it.
package operation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

type dreamRepo interface {
	Create(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.DreamRecord, error)
	Update(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error)
	UpdateDeepAnalysis(ctx context.Context, userID, id uuid.UUID, analysis domain.DeepAnalysis) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type reportRepo interface {
	ExistsForWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error)
	Create(ctx context.Context, agg *domain.WeeklyAggregate) (*domain.WeeklyAggregate, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Applier applies a single QueuedOperation. It is the remote side of the
// offline operation queue.
type Applier struct {
	dreams  dreamRepo
	reports reportRepo
	tx      txManager
}

// NewApplier creates an Applier over the dream and report repositories.
func NewApplier(dreams dreamRepo, reports reportRepo, tx txManager) *Applier {
	return &Applier{dreams: dreams, reports: reports, tx: tx}
}

// Apply performs op for the user who queued it, or for the user in ctx if op
// carries none. Replaying a create whose target already exists succeeds, so
// an operation applied twice is not retried forever.
func (a *Applier) Apply(ctx context.Context, op domain.QueuedOperation) error {
	ctxUser, _ := ctxutil.UserIDFromCtx(ctx)
	userID := op.OwnerOr(ctxUser)
	if userID == uuid.Nil {
		return domain.ErrUnauthorized
	}

	var err error
	switch op.EntityType {
	case domain.EntityDream:
		err = a.applyDream(ctx, userID, op)
	case domain.EntityWeeklyReport:
		err = a.applyReport(ctx, userID, op)
	default:
		err = fmt.Errorf("entity type %q: %w", op.EntityType, domain.ErrValidation)
	}
	if err != nil {
		return fmt.Errorf("operation.Apply %s %s/%s: %w", op.ID, op.EntityType, op.Action, err)
	}
	return nil
}

func (a *Applier) applyDream(ctx context.Context, userID uuid.UUID, op domain.QueuedOperation) error {
	switch op.Action {
	case domain.ActionCreate:
		var rec domain.DreamRecord
		if err := decode(op.Payload, &rec); err != nil {
			return err
		}
		rec.UserID = userID
		_, err := a.dreams.Create(ctx, &rec)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil
		}
		return err

	case domain.ActionUpdate:
		var upd domain.DreamUpdate
		if err := decode(op.Payload, &upd); err != nil {
			return err
		}
		return a.tx.RunInTx(ctx, func(ctx context.Context) error {
			return a.updateDream(ctx, userID, upd)
		})

	case domain.ActionDelete:
		var ref domain.EntityRef
		if err := decode(op.Payload, &ref); err != nil {
			return err
		}
		err := a.dreams.Delete(ctx, userID, ref.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return fmt.Errorf("action %q: %w", op.Action, domain.ErrValidation)
}

func (a *Applier) updateDream(ctx context.Context, userID uuid.UUID, upd domain.DreamUpdate) error {
	if upd.Title != nil || upd.Narrative != nil || upd.UserContext != nil {
		current, err := a.dreams.GetByID(ctx, userID, upd.ID)
		if err != nil {
			return err
		}
		if upd.Title != nil {
			current.Title = *upd.Title
		}
		if upd.Narrative != nil {
			current.Narrative = *upd.Narrative
		}
		if upd.UserContext != nil {
			current.UserContext = upd.UserContext
		}
		if _, err := a.dreams.Update(ctx, current); err != nil {
			return err
		}
	}

	if upd.DeepAnalysis != nil {
		return a.dreams.UpdateDeepAnalysis(ctx, userID, upd.ID, *upd.DeepAnalysis)
	}
	return nil
}

func (a *Applier) applyReport(ctx context.Context, userID uuid.UUID, op domain.QueuedOperation) error {
	switch op.Action {
	case domain.ActionCreate:
		var agg domain.WeeklyAggregate
		if err := decode(op.Payload, &agg); err != nil {
			return err
		}
		agg.UserID = userID
		return a.tx.RunInTx(ctx, func(ctx context.Context) error {
			exists, err := a.reports.ExistsForWeek(ctx, userID, agg.WeekStart)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			_, err = a.reports.Create(ctx, &agg)
			return err
		})

	case domain.ActionDelete:
		var ref domain.EntityRef
		if err := decode(op.Payload, &ref); err != nil {
			return err
		}
		err := a.reports.Delete(ctx, userID, ref.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	// Reports are immutable once written.
	return fmt.Errorf("action %q: %w", op.Action, domain.ErrValidation)
}

func decode(payload json.RawMessage, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode payload: %w: %v", domain.ErrValidation, err)
	}
	return nil
}
