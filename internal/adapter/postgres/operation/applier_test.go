package operation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

type dreamRepoMock struct {
	CreateFunc             func(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error)
	GetByIDFunc            func(ctx context.Context, userID, id uuid.UUID) (*domain.DreamRecord, error)
	UpdateFunc             func(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error)
	UpdateDeepAnalysisFunc func(ctx context.Context, userID, id uuid.UUID, analysis domain.DeepAnalysis) error
	DeleteFunc             func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *dreamRepoMock) Create(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error) {
	return m.CreateFunc(ctx, rec)
}

func (m *dreamRepoMock) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.DreamRecord, error) {
	return m.GetByIDFunc(ctx, userID, id)
}

func (m *dreamRepoMock) Update(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error) {
	return m.UpdateFunc(ctx, rec)
}

func (m *dreamRepoMock) UpdateDeepAnalysis(ctx context.Context, userID, id uuid.UUID, analysis domain.DeepAnalysis) error {
	return m.UpdateDeepAnalysisFunc(ctx, userID, id, analysis)
}

func (m *dreamRepoMock) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.DeleteFunc(ctx, userID, id)
}

type reportRepoMock struct {
	ExistsForWeekFunc func(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error)
	CreateFunc        func(ctx context.Context, agg *domain.WeeklyAggregate) (*domain.WeeklyAggregate, error)
	DeleteFunc        func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *reportRepoMock) ExistsForWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error) {
	return m.ExistsForWeekFunc(ctx, userID, weekStart)
}

func (m *reportRepoMock) Create(ctx context.Context, agg *domain.WeeklyAggregate) (*domain.WeeklyAggregate, error) {
	return m.CreateFunc(ctx, agg)
}

func (m *reportRepoMock) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.DeleteFunc(ctx, userID, id)
}

type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func op(t *testing.T, entity domain.EntityType, action domain.OperationAction, payload any) domain.QueuedOperation {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return domain.QueuedOperation{
		ID:         uuid.NewString(),
		EntityType: entity,
		Action:     action,
		Payload:    raw,
		EnqueuedAt: time.Now(),
	}
}

func TestApply_RequiresUser(t *testing.T) {
	t.Parallel()

	a := NewApplier(&dreamRepoMock{}, &reportRepoMock{}, txManagerMock{})
	err := a.Apply(context.Background(), op(t, domain.EntityDream, domain.ActionDelete, domain.EntityRef{ID: uuid.New()}))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestApply_DreamCreate_ScopesToUserAndToleratesDuplicate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	ctx := ctxutil.WithUserID(context.Background(), userID)

	var got *domain.DreamRecord
	calls := 0
	dreams := &dreamRepoMock{
		CreateFunc: func(_ context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error) {
			calls++
			got = rec
			if calls > 1 {
				return nil, domain.ErrAlreadyExists
			}
			return rec, nil
		},
	}
	a := NewApplier(dreams, &reportRepoMock{}, txManagerMock{})

	rec := domain.DreamRecord{ID: uuid.New(), UserID: uuid.New(), CaptureID: "cap-1", Narrative: "n"}
	o := op(t, domain.EntityDream, domain.ActionCreate, rec)

	if err := a.Apply(ctx, o); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if got.UserID != userID {
		t.Errorf("UserID: got %s, want context user %s", got.UserID, userID)
	}
	if err := a.Apply(ctx, o); err != nil {
		t.Fatalf("replayed Apply should succeed, got %v", err)
	}
}

func TestApply_PrefersQueuingUser(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())

	var deletedFor uuid.UUID
	dreams := &dreamRepoMock{
		DeleteFunc: func(_ context.Context, userID, _ uuid.UUID) error {
			deletedFor = userID
			return nil
		},
	}
	a := NewApplier(dreams, &reportRepoMock{}, txManagerMock{})

	o := op(t, domain.EntityDream, domain.ActionDelete, domain.EntityRef{ID: uuid.New()})
	o.UserID = owner
	if err := a.Apply(ctx, o); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if deletedFor != owner {
		t.Errorf("delete scoped to %s, want queuing user %s", deletedFor, owner)
	}

	// An owned operation needs no user in ctx.
	if err := a.Apply(context.Background(), o); err != nil {
		t.Fatalf("Apply without context user: %v", err)
	}
}

func TestApply_DreamUpdate_DeepAnalysisOnly(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	ctx := ctxutil.WithUserID(context.Background(), userID)
	dreamID := uuid.New()

	var written *domain.DeepAnalysis
	dreams := &dreamRepoMock{
		UpdateDeepAnalysisFunc: func(_ context.Context, uid, id uuid.UUID, analysis domain.DeepAnalysis) error {
			if uid != userID || id != dreamID {
				t.Errorf("unexpected target %s/%s", uid, id)
			}
			written = &analysis
			return nil
		},
	}
	a := NewApplier(dreams, &reportRepoMock{}, txManagerMock{})

	upd := domain.DreamUpdate{ID: dreamID, DeepAnalysis: &domain.DeepAnalysis{Interpretation: "x"}}
	if err := a.Apply(ctx, op(t, domain.EntityDream, domain.ActionUpdate, upd)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if written == nil || written.Interpretation != "x" {
		t.Fatalf("deep analysis not written: %+v", written)
	}
}

func TestApply_DreamUpdate_Fields(t *testing.T) {
	t.Parallel()

	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	dreamID := uuid.New()
	title := "New title"

	var updated *domain.DreamRecord
	dreams := &dreamRepoMock{
		GetByIDFunc: func(_ context.Context, _, id uuid.UUID) (*domain.DreamRecord, error) {
			return &domain.DreamRecord{ID: id, Title: "Old", Narrative: "keep"}, nil
		},
		UpdateFunc: func(_ context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error) {
			updated = rec
			return rec, nil
		},
	}
	a := NewApplier(dreams, &reportRepoMock{}, txManagerMock{})

	if err := a.Apply(ctx, op(t, domain.EntityDream, domain.ActionUpdate, domain.DreamUpdate{ID: dreamID, Title: &title})); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if updated == nil || updated.Title != title || updated.Narrative != "keep" {
		t.Fatalf("unexpected update: %+v", updated)
	}
}

func TestApply_DreamDelete_MissingIsSuccess(t *testing.T) {
	t.Parallel()

	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	dreams := &dreamRepoMock{
		DeleteFunc: func(context.Context, uuid.UUID, uuid.UUID) error { return domain.ErrNotFound },
	}
	a := NewApplier(dreams, &reportRepoMock{}, txManagerMock{})

	if err := a.Apply(ctx, op(t, domain.EntityDream, domain.ActionDelete, domain.EntityRef{ID: uuid.New()})); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}

func TestApply_ReportCreate_SkipsExistingWeek(t *testing.T) {
	t.Parallel()

	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	created := 0
	reports := &reportRepoMock{
		ExistsForWeekFunc: func(context.Context, uuid.UUID, time.Time) (bool, error) { return created > 0, nil },
		CreateFunc: func(_ context.Context, agg *domain.WeeklyAggregate) (*domain.WeeklyAggregate, error) {
			created++
			return agg, nil
		},
	}
	a := NewApplier(&dreamRepoMock{}, reports, txManagerMock{})

	o := op(t, domain.EntityWeeklyReport, domain.ActionCreate, domain.WeeklyAggregate{ID: uuid.New(), DreamCount: 2})
	for i := 0; i < 2; i++ {
		if err := a.Apply(ctx, o); err != nil {
			t.Fatalf("Apply #%d: %v", i, err)
		}
	}
	if created != 1 {
		t.Errorf("expected 1 create, got %d", created)
	}
}

func TestApply_Rejects(t *testing.T) {
	t.Parallel()

	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	a := NewApplier(&dreamRepoMock{}, &reportRepoMock{}, txManagerMock{})

	tests := []struct {
		name string
		op   domain.QueuedOperation
	}{
		{"report update", op(t, domain.EntityWeeklyReport, domain.ActionUpdate, domain.EntityRef{ID: uuid.New()})},
		{"unknown entity", op(t, "card", domain.ActionCreate, domain.EntityRef{})},
		{"bad payload", domain.QueuedOperation{ID: "x", EntityType: domain.EntityDream, Action: domain.ActionCreate, Payload: json.RawMessage(`"nope"`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.Apply(ctx, tt.op); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}
