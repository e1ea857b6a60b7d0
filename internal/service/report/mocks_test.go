package report

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

type mockReportRepo struct {
	mu      sync.Mutex
	weeks   map[time.Time]bool
	created []domain.WeeklyAggregate

	existsErr error
	createErr error
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{weeks: map[time.Time]bool{}}
}

func (m *mockReportRepo) ExistsForWeek(_ context.Context, _ uuid.UUID, weekStart time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.weeks[weekStart.UTC()], nil
}

func (m *mockReportRepo) Create(_ context.Context, agg *domain.WeeklyAggregate) (*domain.WeeklyAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.weeks[agg.WeekStart.UTC()] = true
	m.created = append(m.created, *agg)
	out := *agg
	return &out, nil
}

func (m *mockReportRepo) createdCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

type mockSummarizer struct {
	fn func(ctx context.Context, dreams []domain.DreamRecord) (domain.WeekSummary, error)

	mu    sync.Mutex
	calls [][]domain.DreamRecord
}

func (m *mockSummarizer) SummarizeWeek(ctx context.Context, dreams []domain.DreamRecord) (domain.WeekSummary, error) {
	m.mu.Lock()
	m.calls = append(m.calls, dreams)
	m.mu.Unlock()
	if m.fn == nil {
		return domain.WeekSummary{Trend: "steady", Narrative: "a quiet week", Insight: "rest"}, nil
	}
	return m.fn(ctx, dreams)
}

func (m *mockSummarizer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type passTx struct{}

func (passTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
