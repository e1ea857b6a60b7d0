// Package report generates one weekly aggregate per fully elapsed calendar
// week.
//
// Duplicate suppression is an existence check before the write. It holds
// within one process; two devices of the same user can still race and both
// write a report for the same week.
package report

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// LastWeekKey is the local storage key holding the last concluded week.
const LastWeekKey = "report:last_week"

type reportRepo interface {
	ExistsForWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error)
	Create(ctx context.Context, agg *domain.WeeklyAggregate) (*domain.WeeklyAggregate, error)
}

type summarizer interface {
	SummarizeWeek(ctx context.Context, dreams []domain.DreamRecord) (domain.WeekSummary, error)
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Scheduler checks for and generates weekly aggregates.
type Scheduler struct {
	log      *slog.Logger
	reports  reportRepo
	analysis summarizer
	local    kvStore
	tx       txManager
	loc      *time.Location
	topN     int
	now      func() time.Time

	mu       sync.Mutex
	lastWeek string
	loaded   bool

	generating atomic.Bool
}

// NewScheduler creates a Scheduler computing weeks in loc and keeping the
// topN entries of each frequency table.
func NewScheduler(
	log *slog.Logger,
	reports reportRepo,
	analysis summarizer,
	local kvStore,
	tx txManager,
	loc *time.Location,
	topN int,
) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		log:      log.With("service", "report"),
		reports:  reports,
		analysis: analysis,
		local:    local,
		tx:       tx,
		loc:      loc,
		topN:     topN,
		now:      time.Now,
	}
}
