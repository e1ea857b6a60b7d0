// Package opqueue replays deferred remote writes once the device is online.
//
// Replay is best-effort: an operation that keeps failing is dropped after
// domain.MaxOperationRetries failed attempts, and its failure is logged but
// never surfaced to whoever originally issued the write.
package opqueue

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

type operationQueue interface {
	Add(ctx context.Context, op domain.QueuedOperation) error
	Remove(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, op domain.QueuedOperation) error
	ListAll(ctx context.Context) ([]domain.QueuedOperation, error)
	Len(ctx context.Context) (int, error)
}

type operationApplier interface {
	Apply(ctx context.Context, op domain.QueuedOperation) error
}

type onlineChecker interface {
	IsOnline() bool
}

// Service owns the offline operation queue and its replay loop.
type Service struct {
	log    *slog.Logger
	queue  operationQueue
	remote operationApplier
	conn   onlineChecker
	now    func() time.Time

	syncing atomic.Bool
}

// NewService creates a new offline operation queue service.
func NewService(log *slog.Logger, queue operationQueue, remote operationApplier, conn onlineChecker) *Service {
	return &Service{
		log:    log.With("service", "opqueue"),
		queue:  queue,
		remote: remote,
		conn:   conn,
		now:    time.Now,
	}
}
