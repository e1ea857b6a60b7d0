// Package capture drives a recorded dream from raw audio to a persisted,
// structured record.
//
// A capture is written to the pending capture queue before any network call
// and leaves it only after the remote record exists, so a crash or analysis
// failure never loses the recording. Between the remote write and the local
// cleanup a crash can leave a still-queued capture whose record already
// exists; the next sync pass detects that and only cleans up.
package capture

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

type captureQueue interface {
	Add(ctx context.Context, capture domain.QueuedCapture) error
	Remove(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (domain.QueuedCapture, error)
	ListAll(ctx context.Context) ([]domain.QueuedCapture, error)
	Len(ctx context.Context) (int, error)
}

type analyzer interface {
	Analyze(ctx context.Context, audio io.Reader, fileName string, userContext *string) (domain.Decomposition, error)
}

type dreamRepo interface {
	Create(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error)
	GetByCaptureID(ctx context.Context, userID uuid.UUID, captureID string) (*domain.DreamRecord, error)
}

type audioStore interface {
	Open(location string) (io.ReadCloser, error)
	Remove(location string) error
}

type enrichmentTrigger interface {
	Trigger(rec domain.DreamRecord)
}

type onlineChecker interface {
	IsOnline() bool
}

// Service is the capture pipeline.
type Service struct {
	log      *slog.Logger
	queue    captureQueue
	analysis analyzer
	dreams   dreamRepo
	audio    audioStore
	enricher enrichmentTrigger
	conn     onlineChecker
	now      func() time.Time

	// processing is set while a capture is being analyzed; at most one
	// capture is in the Analyzing state per process.
	processing atomic.Bool
	syncGroup  singleflight.Group
}

// NewService creates a new capture pipeline.
func NewService(
	log *slog.Logger,
	queue captureQueue,
	analysis analyzer,
	dreams dreamRepo,
	audio audioStore,
	enricher enrichmentTrigger,
	conn onlineChecker,
) *Service {
	return &Service{
		log:      log.With("service", "capture"),
		queue:    queue,
		analysis: analysis,
		dreams:   dreams,
		audio:    audio,
		enricher: enricher,
		conn:     conn,
		now:      time.Now,
	}
}
