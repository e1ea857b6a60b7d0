package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/internal/service/capture"
	"github.com/heartmarshall/dreamjournal/internal/service/opqueue"
	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

// QueueLengths holds the length of both device-local queues.
type QueueLengths struct {
	Captures   int `json:"pending_captures"`
	Operations int `json:"offline_operations"`
}

// ImportAudio copies a recording into the audio directory and returns the
// location to pass to ProcessDream.
func (c *Client) ImportAudio(path string) (string, error) {
	return c.audio.Import(path)
}

// ProcessDream captures and analyzes one recording. A new record changes the
// dream collection, so a due weekly report is checked afterwards.
func (c *Client) ProcessDream(ctx context.Context, input capture.ProcessDreamInput) (*domain.DreamRecord, error) {
	rec, err := c.capture.ProcessDream(ctx, input)
	if err != nil {
		return nil, err
	}
	c.checkReport(ctx)
	return rec, nil
}

// SyncPendingDreams retries every pending capture, then checks for a due
// weekly report if anything was persisted.
func (c *Client) SyncPendingDreams(ctx context.Context) (capture.SyncResult, error) {
	res, err := c.capture.SyncPendingDreams(ctx)
	if res.Persisted > 0 {
		c.checkReport(ctx)
	}
	return res, err
}

// ListPending returns the pending captures, oldest first.
func (c *Client) ListPending(ctx context.Context) ([]domain.QueuedCapture, error) {
	return c.capture.ListPending(ctx)
}

// Discard drops a pending capture and its audio.
func (c *Client) Discard(ctx context.Context, captureID string) error {
	return c.capture.Discard(ctx, captureID)
}

// AddToQueue queues a remote write for replay.
func (c *Client) AddToQueue(ctx context.Context, input opqueue.WriteInput) (domain.QueuedOperation, error) {
	return c.ops.AddToQueue(ctx, input)
}

// SyncQueue replays queued remote writes.
func (c *Client) SyncQueue(ctx context.Context) opqueue.SyncResult {
	return c.ops.SyncQueue(ctx)
}

// ListOperations returns the queued remote writes, oldest first.
func (c *Client) ListOperations(ctx context.Context) ([]domain.QueuedOperation, error) {
	return c.ops.List(ctx)
}

// GetQueueLength returns the length of both queues.
func (c *Client) GetQueueLength(ctx context.Context) (QueueLengths, error) {
	captures, err := c.capture.GetQueueLength(ctx)
	if err != nil {
		return QueueLengths{}, err
	}
	ops, err := c.ops.GetQueueLength(ctx)
	if err != nil {
		return QueueLengths{}, err
	}
	return QueueLengths{Captures: captures, Operations: ops}, nil
}

// CheckAndGenerateReport loads the previous week's dreams from the remote
// store and hands them to the weekly scheduler.
func (c *Client) CheckAndGenerateReport(ctx context.Context) (*domain.WeeklyAggregate, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !c.observer.IsOnline() {
		return nil, domain.ErrOffline
	}

	week := domain.PreviousWeek(time.Now().In(c.cfg.Report.Location))
	dreams, err := c.dreams.ListInRange(ctx, userID, week.Start, week.End)
	if err != nil {
		return nil, fmt.Errorf("app.CheckAndGenerateReport: %w", err)
	}
	return c.scheduler.CheckAndGenerateReport(ctx, dreams)
}

// ListReports returns the most recent weekly aggregates.
func (c *Client) ListReports(ctx context.Context, limit int) ([]domain.WeeklyAggregate, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return c.reports.List(ctx, userID, limit)
}

// ListDreams returns the most recent dreams.
func (c *Client) ListDreams(ctx context.Context, limit int) ([]domain.DreamRecord, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return c.dreams.List(ctx, userID, limit)
}

// Enrich runs deep analysis for one stored dream synchronously.
func (c *Client) Enrich(ctx context.Context, dreamID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	rec, err := c.dreams.GetByID(ctx, userID, dreamID)
	if err != nil {
		return fmt.Errorf("app.Enrich: %w", err)
	}
	return c.enrichment.Enrich(ctx, *rec)
}
