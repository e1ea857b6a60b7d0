package queue

import (
	"context"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// Storage keys for the two device-local queues.
const (
	CaptureQueueKey   = "queue:pending_captures"
	OperationQueueKey = "queue:offline_operations"
)

// CaptureQueue holds raw recordings that have not been analyzed yet.
type CaptureQueue struct {
	q *Queue[domain.QueuedCapture]
}

// NewCaptureQueue creates the pending capture queue.
func NewCaptureQueue(store kvStore) *CaptureQueue {
	return &CaptureQueue{q: New[domain.QueuedCapture](store, CaptureQueueKey)}
}

// Add appends a capture.
func (c *CaptureQueue) Add(ctx context.Context, capture domain.QueuedCapture) error {
	return c.q.Enqueue(ctx, capture)
}

// Remove deletes the capture with id; it reports whether it was present.
func (c *CaptureQueue) Remove(ctx context.Context, id string) (bool, error) {
	return c.q.DequeueByID(ctx, id)
}

// Get returns the capture with id.
func (c *CaptureQueue) Get(ctx context.Context, id string) (domain.QueuedCapture, error) {
	return c.q.Get(ctx, id)
}

// ListAll returns every pending capture, oldest first.
func (c *CaptureQueue) ListAll(ctx context.Context) ([]domain.QueuedCapture, error) {
	return c.q.List(ctx)
}

// Len returns the number of pending captures.
func (c *CaptureQueue) Len(ctx context.Context) (int, error) {
	return c.q.Len(ctx)
}

// Clear drops every pending capture.
func (c *CaptureQueue) Clear(ctx context.Context) error {
	return c.q.Clear(ctx)
}

// OperationQueue holds deferred remote writes.
type OperationQueue struct {
	q *Queue[domain.QueuedOperation]
}

// NewOperationQueue creates the offline operation queue.
func NewOperationQueue(store kvStore) *OperationQueue {
	return &OperationQueue{q: New[domain.QueuedOperation](store, OperationQueueKey)}
}

// Add appends an operation.
func (o *OperationQueue) Add(ctx context.Context, op domain.QueuedOperation) error {
	return o.q.Enqueue(ctx, op)
}

// Remove deletes the operation with id.
func (o *OperationQueue) Remove(ctx context.Context, id string) (bool, error) {
	return o.q.DequeueByID(ctx, id)
}

// Update rewrites an operation in place (retry bookkeeping).
func (o *OperationQueue) Update(ctx context.Context, op domain.QueuedOperation) error {
	return o.q.Replace(ctx, op)
}

// ListAll returns every queued operation in insertion order.
func (o *OperationQueue) ListAll(ctx context.Context) ([]domain.QueuedOperation, error) {
	return o.q.List(ctx)
}

// Len returns the number of queued operations.
func (o *OperationQueue) Len(ctx context.Context) (int, error) {
	return o.q.Len(ctx)
}

// Clear drops every queued operation.
func (o *OperationQueue) Clear(ctx context.Context) error {
	return o.q.Clear(ctx)
}
