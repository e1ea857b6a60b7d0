// Package queue implements a durable, insertion-ordered list of pending work
// persisted in a device-local key/value store.
//
// The whole list is serialized under a single key, so every mutation is one
// atomic write: a process kill between operations leaves either the old or
// the new list, never a torn one. A mutex serializes mutations within the
// process.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// Item is anything that can live in a Queue.
type Item interface {
	QueueID() string
}

// kvStore is the device-local storage the queue persists into.
type kvStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Queue is a persisted FIFO of T keyed by Item.QueueID.
type Queue[T Item] struct {
	mu    sync.Mutex
	store kvStore
	key   string
}

// New creates a queue persisted under key.
func New[T Item](store kvStore, key string) *Queue[T] {
	return &Queue[T]{store: store, key: key}
}

// Enqueue appends item. Enqueuing an id that is already present is an error.
func (q *Queue[T]) Enqueue(ctx context.Context, item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(items, item.QueueID()) >= 0 {
		return fmt.Errorf("queue %s: item %s: %w", q.key, item.QueueID(), domain.ErrAlreadyExists)
	}
	return q.save(ctx, append(items, item))
}

// DequeueByID removes the item with id. Removing an absent id is a no-op
// and reports false.
func (q *Queue[T]) DequeueByID(ctx context.Context, id string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return false, nil
	}
	return true, q.save(ctx, slices.Delete(items, i, i+1))
}

// Replace overwrites the item with the same id in place, keeping its position.
func (q *Queue[T]) Replace(ctx context.Context, item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(items, item.QueueID())
	if i < 0 {
		return fmt.Errorf("queue %s: item %s: %w", q.key, item.QueueID(), domain.ErrNotFound)
	}
	items[i] = item
	return q.save(ctx, items)
}

// Get returns the item with id.
func (q *Queue[T]) Get(ctx context.Context, id string) (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	items, err := q.load(ctx)
	if err != nil {
		return zero, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return zero, fmt.Errorf("queue %s: item %s: %w", q.key, id, domain.ErrNotFound)
	}
	return items[i], nil
}

// List returns a snapshot of all items in insertion order.
func (q *Queue[T]) List(ctx context.Context) ([]T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// Len returns the number of queued items.
func (q *Queue[T]) Len(ctx context.Context) (int, error) {
	items, err := q.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Clear removes every item.
func (q *Queue[T]) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.store.Remove(ctx, q.key); err != nil {
		return fmt.Errorf("queue %s: clear: %w", q.key, err)
	}
	return nil
}

func (q *Queue[T]) load(ctx context.Context) ([]T, error) {
	raw, ok, err := q.store.Get(ctx, q.key)
	if err != nil {
		return nil, fmt.Errorf("queue %s: load: %w", q.key, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("queue %s: decode: %w", q.key, err)
	}
	return items, nil
}

func (q *Queue[T]) save(ctx context.Context, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("queue %s: encode: %w", q.key, err)
	}
	if err := q.store.Set(ctx, q.key, string(data)); err != nil {
		return fmt.Errorf("queue %s: save: %w", q.key, err)
	}
	return nil
}

func indexOf[T Item](items []T, id string) int {
	return slices.IndexFunc(items, func(it T) bool { return it.QueueID() == id })
}
