// Package connectivity tracks network reachability and notifies listeners
// when the device comes back online.
package connectivity

import (
	"context"
	"log/slog"
	"sync"

	"github.com/heartmarshall/dreamjournal/internal/metrics"
)

// Handler runs on every offline→online transition.
type Handler func(ctx context.Context)

// Signal is a source of reachability changes. Watch emits the current state
// first and then every change until ctx is done, when it closes the channel.
type Signal interface {
	Watch(ctx context.Context) <-chan bool
}

// Observer holds the online/offline state and fires handlers on reconnect.
// Transitions are not debounced: each offline→online edge starts every
// handler in its own goroutine, so handlers must guard against overlap.
type Observer struct {
	log *slog.Logger

	mu       sync.RWMutex
	online   bool
	handlers []Handler

	wg sync.WaitGroup
}

// NewObserver creates an Observer starting in the given state.
func NewObserver(log *slog.Logger, online bool) *Observer {
	metrics.SetOnline(online)
	return &Observer{
		log:    log.With("component", "connectivity"),
		online: online,
	}
}

// IsOnline reports the last known state.
func (o *Observer) IsOnline() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.online
}

// OnReconnect registers h to run on every offline→online transition.
func (o *Observer) OnReconnect(h Handler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers = append(o.handlers, h)
}

// Update records a new reachability state and reports whether it was an
// offline→online edge. Handlers run detached from ctx cancellation: once a
// sync pass starts it is not cancelled.
func (o *Observer) Update(ctx context.Context, online bool) bool {
	o.mu.Lock()
	was := o.online
	o.online = online
	handlers := append([]Handler(nil), o.handlers...)
	o.mu.Unlock()

	metrics.SetOnline(online)

	if was == online {
		return false
	}
	if !online {
		o.log.InfoContext(ctx, "went offline")
		return false
	}

	o.log.InfoContext(ctx, "back online", slog.Int("handlers", len(handlers)))
	metrics.Reconnects.Inc()

	detached := context.WithoutCancel(ctx)
	for _, h := range handlers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			h(detached)
		}()
	}
	return true
}

// Run feeds the observer from signal until ctx is done.
func (o *Observer) Run(ctx context.Context, signal Signal) {
	for online := range signal.Watch(ctx) {
		o.Update(ctx, online)
	}
}

// Wait blocks until every handler started so far has returned.
func (o *Observer) Wait() {
	o.wg.Wait()
}
