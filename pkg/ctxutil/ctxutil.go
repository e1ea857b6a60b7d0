// Package ctxutil carries the authenticated user and a trace id through contexts.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	userIDKey  ctxKey = "user_id"
	traceIDKey ctxKey = "trace_id"
)

// WithUserID stores the authenticated user ID in the context.
// Every remote-store call is scoped to this user.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx extracts the user ID from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithTraceID stores a correlation id (HTTP request or sync pass) in the context.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

// TraceIDFromCtx extracts the trace id. Returns "" if absent.
func TraceIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// NewTrace returns ctx with a fresh trace id, keeping an existing one.
func NewTrace(ctx context.Context) context.Context {
	if TraceIDFromCtx(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, uuid.NewString())
}
