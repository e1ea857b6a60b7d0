package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MaxOperationRetries is the retry ceiling for deferred operations.
// An operation whose RetryCount exceeds it is evicted.
const MaxOperationRetries = 5

// QueuedCapture is a recording awaiting analysis. It is never mutated in place.
// UserID is the user who recorded it; it is nil for captures queued before
// the field existed.
type QueuedCapture struct {
	ID              string    `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	AudioLocation   string    `json:"audio_location"`
	RecordedAt      time.Time `json:"recorded_at"`
	DurationSeconds int       `json:"duration_seconds"`
	UserContext     *string   `json:"user_context,omitempty"`
}

// QueueID implements queue.Item.
func (c QueuedCapture) QueueID() string { return c.ID }

// OwnerOr returns the capture's user, or fallback if it has none.
func (c QueuedCapture) OwnerOr(fallback uuid.UUID) uuid.UUID {
	return ownerOr(c.UserID, fallback)
}

// EntityType tags the remote collection an operation targets.
type EntityType string

const (
	EntityDream        EntityType = "dream"
	EntityWeeklyReport EntityType = "weekly_report"
)

func (e EntityType) String() string { return string(e) }

func (e EntityType) IsValid() bool {
	switch e {
	case EntityDream, EntityWeeklyReport:
		return true
	}
	return false
}

// OperationAction is the kind of write an operation performs.
type OperationAction string

const (
	ActionCreate OperationAction = "create"
	ActionUpdate OperationAction = "update"
	ActionDelete OperationAction = "delete"
)

func (a OperationAction) String() string { return string(a) }

func (a OperationAction) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// QueuedOperation is a deferred write against the remote store.
// Payload is opaque to the queue. UserID is the user the write belongs to.
type QueuedOperation struct {
	ID         string          `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	EntityType EntityType      `json:"entity_type"`
	Action     OperationAction `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	RetryCount int             `json:"retry_count"`
}

// QueueID implements queue.Item.
func (o QueuedOperation) QueueID() string { return o.ID }

// OwnerOr returns the operation's user, or fallback if it has none.
func (o QueuedOperation) OwnerOr(fallback uuid.UUID) uuid.UUID {
	return ownerOr(o.UserID, fallback)
}

func ownerOr(owner, fallback uuid.UUID) uuid.UUID {
	if owner != uuid.Nil {
		return owner
	}
	return fallback
}

// Exhausted reports whether the operation has passed the retry ceiling.
func (o QueuedOperation) Exhausted() bool {
	return o.RetryCount > MaxOperationRetries
}
