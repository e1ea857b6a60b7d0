package opqueue

import (
	"encoding/json"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// WriteInput describes a remote write issued by a caller.
type WriteInput struct {
	EntityType domain.EntityType
	Action     domain.OperationAction
	Payload    json.RawMessage
}

func (i WriteInput) Validate() error {
	var errs []domain.FieldError

	if !i.EntityType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "entity_type", Message: "unknown entity type"})
	}
	if !i.Action.IsValid() {
		errs = append(errs, domain.FieldError{Field: "action", Message: "unknown action"})
	}
	if len(i.Payload) == 0 {
		errs = append(errs, domain.FieldError{Field: "payload", Message: "required"})
	} else if !json.Valid(i.Payload) {
		errs = append(errs, domain.FieldError{Field: "payload", Message: "must be valid JSON"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
