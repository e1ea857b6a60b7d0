package capture

import (
	"strings"
	"time"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

const maxUserContextLen = 2000

// ProcessDreamInput describes a finished recording.
type ProcessDreamInput struct {
	AudioLocation   string
	DurationSeconds int
	UserContext     *string
	// RecordedAt defaults to now when zero.
	RecordedAt time.Time
}

// Validate checks the input.
func (i ProcessDreamInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.AudioLocation) == "" {
		errs = append(errs, domain.FieldError{Field: "audio_location", Message: "required"})
	}
	if i.DurationSeconds < 0 {
		errs = append(errs, domain.FieldError{Field: "duration_seconds", Message: "must not be negative"})
	}
	if i.UserContext != nil && len(*i.UserContext) > maxUserContextLen {
		errs = append(errs, domain.FieldError{Field: "user_context", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
