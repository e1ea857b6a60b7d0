package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	if got := MapError(nil, "dream", uuid.New()); got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	got := MapError(pgx.ErrNoRows, "dream", id)

	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
	if want := fmt.Sprintf("dream %s: not found", id); got.Error() != want {
		t.Errorf("MapError(ErrNoRows).Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_PgCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want error
	}{
		{"23505", domain.ErrAlreadyExists},
		{"23514", domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			got := MapError(&pgconn.PgError{Code: tt.code}, "weekly_report", uuid.New())
			if !errors.Is(got, tt.want) {
				t.Errorf("MapError(%s) = %v, want wrapping %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestMapError_ContextPassThrough(t *testing.T) {
	t.Parallel()

	got := MapError(context.DeadlineExceeded, "dream", uuid.New())
	if !errors.Is(got, context.DeadlineExceeded) {
		t.Errorf("context error should pass through, got %v", got)
	}
	if errors.Is(got, domain.ErrNotFound) {
		t.Error("context error must not map to ErrNotFound")
	}
}

func TestMapError_Unknown(t *testing.T) {
	t.Parallel()

	base := errors.New("connection reset")
	got := MapError(base, "dream", uuid.New())
	if !errors.Is(got, base) {
		t.Errorf("unknown errors should be wrapped, got %v", got)
	}
}
