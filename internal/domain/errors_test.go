package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("audio_location", "required")

	if got := err.Error(); got != "validation: audio_location — required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "audio_location", Message: "required"},
		{Field: "duration_seconds", Message: "must be >= 0"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation,
		ErrUnauthorized, ErrOffline, ErrCaptureInProgress,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}

func TestAnalysisError_Kinds(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")

	transient := fmt.Errorf("wrapped: %w", NewTransientError("analyze", base))
	if !IsTransient(transient) {
		t.Error("IsTransient(transient) = false, want true")
	}
	if !errors.Is(transient, base) {
		t.Error("transient error should unwrap to base")
	}

	permanent := NewPermanentError("analyze", base)
	if IsTransient(permanent) {
		t.Error("IsTransient(permanent) = true, want false")
	}
	if want := "analysis analyze (permanent): boom"; permanent.Error() != want {
		t.Errorf("Error() = %q, want %q", permanent.Error(), want)
	}

	if IsTransient(base) {
		t.Error("IsTransient(plain error) = true, want false")
	}
}
