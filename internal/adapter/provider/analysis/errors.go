package analysis

import (
	"context"
	"errors"
	"net/http"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/sashabaranov/go-openai"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// classify maps SDK and network errors onto the transient/permanent taxonomy.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewTransientError(op, err)
	}

	var claudeErr *anthropic.Error
	if errors.As(err, &claudeErr) {
		return byStatus(op, claudeErr.StatusCode, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return byStatus(op, apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return byStatus(op, reqErr.HTTPStatusCode, err)
	}

	// Network failures and anything unrecognised are worth another try.
	return domain.NewTransientError(op, err)
}

func byStatus(op string, status int, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewPermanentError(op, errors.Join(domain.ErrUnauthorized, err))
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status == http.StatusTooManyRequests:
		return domain.NewTransientError(op, err)
	case status >= 500:
		return domain.NewTransientError(op, err)
	case status >= 400:
		return domain.NewPermanentError(op, err)
	}
	return domain.NewTransientError(op, err)
}

func permanent(op string, err error) error {
	return domain.NewPermanentError(op, err)
}
