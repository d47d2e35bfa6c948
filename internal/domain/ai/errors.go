package ai

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrEmptyImage is returned when an uploaded image has no content.
var ErrEmptyImage = errors.New("image is empty")

// APIError is a non-success answer from an inference provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrQuotaExceeded) match rate-limit answers.
func (e *APIError) Unwrap() error {
	if e.StatusCode == 429 {
		return ErrQuotaExceeded
	}
	return nil
}
