package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized indicates the provider rejected the API key.
	ErrUnauthorized = errors.New("llm provider rejected credentials")

	// ErrRateLimited indicates the provider is throttling or overloaded.
	// The request may succeed if the user tries again later.
	ErrRateLimited = errors.New("llm provider temporarily unavailable")

	// ErrUnavailable indicates the provider could not be reached or failed.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")
)

// statusError maps a non-2xx provider status to a sentinel. 529 is
// Anthropic's "overloaded" status.
func statusError(provider string, status int, body []byte) error {
	snippet := string(body)
	if len(snippet) > 300 {
		snippet = snippet[:300]
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s returned %d", ErrUnauthorized, provider, status)
	case status == http.StatusTooManyRequests || status == 529:
		return fmt.Errorf("%w: %s returned %d", ErrRateLimited, provider, status)
	default:
		return fmt.Errorf("%w: %s returned %d: %s", ErrUnavailable, provider, status, snippet)
	}
}

// IsRetryable reports whether the user should be told to try again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	default:
		return "UNKNOWN"
	}
}
