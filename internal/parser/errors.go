package parser

import (
	"fmt"
	"strconv"
	"time"
)

// RateLimitError reports that a model provider answered 429. It survives the
// backend-error wrap so the HTTP layer can answer 429 with a Retry-After
// instead of a generic bad-gateway.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError wraps a provider 429. Providers that send no usable
// Retry-After get a 60s default.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader reads the delta-seconds form of a Retry-After value.
// The HTTP-date form and garbage both come back as 0, deferring to the default.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
