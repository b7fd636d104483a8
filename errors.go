package imagegen

import (
	"errors"
	"fmt"
	"time"
)

// LimitType names the budget a request ran out of.
type LimitType string

const (
	// LimitTokens is the local estimated-tokens-per-minute budget.
	LimitTokens LimitType = "tokens"
	// LimitRemoteQuota is a quota enforced by the API (HTTP 429).
	LimitRemoteQuota LimitType = "remote quota"
)

// RateLimitError reports a request refused for lack of quota. It is
// recorded in the session like any other failure; nothing retries it.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  LimitType
	Model      string
	Err        error // provider error, if the API refused the call
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter <= 0 {
		return fmt.Sprintf("%s: %s limit reached", e.Model, e.LimitType)
	}
	return fmt.Sprintf("%s: %s limit reached, retry in %v",
		e.Model, e.LimitType, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError reports whether err wraps a *RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// RetryAfter returns the suggested wait carried by a wrapped
// *RateLimitError.
func RetryAfter(err error) (time.Duration, bool) {
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		return 0, false
	}
	return rlErr.RetryAfter, true
}

// ErrNoImage is returned when a response completed but none of its parts
// carried inline image data.
var ErrNoImage = errors.New("model did not produce an image")

// ErrStorageNotConfigured is returned by SaveDataURL without a Storage.
var ErrStorageNotConfigured = errors.New("storage not configured")
