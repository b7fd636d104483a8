// Package ratelimiter budgets image generation calls per model, in estimated
// tokens per minute and requests per minute.
package ratelimiter

import (
	"context"
	"time"
)

// Limiter guards one model's quota. A call costs one request plus its
// estimated token count.
type Limiter interface {
	// TryConsume charges a call of the given token cost if both budgets
	// allow it. Nothing is charged when it returns false.
	TryConsume(tokens int) bool

	// TimeUntilAvailable reports how long until a call of the given cost
	// would be accepted. It does not charge anything.
	TimeUntilAvailable(tokens int) time.Duration

	// WaitAndConsume blocks until the call can be charged, ctx ends or maxWait
	// would be exceeded.
	WaitAndConsume(ctx context.Context, tokens int, maxWait time.Duration) error
}
