package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrWaitExceeded is returned by WaitAndConsume when the required wait is
// longer than the caller allows.
var ErrWaitExceeded = errors.New("rate limit wait exceeds max wait")

// RateLimiter enforces a per-minute token budget and a per-minute request
// budget. A request consumes from both or from neither.
type RateLimiter struct {
	mu             sync.Mutex
	TokensBucket   *TokenBucket
	RequestsBucket *TokenBucket
}

// Ensure RateLimiter implements Limiter.
var _ Limiter = (*RateLimiter)(nil)

// New creates a limiter refilled every minute.
func New(tokensPerMinute, requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		TokensBucket:   NewTokenBucket(tokensPerMinute, tokensPerMinute, time.Minute),
		RequestsBucket: NewTokenBucket(requestsPerMinute, requestsPerMinute, time.Minute),
	}
}

// HasCapacity checks if tokens are available WITHOUT consuming them.
func (rl *RateLimiter) HasCapacity(numTokens int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.TokensBucket.HasCapacity(numTokens) && rl.RequestsBucket.HasCapacity(1)
}

// TryConsume atomically checks capacity and consumes tokens if available.
func (rl *RateLimiter) TryConsume(numTokens int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !rl.TokensBucket.HasCapacity(numTokens) || !rl.RequestsBucket.HasCapacity(1) {
		return false
	}
	return rl.TokensBucket.Consume(numTokens) && rl.RequestsBucket.Consume(1)
}

// TimeUntilAvailable returns how long until the specified tokens would be available.
// This does not modify state.
func (rl *RateLimiter) TimeUntilAvailable(tokens int) time.Duration {
	tokenWait := rl.TokensBucket.TimeUntilAvailable(tokens)
	requestWait := rl.RequestsBucket.TimeUntilAvailable(1)
	return max(tokenWait, requestWait)
}

// WaitAndConsume waits until tokens are available (up to maxWait), then consumes them.
// If maxWait is 0, there is no limit on how long to wait.
func (rl *RateLimiter) WaitAndConsume(ctx context.Context, tokens int, maxWait time.Duration) error {
	for {
		if rl.TryConsume(tokens) {
			return nil
		}

		wait := rl.TimeUntilAvailable(tokens)
		if wait <= 0 {
			// Capacity reappeared between the two calls; try again.
			wait = time.Millisecond
		}
		if maxWait > 0 && wait > maxWait {
			return fmt.Errorf("%w: need %v, max %v", ErrWaitExceeded, wait, maxWait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if maxWait > 0 {
			maxWait -= wait
			if maxWait <= 0 {
				maxWait = time.Nanosecond
			}
		}
	}
}

// TokenBucket implements a token bucket rate limit algorithm. Tokens refill
// proportionally to the elapsed part of refillInterval.
type TokenBucket struct {
	mu             sync.Mutex
	capacity       int
	remaining      int
	refillInterval time.Duration
	lastRefill     time.Time
	now            func() time.Time
}

// NewTokenBucket creates a new token bucket.
func NewTokenBucket(capacity int, initialTokens int, refillInterval time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:       capacity,
		remaining:      initialTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
		now:            time.Now,
	}
}

// refill must be called with tb.mu held.
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return
	}
	if elapsed >= tb.refillInterval {
		tb.remaining = tb.capacity
		tb.lastRefill = now
		return
	}
	replenished := int(float64(tb.capacity) * (float64(elapsed) / float64(tb.refillInterval)))
	if replenished > 0 {
		tb.remaining = min(tb.capacity, tb.remaining+replenished)
		tb.lastRefill = now
	}
}

// HasCapacity checks if tokens are available WITHOUT consuming them.
func (tb *TokenBucket) HasCapacity(tokens int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	return tokens <= tb.remaining
}

// Consume tries to consume a specified number of tokens from the bucket.
func (tb *TokenBucket) Consume(tokens int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	if tokens <= tb.remaining {
		tb.remaining -= tokens
		return true
	}
	return false
}

// TimeUntilAvailable returns how long until tokens would be available. A
// request larger than the capacity never fits and reports the full interval.
func (tb *TokenBucket) TimeUntilAvailable(tokens int) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()

	if tokens <= tb.remaining {
		return 0
	}
	if tb.capacity <= 0 || tokens > tb.capacity {
		return tb.refillInterval
	}

	tokensNeeded := tokens - tb.remaining
	tokenRefillRate := float64(tb.capacity) / float64(tb.refillInterval)
	waitDuration := time.Duration(float64(tokensNeeded) / tokenRefillRate)

	// 10% buffer against rounding in refill
	return waitDuration + (waitDuration / 10)
}
