package session

import (
	"log/slog"
	"time"

	"github.com/hjstudio/imagegen"
)

// Option configures a Controller.
type Option func(*Controller)

// WithModel selects the model for every request. Empty uses the generator's
// default.
func WithModel(model imagegen.Model) Option {
	return func(c *Controller) {
		c.model = model
	}
}

// WithTimeout bounds each request. Zero or negative disables the timeout;
// the caller's context and Cancel still apply.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithWaitOnRateLimit makes requests wait up to maxWait for rate limit
// capacity instead of failing right away.
func WithWaitOnRateLimit(maxWait time.Duration) Option {
	return func(c *Controller) {
		c.waitOnRateLimit = true
		c.maxRateWait = maxWait
	}
}

// WithLogger sets a structured logger for the controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithIDGenerator replaces the UUID generator for image IDs.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		c.newID = newID
	}
}

// WithObserver registers fn to receive a snapshot after every state change.
// Observers run on the goroutine that caused the change, outside the
// controller's lock.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, fn)
	}
}
