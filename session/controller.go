package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hjstudio/imagegen"
)

// DefaultTimeout bounds a single generation request.
const DefaultTimeout = 2 * time.Minute

var (
	// ErrGenerationInFlight is returned by Generate while another request of
	// the same session has not finished.
	ErrGenerationInFlight = errors.New("a generation is already in progress")

	// ErrUnknownImage is returned by Select for an image that is not in the
	// session history.
	ErrUnknownImage = errors.New("image is not in history")
)

// Generator is the image generation capability the controller calls.
// *imagegen.Manager and provider generators satisfy it.
type Generator interface {
	Generate(ctx context.Context, prompt string, config *imagegen.GenerateConfig) (*imagegen.GenerateResult, error)
}

// Controller owns the state of one generation session. It is safe for
// concurrent use; at most one Generate call runs at a time.
type Controller struct {
	gen             Generator
	model           imagegen.Model
	timeout         time.Duration
	waitOnRateLimit bool
	maxRateWait     time.Duration
	logger          *slog.Logger
	now             func() time.Time
	newID           func() string
	observers       []func(State)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewController creates a controller in the idle state.
func NewController(gen Generator, opts ...Option) *Controller {
	c := &Controller{
		gen:     gen,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Generate submits params and blocks until the request finishes. On success
// the new image becomes current and heads the history. On failure the
// returned error is also recorded in State().Err and the images are left
// unchanged. Either way the session is idle again when Generate returns.
//
// Invalid params and calls made while a request is in flight are rejected
// without any state change.
func (c *Controller) Generate(ctx context.Context, params GenerationParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state.IsGenerating {
		c.mu.Unlock()
		c.logger.Warn("generation rejected", "reason", "in flight")
		return ErrGenerationInFlight
	}
	reqCtx, cancel := c.requestContext(ctx)
	c.cancel = cancel
	snap := c.applyLocked(Submitted{})
	c.mu.Unlock()
	c.notify(snap)

	defer cancel()

	start := c.now()
	c.logger.Debug("generation submitted",
		"aspect_ratio", params.ratio().String(),
		"prompt_length", len(params.Prompt),
		"has_negative", params.Instruction() != params.Prompt,
	)

	img, err := c.run(reqCtx, params)

	c.mu.Lock()
	c.cancel = nil
	if err != nil {
		snap = c.applyLocked(Failed{Message: err.Error()})
	} else {
		snap = c.applyLocked(Succeeded{Image: img})
	}
	c.mu.Unlock()
	c.notify(snap)

	if err != nil {
		c.logger.Error("generation failed",
			"duration_ms", c.now().Sub(start).Milliseconds(),
			"error", err.Error(),
		)
		return err
	}

	c.logger.Info("image generated",
		"id", img.ID,
		"duration_ms", c.now().Sub(start).Milliseconds(),
		"history_len", len(snap.History),
	)
	return nil
}

// Cancel aborts the in-flight request, if any, and reports whether there was
// one. The pending Generate call returns a cancellation error.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return false
	}
	c.cancel()
	return true
}

// Select makes a history entry the current image.
func (c *Controller) Select(image GeneratedImage) error {
	c.mu.Lock()
	if _, ok := c.state.Lookup(image.ID); !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownImage, image.ID)
	}
	snap := c.applyLocked(Selected{Image: image})
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

func (c *Controller) run(ctx context.Context, params GenerationParams) (GeneratedImage, error) {
	config := &imagegen.GenerateConfig{
		Model:           c.model,
		AspectRatio:     params.ratio(),
		WaitOnRateLimit: c.waitOnRateLimit,
		MaxWaitDuration: c.maxRateWait,
	}

	res, err := c.gen.Generate(ctx, params.Instruction(), config)
	if err != nil {
		return GeneratedImage{}, c.contextError(ctx, err)
	}

	part, ok := res.FirstImage()
	if !ok {
		return GeneratedImage{}, imagegen.ErrNoImage
	}

	return GeneratedImage{
		ID:        c.newID(),
		URL:       part.DataURL(),
		Prompt:    params.Prompt,
		Timestamp: c.now(),
	}, nil
}

// contextError gives cancellations and timeouts a readable message.
func (c *Controller) contextError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("generation timed out after %v: %w", c.timeout, err)
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("generation cancelled: %w", err)
	}
	return err
}

func (c *Controller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// applyLocked must be called with c.mu held.
func (c *Controller) applyLocked(e Event) State {
	c.state = Reduce(c.state, e)
	return c.state.Clone()
}

func (c *Controller) notify(s State) {
	for _, fn := range c.observers {
		fn(s)
	}
}
