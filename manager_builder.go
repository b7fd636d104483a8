package imagegen

import (
	"log/slog"

	"github.com/hjstudio/imagegen/ratelimiter"
)

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets a structured logger for the manager.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDefaultModel sets the default model used when config.Model is empty.
func WithDefaultModel(model Model) ManagerOption {
	return func(m *Manager) {
		if model != "" {
			m.defaultModel = model
		}
	}
}

// WithTokenEstimator replaces the estimator used for rate limiting.
func WithTokenEstimator(e TokenEstimator) ManagerOption {
	return func(m *Manager) {
		m.tokenEstimator = e
	}
}

// WithRateLimiterRegistry swaps the in-memory limiter registry, e.g. for one
// shared across processes. Must come before models are registered to apply
// to them.
func WithRateLimiterRegistry(r ratelimiter.Registry) ManagerOption {
	return func(m *Manager) {
		m.rateLimiters = r
	}
}

// NewManager creates a Manager serving every model of defaultProvider.
//
// Example:
//
//	gen, err := gemini.NewWithAPIKey(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	manager := imagegen.NewManager(gen,
//	    imagegen.WithLogger(slog.Default()),
//	    imagegen.WithDefaultModel(imagegen.ModelNanoBanana2),
//	)
func NewManager(defaultProvider ImageGenerator, opts ...ManagerOption) *Manager {
	m := New()

	for _, opt := range opts {
		opt(m)
	}

	m.RegisterProvider(defaultProvider)

	return m
}
