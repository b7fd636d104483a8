package imagegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hjstudio/imagegen/ratelimiter"
)

const (
	ModelNanoBanana1 Model = "nano-banana-1" // Gemini 2.5 Flash Image
	ModelNanoBanana2 Model = "nano-banana-2" // Gemini 3 Pro Image

	ModelDefault Model = ModelNanoBanana1
)

var (
	// ErrModelNotRegistered is returned when a model has no registered provider.
	ErrModelNotRegistered = errors.New("model not registered")

	// ErrProviderNotConfigured is returned when a provider lacks required config.
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// Provider represents a model provider/backend.
type Provider string

const (
	ProviderGeminiAPI Provider = "gemini"
)

// ProviderConfig configures a specific provider.
type ProviderConfig struct {
	// Provider type
	Provider Provider

	// APIKey for authentication. Empty falls back to the provider's
	// environment lookup at call time.
	APIKey string

	// BaseURL for custom endpoints (optional)
	BaseURL string
}

// ModelMapping maps a model identifier to its provider and actual model name.
type ModelMapping struct {
	Provider        Provider
	ActualModelName string
}

// Manager implements ImageGenerator, routing requests to the appropriate
// provider based on the Model in GenerateConfig.
type Manager struct {
	modelMappings map[Model]ModelMapping
	providers     map[Provider]ImageGenerator
	modelInfo     map[Model]*ModelInfo

	// Default model to use when config.Model is empty
	defaultModel Model

	rateLimiters   ratelimiter.Registry
	tokenEstimator TokenEstimator

	logger *slog.Logger

	mu sync.RWMutex
}

// Ensure Manager implements the interface.
var _ ImageGenerator = (*Manager)(nil)

// New creates an empty Manager. Most callers want NewManager.
func New() *Manager {
	return &Manager{
		logger:         slog.Default(),
		modelMappings:  make(map[Model]ModelMapping),
		providers:      make(map[Provider]ImageGenerator),
		modelInfo:      make(map[Model]*ModelInfo),
		rateLimiters:   ratelimiter.NewRegistry(),
		tokenEstimator: NewCharTokenEstimator(),
		defaultModel:   ModelDefault,
	}
}

// RegisterModel registers a model with full info (including rate limits).
// Uses the default in-memory rate limiter. Use SetRateLimiter to override.
func (m *Manager) RegisterModel(model Model, mapping ModelMapping, info *ModelInfo) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.modelMappings[model] = mapping
	m.modelInfo[model] = info

	if info.RateLimits.TokensPerMinute > 0 || info.RateLimits.RequestsPerMinute > 0 {
		m.rateLimiters.Set(string(model), ratelimiter.New(
			info.RateLimits.TokensPerMinute,
			info.RateLimits.RequestsPerMinute,
		))
	}

	return m
}

// RegisterProvider makes gen the backend for provider and registers all of
// its models.
func (m *Manager) RegisterProvider(gen ImageGenerator) *Manager {
	models := gen.Models()
	for i := range models {
		info := &models[i]

		m.mu.Lock()
		m.providers[info.Provider] = gen
		m.mu.Unlock()

		m.RegisterModel(Model(info.Name), ModelMapping{
			Provider:        info.Provider,
			ActualModelName: info.APIModelName,
		}, info)
	}
	return m
}

// SetRateLimiter replaces the limiter for a model. A nil limiter disables
// rate limiting for it.
func (m *Manager) SetRateLimiter(model Model, limiter ratelimiter.Limiter) *Manager {
	m.rateLimiters.Set(string(model), limiter)
	return m
}

// SetDefaultModel sets the default model used when config.Model is empty.
func (m *Manager) SetDefaultModel(model Model) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.defaultModel = model
	return m
}

// SetLogger sets a structured logger for the manager.
func (m *Manager) SetLogger(logger *slog.Logger) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger = logger
	return m
}

// Generate validates the request, applies the model's rate limit and forwards
// the call to the provider serving the model.
func (m *Manager) Generate(ctx context.Context, prompt string, config *GenerateConfig) (*GenerateResult, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	model := m.resolveModel(config)
	logger := m.getLogger()
	start := time.Now()

	logger.Debug("starting image generation",
		"model", string(model),
		"aspect_ratio", config.AspectRatio.String(),
		"prompt_length", len(prompt),
	)

	if config.AspectRatio != "" {
		if info, ok := m.GetModelInfo(model); ok && !info.SupportsAspectRatio(config.AspectRatio) {
			return nil, fmt.Errorf("%w: %s does not support %s", ErrInvalidAspectRatio, model, config.AspectRatio)
		}
	}

	if err := m.checkRateLimit(ctx, model, config, prompt); err != nil {
		logger.Warn("rate limit hit",
			"model", string(model),
			"error", err.Error(),
		)
		return nil, err
	}

	gen, actualConfig, err := m.getGeneratorForConfig(config)
	if err != nil {
		logger.Error("failed to get generator",
			"model", string(model),
			"error", err.Error(),
		)
		return nil, err
	}

	result, err := gen.Generate(ctx, prompt, actualConfig)
	duration := time.Since(start)

	if err != nil {
		logger.Error("generation failed",
			"model", string(model),
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return nil, err
	}

	logAttrs := []any{
		"model", string(model),
		"duration_ms", duration.Milliseconds(),
		"image_count", result.ImageCount(),
	}
	if result.FinishReason != "" {
		logAttrs = append(logAttrs, "finish_reason", result.FinishReason)
	}
	if result.UsageMetadata != nil {
		logAttrs = append(logAttrs,
			"prompt_tokens", result.UsageMetadata.PromptTokens,
			"response_tokens", result.UsageMetadata.CandidatesTokens,
			"total_tokens", result.UsageMetadata.TotalTokens,
		)
	}
	for k, v := range config.Metadata {
		logAttrs = append(logAttrs, "meta_"+k, v)
	}
	logger.Info("generation completed", logAttrs...)

	return result, nil
}

// Models returns all registered model definitions.
func (m *Manager) Models() []ModelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	models := make([]ModelInfo, 0, len(m.modelInfo))
	for _, info := range m.modelInfo {
		if info != nil {
			models = append(models, *info)
		}
	}
	return models
}

// Close releases all provider resources.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for provider, gen := range m.providers {
		if err := gen.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", provider, err))
		}
	}
	m.providers = make(map[Provider]ImageGenerator)

	return errors.Join(errs...)
}

// GetModelInfo returns model information for a specific model.
func (m *Manager) GetModelInfo(model Model) (*ModelInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.modelInfo[model]
	return info, ok
}

func (m *Manager) getLogger() *slog.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logger
}

// checkRateLimit checks rate limits for a model and optionally waits.
func (m *Manager) checkRateLimit(ctx context.Context, model Model, config *GenerateConfig, prompt string) error {
	limiter, ok := m.rateLimiters.Lookup(string(model))
	if !ok {
		return nil
	}

	estimatedTokens := EstimateRequestTokens(m.tokenEstimator, prompt)

	if config.WaitOnRateLimit {
		if err := limiter.WaitAndConsume(ctx, estimatedTokens, config.MaxWaitDuration); err != nil {
			return &RateLimitError{
				RetryAfter: limiter.TimeUntilAvailable(estimatedTokens),
				LimitType:  LimitTokens,
				Model:      string(model),
				Err:        err,
			}
		}
		return nil
	}

	if !limiter.TryConsume(estimatedTokens) {
		return &RateLimitError{
			RetryAfter: limiter.TimeUntilAvailable(estimatedTokens),
			LimitType:  LimitTokens,
			Model:      string(model),
		}
	}

	return nil
}

// resolveModel determines the actual model to use.
func (m *Manager) resolveModel(config *GenerateConfig) Model {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if config == nil || config.Model == "" {
		return m.defaultModel
	}
	return config.Model
}

// getGeneratorForConfig returns the appropriate generator and a config copy
// carrying the provider's model name.
func (m *Manager) getGeneratorForConfig(config *GenerateConfig) (ImageGenerator, *GenerateConfig, error) {
	model := m.resolveModel(config)

	m.mu.RLock()
	mapping, ok := m.modelMappings[model]
	m.mu.RUnlock()

	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrModelNotRegistered, model)
	}

	gen, err := m.getProvider(mapping.Provider)
	if err != nil {
		return nil, nil, err
	}

	configCopy := *config
	configCopy.Model = Model(mapping.ActualModelName)

	return gen, &configCopy, nil
}

// getProvider returns the provider instance for the given provider type.
func (m *Manager) getProvider(provider Provider) (ImageGenerator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gen, ok := m.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, provider)
	}
	return gen, nil
}
