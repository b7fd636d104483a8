// Package gemini provides an ImageGenerator implementation using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hjstudio/imagegen"
	"google.golang.org/genai"
)

// Model name constants - the actual API model names.
const (
	// APIModelNanoBanana1 is the actual API name for Gemini 2.5 Flash Image
	APIModelNanoBanana1 = "gemini-2.5-flash-image"

	// APIModelNanoBanana2 is the actual API name for Gemini 3 Pro Image
	APIModelNanoBanana2 = "gemini-3-pro-image-preview"
)

// ErrPromptBlocked is returned when the API refuses the prompt outright.
var ErrPromptBlocked = errors.New("prompt blocked")

// contentGenerator is the part of *genai.Models the generator calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements ImageGenerator using Google's Gemini API.
//
// The SDK client is created on the first Generate call, so a missing or
// invalid credential is reported by Generate rather than by New.
type GeminiGenerator struct {
	config         imagegen.ProviderConfig
	models         contentGenerator
	safetySettings []*genai.SafetySetting
	logger         *slog.Logger
	mu             sync.RWMutex
}

// Ensure GeminiGenerator implements the interface.
var _ imagegen.ImageGenerator = (*GeminiGenerator)(nil)

// New creates a new GeminiGenerator from a ProviderConfig.
// If APIKey is empty, the SDK will try GOOGLE_API_KEY or GEMINI_API_KEY env vars.
func New(config *imagegen.ProviderConfig) *GeminiGenerator {
	if config == nil {
		config = &imagegen.ProviderConfig{}
	}
	cfg := *config
	if cfg.Provider == "" {
		cfg.Provider = imagegen.ProviderGeminiAPI
	}

	return &GeminiGenerator{
		config: cfg,
		logger: slog.Default(),
	}
}

// NewWithAPIKey creates a generator with an API key for Gemini API.
func NewWithAPIKey(apiKey string) *GeminiGenerator {
	return New(&imagegen.ProviderConfig{
		Provider: imagegen.ProviderGeminiAPI,
		APIKey:   apiKey,
	})
}

// SetLogger sets the logger used for provider-level diagnostics.
func (g *GeminiGenerator) SetLogger(logger *slog.Logger) *GeminiGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.logger = logger
	return g
}

// SetSafetySettings configures default safety settings for all requests.
// These can be overridden per-request via GenerateConfig.SafetySettings.
func (g *GeminiGenerator) SetSafetySettings(settings []imagegen.SafetySetting) *GeminiGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.safetySettings = convertSafetySettings(settings)
	return g
}

// Generate sends the prompt as a single text part and returns the parts of the
// first candidate in order.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, config *imagegen.GenerateConfig) (*imagegen.GenerateResult, error) {
	if err := imagegen.ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	if config == nil {
		config = imagegen.DefaultConfig()
	}

	models, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	modelName := g.resolveModel(config)

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	genConfig := g.buildGenerateContentConfig(config)

	result, err := models.GenerateContent(ctx, modelName, contents, genConfig)
	if err != nil {
		if rlErr := checkRateLimitError(err, modelName); rlErr != nil {
			return nil, rlErr
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return parseResult(result)
}

// Models returns the model definitions supported by this provider.
// The first model (NanoBanana1) is the default.
func (g *GeminiGenerator) Models() []imagegen.ModelInfo {
	return []imagegen.ModelInfo{
		NanoBanana1Info,
		NanoBanana2Info,
	}
}

// Close releases any resources held by the generator.
func (g *GeminiGenerator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	// The genai.Client holds no resources that need closing; dropping it
	// forces a fresh client (and credential check) on the next call.
	g.models = nil
	return nil
}

// client returns the SDK models service, creating the client on first use.
func (g *GeminiGenerator) client(ctx context.Context) (contentGenerator, error) {
	g.mu.RLock()
	models := g.models
	g.mu.RUnlock()
	if models != nil {
		return models, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.models != nil {
		return g.models, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  g.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.config.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	g.logger.Debug("gemini client created", "base_url", g.config.BaseURL)
	g.models = client.Models
	return g.models, nil
}

// resolveModel determines which API model name to use.
// Falls back to the first model (default) if none specified.
func (g *GeminiGenerator) resolveModel(config *imagegen.GenerateConfig) string {
	if config != nil && config.Model != "" {
		return string(config.Model)
	}
	models := g.Models()
	if len(models) == 0 {
		return APIModelNanoBanana1
	}
	return models[0].APIModelName
}

// buildGenerateContentConfig converts our config to Gemini's GenerateContentConfig format.
func (g *GeminiGenerator) buildGenerateContentConfig(config *imagegen.GenerateConfig) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	if config.AspectRatio != "" {
		genConfig.ImageConfig = &genai.ImageConfig{
			AspectRatio: config.AspectRatio.String(),
		}
	}

	if config.Temperature != nil {
		genConfig.Temperature = genai.Ptr(*config.Temperature)
	}

	// Safety settings: per-request overrides provider defaults
	g.mu.RLock()
	defaults := g.safetySettings
	g.mu.RUnlock()
	if len(config.SafetySettings) > 0 {
		genConfig.SafetySettings = convertSafetySettings(config.SafetySettings)
	} else if len(defaults) > 0 {
		genConfig.SafetySettings = defaults
	}

	return genConfig
}

// convertSafetySettings converts our SafetySettings to Gemini's format.
func convertSafetySettings(settings []imagegen.SafetySetting) []*genai.SafetySetting {
	result := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		result = append(result, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return result
}

// parseResult converts the first candidate of a Gemini response to ordered
// parts. A response without candidates yields an empty result; deciding that
// no image is a failure is left to the caller.
func parseResult(result *genai.GenerateContentResponse) (*imagegen.GenerateResult, error) {
	if result == nil {
		return &imagegen.GenerateResult{}, nil
	}

	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		if fb.BlockReasonMessage != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrPromptBlocked, fb.BlockReason, fb.BlockReasonMessage)
		}
		return nil, fmt.Errorf("%w: %s", ErrPromptBlocked, fb.BlockReason)
	}

	genResult := &imagegen.GenerateResult{}

	if len(result.Candidates) > 0 {
		candidate := result.Candidates[0]
		genResult.FinishReason = string(candidate.FinishReason)

		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part == nil || part.Thought {
					continue
				}
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					genResult.Parts = append(genResult.Parts, imagegen.ImagePart{
						MIMEType: part.InlineData.MIMEType,
						Data:     part.InlineData.Data,
					})
					continue
				}
				if part.Text != "" {
					genResult.Parts = append(genResult.Parts, imagegen.TextPart{Text: part.Text})
				}
			}
		}
	}

	if result.UsageMetadata != nil {
		genResult.UsageMetadata = &imagegen.UsageMetadata{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CandidatesTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
			ImageCount:       genResult.ImageCount(),
		}
	}

	return genResult, nil
}

// checkRateLimitError checks if an error from the Gemini API is a rate limit error.
// If so, it wraps it in a RateLimitError; otherwise it returns nil.
func checkRateLimitError(err error, model string) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}

	if apiErr.Code != 429 && apiErr.Status != "RESOURCE_EXHAUSTED" {
		return nil
	}

	return &imagegen.RateLimitError{
		RetryAfter: 60 * time.Second, // API doesn't reliably provide Retry-After
		LimitType:  imagegen.LimitRemoteQuota,
		Model:      model,
		Err:        err,
	}
}
