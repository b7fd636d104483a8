package imagegen

import (
	"time"
)

// Model represents a specific image generation model.
type Model string

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio3x4  AspectRatio = "3:4" // Portrait
	AspectRatio4x3  AspectRatio = "4:3" // Standard
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio16x9 AspectRatio = "16:9"
)

// SupportedAspectRatios lists every aspect ratio a request may select.
var SupportedAspectRatios = []AspectRatio{
	AspectRatio1x1,
	AspectRatio4x3,
	AspectRatio3x4,
	AspectRatio16x9,
	AspectRatio9x16,
}

// GenerateConfig holds configuration options for image generation.
type GenerateConfig struct {
	// Model to use for generation (if empty, uses manager's default)
	Model Model

	// AspectRatio of the output image
	AspectRatio AspectRatio

	// Temperature controls randomness (0.0-2.0)
	Temperature *float32

	// SafetySettings for content filtering
	SafetySettings []SafetySetting

	// Metadata to attach to requests (for logging/tracking)
	Metadata map[string]string

	// WaitOnRateLimit, if true, causes the Manager to wait when rate limited.
	// If false, a RateLimitError is returned immediately.
	WaitOnRateLimit bool

	// MaxWaitDuration is the maximum time to wait when WaitOnRateLimit is true.
	// Zero means no limit.
	MaxWaitDuration time.Duration
}

// WithModel returns a copy of the config with the specified model.
func (c *GenerateConfig) WithModel(model Model) *GenerateConfig {
	if c == nil {
		return &GenerateConfig{Model: model}
	}
	cX := *c
	cX.Model = model
	return &cX
}

// DefaultConfig returns a GenerateConfig with sensible defaults. The model is
// left empty so the manager's default applies.
func DefaultConfig() *GenerateConfig {
	return &GenerateConfig{
		AspectRatio: AspectRatio1x1,
	}
}

// String returns the string representation for API calls.
func (a AspectRatio) String() string {
	return string(a)
}

// Valid reports whether a is one of SupportedAspectRatios.
func (a AspectRatio) Valid() bool {
	for _, r := range SupportedAspectRatios {
		if a == r {
			return true
		}
	}
	return false
}

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}
