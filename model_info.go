package imagegen

// ModelCapabilities describes what features a model supports.
type ModelCapabilities struct {
	SupportsTextToImage bool
	SupportsThinking    bool // Reasoning/thinking mode

	// MaxOutputImages generated per request
	MaxOutputImages int
}

// RateLimits defines rate limiting parameters for a model.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
	TokensPerDay      int // 0 = unlimited
}

// Pricing defines cost information for a model.
type Pricing struct {
	InputTokensPerMillion  float64
	OutputTokensPerMillion float64
}

// ModelInfo contains complete metadata for a model.
type ModelInfo struct {
	// Identity
	Name         string   // Public model name (e.g., "nano-banana-1")
	Provider     Provider // Which provider serves this model
	APIModelName string   // Actual API name (e.g., "gemini-2.5-flash-image")

	Capabilities ModelCapabilities

	SupportedAspectRatios []AspectRatio

	RateLimits RateLimits

	Pricing Pricing
}

// SupportsAspectRatio reports whether the model accepts ratio. A model that
// lists no ratios accepts all of SupportedAspectRatios.
func (mi *ModelInfo) SupportsAspectRatio(ratio AspectRatio) bool {
	if len(mi.SupportedAspectRatios) == 0 {
		return ratio.Valid()
	}
	for _, r := range mi.SupportedAspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}
