package gemini

import "github.com/hjstudio/imagegen"

// studioAspectRatios are the ratios both models accept that the studio offers.
var studioAspectRatios = []imagegen.AspectRatio{
	imagegen.AspectRatio1x1,
	imagegen.AspectRatio4x3,
	imagegen.AspectRatio3x4,
	imagegen.AspectRatio16x9,
	imagegen.AspectRatio9x16,
}

// NanoBanana1Info is the model info for Gemini 2.5 Flash Image (nano-banana-1),
// the default model.
var NanoBanana1Info = imagegen.ModelInfo{
	Name:         string(imagegen.ModelNanoBanana1),
	Provider:     imagegen.ProviderGeminiAPI,
	APIModelName: APIModelNanoBanana1,

	Capabilities: imagegen.ModelCapabilities{
		SupportsTextToImage: true,
		SupportsThinking:    false,
		MaxOutputImages:     1,
	},

	SupportedAspectRatios: studioAspectRatios,

	RateLimits: imagegen.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 500, // ~500 RPM for Tier 1
		TokensPerDay:      1000000000,
	},

	// Image output is billed at 1290 tokens per 1024px image.
	Pricing: imagegen.Pricing{
		InputTokensPerMillion:  0.30,
		OutputTokensPerMillion: 30.00,
	},
}

// NanoBanana2Info is the model info for Gemini 3 Pro Image (nano-banana-2).
var NanoBanana2Info = imagegen.ModelInfo{
	Name:         string(imagegen.ModelNanoBanana2),
	Provider:     imagegen.ProviderGeminiAPI,
	APIModelName: APIModelNanoBanana2,

	Capabilities: imagegen.ModelCapabilities{
		SupportsTextToImage: true,
		SupportsThinking:    true,
		MaxOutputImages:     1,
	},

	SupportedAspectRatios: studioAspectRatios,

	RateLimits: imagegen.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 360,
		TokensPerDay:      1000000000,
	},

	Pricing: imagegen.Pricing{
		InputTokensPerMillion:  2.00,
		OutputTokensPerMillion: 12.00,
	},
}
