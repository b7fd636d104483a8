package imagegen

import "context"

// ImageGenerator turns a text instruction into a response that may carry an
// image. Providers and the Manager implement it.
type ImageGenerator interface {
	// Generate makes exactly one model call. The result keeps the response
	// parts in the order the model returned them.
	Generate(ctx context.Context, prompt string, genConfig *GenerateConfig) (*GenerateResult, error)

	// Models lists the models served. The first entry is the default.
	Models() []ModelInfo

	Close() error
}
