package session

import (
	"strings"

	"github.com/hjstudio/imagegen"
)

// DefaultAspectRatio is used when GenerationParams leaves AspectRatio empty.
const DefaultAspectRatio = imagegen.AspectRatio1x1

// GenerationParams is one prompt submission.
type GenerationParams struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    imagegen.AspectRatio
}

// Validate checks that the prompt is non-empty after trimming and that the
// aspect ratio is supported.
func (p GenerationParams) Validate() error {
	if err := imagegen.ValidatePrompt(p.Prompt); err != nil {
		return err
	}
	return imagegen.ValidateAspectRatio(p.ratio())
}

// Instruction is the text sent to the model: the prompt, followed by an avoid
// clause when a negative prompt is set.
func (p GenerationParams) Instruction() string {
	negative := strings.TrimSpace(p.NegativePrompt)
	if negative == "" {
		return p.Prompt
	}
	return p.Prompt + "\n\n[Avoid: " + negative + "]"
}

func (p GenerationParams) ratio() imagegen.AspectRatio {
	if p.AspectRatio == "" {
		return DefaultAspectRatio
	}
	return p.AspectRatio
}
