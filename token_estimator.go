package imagegen

import (
	"math"
	"unicode/utf8"
)

// ImageOutputTokens is what a single 1024px image output is billed as.
const ImageOutputTokens = 1290

// TokenEstimator estimates the prompt tokens of a request for rate limiting.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// CharTokenEstimator approximates tokens from the rune count.
type CharTokenEstimator struct {
	CharsPerToken float64
	SafetyMargin  float64
}

// NewCharTokenEstimator returns an estimator tuned for English prompts with a
// 20% margin. CJK prompts are overestimated, which errs on the safe side.
func NewCharTokenEstimator() *CharTokenEstimator {
	return &CharTokenEstimator{
		CharsPerToken: 4,
		SafetyMargin:  1.2,
	}
}

func (e *CharTokenEstimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	perToken := e.CharsPerToken
	if perToken <= 0 {
		perToken = 4
	}
	estimate := float64(utf8.RuneCountInString(text)) / perToken * e.SafetyMargin
	return int(math.Ceil(estimate))
}

// EstimateRequestTokens adds the fixed cost of one generated image to the
// prompt estimate.
func EstimateRequestTokens(e TokenEstimator, prompt string) int {
	return e.EstimateTokens(prompt) + ImageOutputTokens
}
