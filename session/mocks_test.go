package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hjstudio/imagegen"
)

// mockGenerator records calls and delegates to generateFunc.
type mockGenerator struct {
	mu           sync.Mutex
	calls        int
	lastPrompt   string
	lastConfig   *imagegen.GenerateConfig
	generateFunc func(ctx context.Context, prompt string, config *imagegen.GenerateConfig) (*imagegen.GenerateResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, config *imagegen.GenerateConfig) (*imagegen.GenerateResult, error) {
	m.mu.Lock()
	m.calls++
	m.lastPrompt = prompt
	m.lastConfig = config
	fn := m.generateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt, config)
	}
	return &imagegen.GenerateResult{}, nil
}

func (m *mockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func returning(parts ...imagegen.Part) func(context.Context, string, *imagegen.GenerateConfig) (*imagegen.GenerateResult, error) {
	return func(context.Context, string, *imagegen.GenerateConfig) (*imagegen.GenerateResult, error) {
		return &imagegen.GenerateResult{Parts: parts}, nil
	}
}

func pngPart(payload string) imagegen.ImagePart {
	return imagegen.ImagePart{MIMEType: "image/png", Data: []byte(payload)}
}

// sequentialIDs yields img-1, img-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("img-%d", n)
	}
}

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func newTestController(gen Generator, opts ...Option) *Controller {
	base := []Option{WithIDGenerator(sequentialIDs()), WithClock(fixedClock)}
	return NewController(gen, append(base, opts...)...)
}
