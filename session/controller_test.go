package session

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hjstudio/imagegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Generate_SunsetScenario(t *testing.T) {
	payload := "iVBORw0KGgo"
	gen := &mockGenerator{generateFunc: returning(
		imagegen.TextPart{Text: "Here is your image"},
		pngPart(payload),
	)}
	c := newTestController(gen)

	err := c.Generate(context.Background(), GenerationParams{
		Prompt:         "sunset over mountains",
		NegativePrompt: "blurry",
		AspectRatio:    imagegen.AspectRatio16x9,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.Calls())
	assert.Contains(t, gen.lastPrompt, "sunset over mountains")
	assert.Contains(t, gen.lastPrompt, "[Avoid: blurry]")
	assert.Equal(t, imagegen.AspectRatio16x9, gen.lastConfig.AspectRatio)

	s := c.State()
	require.NotNil(t, s.Current)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte(payload)), s.Current.URL)
	assert.Equal(t, "sunset over mountains", s.Current.Prompt, "history keeps the positive prompt only")
	assert.Equal(t, fixedTime, s.Current.Timestamp)
	assert.Equal(t, "img-1", s.Current.ID)
	require.Len(t, s.History, 1)
	assert.Equal(t, s.Current.ID, s.History[0].ID)
	assert.False(t, s.IsGenerating)
	assert.Empty(t, s.Err)
}

func TestController_Generate_EmptyNegativeSendsPromptUnchanged(t *testing.T) {
	gen := &mockGenerator{generateFunc: returning(pngPart("x"))}
	c := newTestController(gen)

	require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: "winter sunshine"}))
	assert.Equal(t, "winter sunshine", gen.lastPrompt)
	assert.Equal(t, DefaultAspectRatio, gen.lastConfig.AspectRatio)
}

func TestController_Generate_UsesConfiguredModel(t *testing.T) {
	gen := &mockGenerator{generateFunc: returning(pngPart("x"))}
	c := newTestController(gen, WithModel(imagegen.ModelNanoBanana2), WithWaitOnRateLimit(time.Second))

	require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: "a cat"}))
	assert.Equal(t, imagegen.ModelNanoBanana2, gen.lastConfig.Model)
	assert.True(t, gen.lastConfig.WaitOnRateLimit)
	assert.Equal(t, time.Second, gen.lastConfig.MaxWaitDuration)
}

func TestController_Generate_FirstImageWins(t *testing.T) {
	gen := &mockGenerator{generateFunc: returning(
		imagegen.ImagePart{MIMEType: "image/jpeg", Data: []byte("first")},
		pngPart("second"),
	)}
	c := newTestController(gen)

	require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: "a cat"}))
	assert.Equal(t, imagegen.EncodeDataURL("image/jpeg", []byte("first")), c.State().Current.URL)
}

func TestController_Generate_NoImage(t *testing.T) {
	tests := []struct {
		name  string
		parts []imagegen.Part
	}{
		{name: "zero parts"},
		{name: "text only", parts: []imagegen.Part{imagegen.TextPart{Text: "I can't draw that"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{generateFunc: returning(pngPart("first"))}
			c := newTestController(gen)
			require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: "a cat"}))
			before := c.State()

			gen.generateFunc = returning(tt.parts...)
			err := c.Generate(context.Background(), GenerationParams{Prompt: "a dog"})

			assert.ErrorIs(t, err, imagegen.ErrNoImage)
			after := c.State()
			assert.Equal(t, before.History, after.History)
			assert.Equal(t, before.Current, after.Current)
			assert.Equal(t, imagegen.ErrNoImage.Error(), after.Err)
			assert.False(t, after.IsGenerating)
		})
	}
}

func TestController_Generate_GeneratorFailure(t *testing.T) {
	apiErr := errors.New("API key not valid")
	gen := &mockGenerator{generateFunc: returning(pngPart("ok"))}
	c := newTestController(gen)
	require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: "a cat"}))
	before := c.State()

	gen.generateFunc = func(context.Context, string, *imagegen.GenerateConfig) (*imagegen.GenerateResult, error) {
		return nil, apiErr
	}
	err := c.Generate(context.Background(), GenerationParams{Prompt: "a dog"})

	assert.ErrorIs(t, err, apiErr)
	after := c.State()
	assert.Equal(t, "API key not valid", after.Err)
	assert.Equal(t, before.History, after.History)
	assert.Equal(t, before.Current, after.Current)
	assert.False(t, after.IsGenerating)

	// The session stays usable and the next submission clears the error.
	gen.generateFunc = returning(pngPart("again"))
	require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: "a bird"}))
	assert.Empty(t, c.State().Err)
}

type silentError struct{}

func (silentError) Error() string { return "" }

func TestController_Generate_FallbackMessage(t *testing.T) {
	gen := &mockGenerator{generateFunc: func(context.Context, string, *imagegen.GenerateConfig) (*imagegen.GenerateResult, error) {
		return nil, silentError{}
	}}
	c := newTestController(gen)

	assert.Error(t, c.Generate(context.Background(), GenerationParams{Prompt: "a cat"}))
	assert.Equal(t, FallbackErrorMessage, c.State().Err)
}

func TestController_Generate_Ordering(t *testing.T) {
	gen := &mockGenerator{generateFunc: returning(pngPart("x"))}
	c := newTestController(gen)

	prompts := []string{"one", "two", "three"}
	for _, p := range prompts {
		require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: p}))
	}

	s := c.State()
	require.Len(t, s.History, len(prompts))
	assert.Equal(t, "three", s.History[0].Prompt)
	assert.Equal(t, "img-3", s.History[0].ID)
	assert.Equal(t, "one", s.History[2].Prompt)
	assert.Equal(t, "img-3", s.CurrentID())
	assert.Equal(t, len(prompts), gen.Calls(), "exactly one call per submission")
}

func TestController_Generate_InvalidParams(t *testing.T) {
	gen := &mockGenerator{}
	var seen []State
	c := newTestController(gen, WithObserver(func(s State) { seen = append(seen, s) }))

	assert.ErrorIs(t, c.Generate(context.Background(), GenerationParams{Prompt: " "}), imagegen.ErrEmptyPrompt)
	assert.ErrorIs(t, c.Generate(context.Background(), GenerationParams{Prompt: "a", AspectRatio: "2:3"}), imagegen.ErrInvalidAspectRatio)

	assert.Zero(t, gen.Calls())
	assert.Empty(t, seen)
	assert.Equal(t, State{}, c.State())
}

func TestController_Generate_RejectsWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gen := &mockGenerator{generateFunc: func(ctx context.Context, _ string, _ *imagegen.GenerateConfig) (*imagegen.GenerateResult, error) {
		close(started)
		<-release
		return &imagegen.GenerateResult{Parts: []imagegen.Part{pngPart("x")}}, nil
	}}
	c := newTestController(gen)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = c.Generate(context.Background(), GenerationParams{Prompt: "first"})
	}()

	<-started
	assert.True(t, c.State().IsGenerating)

	err := c.Generate(context.Background(), GenerationParams{Prompt: "second"})
	assert.ErrorIs(t, err, ErrGenerationInFlight)
	assert.True(t, c.State().IsGenerating, "rejection leaves the in-flight request alone")

	close(release)
	wg.Wait()

	require.NoError(t, firstErr)
	assert.Equal(t, 1, gen.Calls())
	s := c.State()
	assert.False(t, s.IsGenerating)
	require.Len(t, s.History, 1)
	assert.Equal(t, "first", s.History[0].Prompt)
}

func blockUntilDone(ctx context.Context, _ string, _ *imagegen.GenerateConfig) (*imagegen.GenerateResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestController_Cancel(t *testing.T) {
	gen := &mockGenerator{generateFunc: blockUntilDone}
	generating := make(chan struct{}, 1)
	c := newTestController(gen, WithObserver(func(s State) {
		if s.IsGenerating {
			generating <- struct{}{}
		}
	}))

	assert.False(t, c.Cancel(), "nothing to cancel while idle")

	done := make(chan error, 1)
	go func() {
		done <- c.Generate(context.Background(), GenerationParams{Prompt: "a cat"})
	}()

	<-generating
	assert.True(t, c.Cancel())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		s := c.State()
		assert.False(t, s.IsGenerating)
		assert.Contains(t, s.Err, "cancelled")
		assert.Empty(t, s.History)
	case <-time.After(5 * time.Second):
		t.Fatal("Generate did not return after Cancel")
	}
}

func TestController_Timeout(t *testing.T) {
	gen := &mockGenerator{generateFunc: blockUntilDone}
	c := newTestController(gen, WithTimeout(20*time.Millisecond))

	err := c.Generate(context.Background(), GenerationParams{Prompt: "a cat"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	s := c.State()
	assert.Contains(t, s.Err, "timed out")
	assert.False(t, s.IsGenerating)
}

func TestController_Select(t *testing.T) {
	gen := &mockGenerator{generateFunc: returning(pngPart("x"))}
	var notified int
	c := newTestController(gen, WithObserver(func(State) { notified++ }))
	ctx := context.Background()

	require.NoError(t, c.Generate(ctx, GenerationParams{Prompt: "one"}))
	require.NoError(t, c.Generate(ctx, GenerationParams{Prompt: "two"}))
	older := c.State().History[1]

	require.NoError(t, c.Select(older))
	afterFirst := c.State()
	assert.Equal(t, older.ID, afterFirst.CurrentID())

	require.NoError(t, c.Select(older))
	assert.Equal(t, afterFirst, c.State(), "selecting the same entry twice is idempotent")

	before := notified
	err := c.Select(GeneratedImage{ID: "not-there"})
	assert.ErrorIs(t, err, ErrUnknownImage)
	assert.Equal(t, afterFirst, c.State())
	assert.Equal(t, before, notified, "rejected selections do not notify")
}

func TestController_ObserverSeesLifecycle(t *testing.T) {
	gen := &mockGenerator{generateFunc: returning(pngPart("x"))}
	var seen []State
	c := newTestController(gen, WithObserver(func(s State) { seen = append(seen, s) }))

	require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: "a cat"}))

	require.Len(t, seen, 2)
	assert.True(t, seen[0].IsGenerating)
	assert.Nil(t, seen[0].Current)
	assert.False(t, seen[1].IsGenerating)
	assert.NotNil(t, seen[1].Current)
}

func TestController_StateIsASnapshot(t *testing.T) {
	gen := &mockGenerator{generateFunc: returning(pngPart("x"))}
	c := newTestController(gen)
	require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: "a cat"}))

	s := c.State()
	s.History[0].Prompt = "mutated"
	s.Current.Prompt = "mutated"

	fresh := c.State()
	assert.Equal(t, "a cat", fresh.History[0].Prompt)
	assert.Equal(t, "a cat", fresh.Current.Prompt)
}

func TestNewController_DefaultIDsAreUUIDs(t *testing.T) {
	gen := &mockGenerator{generateFunc: returning(pngPart("x"))}
	c := NewController(gen)

	require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: "a cat"}))
	require.NoError(t, c.Generate(context.Background(), GenerationParams{Prompt: "a dog"}))

	s := c.State()
	assert.Len(t, s.History[0].ID, 36)
	assert.NotEqual(t, s.History[0].ID, s.History[1].ID)
}
