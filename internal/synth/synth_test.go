package synth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codervisor/combo-skills/internal/compiler/modifier"
	"github.com/codervisor/combo-skills/internal/definition"
	"github.com/codervisor/combo-skills/internal/llm"
	"github.com/codervisor/combo-skills/internal/registry"
)

func sampleComposition(t *testing.T) *Composition {
	t.Helper()
	retry, err := modifier.ParseCompact("retry:3")
	require.NoError(t, err)
	logInfo, err := modifier.ParseCompact("log:info")
	require.NoError(t, err)

	return &Composition{
		Definition: &definition.Composition{
			Name:        "research-digest",
			Description: "Fetch, parse and summarize pages",
			Version:     "1.0.0",
			Intent:      "Summarize what the web says about a topic",
			Skills:      []definition.ComponentReference{{Name: "web-fetch"}, {Name: "parse"}, {Name: "summarize"}},
			Constraints: definition.Constraints{
				Assumptions: []string{"pages are public"},
				DataFlow:    []definition.DataFlowMapping{{From: "web-fetch", To: "parse", Field: "html"}},
			},
			Metadata: definition.Metadata{Tags: []string{"research"}, License: "MIT"},
		},
		Components: []registry.ResolvedComponent{
			{Key: "web-fetch", Name: "web-fetch", Description: "Fetches a URL", Resolved: true},
			{Key: "parse", Name: "parse", Resolved: false},
			{Key: "summarize", Name: "summarize", Description: "Summarizes text", Resolved: true},
		},
		ExecutionOrder:     []string{"web-fetch", "parse", "summarize"},
		Modifiers:          []modifier.ParsedModifier{logInfo},
		ComponentModifiers: map[string][]modifier.ParsedModifier{"web-fetch": {retry}},
	}
}

func assertWellFormed(t *testing.T, a *Artifact, in *Composition) {
	t.Helper()
	require.NotNil(t, a)
	assert.Equal(t, in.Definition.Name, a.Name)
	assert.NotEmpty(t, a.Body)
	require.NotEmpty(t, a.Examples)
	for _, ex := range a.Examples {
		assert.NotEmpty(t, ex.Title)
		assert.NotEmpty(t, ex.Body)
	}
	_, err := uuid.Parse(a.Metadata.ID)
	assert.NoError(t, err)
	assert.False(t, a.Metadata.GeneratedAt.IsZero())
	assert.Equal(t, in.ExecutionOrder, a.Metadata.ExecutionOrder)
	assert.Equal(t, len(in.Components), a.Metadata.ComponentCount)
	assert.Equal(t, []string{"parse"}, a.Metadata.Unresolved)
}

func TestTemplateSynthesizer_Shape(t *testing.T) {
	in := sampleComposition(t)

	a, err := NewTemplateSynthesizer().Synthesize(context.Background(), in)
	require.NoError(t, err)
	assertWellFormed(t, a, in)

	assert.Equal(t, ProviderTemplate, a.Metadata.Provider)
	assert.Contains(t, a.Body, "name: research-digest")
	assert.Contains(t, a.Body, "# Research Digest")
	assert.Contains(t, a.Body, "1. **web-fetch**: Fetches a URL")
	assert.Contains(t, a.Body, "`retry:3`")
	assert.Contains(t, a.Body, "2. **parse** _(unresolved)_")
	assert.Contains(t, a.Body, "`log:info`")
	assert.Contains(t, a.Body, "- pages are public")
	assert.Contains(t, a.Body, "web-fetch → parse (html)")
	assert.Contains(t, a.Examples[0].Body, "web-fetch → parse → summarize")
}

func TestTemplateSynthesizer_MinimalComposition(t *testing.T) {
	in := &Composition{
		Definition:     &definition.Composition{Name: "solo", Description: "d", Intent: "i"},
		Components:     []registry.ResolvedComponent{{Key: "only", Name: "only", Resolved: true}},
		ExecutionOrder: []string{"only"},
	}

	a, err := NewTemplateSynthesizer().Synthesize(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, a.Body, "1. **only**")
	assert.NotContains(t, a.Body, "## Behavior")
	assert.NotContains(t, a.Body, "## Assumptions")
}

func TestTemplateSynthesizer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTemplateSynthesizer().Synthesize(ctx, sampleComposition(t))
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeClient struct {
	reply    string
	err      error
	requests []llm.Request
}

func (f *fakeClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeClient) Provider() llm.ProviderConfig {
	return llm.ProviderConfig{Type: llm.ProviderClaude, Model: "test-model"}
}

func TestLLMSynthesizer_PassesResolvedOutline(t *testing.T) {
	client := &fakeClient{reply: "```markdown\n---\nname: research-digest\n---\n# Digest\n\nSteps.\n\n## Example: quick lookup\nAsk about Go.\n\n## Example\nAsk about Rust.\n```"}
	in := sampleComposition(t)

	a, err := NewLLMSynthesizer(client, nil).Synthesize(context.Background(), in)
	require.NoError(t, err)
	assertWellFormed(t, a, in)

	require.Len(t, client.requests, 1)
	assert.Equal(t, systemPrompt, client.requests[0].System)
	assert.Contains(t, client.requests[0].Prompt, "web-fetch")
	assert.Contains(t, client.requests[0].Prompt, "`retry:3`")

	assert.Equal(t, "claude", a.Metadata.Provider)
	assert.Equal(t, "test-model", a.Metadata.Model)
	assert.NotContains(t, a.Body, "## Example")
	require.Len(t, a.Examples, 2)
	assert.Equal(t, "quick lookup", a.Examples[0].Title)
	assert.Equal(t, "example-2", a.Examples[1].Title)
}

func TestLLMSynthesizer_FallsBackToDraftExample(t *testing.T) {
	client := &fakeClient{reply: "# Digest\n\nNo examples here."}
	in := sampleComposition(t)

	a, err := NewLLMSynthesizer(client, nil).Synthesize(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, a.Examples, 1)
	assert.Equal(t, "basic", a.Examples[0].Title)
}

func TestLLMSynthesizer_Errors(t *testing.T) {
	in := sampleComposition(t)

	_, err := NewLLMSynthesizer(&fakeClient{reply: "  \n"}, nil).Synthesize(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmptyBody)

	cause := errors.New("quota exceeded")
	_, err = NewLLMSynthesizer(&fakeClient{err: cause}, nil).Synthesize(context.Background(), in)
	assert.ErrorIs(t, err, cause)
}

func TestGenerationMetadata_CopiesOrder(t *testing.T) {
	in := sampleComposition(t)
	md := generationMetadata(in, "id", time.Unix(0, 0), "p", "m")

	md.ExecutionOrder[0] = "changed"
	assert.Equal(t, "web-fetch", in.ExecutionOrder[0])
	assert.Equal(t, time.UTC, md.GeneratedAt.Location())
}
