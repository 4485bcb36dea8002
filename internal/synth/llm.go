package synth

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codervisor/combo-skills/internal/llm"
)

const systemPrompt = `You write SKILL.md documents for AI agents. A skill document starts with
YAML frontmatter (name, description), followed by Markdown sections that tell an
agent when to use the skill and which steps to run in which order. Finish with at
least one section titled "## Example: <title>" showing a realistic request and the
expected behaviour. Reply with the document only.`

// exampleHeading matches the example sections the model is asked to write.
var exampleHeading = regexp.MustCompile(`(?m)^## Example:?[ \t]*(.*)$`)

// LLMSynthesizer asks a language model to write the skill document. The
// template synthesizer's draft is sent as the outline to expand.
type LLMSynthesizer struct {
	client  llm.Client
	outline *TemplateSynthesizer
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewLLMSynthesizer creates a synthesizer backed by client.
func NewLLMSynthesizer(client llm.Client, logger *zap.Logger) *LLMSynthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMSynthesizer{
		client:  client,
		outline: NewTemplateSynthesizer(),
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Synthesize implements Synthesizer.
func (s *LLMSynthesizer) Synthesize(ctx context.Context, in *Composition) (*Artifact, error) {
	draft, err := s.outline.Synthesize(ctx, in)
	if err != nil {
		return nil, err
	}

	provider := s.client.Provider()
	s.logger.Debug("requesting skill synthesis",
		zap.String("provider", string(provider.Type)),
		zap.String("model", provider.Model),
		zap.String("composition", in.Definition.Name))

	text, err := s.client.Generate(ctx, llm.Request{
		System: systemPrompt,
		Prompt: buildPrompt(draft.Body),
	})
	if err != nil {
		return nil, fmt.Errorf("%s synthesis failed: %w", provider.Type, err)
	}

	text = strings.TrimSpace(stripFence(text))
	if text == "" {
		return nil, ErrEmptyBody
	}

	body, examples := splitExamples(text)
	if len(examples) == 0 {
		examples = draft.Examples
	}

	return &Artifact{
		Name:     in.Definition.Name,
		Version:  in.Definition.Version,
		Body:     body,
		Examples: examples,
		Metadata: generationMetadata(in, s.newID(), s.now(), string(provider.Type), provider.Model),
	}, nil
}

func buildPrompt(outline string) string {
	var b strings.Builder
	b.WriteString("Expand this outline into a complete skill document. Keep the step order, ")
	b.WriteString("the step names and every modifier exactly as given; do not invent new steps.\n\n")
	b.WriteString("<outline>\n")
	b.WriteString(outline)
	b.WriteString("\n</outline>\n")
	return b.String()
}

// stripFence removes a Markdown code fence wrapping the whole reply.
func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return text
	}
	if nl := strings.Index(t, "\n"); nl >= 0 {
		t = t[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}

// splitExamples cuts every "## Example" section out of the body.
func splitExamples(text string) (string, []Example) {
	locs := exampleHeading.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}

	body := strings.TrimSpace(text[:locs[0][0]]) + "\n"
	examples := make([]Example, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		title := strings.TrimSpace(text[loc[2]:loc[3]])
		if title == "" {
			title = fmt.Sprintf("example-%d", i+1)
		}
		examples = append(examples, Example{
			Title: title,
			Body:  strings.TrimSpace(text[loc[0]:end]) + "\n",
		})
	}
	return body, examples
}
