package synth

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/codervisor/combo-skills/internal/compiler/modifier"
)

// ProviderTemplate names the offline template synthesizer in artifact metadata.
const ProviderTemplate = "template"

const skillTemplate = `---
{{ frontmatter . }}---

# {{ title .Definition.Name }}

{{ .Definition.Description }}

## When to use

{{ .Definition.Intent }}

## Steps
{{ range $i, $key := .ExecutionOrder }}
{{ inc $i }}. **{{ $key }}**{{ with component $ $key }}{{ if .Description }}: {{ .Description }}{{ end }}{{ if not .Resolved }} _(unresolved)_{{ end }}{{ end }}{{ with index $.ComponentModifiers $key }}
   - modifiers: {{ modifiers . }}{{ end }}{{ end }}
{{ if .Modifiers }}
## Behavior

Applies to every step: {{ modifiers .Modifiers }}.
{{ end }}{{ with .Definition.Constraints.Assumptions }}
## Assumptions
{{ range . }}
- {{ . }}{{ end }}
{{ end }}{{ with .Definition.Constraints.DataFlow }}
## Data flow
{{ range . }}
- {{ .From }} → {{ .To }}{{ if .Field }} ({{ .Field }}){{ end }}{{ end }}
{{ end }}`

const exampleTemplate = `# Example: {{ .Definition.Name }}

Request:

> {{ .Definition.Intent }}

Run {{ join .ExecutionOrder " → " }} in order and return the result of the last step.
`

var templateFuncs = template.FuncMap{
	"frontmatter": renderFrontmatter,
	"title":       titleCase,
	"inc":         func(i int) int { return i + 1 },
	"join":        strings.Join,
	"component": func(in *Composition, key string) any {
		if rc, ok := in.Component(key); ok {
			return rc
		}
		return nil
	},
	"modifiers": formatModifiers,
}

// TemplateSynthesizer renders artifacts from fixed text templates. It needs
// no network access.
type TemplateSynthesizer struct {
	skill   *template.Template
	example *template.Template
	now     func() time.Time
	newID   func() string
}

// NewTemplateSynthesizer parses the built-in templates.
func NewTemplateSynthesizer() *TemplateSynthesizer {
	return &TemplateSynthesizer{
		skill:   template.Must(template.New("skill").Funcs(templateFuncs).Parse(skillTemplate)),
		example: template.Must(template.New("example").Funcs(templateFuncs).Parse(exampleTemplate)),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Synthesize implements Synthesizer.
func (s *TemplateSynthesizer) Synthesize(ctx context.Context, in *Composition) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := s.render(s.skill, in)
	if err != nil {
		return nil, err
	}
	example, err := s.render(s.example, in)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Name:     in.Definition.Name,
		Version:  in.Definition.Version,
		Body:     body,
		Examples: []Example{{Title: "basic", Body: example}},
		Metadata: generationMetadata(in, s.newID(), s.now(), ProviderTemplate, ""),
	}, nil
}

func (s *TemplateSynthesizer) render(t *template.Template, in *Composition) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// skillFrontmatter is the YAML header of a skill document.
type skillFrontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Version     string   `yaml:"version,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	License     string   `yaml:"license,omitempty"`
}

func renderFrontmatter(in *Composition) (string, error) {
	def := in.Definition
	out, err := yaml.Marshal(skillFrontmatter{
		Name:        def.Name,
		Description: def.Description,
		Version:     def.Version,
		Tags:        def.Metadata.Tags,
		License:     def.Metadata.License,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func titleCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func formatModifiers(mods []modifier.ParsedModifier) string {
	parts := make([]string, 0, len(mods))
	for _, pm := range mods {
		text, err := modifier.Format(pm)
		if err != nil {
			text = string(pm.Kind)
		}
		parts = append(parts, "`"+text+"`")
	}
	return strings.Join(parts, ", ")
}
