package definition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/codervisor/combo-skills/compiler/errors"
	"github.com/codervisor/combo-skills/internal/compiler/modifier"
)

const sampleYAML = `
name: research-digest
description: Fetch pages, extract findings, summarize
version: 1.2.0
categories: [fetch, transform]
modifiers:
  - log:info
skills:
  - name: web-fetch
    source: community
    version: ^2.1
    categories: [fetch]
    modifiers:
      - retry:3
      - timeout: { duration: 30s }
  - name: html-parse
    alias: parse
  - name: summarize
intent: Produce a digest of the findings on a topic
constraints:
  order:
    - web-fetch -> parse -> summarize
  assumptions:
    - pages are public
  dataflow:
    - from: web-fetch
      to: parse
      field: html
metadata:
  author: docs-team
  tags: [research]
  license: MIT
`

func TestParse_YAML(t *testing.T) {
	def, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "research-digest", def.Name)
	assert.Equal(t, "1.2.0", def.Version)
	require.Len(t, def.Skills, 3)
	assert.Equal(t, []string{"web-fetch", "parse", "summarize"}, def.Keys())
	assert.Equal(t, "community", def.Skills[0].Registry())
	assert.Equal(t, DefaultSource, def.Skills[1].Registry())
	assert.Equal(t, []modifier.Category{modifier.CategoryFetch}, def.Skills[0].CategoryList())

	require.Len(t, def.Skills[0].Modifiers, 2)
	assert.Equal(t, "retry:3", def.Skills[0].Modifiers[0].String())
	assert.IsType(t, modifier.StructuredModifier{}, def.Skills[0].Modifiers[1].Declaration)

	assert.Equal(t, []string{"web-fetch -> parse -> summarize"}, def.Constraints.Order)
	assert.Equal(t, "html", def.Constraints.DataFlow[0].Field)
	assert.Equal(t, "MIT", def.Metadata.License)
	assert.True(t, def.HasModifiers())

	assert.Empty(t, Validate(def))
	assert.Empty(t, CheckDataFlow(def))
}

func TestParse_JSON(t *testing.T) {
	src := `{
		"name": "lookup",
		"description": "Search then store",
		"skills": [{"name": "search", "modifiers": ["cache:5m"]}, {"name": "store"}],
		"intent": "Look things up"
	}`

	def, err := Parse([]byte(src), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"search", "store"}, def.Keys())
	assert.Equal(t, "cache:5m", def.Skills[0].Modifiers[0].String())
}

func TestParse_AutoFallsBackToJSON(t *testing.T) {
	// The YAML decoder rejects repeated keys, the JSON decoder keeps the last one.
	src := `{"name": "x", "name": "y", "description": "d", "skills": [{"name": "a"}], "intent": "i"}`

	def, err := Parse([]byte(src), FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, "y", def.Name)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("   \n"), FormatAuto)
	assert.ErrorIs(t, err, ErrEmptyDefinition)

	_, err = Parse([]byte("name: [unterminated"), FormatYAML)
	assert.Error(t, err)

	_, err = Parse([]byte("{not json"), FormatJSON)
	assert.Error(t, err)
}

func TestLoad_DetectsFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "digest.combo.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	def, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "research-digest", def.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("a.YAML"))
	assert.Equal(t, FormatYAML, DetectFormat("a.yml"))
	assert.Equal(t, FormatJSON, DetectFormat("a.json"))
	assert.Equal(t, FormatAuto, DetectFormat("a.combo"))
}

func TestMarshal_RoundTrip(t *testing.T) {
	def, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatJSON} {
		data, err := Marshal(def, format)
		require.NoError(t, err)

		again, err := Parse(data, format)
		require.NoError(t, err)
		assert.Equal(t, def.Keys(), again.Keys())
		assert.Equal(t, def.Skills[0].Modifiers[0].String(), again.Skills[0].Modifiers[0].String())
	}
}

func TestComponentReference_Key(t *testing.T) {
	assert.Equal(t, "fetch", ComponentReference{Name: "fetch"}.Key())
	assert.Equal(t, "primary", ComponentReference{Name: "fetch", Alias: "primary"}.Key())
}

func validDefinition() *Composition {
	return &Composition{
		Name:        "digest",
		Description: "desc",
		Intent:      "intent",
		Skills:      []ComponentReference{{Name: "fetch"}, {Name: "parse"}},
	}
}

func codes(errs []cerrors.CompilerError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestValidate_RequiredFields(t *testing.T) {
	errs := Validate(&Composition{})

	assert.ElementsMatch(t,
		[]string{cerrors.ErrMissingRequired, cerrors.ErrMissingRequired, cerrors.ErrEmptyComponentList, cerrors.ErrMissingRequired},
		codes(errs))

	paths := make([]string, 0, len(errs))
	for _, e := range errs {
		paths = append(paths, e.Location.Path)
		assert.Equal(t, cerrors.PhaseDefinition, e.Phase)
	}
	assert.ElementsMatch(t, []string{"name", "description", "skills", "intent"}, paths)
}

func TestValidate_SkillName(t *testing.T) {
	def := validDefinition()
	def.Skills = append(def.Skills, ComponentReference{Alias: "anon"})

	errs := Validate(def)
	require.Len(t, errs, 1)
	assert.Equal(t, cerrors.ErrMissingRequired, errs[0].Code)
	assert.Equal(t, "skills[2].name", errs[0].Location.Path)
}

func TestValidate_Versions(t *testing.T) {
	def := validDefinition()
	def.Version = "one"
	def.Skills[0].Version = "latest"

	errs := Validate(def)
	assert.Equal(t, []string{cerrors.ErrInvalidVersion, cerrors.ErrInvalidVersion}, codes(errs))
	assert.Equal(t, "skills[0].version", errs[1].Location.Path)
}

func TestValidate_UnknownCategory(t *testing.T) {
	def := validDefinition()
	def.Skills[1].Categories = []string{"transform", "fecth"}

	errs := Validate(def)
	require.Len(t, errs, 1)
	assert.Equal(t, cerrors.ErrUnknownCategory, errs[0].Code)
	assert.Equal(t, "skills[1].categories[1]", errs[0].Location.Path)
	require.NotNil(t, errs[0].Suggestion)
	assert.Contains(t, errs[0].Suggestion.Candidates, "fetch")
}

func TestValidate_DuplicateIdentityKeys(t *testing.T) {
	def := validDefinition()
	def.Skills = append(def.Skills, ComponentReference{Name: "fetch"}, ComponentReference{Name: "fetch", Alias: "mirror"})

	errs := Validate(def)
	require.Len(t, errs, 1)
	assert.Equal(t, cerrors.ErrDuplicateIdentity, errs[0].Code)
	assert.Contains(t, errs[0].Message, `"fetch"`)
}

func TestValidate_Nil(t *testing.T) {
	errs := Validate(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, cerrors.ErrMalformedDefinition, errs[0].Code)
}

func TestCheckDataFlow(t *testing.T) {
	def := validDefinition()
	def.Constraints.DataFlow = []DataFlowMapping{{From: "fetch", To: "parse"}, {From: "fetch", To: "ghost"}}

	warnings := CheckDataFlow(def)
	require.Len(t, warnings, 1)
	assert.True(t, warnings[0].IsWarning())
	assert.Equal(t, cerrors.WarnDataFlowReference, warnings[0].Code)
	assert.Contains(t, warnings[0].Message, "ghost")
}
