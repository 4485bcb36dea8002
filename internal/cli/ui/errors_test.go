package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestFormatError(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
		excludes []string
	}{
		{
			name: "context and problem",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "unknown modifier",
				Problem: "No modifier kind named 'retri'.",
			},
			contains: []string{"❌", "UNKNOWN MODIFIER", "No modifier kind named 'retri'."},
			excludes: []string{"Did you mean"},
		},
		{
			name: "suggestions",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Problem:     "bad",
				Suggestions: []string{"retry", "batch"},
			},
			contains: []string{"Did you mean: retry, batch?"},
		},
		{
			name: "help commands",
			opts: ErrorOptions{
				Level:        ErrorLevelError,
				Problem:      "bad",
				HelpCommands: []string{"List modifiers: combo modifiers"},
			},
			contains: []string{"→ List modifiers: combo modifiers"},
		},
		{
			name: "consequence",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Problem:     "bad",
				Consequence: "nothing was written",
			},
			contains: []string{"nothing was written"},
		},
		{
			name:     "warning",
			opts:     ErrorOptions{Level: ErrorLevelWarning, Problem: "careful"},
			contains: []string{"⚠️", "careful"},
			excludes: []string{"❌"},
		},
		{
			name:     "info",
			opts:     ErrorOptions{Level: ErrorLevelInfo, Problem: "fyi"},
			contains: []string{"ℹ️", "fyi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			out := FormatError(tt.opts)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestWriters(t *testing.T) {
	var buf bytes.Buffer

	WriteSuccess(&buf, "artifact written", true)
	WriteWarning(&buf, "skill unresolved", true)
	WriteInfo(&buf, "using offline resolver", true)
	WriteError(&buf, ErrorOptions{Problem: "boom", NoColor: true})

	out := buf.String()
	assert.Contains(t, out, "✓ artifact written")
	assert.Contains(t, out, "⚠️ skill unresolved")
	assert.Contains(t, out, "ℹ️ using offline resolver")
	assert.Contains(t, out, "❌ boom")
}

func TestCannedMessages(t *testing.T) {
	out := UnknownModifierError("retri", []string{"retry"}, true)
	assert.Contains(t, out, "UNKNOWN MODIFIER")
	assert.Contains(t, out, "'retri'")
	assert.Contains(t, out, "Did you mean: retry?")
	assert.Contains(t, out, "combo modifiers")

	out = DefinitionError("skill.yaml", errors.New("yaml: line 3: mapping values are not allowed"), true)
	assert.Contains(t, out, "INVALID DEFINITION")
	assert.Contains(t, out, "skill.yaml")
	assert.Contains(t, out, "line 3")
	assert.Contains(t, out, "combo init")

	out = CompilationError("2 error(s)", nil, true)
	assert.Contains(t, out, "COMPILATION FAILED")
	assert.Contains(t, out, "combo validate")

	out = ConfigError("cache.backend must be one of memory, redis, none", true)
	assert.Contains(t, out, "CONFIGURATION ERROR")
	assert.Contains(t, out, "combo.yaml")
}
