package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// palette returns the header color, body color and symbol for a level.
func palette(level ErrorLevel) (*color.Color, *color.Color, string) {
	switch level {
	case ErrorLevelWarning:
		return color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "⚠️"
	case ErrorLevelInfo:
		return color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "ℹ️"
	default:
		return color.New(color.FgRed, color.Bold), color.New(color.FgRed), "❌"
	}
}

func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// FormatError renders a message with optional suggestions and help commands.
//
// Example output:
//
//	❌ UNKNOWN MODIFIER: retri
//	   No modifier kind named 'retri'.
//
//	   Did you mean: retry?
//
//	   → List modifiers: combo modifiers
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	header, body, symbol := palette(opts.Level)
	if opts.NoColor {
		header.DisableColor()
		body.DisableColor()
	}

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
		if opts.Problem != "" {
			body.Fprintf(&b, "   %s\n", opts.Problem)
		}
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := paint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// WriteWarning writes a warning message to the writer
func WriteWarning(w io.Writer, message string, noColor bool) {
	fmt.Fprint(w, Warning(message, nil, noColor))
}

// WriteInfo writes an informational message to the writer
func WriteInfo(w io.Writer, message string, noColor bool) {
	fmt.Fprint(w, Info(message, noColor))
}

// UnknownModifierError reports a modifier kind that does not exist
func UnknownModifierError(kind string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:        ErrorLevelError,
		Context:      "UNKNOWN MODIFIER",
		Problem:      fmt.Sprintf("No modifier kind named '%s'.", kind),
		Suggestions:  suggestions,
		HelpCommands: []string{"List modifiers: combo modifiers"},
		NoColor:      noColor,
	})
}

// DefinitionError reports a composition definition that could not be loaded
func DefinitionError(path string, cause error, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "INVALID DEFINITION",
		Problem:     fmt.Sprintf("Cannot load '%s'.", path),
		Consequence: cause.Error(),
		HelpCommands: []string{
			"Scaffold a definition: combo init",
			"Get help: combo validate --help",
		},
		NoColor: noColor,
	})
}

// CompilationError reports a failed compilation
func CompilationError(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "COMPILATION FAILED",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"Check the definition: combo validate <file>",
			"Get help: combo compile --help",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat combo.yaml",
			"Get help: combo --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}
