package errors

import (
	"fmt"
	"strings"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// FormatForTerminal formats a CompilerError for terminal output with ANSI colors
func (e CompilerError) FormatForTerminal() string {
	var sb strings.Builder

	severityColor := getSeverityColor(e.Severity)
	sb.WriteString(fmt.Sprintf("%s%s[%s]%s: %s\n",
		colorBold+severityColor,
		capitalize(e.Severity.String()),
		e.Code,
		colorReset,
		e.Message))

	if loc := e.Location.String(); loc != "" {
		sb.WriteString(fmt.Sprintf("  %s-->%s %s\n", colorCyan, colorReset, loc))
	}

	if e.Phase != "" {
		sb.WriteString(fmt.Sprintf("  %sphase: %s%s\n", colorGray, e.Phase, colorReset))
	}

	if e.Suggestion != nil {
		sb.WriteString(formatSuggestion(*e.Suggestion))
	}

	return sb.String()
}

// formatSuggestion formats a fix suggestion
func formatSuggestion(suggestion FixSuggestion) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%sHelp:%s %s\n",
		colorBold+colorCyan,
		colorReset,
		suggestion.Description))

	if len(suggestion.Candidates) > 0 {
		sb.WriteString(fmt.Sprintf("  %sDid you mean: %s?%s\n",
			colorYellow,
			strings.Join(suggestion.Candidates, ", "),
			colorReset))
	}

	return sb.String()
}

// getSeverityColor returns the ANSI color for a severity level
func getSeverityColor(severity Severity) string {
	switch severity {
	case Info:
		return colorBlue
	case Warning:
		return colorYellow
	case Error:
		return colorRed
	case Fatal:
		return colorRed + colorBold
	default:
		return colorReset
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatSummary formats a summary of errors and warnings
func FormatSummary(errorCount, warningCount int) string {
	var parts []string

	if errorCount > 0 {
		parts = append(parts, fmt.Sprintf("%s%d error(s)%s",
			colorRed,
			errorCount,
			colorReset))
	}

	if warningCount > 0 {
		parts = append(parts, fmt.Sprintf("%s%d warning(s)%s",
			colorYellow,
			warningCount,
			colorReset))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%sNo errors or warnings%s\n", colorBlue, colorReset)
	}

	if errorCount == 0 {
		return fmt.Sprintf("\n%sCompiled with %s%s\n", colorBold, strings.Join(parts, " and "), colorReset)
	}

	return fmt.Sprintf("\n%sCompilation failed with %s%s\n",
		colorBold,
		strings.Join(parts, " and "),
		colorReset)
}

// StripColors removes ANSI color codes from a string (useful for testing)
func StripColors(s string) string {
	result := s
	for strings.Contains(result, "\033[") {
		start := strings.Index(result, "\033[")
		end := strings.Index(result[start:], "m")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+1:]
	}
	return result
}
