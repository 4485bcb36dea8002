package errors

import (
	"fmt"
	"strings"
)

// MaxErrors is the maximum number of errors to collect before stopping
const MaxErrors = 100

// Collector accumulates errors and warnings across compilation stages.
// Errors and warnings keep their insertion order.
type Collector struct {
	errors   []CompilerError
	warnings []CompilerError
	maxCount int
}

// NewCollector creates a new Collector
func NewCollector() *Collector {
	return NewCollectorWithMax(MaxErrors)
}

// NewCollectorWithMax creates a new Collector with a custom error limit
func NewCollectorWithMax(maxCount int) *Collector {
	return &Collector{
		errors:   make([]CompilerError, 0),
		warnings: make([]CompilerError, 0),
		maxCount: maxCount,
	}
}

// Add adds a diagnostic to the collection
func (c *Collector) Add(err CompilerError) {
	if err.IsWarning() || err.IsInfo() {
		c.warnings = append(c.warnings, err)
		return
	}
	if len(c.errors) >= c.maxCount {
		return
	}
	c.errors = append(c.errors, err)
}

// AddAll adds multiple diagnostics to the collection
func (c *Collector) AddAll(errs []CompilerError) {
	for _, err := range errs {
		c.Add(err)
	}
}

// Errorf adds an Error-severity diagnostic
func (c *Collector) Errorf(phase, code, format string, args ...interface{}) {
	c.Add(NewError(phase, code, fmt.Sprintf(format, args...)))
}

// Warnf adds a Warning-severity diagnostic
func (c *Collector) Warnf(phase, code, format string, args ...interface{}) {
	c.Add(NewWarning(phase, code, fmt.Sprintf(format, args...)))
}

// HasErrors returns true if there are any errors (not just warnings)
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// HasWarnings returns true if there are any warnings
func (c *Collector) HasWarnings() bool {
	return len(c.warnings) > 0
}

// ErrorCount returns the number of errors
func (c *Collector) ErrorCount() int {
	return len(c.errors)
}

// WarningCount returns the number of warnings
func (c *Collector) WarningCount() int {
	return len(c.warnings)
}

// Errors returns all errors
func (c *Collector) Errors() []CompilerError {
	return c.errors
}

// Warnings returns all warnings
func (c *Collector) Warnings() []CompilerError {
	return c.warnings
}

// All returns all errors followed by all warnings
func (c *Collector) All() []CompilerError {
	all := make([]CompilerError, 0, len(c.errors)+len(c.warnings))
	all = append(all, c.errors...)
	all = append(all, c.warnings...)
	return all
}

// ErrorsByPhase returns errors for a specific phase
func (c *Collector) ErrorsByPhase(phase string) []CompilerError {
	var result []CompilerError
	for _, err := range c.errors {
		if err.Phase == phase {
			result = append(result, err)
		}
	}
	return result
}

// FormatForTerminal formats all diagnostics for terminal output
func (c *Collector) FormatForTerminal() string {
	var sb strings.Builder

	for i, err := range c.All() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(err.FormatForTerminal())
	}

	if len(c.errors)+len(c.warnings) > 0 {
		sb.WriteString(FormatSummary(len(c.errors), len(c.warnings)))
	}

	if len(c.errors) >= c.maxCount {
		sb.WriteString(fmt.Sprintf("\n%sNote: Error limit reached (%d). Additional errors not shown.%s\n",
			colorYellow,
			c.maxCount,
			colorReset))
	}

	return sb.String()
}

// Error implements the error interface
func (c *Collector) Error() string {
	if len(c.errors) == 0 && len(c.warnings) == 0 {
		return "no errors"
	}

	if len(c.errors) == 1 && len(c.warnings) == 0 {
		return c.errors[0].Error()
	}

	return fmt.Sprintf("%d error(s) and %d warning(s)", len(c.errors), len(c.warnings))
}

// Summary returns a human-readable summary
func (c *Collector) Summary() string {
	if len(c.errors) == 0 && len(c.warnings) == 0 {
		return "No errors or warnings"
	}

	var parts []string
	if len(c.errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", len(c.errors)))
	}
	if len(c.warnings) > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", len(c.warnings)))
	}

	return "Found " + strings.Join(parts, " and ")
}
