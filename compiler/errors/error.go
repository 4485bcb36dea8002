package errors

import (
	"encoding/json"
	"fmt"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	switch str {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	case "fatal":
		*s = Fatal
	default:
		*s = Error
	}
	return nil
}

// Compilation phases. Each phase maps to one class of the error taxonomy.
const (
	PhaseDefinition = "definition"
	PhaseGraph      = "graph"
	PhaseModifier   = "modifier"
	PhaseResolution = "resolution"
	PhaseSynthesis  = "synthesis"
	PhaseEmission   = "emission"
)

// Location points at the part of a composition definition a diagnostic refers to.
// Path uses a dotted/indexed form such as "skills[2].modifiers[0]".
type Location struct {
	File string `json:"file,omitempty"`
	Path string `json:"path,omitempty"`
}

// String renders the location as file:path
func (l Location) String() string {
	switch {
	case l.File != "" && l.Path != "":
		return l.File + ":" + l.Path
	case l.File != "":
		return l.File
	default:
		return l.Path
	}
}

// FixSuggestion represents a fix suggestion attached to a diagnostic
type FixSuggestion struct {
	Description string   `json:"description"`
	Candidates  []string `json:"candidates,omitempty"`
}

// CompilerError is a single structured diagnostic produced by a compilation stage
type CompilerError struct {
	Phase      string         // "definition", "graph", "modifier", ...
	Code       string         // "E001", "W300", ...
	Message    string         // Human-readable message
	Location   Location       // File and definition path
	Severity   Severity       // Error, Warning, Info
	Suggestion *FixSuggestion // Optional suggestion
}

// Error implements the error interface
func (e CompilerError) Error() string {
	if loc := e.Location.String(); loc != "" {
		return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCompilerError creates a new CompilerError
func NewCompilerError(phase, code, message string, location Location, severity Severity) CompilerError {
	return CompilerError{
		Phase:    phase,
		Code:     code,
		Message:  message,
		Location: location,
		Severity: severity,
	}
}

// NewError creates an Error-severity diagnostic without a location
func NewError(phase, code, message string) CompilerError {
	return NewCompilerError(phase, code, message, Location{}, Error)
}

// NewWarning creates a Warning-severity diagnostic without a location
func NewWarning(phase, code, message string) CompilerError {
	return NewCompilerError(phase, code, message, Location{}, Warning)
}

// WithLocation sets the location of the diagnostic
func (e CompilerError) WithLocation(loc Location) CompilerError {
	e.Location = loc
	return e
}

// WithSuggestion adds a fix suggestion to the diagnostic
func (e CompilerError) WithSuggestion(suggestion FixSuggestion) CompilerError {
	e.Suggestion = &suggestion
	return e
}

// MarshalJSON implements json.Marshaler
func (e CompilerError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Phase      string         `json:"phase"`
		Code       string         `json:"code"`
		Message    string         `json:"message"`
		Severity   Severity       `json:"severity"`
		Location   Location       `json:"location"`
		Suggestion *FixSuggestion `json:"suggestion,omitempty"`
	}{
		Phase:      e.Phase,
		Code:       e.Code,
		Message:    e.Message,
		Severity:   e.Severity,
		Location:   e.Location,
		Suggestion: e.Suggestion,
	})
}

// IsError returns true if the diagnostic is at Error or Fatal severity
func (e CompilerError) IsError() bool {
	return e.Severity == Error || e.Severity == Fatal
}

// IsWarning returns true if the diagnostic is at Warning severity
func (e CompilerError) IsWarning() bool {
	return e.Severity == Warning
}

// IsInfo returns true if the diagnostic is at Info severity
func (e CompilerError) IsInfo() bool {
	return e.Severity == Info
}

// IsFatal returns true if the diagnostic is at Fatal severity
func (e CompilerError) IsFatal() bool {
	return e.Severity == Fatal
}

// IsBackendError reports whether the diagnostic came from the synthesis or
// emission backends rather than from the composition definition itself.
func (e CompilerError) IsBackendError() bool {
	return e.Phase == PhaseSynthesis || e.Phase == PhaseEmission
}

// Messages returns the plain message of every diagnostic, in order
func Messages(errs []CompilerError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}
