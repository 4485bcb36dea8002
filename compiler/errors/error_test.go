package errors

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestError_Creation tests basic diagnostic creation
func TestError_Creation(t *testing.T) {
	loc := Location{File: "combo.yaml", Path: "skills[1]"}

	err := NewCompilerError(PhaseGraph, ErrUnknownComponent, "unknown component", loc, Error)

	if err.Phase != PhaseGraph {
		t.Errorf("Expected phase 'graph', got '%s'", err.Phase)
	}
	if err.Code != ErrUnknownComponent {
		t.Errorf("Expected code '%s', got '%s'", ErrUnknownComponent, err.Code)
	}
	if !err.IsError() || err.IsWarning() {
		t.Error("Expected an error-severity diagnostic")
	}
	if got := err.Error(); got != "combo.yaml:skills[1]: E100: unknown component" {
		t.Errorf("Unexpected Error() output: %s", got)
	}
}

func TestError_BackendClassification(t *testing.T) {
	cases := map[string]bool{
		PhaseDefinition: false,
		PhaseGraph:      false,
		PhaseModifier:   false,
		PhaseSynthesis:  true,
		PhaseEmission:   true,
	}
	for phase, want := range cases {
		if got := NewError(phase, "E000", "x").IsBackendError(); got != want {
			t.Errorf("phase %s: expected IsBackendError=%v, got %v", phase, want, got)
		}
	}
}

// TestError_TerminalFormat tests terminal formatting
func TestError_TerminalFormat(t *testing.T) {
	err := NewError(PhaseModifier, ErrModifierParse, "unknown modifier kind \"retyr\"").
		WithLocation(Location{File: "combo.yaml", Path: "modifiers[0]"}).
		WithSuggestion(FixSuggestion{Description: "use a known modifier kind", Candidates: []string{"retry"}})

	output := StripColors(err.FormatForTerminal())

	for _, want := range []string{"Error[E200]", "unknown modifier kind", "combo.yaml:modifiers[0]", "phase: modifier", "Did you mean: retry?"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q, got:\n%s", want, output)
		}
	}
}

func TestSeverity_JSONRoundTrip(t *testing.T) {
	for _, s := range []Severity{Info, Warning, Error, Fatal} {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back Severity
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if back != s {
			t.Errorf("expected %v, got %v", s, back)
		}
	}
}

func TestFormatErrorsAsJSON(t *testing.T) {
	diags := []CompilerError{
		NewError(PhaseGraph, ErrCircularDependency, "cycle a -> b -> a"),
		NewWarning(PhaseResolution, WarnUnresolvedComponent, "unresolved: parse"),
	}

	out, err := FormatErrorsAsJSON(diags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded JSONOutput
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Status != "error" {
		t.Errorf("expected status error, got %s", decoded.Status)
	}
	if decoded.Summary.ErrorCount != 1 || decoded.Summary.WarningCount != 1 || decoded.Summary.TotalCount != 2 {
		t.Errorf("unexpected summary: %+v", decoded.Summary)
	}
}

func TestFormatErrorsAsJSON_WarningsOnly(t *testing.T) {
	out, err := FormatErrorsAsJSONCompact([]CompilerError{NewWarning(PhaseModifier, WarnModifierStacking, "cache before retry")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"status":"warning"`) {
		t.Errorf("expected warning status, got %s", out)
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Errorf(PhaseDefinition, ErrMissingRequired, "missing required field: %s", "name")
	c.Warnf(PhaseResolution, WarnUnresolvedComponent, "unresolved: %s", "x")
	c.Add(NewError(PhaseGraph, ErrCircularDependency, "cycle"))

	if c.ErrorCount() != 2 || c.WarningCount() != 1 {
		t.Fatalf("unexpected counts: %d errors, %d warnings", c.ErrorCount(), c.WarningCount())
	}
	if len(c.ErrorsByPhase(PhaseGraph)) != 1 {
		t.Error("expected one graph error")
	}
	if got := Messages(c.Errors()); got[0] != "missing required field: name" || got[1] != "cycle" {
		t.Errorf("errors out of order: %v", got)
	}
	if c.Summary() != "Found 2 error(s) and 1 warning(s)" {
		t.Errorf("unexpected summary: %s", c.Summary())
	}
	if !strings.Contains(StripColors(c.FormatForTerminal()), "Compilation failed with 2 error(s) and 1 warning(s)") {
		t.Error("terminal output should carry the summary")
	}
}

func TestCollector_MaxErrors(t *testing.T) {
	c := NewCollectorWithMax(2)
	for i := 0; i < 5; i++ {
		c.Errorf(PhaseGraph, ErrUnknownComponent, "e%d", i)
	}
	c.Warnf(PhaseGraph, WarnGeneric, "still collected")

	if c.ErrorCount() != 2 {
		t.Errorf("expected error count capped at 2, got %d", c.ErrorCount())
	}
	if c.WarningCount() != 1 {
		t.Errorf("warnings should not be capped, got %d", c.WarningCount())
	}
}

func TestGetPhaseForCode(t *testing.T) {
	cases := map[string]string{
		ErrMissingRequired:      PhaseDefinition,
		ErrCircularDependency:   PhaseGraph,
		ErrModifierExclusive:    PhaseModifier,
		WarnUnresolvedComponent: PhaseResolution,
		ErrSynthesisFailed:      PhaseSynthesis,
		ErrEmissionFailed:       PhaseEmission,
		"X1":                    "unknown",
	}
	for code, want := range cases {
		if got := GetPhaseForCode(code); got != want {
			t.Errorf("code %s: expected %s, got %s", code, want, got)
		}
	}
}

func TestErrorCodeRegistry(t *testing.T) {
	for _, code := range AllErrorCodes() {
		info, ok := GetErrorCodeInfo(code)
		if !ok || info.Title == "" {
			t.Errorf("code %s is missing documentation", code)
		}
	}
}

func TestSuggestSimilar(t *testing.T) {
	got := SuggestSimilar("retyr", []string{"retry", "cache", "timeout", "rate-limit"}, 3)
	if len(got) == 0 || got[0] != "retry" {
		t.Errorf("expected retry first, got %v", got)
	}

	if got := SuggestSimilar("zzzzzzzz", []string{"retry"}, 3); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
}
