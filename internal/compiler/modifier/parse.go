package modifier

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Form records which representation a modifier was declared in.
type Form string

const (
	FormCompact    Form = "compact"
	FormStructured Form = "structured"
)

// ParsedModifier is the normalized form every downstream check works on.
type ParsedModifier struct {
	Kind   Kind           `json:"kind" yaml:"kind"`
	Config map[string]any `json:"config" yaml:"config"`
	Form   Form           `json:"form" yaml:"form"`
}

// Configuration keys of the compact forms.
const (
	KeyAttempts    = "attempts"
	KeyTTL         = "ttl"
	KeyDuration    = "duration"
	KeyType        = "type"
	KeyRequests    = "requests"
	KeyPer         = "per"
	KeyUnit        = "unit"
	KeyLevel       = "level"
	KeySkill       = "skill"
	KeySize        = "size"
	KeyConcurrency = "concurrency"
	KeyEnabled     = "enabled"
)

// falseToken is the only dry-run value that disables the simulation.
const falseToken = "false"

var (
	durationPattern = regexp.MustCompile(`^[0-9]+(ms|s|m|h|d)$`)
	tokenPattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
	skillPattern    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/@-]*$`)
	ratePattern     = regexp.MustCompile(`^([0-9]+)/([0-9]*)([a-z]+)$`)
	logLevels       = []string{"debug", "info", "warn", "error"}
	rateUnits       = []string{"ms", "s", "sec", "second", "m", "min", "minute", "h", "hr", "hour", "d", "day"}

	errEmptyDeclaration = errors.New("empty modifier declaration")
)

// ParseError describes a declaration that could not be normalized.
type ParseError struct {
	Declaration string
	Reason      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid modifier %q: %s", e.Declaration, e.Reason)
}

// Parse normalizes every declaration independently. Declarations that fail
// to parse are reported as error strings and omitted from the result; they
// never stop the rest of the list from being parsed.
func Parse(specs []Spec) ([]ParsedModifier, []string) {
	parsed := make([]ParsedModifier, 0, len(specs))
	var errs []string

	for _, spec := range specs {
		pm, err := ParseDeclaration(spec.Declaration)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		parsed = append(parsed, pm)
	}

	return parsed, errs
}

// ParseDeclaration normalizes a single declaration.
func ParseDeclaration(decl Declaration) (ParsedModifier, error) {
	switch d := decl.(type) {
	case CompactModifier:
		return parseCompact(d)
	case StructuredModifier:
		return parseStructured(d)
	case malformedModifier:
		return ParsedModifier{}, &ParseError{Declaration: d.String(), Reason: d.reason}
	case nil:
		return ParsedModifier{}, errEmptyDeclaration
	default:
		return ParsedModifier{}, fmt.Errorf("unsupported modifier declaration %T", decl)
	}
}

// ParseCompact is a convenience for parsing a "kind:value" string.
func ParseCompact(s string) (ParsedModifier, error) {
	return parseCompact(NewCompact(s))
}

func parseCompact(d CompactModifier) (ParsedModifier, error) {
	kind, ok := ParseKind(d.Kind)
	if !ok {
		return ParsedModifier{}, unknownKind(d.String(), d.Kind)
	}

	config := map[string]any{}
	if d.HasValue {
		var err error
		config, err = compactConfig(kind, d.RawValue)
		if err != nil {
			return ParsedModifier{}, &ParseError{Declaration: d.String(), Reason: err.Error()}
		}
	}

	return ParsedModifier{Kind: kind, Config: config, Form: FormCompact}, nil
}

func parseStructured(d StructuredModifier) (ParsedModifier, error) {
	kind, ok := ParseKind(d.Kind)
	if !ok {
		return ParsedModifier{}, unknownKind(d.String(), d.Kind)
	}

	config := d.Config
	if config == nil {
		config = map[string]any{}
	}

	return ParsedModifier{Kind: kind, Config: config, Form: FormStructured}, nil
}

func unknownKind(decl, kind string) error {
	names := make([]string, 0, len(allKinds))
	for _, k := range allKinds {
		names = append(names, string(k))
	}
	return &ParseError{
		Declaration: decl,
		Reason:      fmt.Sprintf("unknown modifier kind %q (expected one of %s)", kind, strings.Join(names, ", ")),
	}
}

// compactConfig interprets the value of a compact declaration per kind.
func compactConfig(kind Kind, value string) (map[string]any, error) {
	switch kind {
	case KindRetry:
		n, err := positiveInt(value, "attempt count")
		if err != nil {
			return nil, err
		}
		return map[string]any{KeyAttempts: n}, nil

	case KindCache:
		if !durationPattern.MatchString(value) {
			return nil, fmt.Errorf("invalid cache ttl %q (expected a duration such as 5m)", value)
		}
		return map[string]any{KeyTTL: value}, nil

	case KindTimeout:
		if !durationPattern.MatchString(value) {
			return nil, fmt.Errorf("invalid timeout %q (expected a duration such as 30s)", value)
		}
		return map[string]any{KeyDuration: value}, nil

	case KindAuth:
		if !tokenPattern.MatchString(value) {
			return nil, fmt.Errorf("invalid auth type %q", value)
		}
		return map[string]any{KeyType: value}, nil

	case KindRateLimit:
		return parseRate(value)

	case KindLog:
		if !contains(logLevels, value) {
			return nil, fmt.Errorf("invalid log level %q (expected one of %s)", value, strings.Join(logLevels, ", "))
		}
		return map[string]any{KeyLevel: value}, nil

	case KindFallback:
		if !skillPattern.MatchString(value) {
			return nil, fmt.Errorf("invalid fallback skill name %q", value)
		}
		return map[string]any{KeySkill: value}, nil

	case KindBatch:
		n, err := positiveInt(value, "batch size")
		if err != nil {
			return nil, err
		}
		return map[string]any{KeySize: n}, nil

	case KindParallel:
		n, err := positiveInt(value, "concurrency")
		if err != nil {
			return nil, err
		}
		return map[string]any{KeyConcurrency: n}, nil

	case KindDryRun:
		return map[string]any{KeyEnabled: value != falseToken}, nil
	}

	return nil, fmt.Errorf("no value grammar for kind %q", kind)
}

// parseRate parses "N/unit" or "N/Munit", e.g. "100/min" or "5/10s".
func parseRate(value string) (map[string]any, error) {
	m := ratePattern.FindStringSubmatch(value)
	if m == nil {
		return nil, fmt.Errorf("invalid rate %q (expected N/unit such as 100/min)", value)
	}

	requests, err := positiveInt(m[1], "request count")
	if err != nil {
		return nil, err
	}

	per := 1
	if m[2] != "" {
		per, err = positiveInt(m[2], "window multiplier")
		if err != nil {
			return nil, err
		}
	}

	if !contains(rateUnits, m[3]) {
		return nil, fmt.Errorf("invalid rate unit %q", m[3])
	}

	return map[string]any{KeyRequests: requests, KeyPer: per, KeyUnit: m[3]}, nil
}

func positiveInt(value, what string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q (expected a positive integer)", what, value)
	}
	return n, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
