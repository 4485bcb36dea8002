package modifier

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Declaration is a modifier as written in a composition definition, before
// normalization. It is either a CompactModifier or a StructuredModifier.
type Declaration interface {
	// DeclaredKind returns the kind token as written, which may be unknown.
	DeclaredKind() string
	// String renders the declaration for diagnostics.
	String() string
	isDeclaration()
}

// CompactModifier is the "kind:value" string form.
type CompactModifier struct {
	Kind     string
	RawValue string
	HasValue bool
}

func (m CompactModifier) DeclaredKind() string { return m.Kind }
func (CompactModifier) isDeclaration()         {}

func (m CompactModifier) String() string {
	if !m.HasValue {
		return m.Kind
	}
	return m.Kind + ":" + m.RawValue
}

// StructuredModifier is the expanded single-key mapping form
// { kind: { ...config } }.
type StructuredModifier struct {
	Kind   string
	Config map[string]any
}

func (m StructuredModifier) DeclaredKind() string { return m.Kind }
func (StructuredModifier) isDeclaration()         {}

func (m StructuredModifier) String() string {
	return fmt.Sprintf("{%s: %v}", m.Kind, m.Config)
}

// malformedModifier records an expanded declaration that does not have
// exactly one key, or whose value is not a configuration object. It is kept
// so the parse error is reported alongside the other declarations.
type malformedModifier struct {
	keys   []string
	reason string
}

func (m malformedModifier) DeclaredKind() string { return "" }
func (malformedModifier) isDeclaration()         {}

func (m malformedModifier) String() string {
	return "{" + strings.Join(m.keys, ", ") + "}"
}

// NewCompact builds a compact declaration from its textual form.
func NewCompact(s string) CompactModifier {
	s = strings.TrimSpace(s)
	kind, value, found := strings.Cut(s, ":")
	value = strings.TrimSpace(value)
	return CompactModifier{
		Kind:     strings.TrimSpace(kind),
		RawValue: value,
		HasValue: found && value != "",
	}
}

// NewStructured builds an expanded declaration.
func NewStructured(kind string, config map[string]any) StructuredModifier {
	return StructuredModifier{Kind: kind, Config: config}
}

// Spec wraps a Declaration so it can be decoded from YAML or JSON, where a
// modifier is either a string or a single-key mapping.
type Spec struct {
	Declaration Declaration
}

// Compact returns a Spec holding the compact form of s.
func Compact(s string) Spec {
	return Spec{Declaration: NewCompact(s)}
}

// Structured returns a Spec holding an expanded declaration.
func Structured(kind string, config map[string]any) Spec {
	return Spec{Declaration: NewStructured(kind, config)}
}

// String renders the wrapped declaration.
func (s Spec) String() string {
	if s.Declaration == nil {
		return "<empty>"
	}
	return s.Declaration.String()
}

// UnmarshalYAML decodes a scalar as a compact modifier and a mapping as an
// expanded one.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var text string
		if err := node.Decode(&text); err != nil {
			return err
		}
		s.Declaration = NewCompact(text)
		return nil
	case yaml.MappingNode:
		var raw map[string]any
		if err := node.Decode(&raw); err != nil {
			return err
		}
		s.Declaration = fromMapping(raw)
		return nil
	default:
		return fmt.Errorf("line %d: modifier must be a string or a single-key mapping", node.Line)
	}
}

// UnmarshalJSON decodes a string as a compact modifier and an object as an
// expanded one.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		s.Declaration = NewCompact(text)
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("modifier must be a string or a single-key object")
	}
	s.Declaration = fromMapping(raw)
	return nil
}

// MarshalYAML encodes the declaration back into its written form.
func (s Spec) MarshalYAML() (interface{}, error) {
	return s.written()
}

// MarshalJSON encodes the declaration back into its written form.
func (s Spec) MarshalJSON() ([]byte, error) {
	v, err := s.written()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (s Spec) written() (interface{}, error) {
	switch d := s.Declaration.(type) {
	case CompactModifier:
		return d.String(), nil
	case StructuredModifier:
		cfg := d.Config
		if cfg == nil {
			cfg = map[string]any{}
		}
		return map[string]any{d.Kind: cfg}, nil
	default:
		return nil, fmt.Errorf("cannot encode modifier %s", s.String())
	}
}

func fromMapping(raw map[string]any) Declaration {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) != 1 {
		return malformedModifier{
			keys:   keys,
			reason: fmt.Sprintf("expanded modifier must have exactly one key, found %d", len(keys)),
		}
	}

	kind := keys[0]
	switch v := raw[kind].(type) {
	case nil:
		return StructuredModifier{Kind: kind, Config: map[string]any{}}
	case map[string]any:
		return StructuredModifier{Kind: kind, Config: v}
	default:
		return malformedModifier{
			keys:   keys,
			reason: fmt.Sprintf("expanded modifier %q must map to a configuration object", kind),
		}
	}
}
