package modifier

import (
	"fmt"
)

// Rule names the check that produced an issue.
type Rule string

const (
	RuleParse        Rule = "parse"
	RuleIncompatible Rule = "incompatible"
	RuleCaveat       Rule = "caveat"
	RuleExclusive    Rule = "exclusive"
	RuleStacking     Rule = "stacking"
)

// Issue is one error or warning together with the rule that raised it.
type Issue struct {
	Rule     Rule   `json:"rule"`
	Message  string `json:"message"`
	Blocking bool   `json:"blocking"`
}

// ValidationResult is the outcome of validating a modifier list.
// Valid is false if and only if Errors is non-empty. Issues holds the same
// messages as Errors and Warnings, tagged with their rule.
type ValidationResult struct {
	Valid     bool             `json:"valid"`
	Errors    []string         `json:"errors"`
	Warnings  []string         `json:"warnings"`
	Issues    []Issue          `json:"issues"`
	Modifiers []ParsedModifier `json:"modifiers"`
}

func (r *ValidationResult) addError(rule Rule, msg string) {
	r.Errors = append(r.Errors, msg)
	r.Issues = append(r.Issues, Issue{Rule: rule, Message: msg, Blocking: true})
}

func (r *ValidationResult) addWarning(rule Rule, msg string) {
	r.Warnings = append(r.Warnings, msg)
	r.Issues = append(r.Issues, Issue{Rule: rule, Message: msg})
}

// Validate parses the declarations and checks them against the declared
// capability categories, against each other, and against their stacking
// order. It is pure: the same input always yields the same result.
func Validate(specs []Spec, categories []Category) ValidationResult {
	parsed, errs := Parse(specs)
	checked := ValidateParsed(parsed, categories)

	result := ValidationResult{
		Errors:    make([]string, 0, len(errs)+len(checked.Errors)),
		Warnings:  checked.Warnings,
		Issues:    make([]Issue, 0, len(errs)+len(checked.Issues)),
		Modifiers: parsed,
	}
	for _, msg := range errs {
		result.addError(RuleParse, msg)
	}
	result.Errors = append(result.Errors, checked.Errors...)
	result.Issues = append(result.Issues, checked.Issues...)
	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateParsed runs the compatibility checks on already normalized modifiers.
func ValidateParsed(parsed []ParsedModifier, categories []Category) ValidationResult {
	result := ValidationResult{
		Errors:    []string{},
		Warnings:  []string{},
		Issues:    []Issue{},
		Modifiers: parsed,
	}

	kinds := uniqueKinds(parsed)
	cats := uniqueCategories(categories)

	for _, kind := range kinds {
		for _, category := range cats {
			verdict, note := Compatibility(kind, category)
			switch verdict {
			case Incompatible:
				result.addError(RuleIncompatible,
					fmt.Sprintf("modifier %q is incompatible with category %q: %s", kind, category, note))
			case Caveat:
				result.addWarning(RuleCaveat,
					fmt.Sprintf("modifier %q on category %q: %s", kind, category, note))
			}
		}
	}

	present := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		present[k] = true
	}
	for _, pair := range exclusivePairs {
		if present[pair.a] && present[pair.b] {
			result.addError(RuleExclusive,
				fmt.Sprintf("modifiers %q and %q are mutually exclusive: %s", pair.a, pair.b, pair.reason))
		}
	}

	for i := 0; i+1 < len(parsed); i++ {
		first, second := parsed[i].Kind, parsed[i+1].Kind
		for _, rule := range stackingRules {
			if rule.first == first && rule.second == second {
				result.addWarning(RuleStacking,
					fmt.Sprintf("modifier %q is declared immediately before %q: %s", first, second, rule.consequence))
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ExclusivePairs returns the mutually exclusive kind pairs, for listings.
func ExclusivePairs() [][2]Kind {
	out := make([][2]Kind, 0, len(exclusivePairs))
	for _, p := range exclusivePairs {
		out = append(out, [2]Kind{p.a, p.b})
	}
	return out
}

// StackingAdvisory describes an order-sensitive adjacent pair.
type StackingAdvisory struct {
	First       Kind
	Second      Kind
	Consequence string
}

// StackingAdvisories returns the order-sensitive pairs, for listings.
func StackingAdvisories() []StackingAdvisory {
	out := make([]StackingAdvisory, 0, len(stackingRules))
	for _, r := range stackingRules {
		out = append(out, StackingAdvisory{First: r.first, Second: r.second, Consequence: r.consequence})
	}
	return out
}

func uniqueKinds(parsed []ParsedModifier) []Kind {
	seen := make(map[Kind]bool, len(parsed))
	out := make([]Kind, 0, len(parsed))
	for _, pm := range parsed {
		if seen[pm.Kind] {
			continue
		}
		seen[pm.Kind] = true
		out = append(out, pm.Kind)
	}
	return out
}

func uniqueCategories(categories []Category) []Category {
	seen := make(map[Category]bool, len(categories))
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
