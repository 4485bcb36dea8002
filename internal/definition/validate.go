package definition

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"

	cerrors "github.com/codervisor/combo-skills/compiler/errors"
	"github.com/codervisor/combo-skills/internal/compiler/modifier"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their definition-file names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return strings.ToLower(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Validate runs the structural checks on a definition: required fields,
// version syntax, category names and identity-key uniqueness. Ordering
// constraints are checked separately by the graph builder.
func Validate(def *Composition) []cerrors.CompilerError {
	if def == nil {
		return []cerrors.CompilerError{
			cerrors.NewError(cerrors.PhaseDefinition, cerrors.ErrMalformedDefinition, "definition is nil"),
		}
	}

	var errs []cerrors.CompilerError
	errs = append(errs, requiredFields(def)...)
	errs = append(errs, versions(def)...)
	errs = append(errs, categories(def)...)
	errs = append(errs, duplicateKeys(def)...)
	return errs
}

func requiredFields(def *Composition) []cerrors.CompilerError {
	err := getValidator().Struct(def)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []cerrors.CompilerError{
			cerrors.NewError(cerrors.PhaseDefinition, cerrors.ErrMalformedDefinition, err.Error()),
		}
	}

	errs := make([]cerrors.CompilerError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := fieldPath(fe.Namespace())
		if path == "skills" {
			errs = append(errs, cerrors.NewError(cerrors.PhaseDefinition, cerrors.ErrEmptyComponentList,
				"composition must declare at least one skill").
				WithLocation(cerrors.Location{Path: path}))
			continue
		}
		errs = append(errs, cerrors.NewError(cerrors.PhaseDefinition, codeForTag(fe.Tag()),
			fmt.Sprintf("%q %s", path, describeTag(fe))).
			WithLocation(cerrors.Location{Path: path}))
	}
	return errs
}

// fieldPath strips the root struct name from a validator namespace, turning
// "Composition.skills[1].name" into "skills[1].name".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func codeForTag(tag string) string {
	if tag == "required" {
		return cerrors.ErrMissingRequired
	}
	return cerrors.ErrInvalidField
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	default:
		return "is invalid"
	}
}

func versions(def *Composition) []cerrors.CompilerError {
	var errs []cerrors.CompilerError

	if def.Version != "" {
		if _, err := semver.StrictNewVersion(def.Version); err != nil {
			errs = append(errs, cerrors.NewError(cerrors.PhaseDefinition, cerrors.ErrInvalidVersion,
				fmt.Sprintf("composition version %q is not a semantic version", def.Version)).
				WithLocation(cerrors.Location{Path: "version"}))
		}
	}

	for i, skill := range def.Skills {
		if skill.Version == "" {
			continue
		}
		if _, err := semver.NewConstraint(skill.Version); err != nil {
			errs = append(errs, cerrors.NewError(cerrors.PhaseDefinition, cerrors.ErrInvalidVersion,
				fmt.Sprintf("skill %q has invalid version constraint %q: %v", skill.Name, skill.Version, err)).
				WithLocation(cerrors.Location{Path: fmt.Sprintf("skills[%d].version", i)}))
		}
	}

	return errs
}

func categories(def *Composition) []cerrors.CompilerError {
	var errs []cerrors.CompilerError
	errs = append(errs, unknownCategories(def.Categories, "categories")...)
	for i, skill := range def.Skills {
		errs = append(errs, unknownCategories(skill.Categories, fmt.Sprintf("skills[%d].categories", i))...)
	}
	return errs
}

func unknownCategories(names []string, path string) []cerrors.CompilerError {
	known := make([]string, 0, len(modifier.AllCategories()))
	for _, c := range modifier.AllCategories() {
		known = append(known, string(c))
	}

	var errs []cerrors.CompilerError
	for i, name := range names {
		if _, ok := modifier.ParseCategory(name); ok {
			continue
		}
		err := cerrors.NewError(cerrors.PhaseDefinition, cerrors.ErrUnknownCategory,
			fmt.Sprintf("unknown capability category %q", name)).
			WithLocation(cerrors.Location{Path: fmt.Sprintf("%s[%d]", path, i)})
		if similar := cerrors.SuggestSimilar(name, known, 3); len(similar) > 0 {
			err = err.WithSuggestion(cerrors.FixSuggestion{
				Description: "use one of " + strings.Join(known, ", "),
				Candidates:  similar,
			})
		}
		errs = append(errs, err)
	}
	return errs
}

// duplicateKeys rejects two references that collapse onto the same identity
// key, since the graph would otherwise keep only one of them.
func duplicateKeys(def *Composition) []cerrors.CompilerError {
	first := make(map[string]int, len(def.Skills))
	var errs []cerrors.CompilerError

	for i, skill := range def.Skills {
		key := skill.Key()
		if key == "" {
			continue
		}
		if prev, seen := first[key]; seen {
			errs = append(errs, cerrors.NewError(cerrors.PhaseDefinition, cerrors.ErrDuplicateIdentity,
				fmt.Sprintf("skills[%d] and skills[%d] share identity key %q; set a distinct alias", prev, i, key)).
				WithLocation(cerrors.Location{Path: fmt.Sprintf("skills[%d]", i)}))
			continue
		}
		first[key] = i
	}

	return errs
}

// CheckDataFlow warns about data-flow mappings naming undeclared components.
func CheckDataFlow(def *Composition) []cerrors.CompilerError {
	declared := make(map[string]bool, len(def.Skills))
	for _, key := range def.Keys() {
		declared[key] = true
	}

	var warnings []cerrors.CompilerError
	for i, m := range def.Constraints.DataFlow {
		for _, ref := range []string{m.From, m.To} {
			if declared[ref] {
				continue
			}
			warnings = append(warnings, cerrors.NewWarning(cerrors.PhaseDefinition, cerrors.WarnDataFlowReference,
				fmt.Sprintf("data-flow mapping %s -> %s references undeclared skill %q", m.From, m.To, ref)).
				WithLocation(cerrors.Location{Path: fmt.Sprintf("constraints.dataflow[%d]", i)}))
		}
	}
	return warnings
}
