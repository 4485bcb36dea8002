package errors

// Diagnostic code constants organized by phase
// E001-E099: Definition errors
// E100-E199: Graph errors
// E200-E299: Modifier errors
// W300-W399: Resolution warnings
// E400-E499: Synthesis errors
// E500-E599: Emission errors

const (
	// Definition errors (E001-E099)
	ErrMissingRequired     = "E001"
	ErrEmptyComponentList  = "E002"
	ErrInvalidVersion      = "E003"
	ErrUnknownCategory     = "E005"
	ErrDuplicateIdentity   = "E006"
	ErrMalformedDefinition = "E007"
	ErrInvalidField        = "E008"

	// Graph errors (E100-E199)
	ErrUnknownComponent   = "E100"
	ErrCircularDependency = "E101"

	// Modifier errors (E200-E299)
	ErrModifierParse        = "E200"
	ErrModifierIncompatible = "E201"
	ErrModifierExclusive    = "E202"

	// Resolution warnings (W300-W399)
	WarnUnresolvedComponent = "W300"
	WarnDataFlowReference   = "W301"
	WarnModifierCaveat      = "W302"
	WarnModifierStacking    = "W303"
	WarnGeneric             = "W399"

	// Synthesis errors (E400-E499)
	ErrSynthesisFailed  = "E400"
	ErrSynthesisEmpty   = "E401"
	ErrSynthesisTimeout = "E402"

	// Emission errors (E500-E599)
	ErrEmissionFailed = "E500"
)

// ErrorCodeInfo describes a diagnostic code
type ErrorCodeInfo struct {
	Code        string
	Phase       string
	Title       string
	Description string
}

// errorCodeRegistry maps codes to their documentation
var errorCodeRegistry = map[string]ErrorCodeInfo{
	ErrMissingRequired:     {ErrMissingRequired, PhaseDefinition, "Missing required field", "A required field of the composition definition is empty or absent."},
	ErrEmptyComponentList:  {ErrEmptyComponentList, PhaseDefinition, "Empty component list", "A composition must reference at least one component."},
	ErrInvalidVersion:      {ErrInvalidVersion, PhaseDefinition, "Invalid version", "A version or version constraint is not valid semver."},
	ErrUnknownCategory:     {ErrUnknownCategory, PhaseDefinition, "Unknown category", "A capability category is not one of fetch, store, search, execute, transform."},
	ErrDuplicateIdentity:   {ErrDuplicateIdentity, PhaseDefinition, "Duplicate identity key", "Two components resolve to the same alias or name."},
	ErrMalformedDefinition: {ErrMalformedDefinition, PhaseDefinition, "Malformed definition", "The definition file could not be decoded."},
	ErrInvalidField:        {ErrInvalidField, PhaseDefinition, "Invalid field", "A field of the composition definition has an invalid value."},

	ErrUnknownComponent:   {ErrUnknownComponent, PhaseGraph, "Unknown component", "An ordering constraint references a component that is not declared."},
	ErrCircularDependency: {ErrCircularDependency, PhaseGraph, "Circular ordering", "Ordering constraints form a cycle."},

	ErrModifierParse:        {ErrModifierParse, PhaseModifier, "Unparseable modifier", "A modifier declaration could not be parsed."},
	ErrModifierIncompatible: {ErrModifierIncompatible, PhaseModifier, "Incompatible modifier", "A modifier cannot be applied to a capability category."},
	ErrModifierExclusive:    {ErrModifierExclusive, PhaseModifier, "Mutually exclusive modifiers", "Two modifiers cannot be declared together."},

	WarnUnresolvedComponent: {WarnUnresolvedComponent, PhaseResolution, "Unresolved component", "Component metadata could not be resolved; a placeholder is used."},
	WarnDataFlowReference:   {WarnDataFlowReference, PhaseDefinition, "Unknown data-flow endpoint", "A data-flow mapping references an undeclared component."},
	WarnModifierCaveat:      {WarnModifierCaveat, PhaseModifier, "Modifier caveat", "A modifier is compatible with a category only with a caveat."},
	WarnModifierStacking:    {WarnModifierStacking, PhaseModifier, "Modifier stacking order", "Two adjacent modifiers interact in an order-sensitive way."},
	WarnGeneric:             {WarnGeneric, "", "Warning", "General warning."},

	ErrSynthesisFailed:  {ErrSynthesisFailed, PhaseSynthesis, "Synthesis failed", "The synthesis backend returned an error."},
	ErrSynthesisEmpty:   {ErrSynthesisEmpty, PhaseSynthesis, "Empty artifact", "The synthesis backend returned an empty body."},
	ErrSynthesisTimeout: {ErrSynthesisTimeout, PhaseSynthesis, "Synthesis timeout", "The synthesis backend did not answer in time."},

	ErrEmissionFailed: {ErrEmissionFailed, PhaseEmission, "Emission failed", "The artifact could not be written to its destination."},
}

// GetErrorCodeInfo returns documentation for a diagnostic code
func GetErrorCodeInfo(code string) (ErrorCodeInfo, bool) {
	info, ok := errorCodeRegistry[code]
	return info, ok
}

// AllErrorCodes returns every registered diagnostic code
func AllErrorCodes() []string {
	codes := make([]string, 0, len(errorCodeRegistry))
	for code := range errorCodeRegistry {
		codes = append(codes, code)
	}
	return codes
}

// GetPhaseForCode returns the phase name for a diagnostic code
func GetPhaseForCode(code string) string {
	if len(code) < 4 {
		return "unknown"
	}

	if code[0] == 'W' {
		return PhaseResolution
	}
	if code[0] != 'E' {
		return "unknown"
	}

	switch {
	case code >= "E001" && code <= "E099":
		return PhaseDefinition
	case code >= "E100" && code <= "E199":
		return PhaseGraph
	case code >= "E200" && code <= "E299":
		return PhaseModifier
	case code >= "E400" && code <= "E499":
		return PhaseSynthesis
	case code >= "E500" && code <= "E599":
		return PhaseEmission
	default:
		return "unknown"
	}
}
