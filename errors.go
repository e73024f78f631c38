package fromenv

import "fmt"

// ErrorKind classifies decode failures.
type ErrorKind int

const (
	ErrorUnknown ErrorKind = iota

	// ErrorMissingVar: a required variable is absent and no default applies.
	ErrorMissingVar
	// ErrorInvalidValue: a variable is present but its value fails parsing.
	ErrorInvalidValue
	// ErrorInvalidLength: a LEN marker is not a valid non-negative integer,
	// or the indexed variables of a declared length are incomplete.
	ErrorInvalidLength
	// ErrorAmbiguousName: two distinct paths of the type tree resolve to the
	// same variable name. This is a bug in the type description and is
	// detected before the mapping is consulted.
	ErrorAmbiguousName
	// ErrorUnsupportedType: the target type contains a shape the decoder
	// cannot represent (map, chan, func, interface, double pointer, cycle).
	ErrorUnsupportedType
	// ErrorInvalidDefault: a default tag fails the construction-time check.
	ErrorInvalidDefault

	// ErrorTotal is a constant that represents the total number of kinds defined
	ErrorTotal = int(iota)
)

// String returns a human-readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorMissingVar:
		return "missing variable"
	case ErrorInvalidValue:
		return "invalid value"
	case ErrorInvalidLength:
		return "invalid length"
	case ErrorAmbiguousName:
		return "ambiguous name"
	case ErrorUnsupportedType:
		return "unsupported type"
	case ErrorInvalidDefault:
		return "invalid default"
	default:
		return "unknown"
	}
}

// DecodeError describes a single decode failure: the variable name it is
// about, the qualified path within the target type, the expected kind or
// shape and, for invalid values, the raw offending string.
type DecodeError struct {
	Kind  ErrorKind
	Var   string // fully-qualified variable name
	Path  string // qualified path within the target type, e.g. "Config.Server.Port"
	Want  string // expected kind or shape
	Raw   string // offending raw value, if any
	Other string // second conflicting path for ambiguous names
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case ErrorMissingVar:
		return fmt.Sprintf("missing variable %s required by %s (%s)", e.Var, e.Path, e.Want)
	case ErrorInvalidValue:
		return fmt.Sprintf("variable %s has invalid value %q for %s: want %s", e.Var, e.Raw, e.Path, e.Want)
	case ErrorInvalidLength:
		if e.Raw != "" {
			return fmt.Sprintf("variable %s has invalid length value %q for %s", e.Var, e.Raw, e.Path)
		}
		return fmt.Sprintf("variable %s is missing for declared length of %s", e.Var, e.Path)
	case ErrorAmbiguousName:
		return fmt.Sprintf("ambiguous variable %s: resolved by both %s and %s", e.Var, e.Path, e.Other)
	case ErrorUnsupportedType:
		return fmt.Sprintf("unsupported type at %s: %s", e.Path, e.Want)
	case ErrorInvalidDefault:
		return fmt.Sprintf("invalid default %q at %s: want %s", e.Raw, e.Path, e.Want)
	}

	return fmt.Sprintf("decode error at %s", e.Path)
}

func missingVar(name, path, want string) *DecodeError {
	return &DecodeError{Kind: ErrorMissingVar, Var: name, Path: path, Want: want}
}

func invalidValue(name, path, want, raw string) *DecodeError {
	return &DecodeError{Kind: ErrorInvalidValue, Var: name, Path: path, Want: want, Raw: raw}
}

// kindOf extracts the ErrorKind from an error, or ErrorUnknown.
func kindOf(err error) ErrorKind {
	if de, ok := err.(*DecodeError); ok {
		return de.Kind
	}

	return ErrorUnknown
}
