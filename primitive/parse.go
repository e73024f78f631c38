package primitive

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Parse converts a raw string into the Go value of the given kind.
//
// Integer kinds return int64 (signed) or uint64 (unsigned) parsed with the
// kind's exact bit width, floats return float64, KindBool follows the
// ParseBool convention, KindString and KindStringEnum return the string
// unchanged (enum membership is checked by ValidateEnum, which needs the
// concrete type), KindDuration accepts time.ParseDuration syntax and
// KindTime accepts RFC 3339 with optional fractional seconds.
func Parse(kind KindEnum, raw string) (any, error) {
	switch {
	case kind.IsSigned():
		v, err := strconv.ParseInt(raw, 10, kind.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", kind.Label(), raw)
		}
		return v, nil

	case kind.IsInteger(): // unsigned
		v, err := strconv.ParseUint(raw, 10, kind.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", kind.Label(), raw)
		}
		return v, nil

	case kind.IsFloat():
		v, err := strconv.ParseFloat(raw, kind.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", kind.Label(), raw)
		}
		return v, nil
	}

	switch kind {
	case KindBool:
		return ParseBool(raw)

	case KindString, KindStringEnum:
		return raw, nil

	case KindDuration:
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", kind.Label(), raw)
		}
		return v, nil

	case KindTime:
		v, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", kind.Label(), raw)
		}
		return v, nil
	}

	return nil, fmt.Errorf("unsupported kind: %s", kind)
}

// ParseBool parses the fixed boolean convention: case-insensitive,
// whitespace-trimmed "true", "false", "1", "0", "yes" and "no".
// Any other string is an error.
func ParseBool(raw string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRUE", "1", "YES":
		return true, nil
	case "FALSE", "0", "NO":
		return false, nil
	}

	return false, fmt.Errorf("invalid bool value %q", raw)
}

// ValidateEnum converts raw into the named string enum type and checks
// membership via the type's IsValid method. The match is exactly as
// case-sensitive as IsValid itself.
func ValidateEnum(rtype reflect.Type, raw string) (reflect.Value, error) {
	if FromReflectType(rtype) != KindStringEnum {
		return reflect.Value{}, fmt.Errorf("not a string enum type: %s", rtype)
	}

	v := reflect.New(rtype).Elem()
	v.SetString(raw)

	if !v.Interface().(Validatable).IsValid() {
		return reflect.Value{}, fmt.Errorf("invalid %s literal %q", rtype.Name(), raw)
	}

	return v, nil
}
