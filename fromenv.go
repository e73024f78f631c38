// Package fromenv decodes a flat name -> string mapping, such as the process
// environment, into a strongly-typed, arbitrarily nested Go value.
//
// Variable names are derived from the target type: struct field names are
// tokenized from CamelCase, upper-cased and joined with "_" along the field
// path, so Config{Server struct{ MaxConns int }} reads SERVER_MAX_CONNS
// (plus an optional caller prefix in front). An `env:"NAME"` tag overrides a
// field's segment, `env:"-"` skips the field, and a `default:"..."` tag
// declares a value used when the field's variables are absent.
//
// Shapes map onto Go types as follows: structs are records, pointers are
// optionals, slices are sequences, arrays are fixed-length tuples, and
// everything else is a leaf parsed from a single variable (all integer and
// float widths, bool, string, time.Duration, time.Time, named string types
// with an IsValid() bool method as enumerations, and any type implementing
// encoding.TextUnmarshaler).
//
// Booleans accept the fixed literal set true/false/1/0/yes/no,
// case-insensitive and whitespace-trimmed.
//
// Two reserved marker conventions make otherwise-invisible values explicit
// and consuming:
//
//   - P_LEN declares the length of the sequence at P; P_LEN=0 is the only
//     way to decode an empty sequence. Without it, elements are probed
//     P_0, P_1, ... until the first absent index.
//   - P_IS_NONE__ set truthy forces the optional at P to nil, regardless of
//     the wrapped variables (the marker is decisive). Without it, a fully
//     absent optional is an error, never a silent nil.
//
// Decoding is a pure function of the type, the mapping and the options: it
// is deterministic, stops at the first error, and reports the exact set of
// consumed variables (the footprint) on success.
package fromenv

import (
	"fmt"
	"reflect"

	"github.com/stepan-anokhin/fromenv/internal/names"
	"github.com/stepan-anokhin/fromenv/primitive"
	"github.com/stepan-anokhin/fromenv/source"
)

// Config holds decoding options.
type Config struct {
	Prefix string // prepended to every derived name
	Sep    string // separator between name parts, "_" by default
}

type Option func(*Config)

// WithPrefix prepends a common prefix to every derived variable name.
func WithPrefix(prefix string) Option {
	return func(c *Config) { c.Prefix = prefix }
}

// WithSeparator overrides the separator between name parts.
func WithSeparator(sep string) Option {
	return func(c *Config) { c.Sep = sep }
}

func newConfig(opts []Option) Config {
	cfg := Config{Sep: "_"}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// Load decodes a value of type T from the current process environment.
func Load[T any](opts ...Option) (T, error) {
	return Decode[T](source.Environ(), opts...)
}

// Decode decodes a value of type T from the given mapping.
func Decode[T any](vars map[string]string, opts ...Option) (T, error) {
	value, _, err := DecodeWithFootprint[T](vars, opts...)
	return value, err
}

// DecodeWithFootprint decodes a value of type T from the given mapping and
// reports the exact set of variables consumed to produce it. The mapping is
// read-only during the call; unrelated keys are ignored. On failure the
// returned error is a *DecodeError naming the offending variable.
func DecodeWithFootprint[T any](vars map[string]string, opts ...Option) (T, Footprint, error) {
	var zero T

	cfg := newConfig(opts)
	rtype := reflect.TypeFor[T]()

	root, err := buildSchema(rtype)
	if err != nil {
		return zero, nil, err
	}

	// Name collisions are a type-description bug: reject them before
	// consulting the mapping.
	if err := checkNames(root, cfg.Prefix, typeName(rtype), cfg.Sep, map[string]string{}); err != nil {
		return zero, nil, err
	}

	d := newDecoder(vars, cfg.Sep)

	value, err := d.decode(root, cfg.Prefix, typeName(rtype))
	if err != nil {
		return zero, nil, err
	}

	return value.Interface().(T), d.foot, nil
}

// Var describes one variable a type would read.
type Var struct {
	Name     string // fully-qualified variable name
	Path     string // qualified path within the target type
	Kind     string // expected kind or shape of the value
	Required bool   // must be present for a decode of the whole type to succeed
	Repeated bool   // the index-0 instance of a per-element variable family
	Default  string // declared default, if any
}

// Vars derives the set of variable names a type would read, without
// consulting any mapping. Sequence element variables are reported once, at
// index 0, flagged Repeated; marker variables (LEN, IS_NONE__) are always
// optional.
func Vars[T any](opts ...Option) ([]Var, error) {
	cfg := newConfig(opts)
	rtype := reflect.TypeFor[T]()

	root, err := buildSchema(rtype)
	if err != nil {
		return nil, err
	}

	if err := checkNames(root, cfg.Prefix, typeName(rtype), cfg.Sep, map[string]string{}); err != nil {
		return nil, err
	}

	var out []Var

	collectVars(root, cfg.Prefix, typeName(rtype), cfg.Sep, true, false, &out)

	return out, nil
}

func collectVars(n *node, name, path, sep string, required, repeated bool, out *[]Var) {
	required = required && !n.hasDefault

	switch n.shape {
	case ShapePrimitive, ShapeCustom:
		*out = append(*out, Var{
			Name:     name,
			Path:     path,
			Kind:     n.want(),
			Required: required,
			Repeated: repeated,
			Default:  n.defaultRaw,
		})

	case ShapeOptional:
		*out = append(*out, Var{
			Name:     names.ExplicitNone(name, sep),
			Path:     path,
			Kind:     primitive.KindBool.Label(),
			Repeated: repeated,
		})
		collectVars(n.elem, name, path, sep, false, repeated, out)

	case ShapeSequence:
		*out = append(*out, Var{
			Name:     names.Length(name, sep),
			Path:     path,
			Kind:     "non-negative int",
			Repeated: repeated,
		})
		collectVars(n.elem, names.Index(name, 0, sep), path+"[0]", sep, false, true, out)

	case ShapeTuple:
		for i := 0; i < n.rtype.Len(); i++ {
			elemName := names.Index(name, i, sep)
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			collectVars(n.elem, elemName, elemPath, sep, required, repeated, out)
		}

	case ShapeRecord:
		for _, f := range n.fields {
			childName := names.Join(name, f.segment, sep)
			collectVars(f.node, childName, path+"."+f.goName, sep, required, repeated, out)
		}
	}
}
