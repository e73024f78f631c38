package fromenv

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"

	"github.com/stepan-anokhin/fromenv/internal/names"
	"github.com/stepan-anokhin/fromenv/primitive"
)

type ShapeEnum int

const (
	ShapeUnknown ShapeEnum = iota
	ShapePrimitive
	ShapeCustom // leaf decoded through encoding.TextUnmarshaler
	ShapeOptional
	ShapeSequence
	ShapeTuple
	ShapeRecord

	// ShapeTotal is a constant that represents the total number of shapes defined
	ShapeTotal = int(iota)
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// node describes one position in the target type tree.
type node struct {
	shape  ShapeEnum
	rtype  reflect.Type
	kind   primitive.KindEnum // set for ShapePrimitive
	elem   *node              // set for ShapeOptional, ShapeSequence, ShapeTuple
	fields []field            // set for ShapeRecord

	hasDefault bool
	defaultRaw string
	defaultVal reflect.Value
}

// field is a record member: the Go field it populates and the variable name
// segment it contributes to the path.
type field struct {
	goName  string // Go field name, used in qualified paths
	segment string // variable name segment: env tag override or the Go name
	index   int    // struct field index
	node    *node
}

// want describes the expected input for a node in diagnostics.
func (n *node) want() string {
	switch n.shape {
	case ShapePrimitive:
		return n.kind.Label()
	case ShapeCustom:
		return n.rtype.String()
	case ShapeOptional:
		return "optional " + n.elem.want()
	case ShapeSequence:
		return "sequence of " + n.elem.want()
	case ShapeTuple:
		return fmt.Sprintf("tuple of %d %s", n.rtype.Len(), n.elem.want())
	case ShapeRecord:
		return n.rtype.String()
	}

	return "unknown"
}

// dispatchShape classifies a reflect type into a decoding shape.
// Pointers always mean Optional; primitive kinds (including time.Time, which
// also implements TextUnmarshaler) win over the custom leaf check.
func dispatchShape(rtype reflect.Type) ShapeEnum {
	if rtype.Kind() == reflect.Ptr {
		return ShapeOptional
	}

	if primitive.FromReflectType(rtype) != 0 {
		return ShapePrimitive
	}

	if reflect.PtrTo(rtype).Implements(textUnmarshalerType) {
		return ShapeCustom
	}

	switch rtype.Kind() {
	case reflect.Slice:
		return ShapeSequence
	case reflect.Array:
		return ShapeTuple
	case reflect.Struct:
		return ShapeRecord
	}

	return ShapeUnknown
}

func buildSchema(rtype reflect.Type) (*node, error) {
	return buildNode(rtype, typeName(rtype), map[reflect.Type]bool{})
}

func typeName(rtype reflect.Type) string {
	if rtype.Name() != "" {
		return rtype.Name()
	}

	return rtype.String()
}

func buildNode(rtype reflect.Type, path string, visiting map[reflect.Type]bool) (*node, error) {
	switch dispatchShape(rtype) {
	case ShapePrimitive:
		return &node{shape: ShapePrimitive, rtype: rtype, kind: primitive.FromReflectType(rtype)}, nil

	case ShapeCustom:
		return &node{shape: ShapeCustom, rtype: rtype}, nil

	case ShapeOptional:
		if rtype.Elem().Kind() == reflect.Ptr {
			return nil, &DecodeError{Kind: ErrorUnsupportedType, Path: path, Want: "double pointer " + rtype.String()}
		}

		elem, err := buildNode(rtype.Elem(), path, visiting)
		if err != nil {
			return nil, err
		}

		return &node{shape: ShapeOptional, rtype: rtype, elem: elem}, nil

	case ShapeSequence:
		elem, err := buildNode(rtype.Elem(), path+"[]", visiting)
		if err != nil {
			return nil, err
		}

		return &node{shape: ShapeSequence, rtype: rtype, elem: elem}, nil

	case ShapeTuple:
		elem, err := buildNode(rtype.Elem(), path+"[]", visiting)
		if err != nil {
			return nil, err
		}

		return &node{shape: ShapeTuple, rtype: rtype, elem: elem}, nil

	case ShapeRecord:
		if visiting[rtype] {
			return nil, &DecodeError{Kind: ErrorUnsupportedType, Path: path, Want: "cyclic type " + rtype.String()}
		}

		visiting[rtype] = true
		defer delete(visiting, rtype)

		n := &node{shape: ShapeRecord, rtype: rtype}

		for i := 0; i < rtype.NumField(); i++ {
			sf := rtype.Field(i)
			if !sf.IsExported() {
				continue
			}

			tag := sf.Tag.Get("env")
			if tag == "-" {
				continue
			}

			child, err := buildNode(sf.Type, path+"."+sf.Name, visiting)
			if err != nil {
				return nil, err
			}

			if raw, ok := sf.Tag.Lookup("default"); ok {
				value, err := parseDefault(child, raw, path+"."+sf.Name)
				if err != nil {
					return nil, err
				}

				child.hasDefault = true
				child.defaultRaw = raw
				child.defaultVal = value
			}

			segment := sf.Name
			if tag != "" {
				segment = tag
			}

			n.fields = append(n.fields, field{
				goName:  sf.Name,
				segment: segment,
				index:   i,
				node:    child,
			})
		}

		// An opaque struct would decode vacuously to its zero value with an
		// empty footprint; that is almost certainly a caller mistake.
		if len(n.fields) == 0 {
			return nil, &DecodeError{Kind: ErrorUnsupportedType, Path: path, Want: "struct " + rtype.String() + " has no decodable fields"}
		}

		return n, nil
	}

	return nil, &DecodeError{Kind: ErrorUnsupportedType, Path: path, Want: rtype.String()}
}

// parseDefault parses and type-checks a default tag at construction time.
// Defaults are supported on leaves, optionals of leaves, and sequences and
// tuples of leaves (comma-separated element literals, empty string meaning an
// empty sequence). Record defaults are compositional: declare one per field.
func parseDefault(n *node, raw, path string) (reflect.Value, error) {
	invalid := func(want string) error {
		return &DecodeError{Kind: ErrorInvalidDefault, Path: path, Raw: raw, Want: want}
	}

	switch n.shape {
	case ShapePrimitive, ShapeCustom:
		dst := reflect.New(n.rtype).Elem()
		if err := setLeaf(dst, n, raw); err != nil {
			return reflect.Value{}, invalid(n.want())
		}

		return dst, nil

	case ShapeOptional:
		if n.elem.shape != ShapePrimitive && n.elem.shape != ShapeCustom {
			return reflect.Value{}, invalid("optional defaults are supported for leaf values only")
		}

		ptr := reflect.New(n.elem.rtype)
		if err := setLeaf(ptr.Elem(), n.elem, raw); err != nil {
			return reflect.Value{}, invalid(n.elem.want())
		}

		return ptr, nil

	case ShapeSequence:
		if n.elem.shape != ShapePrimitive && n.elem.shape != ShapeCustom {
			return reflect.Value{}, invalid("sequence defaults are supported for leaf elements only")
		}

		items, err := parseDefaultItems(n.elem, raw)
		if err != nil {
			return reflect.Value{}, invalid("comma-separated " + n.elem.want() + " literals")
		}

		slice := reflect.MakeSlice(n.rtype, 0, len(items))
		for _, item := range items {
			slice = reflect.Append(slice, item)
		}

		return slice, nil

	case ShapeTuple:
		if n.elem.shape != ShapePrimitive && n.elem.shape != ShapeCustom {
			return reflect.Value{}, invalid("tuple defaults are supported for leaf elements only")
		}

		items, err := parseDefaultItems(n.elem, raw)
		if err != nil || len(items) != n.rtype.Len() {
			return reflect.Value{}, invalid(fmt.Sprintf("%d comma-separated %s literals", n.rtype.Len(), n.elem.want()))
		}

		arr := reflect.New(n.rtype).Elem()
		for i, item := range items {
			arr.Index(i).Set(item)
		}

		return arr, nil
	}

	return reflect.Value{}, invalid("record defaults are declared per field")
}

func parseDefaultItems(elem *node, raw string) ([]reflect.Value, error) {
	if raw == "" {
		return nil, nil
	}

	var items []reflect.Value

	for _, part := range strings.Split(raw, ",") {
		dst := reflect.New(elem.rtype).Elem()
		if err := setLeaf(dst, elem, part); err != nil {
			return nil, err
		}

		items = append(items, dst)
	}

	return items, nil
}

// checkNames enumerates every variable name the schema could consume and
// fails with ErrorAmbiguousName when two distinct paths resolve to the same
// name. It runs before the source mapping is consulted. Sequences are
// represented by their LEN marker and the index-0 expansion only: a sibling
// whose name mimics a higher probe index passes this check and is caught at
// decode time by the double-bind backstop in decoder.bind, once both paths
// actually consume the name.
func checkNames(n *node, name, path, sep string, seen map[string]string) error {
	register := func(varName, varPath string) error {
		if other, ok := seen[varName]; ok {
			return &DecodeError{Kind: ErrorAmbiguousName, Var: varName, Path: varPath, Other: other}
		}

		seen[varName] = varPath

		return nil
	}

	switch n.shape {
	case ShapePrimitive, ShapeCustom:
		if name == "" {
			return &DecodeError{
				Kind: ErrorUnsupportedType,
				Path: path,
				Want: "a leaf value at the root needs a prefix to derive its variable name",
			}
		}

		return register(name, path)

	case ShapeOptional:
		if err := register(names.ExplicitNone(name, sep), path); err != nil {
			return err
		}

		return checkNames(n.elem, name, path, sep, seen)

	case ShapeSequence:
		if err := register(names.Length(name, sep), path); err != nil {
			return err
		}

		return checkNames(n.elem, names.Index(name, 0, sep), path+"[0]", sep, seen)

	case ShapeTuple:
		for i := 0; i < n.rtype.Len(); i++ {
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			if err := checkNames(n.elem, names.Index(name, i, sep), elemPath, sep, seen); err != nil {
				return err
			}
		}

		return nil

	case ShapeRecord:
		for _, f := range n.fields {
			childName := names.Join(name, f.segment, sep)
			if err := checkNames(f.node, childName, path+"."+f.goName, sep, seen); err != nil {
				return err
			}
		}

		return nil
	}

	return nil
}
