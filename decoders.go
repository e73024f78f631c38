package fromenv

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/stepan-anokhin/fromenv/internal/names"
	"github.com/stepan-anokhin/fromenv/primitive"
)

// decoder walks a schema against a read-only source mapping, accumulating
// the footprint of consumed variables. A decoder lives for one decode call.
type decoder struct {
	vars  map[string]string
	sep   string
	foot  Footprint
	bound map[string]string // consumed name -> qualified path, double-bind backstop
}

func newDecoder(vars map[string]string, sep string) *decoder {
	return &decoder{
		vars:  vars,
		sep:   sep,
		foot:  Footprint{},
		bound: map[string]string{},
	}
}

// bind marks a variable as consumed by the value at path.
func (d *decoder) bind(name, path string) error {
	if other, ok := d.bound[name]; ok {
		return &DecodeError{Kind: ErrorAmbiguousName, Var: name, Path: path, Other: other}
	}

	d.bound[name] = path
	d.foot.add(name)

	return nil
}

func (d *decoder) decode(n *node, name, path string) (reflect.Value, error) {
	switch n.shape {
	case ShapePrimitive, ShapeCustom:
		return d.decodeLeaf(n, name, path)
	case ShapeOptional:
		return d.decodeOptional(n, name, path)
	case ShapeSequence:
		return d.decodeSequence(n, name, path)
	case ShapeTuple:
		return d.decodeTuple(n, name, path)
	case ShapeRecord:
		return d.decodeRecord(n, name, path)
	}

	return reflect.Value{}, &DecodeError{Kind: ErrorUnsupportedType, Path: path, Want: n.rtype.String()}
}

// decodeLeaf consumes exactly one variable, or resolves to the declared
// default without consuming anything.
func (d *decoder) decodeLeaf(n *node, name, path string) (reflect.Value, error) {
	raw, ok := d.vars[name]
	if !ok {
		if n.hasDefault {
			return n.defaultVal, nil
		}

		return reflect.Value{}, missingVar(name, path, n.want())
	}

	if err := d.bind(name, path); err != nil {
		return reflect.Value{}, err
	}

	dst := reflect.New(n.rtype).Elem()
	if err := setLeaf(dst, n, raw); err != nil {
		return reflect.Value{}, invalidValue(name, path, n.want(), raw)
	}

	return dst, nil
}

// decodeOptional checks the explicit-nil marker first: a present truthy
// marker is decisive and consumes only itself, regardless of the wrapped
// variables. Otherwise the optional is transparent: the wrapped node decodes
// under the same name, and its total absence surfaces as the wrapped node's
// own missing-variable error unless a default is declared (nil must be an
// explicit, consuming choice). The default is resolved here, after the
// marker is consumed: a falsy marker alone does not count as partial
// presence of the wrapped value.
func (d *decoder) decodeOptional(n *node, name, path string) (reflect.Value, error) {
	marker := names.ExplicitNone(name, d.sep)
	if raw, ok := d.vars[marker]; ok {
		isNone, err := primitive.ParseBool(raw)
		if err != nil {
			return reflect.Value{}, invalidValue(marker, path, "bool", raw)
		}

		if err := d.bind(marker, path); err != nil {
			return reflect.Value{}, err
		}

		if isNone {
			return reflect.Zero(n.rtype), nil
		}
	}

	before := len(d.foot)

	wrapped, err := d.decode(n.elem, name, path)
	if err != nil {
		if n.hasDefault && len(d.foot) == before && kindOf(err) == ErrorMissingVar {
			return n.defaultVal, nil
		}

		return reflect.Value{}, err
	}

	ptr := reflect.New(n.elem.rtype)
	ptr.Elem().Set(wrapped)

	return ptr, nil
}

// decodeRecord decodes fields in declaration order. A field default wins
// when the field's decode either failed on pure absence or succeeded without
// consuming any variable (a shape-specific default must not shadow an
// explicitly declared one).
func (d *decoder) decodeRecord(n *node, name, path string) (reflect.Value, error) {
	dst := reflect.New(n.rtype).Elem()

	for _, f := range n.fields {
		childName := names.Join(name, f.segment, d.sep)
		childPath := path + "." + f.goName

		before := len(d.foot)

		value, err := d.decode(f.node, childName, childPath)
		if err != nil {
			if f.node.hasDefault && len(d.foot) == before && kindOf(err) == ErrorMissingVar {
				dst.Field(f.index).Set(f.node.defaultVal)
				continue
			}

			return reflect.Value{}, err
		}

		if f.node.hasDefault && len(d.foot) == before {
			value = f.node.defaultVal
		}

		dst.Field(f.index).Set(value)
	}

	return dst, nil
}

// decodeSequence decodes a slice. With a LEN marker the length is explicit
// and exactly that many elements are decoded; LEN=0 is the only way to an
// empty slice. Without a marker, elements are probed from index 0 upward
// until the first absent one; this path never yields an empty slice.
func (d *decoder) decodeSequence(n *node, name, path string) (reflect.Value, error) {
	lenName := names.Length(name, d.sep)
	if raw, ok := d.vars[lenName]; ok {
		return d.decodeDeclaredLength(n, name, path, lenName, raw)
	}

	slice := reflect.MakeSlice(n.rtype, 0, 0)

	for i := 0; ; i++ {
		elemName := names.Index(name, i, d.sep)
		elemPath := fmt.Sprintf("%s[%d]", path, i)

		if !d.present(n.elem, elemName) {
			if i == 0 {
				// Decode anyway: a partially present element yields the most
				// specific inner error; a fully absent one yields a missing
				// error that a field-level default may still resolve.
				_, err := d.decode(n.elem, elemName, elemPath)
				if err == nil {
					err = missingVar(elemName, path, n.want())
				}

				return reflect.Value{}, err
			}

			break
		}

		before := len(d.foot)

		value, err := d.decode(n.elem, elemName, elemPath)
		if err != nil {
			return reflect.Value{}, err
		}

		if len(d.foot) == before {
			// The element decoded entirely from defaults. Elements must
			// consume at least one variable while probing, otherwise the
			// probe would never terminate.
			if i == 0 {
				return reflect.Value{}, missingVar(elemName, path, n.want())
			}

			break
		}

		slice = reflect.Append(slice, value)
	}

	return slice, nil
}

func (d *decoder) decodeDeclaredLength(n *node, name, path, lenName, raw string) (reflect.Value, error) {
	length, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || length < 0 {
		return reflect.Value{}, &DecodeError{Kind: ErrorInvalidLength, Var: lenName, Path: path, Raw: raw}
	}

	if err := d.bind(lenName, path); err != nil {
		return reflect.Value{}, err
	}

	slice := reflect.MakeSlice(n.rtype, 0, int(length))

	for i := 0; i < int(length); i++ {
		elemName := names.Index(name, i, d.sep)
		elemPath := fmt.Sprintf("%s[%d]", path, i)

		value, err := d.decode(n.elem, elemName, elemPath)
		if err != nil {
			if de, ok := err.(*DecodeError); ok && de.Kind == ErrorMissingVar {
				// The declared length promised an element that is not there.
				return reflect.Value{}, &DecodeError{Kind: ErrorInvalidLength, Var: de.Var, Path: path}
			}

			return reflect.Value{}, err
		}

		slice = reflect.Append(slice, value)
	}

	return slice, nil
}

// decodeTuple decodes a fixed-length array: every index is decoded, there is
// no LEN marker.
func (d *decoder) decodeTuple(n *node, name, path string) (reflect.Value, error) {
	arr := reflect.New(n.rtype).Elem()

	for i := 0; i < n.rtype.Len(); i++ {
		elemName := names.Index(name, i, d.sep)
		elemPath := fmt.Sprintf("%s[%d]", path, i)

		value, err := d.decode(n.elem, elemName, elemPath)
		if err != nil {
			return reflect.Value{}, err
		}

		arr.Index(i).Set(value)
	}

	return arr, nil
}

// present reports whether all variables required to decode the node are
// defined. Nodes whose every part can resolve to a default are vacuously
// present.
func (d *decoder) present(n *node, name string) bool {
	switch n.shape {
	case ShapePrimitive, ShapeCustom:
		_, ok := d.vars[name]
		return ok

	case ShapeOptional:
		if _, ok := d.vars[names.ExplicitNone(name, d.sep)]; ok {
			return true
		}

		return d.present(n.elem, name)

	case ShapeSequence:
		if _, ok := d.vars[names.Length(name, d.sep)]; ok {
			return true
		}

		return d.present(n.elem, names.Index(name, 0, d.sep))

	case ShapeTuple:
		for i := 0; i < n.rtype.Len(); i++ {
			if !d.present(n.elem, names.Index(name, i, d.sep)) {
				return false
			}
		}

		return true

	case ShapeRecord:
		for _, f := range n.fields {
			if f.node.hasDefault {
				continue
			}

			if !d.present(f.node, names.Join(name, f.segment, d.sep)) {
				return false
			}
		}

		return true
	}

	return false
}

// setLeaf parses raw into an addressable destination of the leaf's type.
func setLeaf(dst reflect.Value, n *node, raw string) error {
	if n.shape == ShapeCustom {
		return dst.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw))
	}

	if n.kind == primitive.KindStringEnum {
		value, err := primitive.ValidateEnum(n.rtype, raw)
		if err != nil {
			return err
		}

		dst.Set(value)

		return nil
	}

	parsed, err := primitive.Parse(n.kind, raw)
	if err != nil {
		return err
	}

	switch value := parsed.(type) {
	case int64:
		dst.SetInt(value)
	case uint64:
		dst.SetUint(value)
	case float64:
		dst.SetFloat(value)
	case bool:
		dst.SetBool(value)
	case string:
		dst.SetString(value)
	case time.Duration:
		dst.SetInt(int64(value))
	case time.Time:
		dst.Set(reflect.ValueOf(value))
	default:
		return fmt.Errorf("unsupported parsed value type %T", parsed)
	}

	return nil
}
