package serializer

import (
	"reflect"

	"github.com/pkg/errors"
)

// Coerce converts a decoded value to target: numeric widening and narrowing
// within range, pointer wrapping and unwrapping, element wise conversion of
// lists and maps. A nil v yields the zero value of target.
func Coerce(v any, target reflect.Type) (any, error) {
	out, err := coerce(reflect.ValueOf(v), target)
	if err != nil {
		return nil, err
	}
	if !out.IsValid() {
		if target == nil {
			return nil, nil
		}
		return reflect.Zero(target).Interface(), nil
	}
	return out.Interface(), nil
}

func coerce(v reflect.Value, target reflect.Type) (reflect.Value, error) {
	if !v.IsValid() || target == nil || v.Type() == target {
		return v, nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, nil
		}
		return coerce(v.Elem(), target)
	}
	if v.Type().AssignableTo(target) {
		return v, nil
	}

	switch {
	case target.Kind() == reflect.Interface:
		// not assignable, so not implemented

	case v.Kind() == reflect.Pointer && target.Kind() != reflect.Pointer:
		if v.IsNil() {
			return reflect.Value{}, nil
		}
		return coerce(v.Elem(), target)

	case target.Kind() == reflect.Pointer && v.Kind() != reflect.Pointer:
		inner, err := coerce(v, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(target.Elem())
		if inner.IsValid() {
			p.Elem().Set(inner)
		}
		return p, nil

	case isNumber(v.Kind()) && isNumber(target.Kind()):
		return convertNumber(v, target)

	case v.Kind() == target.Kind() && v.Kind() != reflect.Struct && v.Type().ConvertibleTo(target):
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Map && v.Kind() != reflect.Array {
			// named scalar types (type Name string)
			return v.Convert(target), nil
		}
	}

	switch {
	case (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) &&
		(target.Kind() == reflect.Slice || target.Kind() == reflect.Array):
		return coerceList(v, target)
	case v.Kind() == reflect.Map && target.Kind() == reflect.Map:
		return coerceMap(v, target)
	}

	return reflect.Value{}, errors.Wrapf(ErrClassNoMatch, "cannot convert %s to %s", v.Type(), target)
}

func coerceList(v reflect.Value, target reflect.Type) (reflect.Value, error) {
	n := v.Len()
	var out reflect.Value
	if target.Kind() == reflect.Slice {
		out = reflect.MakeSlice(target, n, n)
	} else {
		out = reflect.New(target).Elem()
		n = min(n, out.Len())
	}
	for i := 0; i < n; i++ {
		elem, err := coerce(v.Index(i), target.Elem())
		if err != nil {
			return reflect.Value{}, errors.Wrapf(err, "element %d", i)
		}
		if elem.IsValid() {
			out.Index(i).Set(elem)
		}
	}
	return out, nil
}

func coerceMap(v reflect.Value, target reflect.Type) (reflect.Value, error) {
	out := reflect.MakeMapWithSize(target, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := coerce(iter.Key(), target.Key())
		if err != nil {
			return reflect.Value{}, errors.Wrap(err, "map key")
		}
		if !k.IsValid() {
			k = reflect.Zero(target.Key())
		}
		val, err := coerce(iter.Value(), target.Elem())
		if err != nil {
			return reflect.Value{}, errors.Wrapf(err, "map value of %v", k)
		}
		if !val.IsValid() {
			val = reflect.Zero(target.Elem())
		}
		out.SetMapIndex(k, val)
	}
	return out, nil
}

func isNumber(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k) || k == reflect.Float32 || k == reflect.Float64
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

// convertNumber converts between numeric kinds and fails when the value does not
// fit. A negative signed value converts to an unsigned type of the same width by
// reinterpreting its bits, which restores unsigned values written as signed.
func convertNumber(v reflect.Value, target reflect.Type) (reflect.Value, error) {
	out := reflect.New(target).Elem()
	overflow := false

	switch {
	case isSigned(target.Kind()):
		switch {
		case isSigned(v.Kind()):
			overflow = out.OverflowInt(v.Int())
		case isUnsigned(v.Kind()):
			overflow = v.Uint() > 1<<63-1 || out.OverflowInt(int64(v.Uint()))
		default:
			overflow = v.Float() != float64(int64(v.Float())) || out.OverflowInt(int64(v.Float()))
		}
	case isUnsigned(target.Kind()):
		switch {
		case isSigned(v.Kind()):
			i := v.Int()
			if i < 0 && v.Type().Bits() == target.Bits() {
				out.SetUint(uint64(i) & (1<<target.Bits() - 1))
				return out, nil
			}
			overflow = i < 0 || out.OverflowUint(uint64(i))
		case isUnsigned(v.Kind()):
			overflow = out.OverflowUint(v.Uint())
		default:
			overflow = v.Float() < 0 || v.Float() != float64(uint64(v.Float())) || out.OverflowUint(uint64(v.Float()))
		}
	default:
		if isSigned(v.Kind()) {
			overflow = out.OverflowFloat(float64(v.Int()))
		} else if isUnsigned(v.Kind()) {
			overflow = out.OverflowFloat(float64(v.Uint()))
		} else {
			overflow = out.OverflowFloat(v.Float())
		}
	}

	if overflow {
		return reflect.Value{}, errors.Wrapf(ErrClassNoMatch, "value %v overflows %s", v.Interface(), target)
	}
	return v.Convert(target), nil
}
