package server

import (
	"reflect"
	"strconv"

	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/pkg/errors"
)

// Convert converts a decoded parameter to T. Numeric values are converted within
// range, strings are parsed when T is a number or bool.
func Convert[T any](v any) (T, error) {
	var zero T
	target := reflect.TypeFor[T]()

	out, err := serializer.Coerce(v, target)
	if err == nil {
		if out == nil {
			return zero, nil
		}
		// out may be assignable to T without being a T
		dst := reflect.New(target).Elem()
		dst.Set(reflect.ValueOf(out))
		return dst.Interface().(T), nil
	}

	s, ok := v.(string)
	if !ok {
		return zero, err
	}
	parsed, perr := parseString(s, target)
	if perr != nil {
		return zero, errors.Wrapf(perr, "cannot convert %q to %s", s, target)
	}
	return parsed.Interface().(T), nil
}

// parseString parses s into a value of the scalar kind of target
func parseString(s string, target reflect.Type) (reflect.Value, error) {
	out := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, target.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, target.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, target.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetFloat(f)
	default:
		return reflect.Value{}, errors.Wrapf(serializer.ErrClassNoMatch, "no string conversion to %s", target)
	}
	return out, nil
}
