package serializer

import (
	"reflect"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// valueCodec encodes the payload of one category of values. write receives a
// non-null value whose type resolved to e. read returns the value in the codec's
// natural type, or directly in target when the codec builds containers.
type valueCodec interface {
	write(c *writeContext, e *TypeEntry, v reflect.Value) error
	read(c *readContext, e *TypeEntry, refID int32, target reflect.Type) (reflect.Value, error)
}

// --------------------------------------------------------------------------
// Scalars
// --------------------------------------------------------------------------

type objectCodec struct{}

func (objectCodec) write(*writeContext, *TypeEntry, reflect.Value) error { return nil }

func (objectCodec) read(*readContext, *TypeEntry, int32, reflect.Type) (reflect.Value, error) {
	return reflect.ValueOf(Object{}), nil
}

type boolCodec struct{}

func (boolCodec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	c.w.WriteBool(v.Bool())
	return nil
}

func (boolCodec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	b, err := c.r.ReadBool()
	return reflect.ValueOf(b), err
}

type charCodec struct{}

func (charCodec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	return c.w.WriteChar(Char(v.Int()))
}

func (charCodec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	ch, err := c.r.ReadChar()
	return reflect.ValueOf(ch), err
}

type byteCodec struct{}

func (byteCodec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	return c.w.WriteByte(byte(intBits(v)))
}

func (byteCodec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	b, err := c.r.ReadByte()
	return reflect.ValueOf(b), err
}

type int16Codec struct{}

func (int16Codec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	c.w.WriteInt16(int16(intBits(v)))
	return nil
}

func (int16Codec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	i, err := c.r.ReadInt16()
	return reflect.ValueOf(i), err
}

type int32Codec struct{}

func (int32Codec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	c.w.WriteInt32(int32(intBits(v)))
	return nil
}

func (int32Codec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	i, err := c.r.ReadInt32()
	return reflect.ValueOf(i), err
}

type int64Codec struct{}

func (int64Codec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	c.w.WriteInt64(intBits(v))
	return nil
}

func (int64Codec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	i, err := c.r.ReadInt64()
	return reflect.ValueOf(i), err
}

type float32Codec struct{}

func (float32Codec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	c.w.WriteFloat32(float32(v.Float()))
	return nil
}

func (float32Codec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	f, err := c.r.ReadFloat32()
	return reflect.ValueOf(f), err
}

type float64Codec struct{}

func (float64Codec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	c.w.WriteFloat64(v.Float())
	return nil
}

func (float64Codec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	f, err := c.r.ReadFloat64()
	return reflect.ValueOf(f), err
}

// intBits returns the two's complement bits of any integer kind
func intBits(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(v.Uint())
	default:
		return v.Int()
	}
}

// --------------------------------------------------------------------------
// Text based values
// --------------------------------------------------------------------------

type stringCodec struct{}

func (stringCodec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	return c.s.writeString(c.w, v.String())
}

func (stringCodec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	s, err := c.s.readString(c.r)
	return reflect.ValueOf(s), err
}

type decimalCodec struct{}

func (decimalCodec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	d := v.Interface().(decimal.Decimal)
	return c.s.writeString(c.w, d.String())
}

func (decimalCodec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	s, err := c.s.readString(c.r)
	if err != nil {
		return reflect.Value{}, err
	}
	if s == "" {
		return reflect.ValueOf(decimal.Zero), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return reflect.Value{}, errors.Wrapf(ErrClassNoMatch, "invalid decimal %q: %v", s, err)
	}
	return reflect.ValueOf(d), nil
}

// dateCodec encodes time.Time as milliseconds since the unix epoch
type dateCodec struct{}

func (dateCodec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	c.w.WriteInt64(v.Interface().(time.Time).UnixMilli())
	return nil
}

func (dateCodec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	ms, err := c.r.ReadInt64()
	return reflect.ValueOf(time.UnixMilli(ms)), err
}

type enumCodec struct{}

func (enumCodec) write(c *writeContext, e *TypeEntry, v reflect.Value) error {
	name, ok := e.enum.names[v.Interface()]
	if !ok {
		return errors.Wrapf(ErrUnknownEnumName, "%s has no name for value %v", e.Name, v.Interface())
	}
	return c.s.writeString(c.w, name)
}

func (enumCodec) read(c *readContext, e *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	name, err := c.s.readString(c.r)
	if err != nil {
		return reflect.Value{}, err
	}
	v, ok := e.enum.values[name]
	if !ok {
		return reflect.Value{}, errors.Wrapf(ErrUnknownEnumName, "%s has no constant %q", e.Name, name)
	}
	return v, nil
}

// --------------------------------------------------------------------------
// Containers
// --------------------------------------------------------------------------

// listCodec serves both slices (list) and Go arrays (array). Either wire form
// decodes into a slice, an array or []any.
type listCodec struct{}

func (listCodec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	n := v.Len()
	c.w.WriteInt32(int32(n))
	for i := 0; i < n; i++ {
		if err := c.writeValue(v.Index(i)); err != nil {
			return errors.Wrapf(err, "element %d", i)
		}
	}
	return nil
}

func (listCodec) read(c *readContext, _ *TypeEntry, refID int32, target reflect.Type) (reflect.Value, error) {
	n, err := c.readCount()
	if err != nil {
		return reflect.Value{}, err
	}

	var out reflect.Value
	switch {
	case target != nil && target.Kind() == reflect.Slice:
		out = reflect.MakeSlice(target, n, n)
	case target != nil && target.Kind() == reflect.Array:
		out = reflect.New(target).Elem()
	default:
		out = reflect.MakeSlice(reflect.TypeFor[[]any](), n, n)
	}
	c.register(refID, out)

	for i := 0; i < n; i++ {
		if i >= out.Len() {
			// fixed size target is full, consume the rest
			if _, err := c.readValue(nil); err != nil {
				return reflect.Value{}, err
			}
			continue
		}
		if err := c.readInto(out.Index(i)); err != nil {
			return reflect.Value{}, errors.Wrapf(err, "element %d", i)
		}
	}
	return out, nil
}

type mapCodec struct{}

func (mapCodec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	c.w.WriteInt32(int32(v.Len()))
	iter := v.MapRange()
	for iter.Next() {
		if err := c.writeValue(iter.Key()); err != nil {
			return errors.Wrapf(err, "map key %v", iter.Key())
		}
		if err := c.writeValue(iter.Value()); err != nil {
			return errors.Wrapf(err, "map value of %v", iter.Key())
		}
	}
	return nil
}

func (mapCodec) read(c *readContext, _ *TypeEntry, refID int32, target reflect.Type) (reflect.Value, error) {
	n, err := c.readCount()
	if err != nil {
		return reflect.Value{}, err
	}

	mapType := reflect.TypeFor[map[any]any]()
	if target != nil && target.Kind() == reflect.Map {
		mapType = target
	}
	out := reflect.MakeMapWithSize(mapType, n)
	c.register(refID, out)

	for i := 0; i < n; i++ {
		k := reflect.New(mapType.Key()).Elem()
		if err := c.readInto(k); err != nil {
			return reflect.Value{}, errors.Wrap(err, "map key")
		}
		if !k.Comparable() {
			return reflect.Value{}, errors.Wrapf(ErrClassNoMatch, "map key of type %s is not comparable", k.Type())
		}
		val := reflect.New(mapType.Elem()).Elem()
		if err := c.readInto(val); err != nil {
			return reflect.Value{}, errors.Wrapf(err, "map value of %v", k)
		}
		out.SetMapIndex(k, val)
	}
	return out, nil
}

type keyValueCodec struct{}

func (keyValueCodec) write(c *writeContext, _ *TypeEntry, v reflect.Value) error {
	kv := v.Interface().(KeyValuePair)
	if err := c.writeValue(reflect.ValueOf(kv.Key)); err != nil {
		return err
	}
	return c.writeValue(reflect.ValueOf(kv.Value))
}

func (keyValueCodec) read(c *readContext, _ *TypeEntry, _ int32, _ reflect.Type) (reflect.Value, error) {
	var kv KeyValuePair
	if err := c.readInto(reflect.ValueOf(&kv.Key).Elem()); err != nil {
		return reflect.Value{}, err
	}
	if err := c.readInto(reflect.ValueOf(&kv.Value).Elem()); err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(kv), nil
}

// readCount reads a collection size. Every element takes at least four bytes,
// larger counts are rejected before anything is allocated.
func (c *readContext) readCount() (int, error) {
	n, err := c.r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 || int(n) > c.r.Remaining()/4 {
		return 0, errors.Wrapf(ErrOutOfRange, "collection of %d elements with %d bytes left", n, c.r.Remaining())
	}
	return int(n), nil
}
