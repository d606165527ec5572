package serializer

import (
	"reflect"

	"github.com/pkg/errors"
)

// maxDepth bounds the nesting of value frames in both directions
const maxDepth = 1000

// refKey identifies a value with identity. The type is part of the key because a
// struct and its first field share an address, the length because a slice and
// its prefix share one.
type refKey struct {
	t reflect.Type
	p uintptr
	n int
}

// writeContext holds the state of a single Serialize call
type writeContext struct {
	s     *Serializer
	w     *Writer
	refs  map[refKey]int32
	next  int32
	depth int
}

func newWriteContext(s *Serializer) *writeContext {
	return &writeContext{s: s, w: NewWriter(256), refs: make(map[refKey]int32)}
}

// writeValue writes a full value frame
func (c *writeContext) writeValue(v reflect.Value) error {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxDepth {
		return errors.Wrapf(ErrOutOfRange, "values nested deeper than %d levels", maxDepth)
	}

	for v.IsValid() && v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if isNull(v) {
		c.w.WriteInt32(0)
		return nil
	}

	e, err := c.s.reg.TypeIDOf(v.Type())
	if err != nil {
		return err
	}

	// pointers only carry identity for composites
	if v.Kind() == reflect.Pointer && e.Kind != KindComposite {
		return c.writeValue(v.Elem())
	}

	c.w.WriteInt32(e.ID)

	if hasIdentity(v) {
		key := refKey{t: v.Type(), p: v.Pointer()}
		if v.Kind() == reflect.Slice {
			key.n = v.Len()
		}
		if id, seen := c.refs[key]; seen {
			_ = c.w.WriteByte(1)
			c.w.WriteInt32(id)
			return nil
		}
		c.next++
		c.refs[key] = c.next
		_ = c.w.WriteByte(0)
		c.w.WriteInt32(c.next)
	} else {
		_ = c.w.WriteByte(0)
		c.w.WriteInt32(0)
	}

	return e.codec.write(c, e, v)
}

// readContext holds the state of a single Deserialize call
type readContext struct {
	s     *Serializer
	r     *Reader
	refs  map[int32]reflect.Value
	depth int
}

func newReadContext(s *Serializer, b []byte) *readContext {
	return &readContext{s: s, r: NewReader(b), refs: make(map[int32]reflect.Value)}
}

// readValue reads a full value frame and converts it to target. A nil target
// accepts any value. Null frames return the invalid Value.
func (c *readContext) readValue(target reflect.Type) (reflect.Value, error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxDepth {
		return reflect.Value{}, errors.Wrapf(ErrOutOfRange, "values nested deeper than %d levels", maxDepth)
	}

	id, err := c.r.ReadInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	if id == 0 || id == TypeIDNull {
		return reflect.Value{}, nil
	}

	e, ok := c.s.reg.Lookup(id)
	if !ok {
		return reflect.Value{}, errors.Wrapf(ErrClassNotFound, "type id %d (expected %s)", id, typeName(target))
	}
	if !e.assignableTo(target) {
		return reflect.Value{}, errors.Wrapf(ErrClassNoMatch, "%s is not assignable to %s", e.Name, typeName(target))
	}

	isRef, err := c.r.ReadByte()
	if err != nil {
		return reflect.Value{}, err
	}
	refID, err := c.r.ReadInt32()
	if err != nil {
		return reflect.Value{}, err
	}

	var v reflect.Value
	if isRef != 0 {
		if v, ok = c.refs[refID]; !ok {
			return reflect.Value{}, errors.Wrapf(ErrUnresolvedReference, "reference %d", refID)
		}
	} else if v, err = e.codec.read(c, e, refID, target); err != nil {
		return reflect.Value{}, err
	}

	return coerce(v, target)
}

// readInto reads a value frame into the settable dst
func (c *readContext) readInto(dst reflect.Value) error {
	v, err := c.readValue(dst.Type())
	if err != nil {
		return err
	}
	if !v.IsValid() {
		dst.SetZero()
		return nil
	}
	dst.Set(v)
	return nil
}

// register records a decoded value with identity before its children are read
func (c *readContext) register(refID int32, v reflect.Value) {
	if refID != 0 {
		c.refs[refID] = v
	}
}

// hasIdentity reports whether v is shared by reference: composite pointers, maps
// and slices. Pointers to other values were unwrapped before.
func hasIdentity(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		return true
	default:
		return false
	}
}

func isNull(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	return t.String()
}
