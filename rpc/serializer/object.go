package serializer

import (
	"reflect"

	"github.com/pkg/errors"
)

// compositeCodec writes the fields of a registered struct in schema order. There
// is no field count on the wire, both peers rely on the schema.
type compositeCodec struct{}

func (compositeCodec) write(c *writeContext, e *TypeEntry, v reflect.Value) error {
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if !v.CanAddr() {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p.Elem()
	}

	for _, f := range c.s.reg.SchemaOf(e).Fields {
		if err := c.writeValue(f.def.ref(v)); err != nil {
			return errors.Wrapf(err, "%s.%s", e.Name, f.Name)
		}
	}
	return nil
}

func (compositeCodec) read(c *readContext, e *TypeEntry, refID int32, _ reflect.Type) (reflect.Value, error) {
	p, err := e.alloc()
	if err != nil {
		return reflect.Value{}, err
	}
	// visible to back references from its own fields
	c.register(refID, p)

	obj := p.Elem()
	for _, f := range c.s.reg.SchemaOf(e).Fields {
		if c.r.Remaining() == 0 {
			// written by a peer that does not know the remaining fields
			break
		}
		if err := c.readInto(f.def.ref(obj)); err != nil {
			return reflect.Value{}, errors.Wrapf(err, "%s.%s", e.Name, f.Name)
		}
	}
	return p, nil
}
