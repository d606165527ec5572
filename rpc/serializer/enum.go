package serializer

import (
	"reflect"

	"github.com/pkg/errors"
)

type enumTable struct {
	names  map[any]string
	values map[string]reflect.Value
}

// RegisterEnum registers a named constant type. Values travel as their declared
// names, so peers may renumber constants freely. An empty name registers the type
// under its bare Go name.
//
//	serializer.RegisterEnum(reg, "Color", map[Color]string{Red: "RED", Green: "GREEN"})
func RegisterEnum[E comparable](reg *TypeRegistry, name string, names map[E]string) (*TypeEntry, error) {
	t := reflect.TypeFor[E]()
	if name == "" {
		name = t.Name()
	}

	table := &enumTable{
		names:  make(map[any]string, len(names)),
		values: make(map[string]reflect.Value, len(names)),
	}
	for v, n := range names {
		if _, dup := table.values[n]; dup {
			return nil, errors.Errorf("enum %s declares the name %q twice", name, n)
		}
		table.names[v] = n
		table.values[n] = reflect.ValueOf(v)
	}

	return reg.add(&TypeEntry{
		ID:    HashCode(name),
		Name:  name,
		Kind:  KindEnum,
		Type:  t,
		codec: enumCodec{},
		enum:  table,
	})
}
