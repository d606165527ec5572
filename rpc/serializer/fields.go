package serializer

import (
	"reflect"

	"github.com/pkg/errors"
)

// fieldDef describes one serialized field of a composite type. ref returns the
// addressable field inside an addressable struct value.
type fieldDef struct {
	name string
	typ  reflect.Type
	ref  func(obj reflect.Value) reflect.Value
}

// --------------------------------------------------------------------------
// Builder mode
// --------------------------------------------------------------------------

// FieldSet is a group of field descriptors of struct type T
type FieldSet[T any] interface {
	defs() []fieldDef
}

// Field describes a single member of T
type Field[T any] struct {
	def fieldDef
}

func (f Field[T]) defs() []fieldDef { return []fieldDef{f.def} }

type fieldGroup[T any] []fieldDef

func (g fieldGroup[T]) defs() []fieldDef { return g }

// Member declares a serialized member of T under the given wire name. A name
// starting with '#' is always ordered last.
//
//	serializer.Member("name", func(p *Person) *string { return &p.Name })
func Member[T any, F any](name string, ref func(*T) *F) Field[T] {
	return Field[T]{def: fieldDef{
		name: name,
		typ:  reflect.TypeFor[F](),
		ref: func(obj reflect.Value) reflect.Value {
			return reflect.ValueOf(ref(obj.Addr().Interface().(*T))).Elem()
		},
	}}
}

// Embedded pulls the fields of an ancestor struct P into T. The fields take part
// in the ordering of T as if they were declared on T.
func Embedded[T any, P any](ref func(*T) *P, fields ...FieldSet[P]) FieldSet[T] {
	var group fieldGroup[T]
	for _, set := range fields {
		for _, d := range set.defs() {
			inner := d.ref
			group = append(group, fieldDef{
				name: d.name,
				typ:  d.typ,
				ref: func(obj reflect.Value) reflect.Value {
					parent := reflect.ValueOf(ref(obj.Addr().Interface().(*T))).Elem()
					return inner(parent)
				},
			})
		}
	}
	return group
}

// StructDef is the explicit schema of a composite type
type StructDef[T any] struct {
	name   string
	fields []fieldDef
}

// Struct declares the composite type T with the given wire name ("" for the bare
// Go name) and its serialized members.
func Struct[T any](name string, fields ...FieldSet[T]) *StructDef[T] {
	def := &StructDef[T]{name: name}
	for _, set := range fields {
		def.fields = append(def.fields, set.defs()...)
	}
	return def
}

// Register adds the composite type described by def to the registry
func Register[T any](reg *TypeRegistry, def *StructDef[T]) (*TypeEntry, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrAllocation, "%s is not a struct type", t)
	}
	name := def.name
	if name == "" {
		name = t.Name()
	}
	return reg.add(&TypeEntry{
		ID:     HashCode(name),
		Name:   name,
		Kind:   KindComposite,
		Type:   t,
		codec:  compositeCodec{},
		fields: def.fields,
	})
}

// MustRegister is like Register but panics on error. Intended for package init.
func MustRegister[T any](reg *TypeRegistry, def *StructDef[T]) *TypeEntry {
	e, err := Register(reg, def)
	if err != nil {
		panic(err)
	}
	return e
}

// --------------------------------------------------------------------------
// Tag mode
// --------------------------------------------------------------------------

const tagName = "gaea"

// tagFields collects the serialized fields of t from its `gaea` tags. Embedded
// structs are walked like ancestors. In opt-in mode only tagged fields are taken,
// in opt-out mode every exported field except `gaea:"-"`.
func tagFields(t reflect.Type, optOut bool) []fieldDef {
	var out []fieldDef

	var walk func(t reflect.Type, index []int)
	walk = func(t reflect.Type, index []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag, tagged := f.Tag.Lookup(tagName)
			if tag == "-" {
				continue
			}

			idx := append(append([]int(nil), index...), i)

			if f.Anonymous && f.Type.Kind() == reflect.Struct && !tagged {
				walk(f.Type, idx)
				continue
			}
			if !f.IsExported() || (!tagged && !optOut) {
				continue
			}

			name := f.Name
			if tag != "" {
				name = tag
			}
			out = append(out, fieldDef{
				name: name,
				typ:  f.Type,
				ref: func(obj reflect.Value) reflect.Value {
					return obj.FieldByIndex(idx)
				},
			})
		}
	}
	walk(t, nil)

	return out
}
