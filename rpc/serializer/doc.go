// Package serializer implements the self-describing binary value format of the
// gaea RPC framework. Every value travels as a frame carrying its type id, so the
// receiver can decode it without knowing the type in advance.
//
// Frame layout (all integers little-endian):
//
//	[typeId int32][isBackReference byte][referenceId int32][payload]
//
// A null value is the single int32 0. Values with identity (pointers to registered
// structs and maps) get a reference id per Serialize call, a second occurrence is
// written as a back reference to the first. Cycles therefore terminate and shared
// objects decode to one object.
//
// Key Components:
//
//   - TypeRegistry: maps Go types to type ids. Built-in types have fixed ids, user
//     types get HashCode(name). Struct types are registered explicitly with Register
//     (builder mode) or RegisterType (struct tags), or lazily on first use when they
//     implement Serializable. Enums are registered with RegisterEnum.
//
//   - Schema: the field order of a registered struct, ascending by the hash of the
//     lower-cased field name. A name starting with '#' is always last. There is no
//     field count on the wire, fields may only be added at the end of the order.
//
//   - Serializer: IRPCSerializer implementation with per call reference tables.
//     Safe for concurrent use.
//
//   - Stats: codec traffic and cache gauges (go-metrics).
//
// Usage:
//
//	reg := serializer.NewTypeRegistry()
//	serializer.MustRegister(reg, serializer.Struct[Person]("Person",
//		serializer.Member("name", func(p *Person) *string { return &p.Name }),
//		serializer.Member("age", func(p *Person) *int32 { return &p.Age }),
//	))
//
//	s := serializer.NewSerializer(reg)
//	data, err := s.Serialize(&Person{Name: "gaea", Age: 3})
//	p, err := serializer.DeserializeAs[*Person](s, data)
package serializer
