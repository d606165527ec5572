package serializer

import (
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/shopspring/decimal"
)

var Logger = logger.GetLogger("serializer")

// --------------------------------------------------------------------------
// Built-in wire types
// --------------------------------------------------------------------------

// Built-in type ids. Ids 0 to maxReservedTypeID are never handed out to user types.
const (
	TypeIDNull     int32 = 1
	TypeIDObject   int32 = 2
	TypeIDBool     int32 = 3
	TypeIDChar     int32 = 4
	TypeIDByte     int32 = 5
	TypeIDInt16    int32 = 7
	TypeIDInt32    int32 = 9
	TypeIDInt64    int32 = 11
	TypeIDFloat32  int32 = 13
	TypeIDFloat64  int32 = 14
	TypeIDDecimal  int32 = 15
	TypeIDDate     int32 = 16
	TypeIDString   int32 = 18
	TypeIDList     int32 = 19
	TypeIDKeyValue int32 = 22
	TypeIDArray    int32 = 23
	TypeIDMap      int32 = 24

	maxReservedTypeID int32 = 25
)

// legacyTypeIDs maps retired ids still accepted on input onto their current entry
var legacyTypeIDs = map[int32]int32{
	6:  TypeIDByte,
	20: TypeIDList,
	21: TypeIDList,
	25: TypeIDMap,
}

// Char is a single UTF-16 code unit on the wire
type Char rune

// Object is the decoded form of the generic object type. It has no fields.
type Object struct{}

// KeyValuePair is a single key and value, encoded as two consecutive frames
type KeyValuePair struct {
	Key   any
	Value any
}

// Serializable marks struct types that are registered on first use. SerialName
// returns the wire name of the type, or "" for the bare Go type name. Fields are
// taken from `gaea` struct tags.
type Serializable interface {
	SerialName() string
}

// DefaultAll switches a Serializable type to opt-out mode: every exported field is
// serialized unless tagged with `gaea:"-"`.
type DefaultAll interface {
	SerialDefaultAll() bool
}

var (
	serializableType = reflect.TypeFor[Serializable]()
	defaultAllType   = reflect.TypeFor[DefaultAll]()
	anyType          = reflect.TypeFor[any]()
)

// --------------------------------------------------------------------------
// Type entries
// --------------------------------------------------------------------------

// Kind classifies a TypeEntry
type Kind uint8

const (
	KindBuiltin Kind = iota
	KindComposite
	KindEnum
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindComposite:
		return "composite"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// TypeEntry binds a type id to its Go type and value codec
type TypeEntry struct {
	ID   int32
	Name string
	Kind Kind
	// Type is the type values of this entry decode to when the caller expects any.
	// For composites this is the struct type, decoded values are pointers to it.
	Type reflect.Type

	codec  valueCodec
	fields []fieldDef
	enum   *enumTable
}

// assignableTo reports whether a decoded value of this entry may be stored in target
func (e *TypeEntry) assignableTo(target reflect.Type) bool {
	if target == nil || e.Kind != KindComposite {
		return true
	}
	ptr := reflect.PointerTo(e.Type)
	switch {
	case target == e.Type, target == ptr:
		return true
	case target.Kind() == reflect.Interface:
		return ptr.Implements(target)
	default:
		return false
	}
}

func (e *TypeEntry) alloc() (reflect.Value, error) {
	if e.Type == nil || e.Type.Kind() != reflect.Struct {
		return reflect.Value{}, errors.Wrapf(ErrAllocation, "type %s (id %d)", e.Name, e.ID)
	}
	return reflect.New(e.Type), nil
}

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

// TypeRegistry maps Go types to wire type ids and back. Lookups are lock free,
// registrations are serialized. Entries are never removed.
type TypeRegistry struct {
	byID    *xsync.MapOf[int32, *TypeEntry]
	byType  *xsync.MapOf[reflect.Type, *TypeEntry]
	byKind  map[reflect.Kind]*TypeEntry
	schemas *xsync.MapOf[int32, *Schema]
	mu      sync.Mutex
}

// NewTypeRegistry creates a registry holding all built-in types
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{
		byID:    xsync.NewMapOf[int32, *TypeEntry](),
		byType:  xsync.NewMapOf[reflect.Type, *TypeEntry](),
		byKind:  make(map[reflect.Kind]*TypeEntry),
		schemas: xsync.NewMapOf[int32, *Schema](),
	}

	builtin := func(id int32, name string, t reflect.Type, codec valueCodec, kinds ...reflect.Kind) {
		e := &TypeEntry{ID: id, Name: name, Kind: KindBuiltin, Type: t, codec: codec}
		r.byID.Store(id, e)
		if t != nil {
			r.byType.Store(t, e)
		}
		for _, k := range kinds {
			r.byKind[k] = e
		}
	}

	builtin(TypeIDObject, "object", reflect.TypeFor[Object](), objectCodec{})
	builtin(TypeIDBool, "bool", reflect.TypeFor[bool](), boolCodec{}, reflect.Bool)
	builtin(TypeIDChar, "char", reflect.TypeFor[Char](), charCodec{})
	builtin(TypeIDByte, "byte", reflect.TypeFor[uint8](), byteCodec{}, reflect.Int8, reflect.Uint8)
	builtin(TypeIDInt16, "int16", reflect.TypeFor[int16](), int16Codec{}, reflect.Int16, reflect.Uint16)
	builtin(TypeIDInt32, "int32", reflect.TypeFor[int32](), int32Codec{}, reflect.Int32, reflect.Uint32)
	builtin(TypeIDInt64, "int64", reflect.TypeFor[int64](), int64Codec{}, reflect.Int64, reflect.Uint64, reflect.Int, reflect.Uint, reflect.Uintptr)
	builtin(TypeIDFloat32, "float32", reflect.TypeFor[float32](), float32Codec{}, reflect.Float32)
	builtin(TypeIDFloat64, "float64", reflect.TypeFor[float64](), float64Codec{}, reflect.Float64)
	builtin(TypeIDDecimal, "decimal", reflect.TypeFor[decimal.Decimal](), decimalCodec{})
	builtin(TypeIDDate, "date", reflect.TypeFor[time.Time](), dateCodec{})
	builtin(TypeIDString, "string", reflect.TypeFor[string](), stringCodec{}, reflect.String)
	builtin(TypeIDList, "list", reflect.TypeFor[[]any](), listCodec{}, reflect.Slice)
	builtin(TypeIDKeyValue, "keyvalue", reflect.TypeFor[KeyValuePair](), keyValueCodec{})
	builtin(TypeIDArray, "array", reflect.TypeFor[[]any](), listCodec{}, reflect.Array)
	builtin(TypeIDMap, "map", reflect.TypeFor[map[any]any](), mapCodec{}, reflect.Map)

	// the list and array entries share []any as decode type, the list entry owns it
	if e, ok := r.byID.Load(TypeIDList); ok {
		r.byType.Store(e.Type, e)
	}

	return r
}

// Lookup returns the entry for a wire type id, after mapping retired ids
func (r *TypeRegistry) Lookup(id int32) (*TypeEntry, bool) {
	if current, ok := legacyTypeIDs[id]; ok {
		id = current
	}
	return r.byID.Load(id)
}

// TypeOf returns the Go type values of the given id decode to
func (r *TypeRegistry) TypeOf(id int32) (reflect.Type, bool) {
	e, ok := r.Lookup(id)
	if !ok {
		return nil, false
	}
	if e.Kind == KindComposite {
		return reflect.PointerTo(e.Type), true
	}
	return e.Type, true
}

// TypeIDOf resolves the entry used to encode values of type t. Struct types that
// implement Serializable are registered on first use, all other unregistered
// struct types fail with ErrDisallowedSerialize.
func (r *TypeRegistry) TypeIDOf(t reflect.Type) (*TypeEntry, error) {
	if e, ok := r.byType.Load(t); ok {
		return e, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if e, ok := r.byType.Load(elem); ok {
			return e, nil
		}
		return r.TypeIDOf(elem)
	case reflect.Struct:
		return r.registerLazy(t)
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, errors.Wrapf(ErrDisallowedSerialize, "type %s", t)
	}

	if e, ok := r.byKind[t.Kind()]; ok {
		return e, nil
	}
	return nil, errors.Wrapf(ErrDisallowedSerialize, "type %s", t)
}

// RegisterType registers a struct type with a field schema taken from its `gaea`
// struct tags. An empty name registers the type under its bare Go name.
func (r *TypeRegistry) RegisterType(t reflect.Type, name string) (*TypeEntry, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrAllocation, "%s is not a struct type", t)
	}
	if name == "" {
		name = t.Name()
	}
	optOut := reflect.PointerTo(t).Implements(defaultAllType) &&
		reflect.New(t).Interface().(DefaultAll).SerialDefaultAll()

	return r.add(&TypeEntry{
		ID:     HashCode(name),
		Name:   name,
		Kind:   KindComposite,
		Type:   t,
		codec:  compositeCodec{},
		fields: tagFields(t, optOut),
	})
}

// Len returns the number of registered entries, built-ins included
func (r *TypeRegistry) Len() int {
	return r.byID.Size()
}

// Entries returns all registered entries ordered by id
func (r *TypeRegistry) Entries() []*TypeEntry {
	entries := make([]*TypeEntry, 0, r.byID.Size())
	r.byID.Range(func(_ int32, e *TypeEntry) bool {
		entries = append(entries, e)
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (r *TypeRegistry) registerLazy(t reflect.Type) (*TypeEntry, error) {
	if !reflect.PointerTo(t).Implements(serializableType) {
		return nil, errors.Wrapf(ErrDisallowedSerialize, "type %s is neither registered nor Serializable", t)
	}
	name := reflect.New(t).Interface().(Serializable).SerialName()
	Logger.Debugf("registering %s on first use", t)
	return r.RegisterType(t, name)
}

// add publishes a fully built entry. Registering the same type under the same
// id again returns the existing entry.
func (r *TypeRegistry) add(e *TypeEntry) (*TypeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byType.Load(e.Type); ok {
		if existing.ID == e.ID {
			return existing, nil
		}
		return nil, errors.Wrapf(ErrDuplicateRegistration, "type %s is already registered as %q (id %d)",
			e.Type, existing.Name, existing.ID)
	}

	if e.ID >= 0 && e.ID <= maxReservedTypeID {
		Logger.Warningf("type %s hashes to reserved id %d", e.Name, e.ID)
		return nil, errors.Wrapf(ErrReservedTypeID, "type %s (id %d)", e.Name, e.ID)
	}
	if _, retired := legacyTypeIDs[e.ID]; retired {
		return nil, errors.Wrapf(ErrReservedTypeID, "type %s (id %d)", e.Name, e.ID)
	}

	if other, ok := r.byID.Load(e.ID); ok {
		Logger.Warningf("type id collision: %s and %s both hash to %d", other.Name, e.Name, e.ID)
		return nil, errors.Wrapf(ErrDuplicateRegistration, "id %d of %s is owned by %s", e.ID, e.Name, other.Name)
	}

	r.byID.Store(e.ID, e)
	r.byType.Store(e.Type, e)
	Logger.Debugf("registered %s type %s with id %d", e.Kind, e.Name, e.ID)
	return e, nil
}
