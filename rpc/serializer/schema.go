package serializer

import (
	"math"
	"reflect"
	"sort"

	"github.com/spaolacci/murmur3"
)

// SchemaField is one entry of a resolved schema
type SchemaField struct {
	Hash int32
	Name string
	Type reflect.Type

	def fieldDef
}

// Schema is the wire order of the fields of a composite type: ascending by field
// hash, declaration order on equal hashes.
type Schema struct {
	TypeID int32
	Fields []SchemaField
}

// SchemaOf returns the resolved schema of a composite entry. Schemas are computed
// once and cached for the lifetime of the registry.
func (r *TypeRegistry) SchemaOf(e *TypeEntry) *Schema {
	if s, ok := r.schemas.Load(e.ID); ok {
		return s
	}
	s, _ := r.schemas.LoadOrStore(e.ID, resolveSchema(e))
	return s
}

// Fingerprint hashes the ordered field names and hashes. Two peers agree on the
// wire layout of a type when their fingerprints match.
func (s *Schema) Fingerprint() uint32 {
	h := murmur3.New32()
	for _, f := range s.Fields {
		_, _ = h.Write(Int32Bytes(f.Hash))
		_, _ = h.Write([]byte(f.Name))
	}
	return h.Sum32()
}

func resolveSchema(e *TypeEntry) *Schema {
	fields := make([]SchemaField, 0, len(e.fields))
	forcedLast := 0
	for _, d := range e.fields {
		h := fieldHash(d.name)
		if h == math.MaxInt32 {
			forcedLast++
		}
		fields = append(fields, SchemaField{Hash: h, Name: d.name, Type: d.typ, def: d})
	}
	if forcedLast > 1 {
		Logger.Warningf("type %s has %d fields forced last, they keep declaration order", e.Name, forcedLast)
	}

	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Hash < fields[j].Hash })

	return &Schema{TypeID: e.ID, Fields: fields}
}
