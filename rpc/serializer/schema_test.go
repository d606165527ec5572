package serializer

import (
	"math"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

type base struct {
	ID      int64 `gaea:"id"`
	Created int64
}

type tagged struct {
	base
	Title  string `gaea:"title"`
	Body   string `gaea:""`
	Draft  bool
	hidden string
}

func (tagged) SerialName() string { return "Article" }

type taggedAll struct {
	base
	Title  string
	Secret string `gaea:"-"`
	Rename string `gaea:"renamed"`
}

func (*taggedAll) SerialName() string     { return "" }
func (*taggedAll) SerialDefaultAll() bool { return true }

func schemaNames(s *Schema) []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// TestSchemaOrdering tests hash ordering, forced last fields and tie breaking
func TestSchemaOrdering(t *testing.T) {
	type sample struct{ A, B, C, D, E string }

	reg := NewTypeRegistry()
	e := MustRegister(reg, Struct[sample]("Sample",
		Member("#last", func(s *sample) *string { return &s.A }),
		Member("beta", func(s *sample) *string { return &s.B }),
		Member("Alpha", func(s *sample) *string { return &s.C }),
		Member("dup", func(s *sample) *string { return &s.D }),
		Member("DUP", func(s *sample) *string { return &s.E }),
	))

	schema := reg.SchemaOf(e)
	if len(schema.Fields) != 5 {
		t.Fatalf("Expected 5 fields, got %d", len(schema.Fields))
	}

	for i := 1; i < len(schema.Fields); i++ {
		if schema.Fields[i-1].Hash > schema.Fields[i].Hash {
			t.Errorf("Fields not ascending: %v", schemaNames(schema))
		}
	}

	last := schema.Fields[len(schema.Fields)-1]
	if last.Name != "#last" || last.Hash != math.MaxInt32 {
		t.Errorf("Expected #last to be ordered last, got %v", schemaNames(schema))
	}

	// equal hashes keep declaration order
	dup, upper := -1, -1
	for i, f := range schema.Fields {
		switch f.Name {
		case "dup":
			dup = i
		case "DUP":
			upper = i
		}
	}
	if dup < 0 || upper != dup+1 {
		t.Errorf("Expected dup directly before DUP, got %v", schemaNames(schema))
	}

	if got := fieldHash("Alpha"); got != HashCode("alpha") {
		t.Errorf("Field hash must ignore case")
	}

	// cached
	if reg.SchemaOf(e) != schema {
		t.Errorf("Expected the cached schema instance")
	}
}

// TestFingerprint tests that the fingerprint follows the wire layout
func TestFingerprint(t *testing.T) {
	type v1 struct{ A, B string }

	regA, regB, regC := NewTypeRegistry(), NewTypeRegistry(), NewTypeRegistry()
	a := MustRegister(regA, Struct[v1]("V",
		Member("a", func(v *v1) *string { return &v.A }),
		Member("b", func(v *v1) *string { return &v.B }),
	))
	b := MustRegister(regB, Struct[v1]("V",
		Member("b", func(v *v1) *string { return &v.B }),
		Member("a", func(v *v1) *string { return &v.A }),
	))
	c := MustRegister(regC, Struct[v1]("V",
		Member("a", func(v *v1) *string { return &v.A }),
	))

	if regA.SchemaOf(a).Fingerprint() != regB.SchemaOf(b).Fingerprint() {
		t.Errorf("Declaration order must not change the fingerprint")
	}
	if regA.SchemaOf(a).Fingerprint() == regC.SchemaOf(c).Fingerprint() {
		t.Errorf("Different fields must change the fingerprint")
	}
}

// TestTagMode tests opt-in and opt-out schemas taken from struct tags
func TestTagMode(t *testing.T) {
	reg := NewTypeRegistry()
	s := NewSerializer(reg)

	t.Run("OptIn", func(t *testing.T) {
		in := &tagged{base: base{ID: 7, Created: 99}, Title: "t", Body: "b", Draft: true, hidden: "h"}
		out, err := DeserializeAs[*tagged](s, mustSerialize(t, s, in))
		if err != nil {
			t.Fatalf("Failed to deserialize: %v", err)
		}

		want := &tagged{base: base{ID: 7}, Title: "t", Body: "b"}
		if !reflect.DeepEqual(out, want) {
			t.Errorf("Unexpected result:\nExpected: %+v\nGot:      %+v", want, out)
		}

		e, err := reg.TypeIDOf(reflect.TypeFor[tagged]())
		if err != nil {
			t.Fatalf("Expected lazy registration: %v", err)
		}
		if e.ID != HashCode("Article") {
			t.Errorf("Expected id of Article, got %d", e.ID)
		}
		names := schemaNames(reg.SchemaOf(e))
		if len(names) != 3 {
			t.Errorf("Expected id, title and Body, got %v", names)
		}
	})

	t.Run("OptOut", func(t *testing.T) {
		in := &taggedAll{base: base{ID: 1, Created: 2}, Title: "t", Secret: "s", Rename: "r"}
		out, err := DeserializeAs[*taggedAll](s, mustSerialize(t, s, in))
		if err != nil {
			t.Fatalf("Failed to deserialize: %v", err)
		}

		want := &taggedAll{base: base{ID: 1, Created: 2}, Title: "t", Rename: "r"}
		if !reflect.DeepEqual(out, want) {
			t.Errorf("Unexpected result:\nExpected: %+v\nGot:      %+v", want, out)
		}

		e, _ := reg.TypeIDOf(reflect.TypeFor[*taggedAll]())
		if e.Name != "taggedAll" {
			t.Errorf("Expected bare type name, got %s", e.Name)
		}
	})
}

// TestRegistration tests registration conflicts
func TestRegistration(t *testing.T) {
	type first struct{ A int }
	type second struct{ B int }

	reg := NewTypeRegistry()
	if _, err := Register(reg, Struct[first]("Same")); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	// idempotent
	if _, err := Register(reg, Struct[first]("Same")); err != nil {
		t.Errorf("Expected re-registration to succeed, got %v", err)
	}
	// same type, different id
	if _, err := Register(reg, Struct[first]("Other")); !errors.Is(err, ErrDuplicateRegistration) {
		t.Errorf("Expected ErrDuplicateRegistration, got %v", err)
	}
	// different type, same id
	if _, err := Register(reg, Struct[second]("Same")); !errors.Is(err, ErrDuplicateRegistration) {
		t.Errorf("Expected ErrDuplicateRegistration, got %v", err)
	}

	if _, err := Register(reg, Struct[int]("NotAStruct")); !errors.Is(err, ErrAllocation) {
		t.Errorf("Expected ErrAllocation for non struct, got %v", err)
	}

	if typ, ok := reg.TypeOf(HashCode("Same")); !ok || typ != reflect.TypeFor[*first]() {
		t.Errorf("Expected *first for id of Same, got %v", typ)
	}
	if typ, ok := reg.TypeOf(21); !ok || typ != reflect.TypeFor[[]any]() {
		t.Errorf("Expected []any for retired list id, got %v", typ)
	}
}

// TestScan tests the registration scan in both modes
func TestScan(t *testing.T) {
	reg := NewTypeRegistry()

	if err := reg.Scan(false, &tagged{}, taggedAll{}).Wait(); err != nil {
		t.Fatalf("Sync scan failed: %v", err)
	}
	if _, ok := reg.Lookup(HashCode("Article")); !ok {
		t.Errorf("Expected Article to be registered after scan")
	}

	type plain struct{}
	task := NewTypeRegistry().Scan(true, &tagged{}, plain{})
	<-task.Done()
	if err := task.Wait(); !errors.Is(err, ErrDisallowedSerialize) {
		t.Errorf("Expected ErrDisallowedSerialize from async scan, got %v", err)
	}
}

// TestStats tests that traffic and registry sizes are tracked
func TestStats(t *testing.T) {
	reg := NewTypeRegistry()
	stats := NewStats(reg)
	s := NewSerializer(reg, WithStats(stats))

	data := mustSerialize(t, s, &tagged{Title: "x"})
	if _, err := s.Deserialize(data, nil); err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}
	_, _ = s.Deserialize([]byte{1}, nil)

	snapshot := stats.Snapshot()
	if snapshot["serializer.bytes.out"] != int64(len(data)) {
		t.Errorf("Expected %d bytes out, got %d", len(data), snapshot["serializer.bytes.out"])
	}
	if snapshot["serializer.bytes.in"] != int64(len(data)) {
		t.Errorf("Expected %d bytes in, got %d", len(data), snapshot["serializer.bytes.in"])
	}
	if snapshot["serializer.types"] != int64(reg.Len()) {
		t.Errorf("Expected %d types, got %d", reg.Len(), snapshot["serializer.types"])
	}
	if snapshot["serializer.schemas"] != 1 {
		t.Errorf("Expected 1 cached schema, got %d", snapshot["serializer.schemas"])
	}
	if snapshot["serializer.decode.errors"] != 1 {
		t.Errorf("Expected 1 decode error, got %d", snapshot["serializer.decode.errors"])
	}

	var none *Stats
	if len(none.Snapshot()) != 0 {
		t.Errorf("Expected empty snapshot from nil stats")
	}
}

func mustSerialize(t *testing.T, s *Serializer, v any) []byte {
	t.Helper()
	data, err := s.Serialize(v)
	if err != nil {
		t.Fatalf("Failed to serialize %T: %v", v, err)
	}
	return data
}
