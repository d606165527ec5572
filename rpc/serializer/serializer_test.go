package serializer

import (
	"bytes"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// --------------------------------------------------------------------------
// Test types
// --------------------------------------------------------------------------

type person struct {
	Name   string
	Age    int32
	Friend *person
	Tags   []string
}

type pair struct {
	Left  *person
	Right *person
}

type color int

const (
	red color = iota
	green
	blue
)

type painted struct {
	Color color
	Score decimal.Decimal
	Seen  time.Time
}

// newTestSerializer creates a serializer with all test types registered
func newTestSerializer(t *testing.T) *Serializer {
	t.Helper()
	reg := NewTypeRegistry()

	if _, err := Register(reg, Struct[person]("Person",
		Member("name", func(p *person) *string { return &p.Name }),
		Member("age", func(p *person) *int32 { return &p.Age }),
		Member("friend", func(p *person) **person { return &p.Friend }),
		Member("tags", func(p *person) *[]string { return &p.Tags }),
	)); err != nil {
		t.Fatalf("Failed to register person: %v", err)
	}

	if _, err := Register(reg, Struct[pair]("Pair",
		Member("left", func(p *pair) **person { return &p.Left }),
		Member("right", func(p *pair) **person { return &p.Right }),
	)); err != nil {
		t.Fatalf("Failed to register pair: %v", err)
	}

	if _, err := RegisterEnum(reg, "Color", map[color]string{red: "RED", green: "GREEN", blue: "BLUE"}); err != nil {
		t.Fatalf("Failed to register color: %v", err)
	}

	if _, err := Register(reg, Struct[painted]("",
		Member("color", func(p *painted) *color { return &p.Color }),
		Member("score", func(p *painted) *decimal.Decimal { return &p.Score }),
		Member("seen", func(p *painted) *time.Time { return &p.Seen }),
	)); err != nil {
		t.Fatalf("Failed to register painted: %v", err)
	}

	return NewSerializer(reg)
}

func roundTrip(t *testing.T, s *Serializer, v any, target reflect.Type) any {
	t.Helper()
	data, err := s.Serialize(v)
	if err != nil {
		t.Fatalf("Failed to serialize %T: %v", v, err)
	}
	out, err := s.Deserialize(data, target)
	if err != nil {
		t.Fatalf("Failed to deserialize %T: %v", v, err)
	}
	return out
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

// TestBuiltinRoundTrip tests every built-in type decoded without a target type
func TestBuiltinRoundTrip(t *testing.T) {
	s := newTestSerializer(t)
	now := time.UnixMilli(1700000000123)

	testCases := []struct {
		name  string
		value any
		equal func(a, b any) bool
	}{
		{name: "Null", value: nil},
		{name: "Bool", value: true},
		{name: "Char", value: Char('中')},
		{name: "Byte", value: uint8(200)},
		{name: "Int16", value: int16(-12345)},
		{name: "Int32", value: int32(1 << 20)},
		{name: "Int64", value: int64(-1 << 40)},
		{name: "Float32", value: float32(1.5)},
		{name: "Float64", value: math.Pi},
		{name: "String", value: "héllo wörld"},
		{name: "EmptyString", value: ""},
		{name: "List", value: []any{int32(1), "x", nil, true}},
		{name: "KeyValuePair", value: KeyValuePair{Key: "k", Value: int64(2)}},
		{name: "Map", value: map[any]any{"a": int32(1), int64(2): "b"}},
		{name: "Object", value: Object{}},
		{
			name:  "Decimal",
			value: decimal.RequireFromString("12345.6789"),
			equal: func(a, b any) bool { return a.(decimal.Decimal).Equal(b.(decimal.Decimal)) },
		},
		{
			name:  "Date",
			value: now,
			equal: func(a, b any) bool { return a.(time.Time).Equal(b.(time.Time)) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := roundTrip(t, s, tc.value, nil)

			equal := tc.equal
			if equal == nil {
				equal = reflect.DeepEqual
			}
			if !equal(tc.value, out) {
				t.Errorf("Value doesn't match after round trip:\nOriginal: %#v\nResult: %#v", tc.value, out)
			}
		})
	}
}

// TestTypedTargets tests conversion of decoded values into the expected Go type
func TestTypedTargets(t *testing.T) {
	s := newTestSerializer(t)

	if out := roundTrip(t, s, 42, reflect.TypeFor[int]()); out != 42 {
		t.Errorf("Expected int 42, got %#v", out)
	}
	if out := roundTrip(t, s, uint64(math.MaxUint64), reflect.TypeFor[uint64]()); out != uint64(math.MaxUint64) {
		t.Errorf("Expected max uint64, got %#v", out)
	}
	if out := roundTrip(t, s, []int{1, 2, 3}, reflect.TypeFor[[]int]()); !reflect.DeepEqual(out, []int{1, 2, 3}) {
		t.Errorf("Expected []int{1, 2, 3}, got %#v", out)
	}
	if out := roundTrip(t, s, [3]int32{4, 5, 6}, reflect.TypeFor[[3]int32]()); out != [3]int32{4, 5, 6} {
		t.Errorf("Expected [3]int32{4, 5, 6}, got %#v", out)
	}
	if out := roundTrip(t, s, [2]string{"a", "b"}, reflect.TypeFor[[]string]()); !reflect.DeepEqual(out, []string{"a", "b"}) {
		t.Errorf("Expected array decoded as slice, got %#v", out)
	}
	if out := roundTrip(t, s, map[string]int{"x": 1}, reflect.TypeFor[map[string]int]()); !reflect.DeepEqual(out, map[string]int{"x": 1}) {
		t.Errorf("Expected map[string]int, got %#v", out)
	}
	if out := roundTrip(t, s, nil, reflect.TypeFor[int]()); out != nil {
		t.Errorf("Expected nil for null frame, got %#v", out)
	}

	// overflow is rejected
	data, _ := s.Serialize(int64(1 << 40))
	if _, err := s.Deserialize(data, reflect.TypeFor[int16]()); !errors.Is(err, ErrClassNoMatch) {
		t.Errorf("Expected ErrClassNoMatch on overflow, got %v", err)
	}

	// typed helper
	n, err := DeserializeAs[int64](s, Int32Bytes(0))
	if err != nil || n != 0 {
		t.Errorf("Expected zero value for null, got %v, %v", n, err)
	}
}

// TestCompositeRoundTrip tests registered structs, enums, decimals and dates in one value
func TestCompositeRoundTrip(t *testing.T) {
	s := newTestSerializer(t)

	in := &person{Name: "Ada", Age: 36, Tags: []string{"math", "engines"}}
	out, ok := roundTrip(t, s, in, nil).(*person)
	if !ok {
		t.Fatalf("Expected *person")
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("Person doesn't match:\nOriginal: %+v\nResult: %+v", in, out)
	}

	// value target
	value, ok := roundTrip(t, s, in, reflect.TypeFor[person]()).(person)
	if !ok || value.Name != "Ada" {
		t.Errorf("Expected person value, got %#v", value)
	}

	p := &painted{Color: blue, Score: decimal.RequireFromString("-0.5"), Seen: time.UnixMilli(42)}
	got, ok := roundTrip(t, s, p, nil).(*painted)
	if !ok {
		t.Fatalf("Expected *painted")
	}
	if got.Color != blue || !got.Score.Equal(p.Score) || !got.Seen.Equal(p.Seen) {
		t.Errorf("Painted doesn't match:\nOriginal: %+v\nResult: %+v", p, got)
	}
}

// TestCycles tests that self references terminate and keep identity
func TestCycles(t *testing.T) {
	s := newTestSerializer(t)

	a := &person{Name: "a"}
	b := &person{Name: "b", Friend: a}
	a.Friend = b

	out := roundTrip(t, s, a, nil).(*person)
	if out.Friend == nil || out.Friend.Name != "b" {
		t.Fatalf("Expected friend b, got %+v", out.Friend)
	}
	if out.Friend.Friend != out {
		t.Errorf("Cycle not restored: a.friend.friend should be a")
	}

	self := &person{Name: "self"}
	self.Friend = self
	out = roundTrip(t, s, self, nil).(*person)
	if out.Friend != out {
		t.Errorf("Self reference not restored")
	}
}

// TestSharedReferences tests that one object reachable twice decodes to one object
func TestSharedReferences(t *testing.T) {
	s := newTestSerializer(t)

	shared := &person{Name: "shared"}
	out := roundTrip(t, s, &pair{Left: shared, Right: shared}, nil).(*pair)
	if out.Left == nil || out.Left != out.Right {
		t.Errorf("Expected Left and Right to be the same object")
	}

	m := map[string]int{"x": 1}
	list := roundTrip(t, s, []any{m, m}, nil).([]any)
	left := reflect.ValueOf(list[0]).Pointer()
	right := reflect.ValueOf(list[1]).Pointer()
	if left != right {
		t.Errorf("Expected both list elements to be the same map")
	}
}

// TestSchemaEvolution tests that trailing fields may be added on either side
func TestSchemaEvolution(t *testing.T) {
	type pointV1 struct{ X, Y int32 }
	type pointV2 struct {
		X, Y  int32
		Extra string
	}

	regV1 := NewTypeRegistry()
	MustRegister(regV1, Struct[pointV1]("Point",
		Member("x", func(p *pointV1) *int32 { return &p.X }),
		Member("y", func(p *pointV1) *int32 { return &p.Y }),
	))
	regV2 := NewTypeRegistry()
	MustRegister(regV2, Struct[pointV2]("Point",
		Member("x", func(p *pointV2) *int32 { return &p.X }),
		Member("y", func(p *pointV2) *int32 { return &p.Y }),
		Member("#extra", func(p *pointV2) *string { return &p.Extra }),
	))
	v1, v2 := NewSerializer(regV1), NewSerializer(regV2)

	t.Run("NewWriterOldReader", func(t *testing.T) {
		data, err := v2.Serialize(&pointV2{X: 1, Y: 2, Extra: "ignored"})
		if err != nil {
			t.Fatalf("Failed to serialize: %v", err)
		}
		out, err := DeserializeAs[*pointV1](v1, data)
		if err != nil {
			t.Fatalf("Failed to deserialize: %v", err)
		}
		if *out != (pointV1{X: 1, Y: 2}) {
			t.Errorf("Unexpected result %+v", *out)
		}
	})

	t.Run("OldWriterNewReader", func(t *testing.T) {
		data, err := v1.Serialize(&pointV1{X: 3, Y: 4})
		if err != nil {
			t.Fatalf("Failed to serialize: %v", err)
		}
		out, err := DeserializeAs[*pointV2](v2, data)
		if err != nil {
			t.Fatalf("Failed to deserialize: %v", err)
		}
		if *out != (pointV2{X: 3, Y: 4}) {
			t.Errorf("Unexpected result %+v", *out)
		}
	})
}

// TestWireFormat tests the exact frame layout
func TestWireFormat(t *testing.T) {
	s := newTestSerializer(t)

	testCases := []struct {
		name  string
		value any
		want  []byte
	}{
		{name: "Null", value: nil, want: []byte{0, 0, 0, 0}},
		{name: "Int32", value: int32(5), want: []byte{9, 0, 0, 0, 0, 0, 0, 0, 0, 5, 0, 0, 0}},
		{name: "Bool", value: true, want: []byte{3, 0, 0, 0, 0, 0, 0, 0, 0, 1}},
		{name: "Char", value: Char('A'), want: []byte{4, 0, 0, 0, 0, 0, 0, 0, 0, 'A', 0}},
		{name: "String", value: "hi", want: []byte{18, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 'h', 'i'}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := s.Serialize(tc.value)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}
			if !bytes.Equal(data, tc.want) {
				t.Errorf("Unexpected encoding:\nExpected: %v\nGot:      %v", tc.want, data)
			}
		})
	}

	// composite frames carry a reference id starting at 1
	data, err := s.Serialize(&person{Name: "x"})
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}
	if id, _ := ToInt32(data); id != HashCode("Person") {
		t.Errorf("Expected type id %d, got %d", HashCode("Person"), id)
	}
	if data[4] != 0 {
		t.Errorf("Expected first occurrence to be no back reference")
	}
	if ref, _ := ToInt32(data[5:]); ref != 1 {
		t.Errorf("Expected reference id 1, got %d", ref)
	}
}

// TestLegacyTypeIDs tests that retired ids decode like their replacements
func TestLegacyTypeIDs(t *testing.T) {
	s := newTestSerializer(t)

	header := func(id int32) []byte {
		return append(Int32Bytes(id), 0, 0, 0, 0, 0)
	}

	byteFrame := append(header(6), 42)
	if out, err := s.Deserialize(byteFrame, nil); err != nil || out != uint8(42) {
		t.Errorf("Expected byte 42 from id 6, got %#v, %v", out, err)
	}

	element := append(header(TypeIDInt32), Int32Bytes(7)...)
	for _, id := range []int32{20, 21} {
		list := append(append(header(id), Int32Bytes(1)...), element...)
		out, err := s.Deserialize(list, nil)
		if err != nil || !reflect.DeepEqual(out, []any{int32(7)}) {
			t.Errorf("Expected list from id %d, got %#v, %v", id, out, err)
		}
	}

	empty := append(header(25), Int32Bytes(0)...)
	if out, err := s.Deserialize(empty, nil); err != nil || !reflect.DeepEqual(out, map[any]any{}) {
		t.Errorf("Expected empty map from id 25, got %#v, %v", out, err)
	}

	if out, err := s.Deserialize(Int32Bytes(TypeIDNull), nil); err != nil || out != nil {
		t.Errorf("Expected null from id 1, got %#v, %v", out, err)
	}

	// ids between the integer widths were never assigned
	for _, id := range []int32{8, 10, 12} {
		frame := append(header(id), 0, 0, 0, 0, 0, 0, 0, 0)
		if out, err := s.Deserialize(frame, nil); !errors.Is(err, ErrClassNotFound) {
			t.Errorf("Expected ErrClassNotFound for id %d, got %#v, %v", id, out, err)
		}
	}
}

// TestNestingDepth tests that deeply nested frames fail instead of exhausting the stack
func TestNestingDepth(t *testing.T) {
	s := newTestSerializer(t)

	t.Run("Decode", func(t *testing.T) {
		const levels = 5000
		var frame []byte
		for i := 0; i < levels; i++ {
			frame = append(frame, Int32Bytes(TypeIDList)...)
			frame = append(frame, 0, 0, 0, 0, 0)
			frame = append(frame, Int32Bytes(1)...)
		}
		frame = append(frame, Int32Bytes(TypeIDNull)...)

		if _, err := s.Deserialize(frame, nil); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Expected ErrOutOfRange, got %v", err)
		}
	})

	t.Run("Encode", func(t *testing.T) {
		var v any = "leaf"
		for i := 0; i < 5000; i++ {
			v = []any{v}
		}
		if _, err := s.Serialize(v); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Expected ErrOutOfRange, got %v", err)
		}
	})

	t.Run("WithinLimit", func(t *testing.T) {
		var v any = "leaf"
		for i := 0; i < 100; i++ {
			v = []any{v}
		}
		out := roundTrip(t, s, v, nil)
		for i := 0; i < 100; i++ {
			list, ok := out.([]any)
			if !ok || len(list) != 1 {
				t.Fatalf("Expected single element list at level %d, got %#v", i, out)
			}
			out = list[0]
		}
		if out != "leaf" {
			t.Errorf("Expected leaf, got %#v", out)
		}
	})
}

// TestSharedSlices tests that slices keep their identity within one call
func TestSharedSlices(t *testing.T) {
	s := newTestSerializer(t)

	t.Run("SelfContaining", func(t *testing.T) {
		l := make([]any, 1)
		l[0] = l

		out, ok := roundTrip(t, s, l, nil).([]any)
		if !ok || len(out) != 1 {
			t.Fatalf("Expected single element list, got %#v", out)
		}
		inner, ok := out[0].([]any)
		if !ok || len(inner) != 1 || &inner[0] != &out[0] {
			t.Errorf("Expected the element to be the list itself")
		}
	})

	t.Run("Shared", func(t *testing.T) {
		tags := []string{"a", "b"}
		out, ok := roundTrip(t, s, []any{tags, tags}, nil).([]any)
		if !ok || len(out) != 2 {
			t.Fatalf("Expected two element list, got %#v", out)
		}
		left, lok := out[0].([]any)
		right, rok := out[1].([]any)
		if !lok || !rok || len(left) != 2 || &left[0] != &right[0] {
			t.Errorf("Expected both elements to be the same list, got %#v", out)
		}
		if !reflect.DeepEqual(left, []any{"a", "b"}) {
			t.Errorf("Unexpected elements %#v", left)
		}
	})

	t.Run("Prefix", func(t *testing.T) {
		all := []any{int32(1), int32(2)}
		out, ok := roundTrip(t, s, []any{all, all[:1]}, nil).([]any)
		if !ok || len(out) != 2 {
			t.Fatalf("Expected two element list, got %#v", out)
		}
		if !reflect.DeepEqual(out[0], []any{int32(1), int32(2)}) || !reflect.DeepEqual(out[1], []any{int32(1)}) {
			t.Errorf("Expected list and prefix to stay distinct, got %#v", out)
		}
	})
}

// TestErrors tests the error taxonomy of the codec
func TestErrors(t *testing.T) {
	s := newTestSerializer(t)

	type unregistered struct{ A int }

	if _, err := s.Serialize(&unregistered{A: 1}); !errors.Is(err, ErrDisallowedSerialize) {
		t.Errorf("Expected ErrDisallowedSerialize, got %v", err)
	}
	if _, err := s.Serialize(func() {}); !errors.Is(err, ErrDisallowedSerialize) {
		t.Errorf("Expected ErrDisallowedSerialize for func, got %v", err)
	}

	unknown := append(Int32Bytes(123456), 0, 0, 0, 0, 0)
	if _, err := s.Deserialize(unknown, nil); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("Expected ErrClassNotFound, got %v", err)
	}

	data, _ := s.Serialize(&person{Name: "x"})
	if _, err := s.Deserialize(data, reflect.TypeFor[*pair]()); !errors.Is(err, ErrClassNoMatch) {
		t.Errorf("Expected ErrClassNoMatch, got %v", err)
	}

	if _, err := s.Deserialize(data[:len(data)-2], nil); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange for truncated input, got %v", err)
	}

	backRef := append(Int32Bytes(HashCode("Person")), 1, 9, 0, 0, 0)
	if _, err := s.Deserialize(backRef, nil); !errors.Is(err, ErrUnresolvedReference) {
		t.Errorf("Expected ErrUnresolvedReference, got %v", err)
	}

	huge := append(append(Int32Bytes(TypeIDList), 0, 0, 0, 0, 0), Int32Bytes(math.MaxInt32)...)
	if _, err := s.Deserialize(huge, nil); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange for oversized count, got %v", err)
	}
}

// TestEnums tests that enums travel by name
func TestEnums(t *testing.T) {
	s := newTestSerializer(t)

	data, err := s.Serialize(green)
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}
	if out, err := s.Deserialize(data, nil); err != nil || out != green {
		t.Errorf("Expected green, got %#v, %v", out, err)
	}

	// a reader whose enum no longer declares the name
	reg := NewTypeRegistry()
	if _, err := RegisterEnum(reg, "Color", map[color]string{red: "RED"}); err != nil {
		t.Fatalf("Failed to register enum: %v", err)
	}
	if _, err := NewSerializer(reg).Deserialize(data, nil); !errors.Is(err, ErrUnknownEnumName) {
		t.Errorf("Expected ErrUnknownEnumName, got %v", err)
	}

	if _, err := s.Serialize(color(99)); !errors.Is(err, ErrUnknownEnumName) {
		t.Errorf("Expected ErrUnknownEnumName for undeclared value, got %v", err)
	}
}

// TestTextEncoding tests strings in a non UTF-8 encoding
func TestTextEncoding(t *testing.T) {
	reg := NewTypeRegistry()
	enc, err := TextEncoding("gbk")
	if err != nil {
		t.Fatalf("Failed to resolve gbk: %v", err)
	}
	s := NewSerializer(reg, WithTextEncoding(enc))

	data, err := s.Serialize("中文")
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}
	if n, _ := ToInt32(data[9:]); n != 4 {
		t.Errorf("Expected 4 GBK bytes, got %d", n)
	}
	if out, err := s.Deserialize(data, nil); err != nil || out != "中文" {
		t.Errorf("Expected 中文, got %#v, %v", out, err)
	}

	if enc, err := TextEncoding("UTF-8"); err != nil || enc != nil {
		t.Errorf("Expected nil encoding for UTF-8, got %v, %v", enc, err)
	}
}

// TestConcurrentUse tests that one serializer can be used from many goroutines
func TestConcurrentUse(t *testing.T) {
	s := newTestSerializer(t)
	done := make(chan error, 16)

	for i := 0; i < 16; i++ {
		go func(i int) {
			in := &person{Name: "p", Age: int32(i)}
			data, err := s.Serialize(in)
			if err != nil {
				done <- err
				return
			}
			out, err := DeserializeAs[*person](s, data)
			if err == nil && out.Age != int32(i) {
				err = errors.Errorf("expected age %d, got %d", i, out.Age)
			}
			done <- err
		}(i)
	}

	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Error(err)
		}
	}
}
