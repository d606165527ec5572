package serializer

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

// TestByteHelpers tests the little-endian helpers and their bounds checks
func TestByteHelpers(t *testing.T) {
	if got := Int32Bytes(0x01020304); !bytes.Equal(got, []byte{4, 3, 2, 1}) {
		t.Errorf("Expected little-endian int32, got %v", got)
	}
	if got := Int16Bytes(-2); !bytes.Equal(got, []byte{0xFE, 0xFF}) {
		t.Errorf("Expected little-endian int16, got %v", got)
	}

	if v, err := ToInt64(Int64Bytes(-1 << 50)); err != nil || v != -1<<50 {
		t.Errorf("Expected -1<<50, got %d, %v", v, err)
	}
	if v, err := ToInt16(Int16Bytes(300)); err != nil || v != 300 {
		t.Errorf("Expected 300, got %d, %v", v, err)
	}

	testCases := []struct {
		name string
		fn   func() error
	}{
		{"Int16", func() error { _, err := ToInt16([]byte{1}); return err }},
		{"Int32", func() error { _, err := ToInt32([]byte{1, 2, 3}); return err }},
		{"Int64", func() error { _, err := ToInt64(make([]byte, 7)); return err }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.fn(); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Expected ErrOutOfRange, got %v", err)
			}
		})
	}
}

// TestReaderWriter tests a mixed sequence of primitives
func TestReaderWriter(t *testing.T) {
	w := NewWriter(0)
	w.WriteBool(true)
	w.WriteInt16(-7)
	w.WriteInt32(1 << 30)
	w.WriteInt64(-1)
	w.WriteFloat32(0.25)
	w.WriteFloat64(-2.5)
	if err := w.WriteChar('é'); err != nil {
		t.Fatalf("Failed to write char: %v", err)
	}
	w.WriteBlob([]byte("blob"))

	if err := w.WriteChar(Char(0x1F600)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange for astral char, got %v", err)
	}

	r := NewReader(w.Bytes())
	if v, err := r.ReadBool(); err != nil || !v {
		t.Errorf("bool: %v, %v", v, err)
	}
	if v, err := r.ReadInt16(); err != nil || v != -7 {
		t.Errorf("int16: %v, %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != 1<<30 {
		t.Errorf("int32: %v, %v", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != -1 {
		t.Errorf("int64: %v, %v", v, err)
	}
	if v, err := r.ReadFloat32(); err != nil || v != 0.25 {
		t.Errorf("float32: %v, %v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != -2.5 {
		t.Errorf("float64: %v, %v", v, err)
	}
	if v, err := r.ReadChar(); err != nil || v != 'é' {
		t.Errorf("char: %v, %v", v, err)
	}
	if v, err := r.ReadBlob(); err != nil || string(v) != "blob" {
		t.Errorf("blob: %q, %v", v, err)
	}

	if r.Remaining() != 0 {
		t.Errorf("Expected all bytes consumed, %d left", r.Remaining())
	}
	if _, err := r.ReadByte(); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange at end of input, got %v", err)
	}
}

// TestHashCode tests the type id hash against known values
func TestHashCode(t *testing.T) {
	testCases := map[string]int32{
		"":                371857150,
		"a":               372029373,
		"Person":          -324971015,
		"RequestProtocol": 435842043,
	}
	for s, want := range testCases {
		if got := HashCode(s); got != want {
			t.Errorf("HashCode(%q) = %d, expected %d", s, got, want)
		}
	}
}
