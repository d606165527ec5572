package serializer

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// All multi-byte values of the wire format are little-endian.
var byteOrder = binary.LittleEndian

// --------------------------------------------------------------------------
// Writer
// --------------------------------------------------------------------------

// Writer is a growable output buffer for the primitive encodings of the wire format.
// The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with the given initial capacity
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the written bytes. The slice aliases the internal buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of written bytes
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) WriteInt16(v int16) {
	w.buf = byteOrder.AppendUint16(w.buf, uint16(v))
}

func (w *Writer) WriteInt32(v int32) {
	w.buf = byteOrder.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteInt64(v int64) {
	w.buf = byteOrder.AppendUint64(w.buf, uint64(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteInt32(int32(math.Float32bits(v)))
}

func (w *Writer) WriteFloat64(v float64) {
	w.WriteInt64(int64(math.Float64bits(v)))
}

// WriteChar writes a single UTF-16 code unit. Characters outside the basic
// multilingual plane cannot be represented.
func (w *Writer) WriteChar(c Char) error {
	if c < 0 || c > 0xFFFF {
		return errors.Wrapf(ErrOutOfRange, "char %U does not fit into one UTF-16 code unit", rune(c))
	}
	w.WriteInt16(int16(uint16(c)))
	return nil
}

// WriteBytes appends raw bytes without a length prefix
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteBlob writes an int32 length followed by the bytes
func (w *Writer) WriteBlob(b []byte) {
	w.WriteInt32(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// --------------------------------------------------------------------------
// Reader
// --------------------------------------------------------------------------

// Reader is a read cursor over an encoded buffer. Every read past the end of the
// buffer fails with ErrOutOfRange and leaves the cursor untouched.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a reader positioned at the start of b
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Offset returns the current read position
func (r *Reader) Offset() int { return r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, errors.Wrapf(ErrOutOfRange, "need %d bytes at offset %d, have %d", n, r.pos, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

func (r *Reader) ReadInt16() (int16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return int16(byteOrder.Uint16(b)), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(byteOrder.Uint32(b)), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(byteOrder.Uint64(b)), nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadInt32()
	return math.Float32frombits(uint32(v)), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadInt64()
	return math.Float64frombits(uint64(v)), err
}

func (r *Reader) ReadChar() (Char, error) {
	v, err := r.ReadInt16()
	return Char(uint16(v)), err
}

// ReadBlob reads an int32 length followed by that many bytes. The returned slice
// aliases the input buffer.
func (r *Reader) ReadBlob() ([]byte, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.Wrapf(ErrOutOfRange, "negative length %d at offset %d", n, r.pos-4)
	}
	return r.take(int(n))
}

// --------------------------------------------------------------------------
// Standalone helpers
// --------------------------------------------------------------------------

// ToInt16 decodes a little-endian int16 from the start of b
func ToInt16(b []byte) (int16, error) {
	if len(b) < 2 {
		return 0, errors.Wrapf(ErrOutOfRange, "data too short for int16: %d bytes", len(b))
	}
	return int16(byteOrder.Uint16(b)), nil
}

// ToInt32 decodes a little-endian int32 from the start of b
func ToInt32(b []byte) (int32, error) {
	if len(b) < 4 {
		return 0, errors.Wrapf(ErrOutOfRange, "data too short for int32: %d bytes", len(b))
	}
	return int32(byteOrder.Uint32(b)), nil
}

// ToInt64 decodes a little-endian int64 from the start of b
func ToInt64(b []byte) (int64, error) {
	if len(b) < 8 {
		return 0, errors.Wrapf(ErrOutOfRange, "data too short for int64: %d bytes", len(b))
	}
	return int64(byteOrder.Uint64(b)), nil
}

func Int16Bytes(v int16) []byte { return byteOrder.AppendUint16(nil, uint16(v)) }
func Int32Bytes(v int32) []byte { return byteOrder.AppendUint32(nil, uint32(v)) }
func Int64Bytes(v int64) []byte { return byteOrder.AppendUint64(nil, uint64(v)) }
