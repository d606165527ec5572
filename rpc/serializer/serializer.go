package serializer

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// NewSerializer creates the binary serializer over the given registry
//
// Usage:
//
//	reg := serializer.NewTypeRegistry()
//	serializer.MustRegister(reg, serializer.Struct[Person]("Person",
//		serializer.Member("name", func(p *Person) *string { return &p.Name }),
//	))
//	s := serializer.NewSerializer(reg)
//	data, err := s.Serialize(&Person{Name: "gaea"})
func NewSerializer(reg *TypeRegistry, opts ...Option) *Serializer {
	s := &Serializer{reg: reg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures a Serializer
type Option func(*Serializer)

// WithTextEncoding sets the encoding of string payloads. nil means UTF-8.
func WithTextEncoding(enc encoding.Encoding) Option {
	return func(s *Serializer) { s.text = enc }
}

// WithStats records traffic and errors in stats
func WithStats(stats *Stats) Option {
	return func(s *Serializer) { s.stats = stats }
}

// TextEncoding resolves an encoding by its WHATWG name ("utf-8", "gbk",
// "utf-16le", ...). UTF-8 resolves to nil, strings are then written as is.
func TextEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown text encoding %q", name)
	}
	return enc, nil
}

// Serializer is the binary object serializer. It holds no per call state and is
// safe for concurrent use.
type Serializer struct {
	reg   *TypeRegistry
	text  encoding.Encoding
	stats *Stats
}

// Registry returns the type registry of the serializer
func (s *Serializer) Registry() *TypeRegistry { return s.reg }

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (s *Serializer) Serialize(v any) ([]byte, error) {
	c := newWriteContext(s)
	if err := c.writeValue(reflect.ValueOf(v)); err != nil {
		s.stats.encodeFailed()
		return nil, err
	}
	s.stats.encoded(c.w.Len())
	return c.w.Bytes(), nil
}

func (s *Serializer) Deserialize(b []byte, target reflect.Type) (any, error) {
	c := newReadContext(s, b)
	v, err := c.readValue(target)
	if err != nil {
		s.stats.decodeFailed()
		return nil, err
	}
	s.stats.decoded(c.r.Offset())
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

// DeserializeAs decodes b into a value of type T. A null frame yields the zero value.
func DeserializeAs[T any](s IRPCSerializer, b []byte) (T, error) {
	var zero T
	v, err := s.Deserialize(b, reflect.TypeFor[T]())
	if err != nil || v == nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, errors.Wrapf(ErrClassNoMatch, "decoded %T, expected %T", v, zero)
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *Serializer) writeString(w *Writer, str string) error {
	if s.text == nil {
		w.WriteInt32(int32(len(str)))
		w.WriteBytes([]byte(str))
		return nil
	}
	b, err := s.text.NewEncoder().Bytes([]byte(str))
	if err != nil {
		return errors.Wrapf(err, "cannot encode string %q", str)
	}
	w.WriteBlob(b)
	return nil
}

func (s *Serializer) readString(r *Reader) (string, error) {
	b, err := r.ReadBlob()
	if err != nil {
		return "", err
	}
	if s.text == nil {
		return string(b), nil
	}
	decoded, err := s.text.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrap(err, "cannot decode string")
	}
	return string(decoded), nil
}
