package serializer

import "reflect"

// IRPCSerializer is the interface for all value serializers
type IRPCSerializer interface {
	// Serialize encodes a value, including its type id, into a byte array
	Serialize(v any) ([]byte, error)
	// Deserialize decodes a byte array. The result is converted to target,
	// a nil target returns the value in its natural Go type.
	// A null value is returned as nil.
	Deserialize(b []byte, target reflect.Type) (any, error)
}
