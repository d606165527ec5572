package serializer

import "github.com/pkg/errors"

// Sentinel errors of the codec. Returned errors wrap one of these with context,
// use errors.Is to test for them.
var (
	// ErrDisallowedSerialize is returned when a value's type has no registration and
	// does not carry the Serializable marker
	ErrDisallowedSerialize = errors.New("type is not serializable")
	// ErrClassNotFound is returned when a decoded type id has no registration
	ErrClassNotFound = errors.New("type id not registered")
	// ErrClassNoMatch is returned when a decoded value cannot be assigned to the expected type
	ErrClassNoMatch = errors.New("decoded type does not match the expected type")
	// ErrOutOfRange is returned for reads past the end of the input
	ErrOutOfRange = errors.New("out of range")
	// ErrUnresolvedReference is returned for a back reference to an id not seen in this call
	ErrUnresolvedReference = errors.New("unresolved back reference")
	// ErrReservedTypeID is returned when a user type hashes onto a built-in id
	ErrReservedTypeID = errors.New("type id collides with a built-in type id")
	// ErrDuplicateRegistration is returned when two different types claim the same id
	ErrDuplicateRegistration = errors.New("type id already registered for another type")
	// ErrUnknownEnumName is returned when a decoded enum name is not declared
	ErrUnknownEnumName = errors.New("unknown enum name")
	// ErrAllocation is returned when no instance of a registered type can be created
	ErrAllocation = errors.New("cannot allocate instance")
)
