package serializer

import (
	"math"
	"strings"
	"unicode/utf16"
)

// HashCode returns the stable 32 bit hash used for user type ids and field
// ordering. It runs over the UTF-16 code units of s with int32 wraparound, so
// peers written for other runtimes compute the same ids.
func HashCode(s string) int32 {
	units := utf16.Encode([]rune(s))

	var hash1 int32 = 5381
	hash2 := hash1

	for i := 0; i < len(units); i++ {
		hash1 = ((hash1 << 5) + hash1) ^ int32(units[i])
		i++
		if i >= len(units) {
			break
		}
		hash2 = ((hash2 << 5) + hash2) ^ int32(units[i])
	}

	return hash1 + hash2*1566083941
}

// fieldHash returns the ordering key of a serialized field name
func fieldHash(name string) int32 {
	if strings.HasPrefix(name, "#") {
		return math.MaxInt32
	}
	return HashCode(strings.ToLower(name))
}
