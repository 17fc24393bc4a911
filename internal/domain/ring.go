// Package domain defines the Chord ring's identifier space and the
// peer reference type shared by every other package in this module.
package domain

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

// IDBits is the width of the ring identifier space. The ring wraps
// modulo 2^IDBits.
const IDBits = 64

// ID is a point on the Chord ring, taken modulo 2^64. Go's uint64
// arithmetic already wraps modulo 2^64, so ring addition is plain
// addition.
type ID uint64

// HashID derives a ring identifier from an arbitrary byte string using
// a fast, non-cryptographic 64-bit hash. Node identifiers are derived
// by hashing the node's advertised address.
func HashID(b []byte) ID {
	h := fnv.New64a()
	_, _ = h.Write(b) // hash.Hash64.Write never returns an error
	return ID(h.Sum64())
}

// HashString is a convenience wrapper around HashID for string input.
func HashString(s string) ID {
	return HashID([]byte(s))
}

// String renders the identifier as a fixed-width hex string.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// ParseID parses the hex representation produced by ID.String back
// into an ID, for operator-facing tools like chordctl.
func ParseID(hex string) (ID, error) {
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ring id %q: %w", hex, err)
	}
	return ID(v), nil
}

// Add returns id + offset on the ring, wrapping modulo 2^64.
func (id ID) Add(offset uint64) ID {
	return ID(uint64(id) + offset)
}

// FingerStart returns the start of the i-th finger interval for a node
// with identifier id: id + 2^i mod 2^64, for i in [0, IDBits).
func (id ID) FingerStart(i int) ID {
	return id.Add(uint64(1) << uint(i))
}

// Between reports whether x lies in the half-open ring arc (a, b]:
// moving clockwise from a (exclusive), x is reached at or before b.
// When a == b the whole ring except a qualifies; x == a is never
// between, x == b always is.
func Between(x, a, b ID) bool {
	if a == b {
		return x != a
	}
	if a < b {
		return x > a && x <= b
	}
	return x > a || x <= b
}

// BetweenExclusive is Between with both endpoints excluded: x must
// lie strictly inside (a, b). Used where neither bound may match,
// e.g. closest_preceding_node.
func BetweenExclusive(x, a, b ID) bool {
	if a == b {
		return x != a
	}
	if a < b {
		return x > a && x < b
	}
	return x > a || x < b
}
