// Package bitmask converts sets of small non-negative integer
// identifiers to and from densely packed bit vectors.
//
// The dense format is a length-prefixed buffer (see framing) whose
// prefix is the number of significant BITS, not bytes: a set with
// maximum identifier m packs into ceil((m+1)/8) bytes under a prefix
// of m+1. Bit b of byte b/8 (position b%8, least significant first)
// is set iff identifier b is a member. Persisted data depends on this
// layout, so it is frozen.
package bitmask

import (
	"errors"
	"fmt"

	"github.com/jozzzzep/shrink/framing"
)

var (
	ErrIdentifierTooLarge = errors.New("bitmask: identifier too large")
	ErrCountMismatch      = errors.New("bitmask: element count mismatch")
)

// Limits constrains encode-side mask allocation.
type Limits struct {
	// MaxBits caps the significant-bit count of a dense mask.
	// Identifiers at or above it are rejected instead of allocating.
	MaxBits uint32
}

// DefaultLimits caps dense masks at 1<<26 bits (8 MiB).
func DefaultLimits() Limits {
	return Limits{MaxBits: 1 << 26}
}

// Encode packs ids into a dense length-prefixed bitmask using
// DefaultLimits. Duplicate and unordered ids are fine; setting a bit
// twice is idempotent.
//
// An empty set still claims a single bit, yielding a one-byte zero
// mask under a prefix of 1. Decoding that buffer returns no ids.
func Encode(ids []uint32) ([]byte, error) {
	return EncodeLimits(ids, DefaultLimits())
}

// EncodeLimits is Encode with an explicit allocation cap. Any id at or
// above limits.MaxBits fails with ErrIdentifierTooLarge.
func EncodeLimits(ids []uint32, limits Limits) ([]byte, error) {
	var maxID uint32
	for _, id := range ids {
		if id >= limits.MaxBits {
			return nil, fmt.Errorf("%w: id %d with cap of %d bits", ErrIdentifierTooLarge, id, limits.MaxBits)
		}
		if id > maxID {
			maxID = id
		}
	}

	bits := maxID + 1
	// Byte sizing in uint64: bits+7 wraps in uint32 once a caller's
	// cap lets bits reach the top of the range.
	mask := make([]byte, int((uint64(bits)+7)/8))
	for _, id := range ids {
		mask[id/8] |= 1 << (id % 8)
	}
	return framing.AddPrefix(mask, bits), nil
}

// Decode unpacks a dense bitmask buffer into its identifiers, in
// ascending order. It fails with framing.ErrInputTooShort when buf
// cannot hold a length prefix.
//
// A declared bit count larger than the mask itself is tolerated: only
// bits backed by actual mask bytes decode, the rest are ignored. A
// truncated or mismatched mask therefore narrows the result instead
// of reading out of bounds.
func Decode(buf []byte) ([]uint32, error) {
	bits, mask, err := framing.SplitPrefix(buf)
	if err != nil {
		return nil, err
	}

	if have := uint64(len(mask)) * 8; uint64(bits) > have {
		bits = uint32(have)
	}

	var ids []uint32
	for id := uint32(0); id < bits; id++ {
		if mask[id/8]&(1<<(id%8)) != 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
