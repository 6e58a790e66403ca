package shrink

import (
	"errors"
	"fmt"

	"github.com/jozzzzep/shrink/bitmask"
)

// Leading tag byte of the record inside a Uints envelope.
const (
	tagDense  = 0x00
	tagSparse = 0x01
)

// Uints shrinks a set of integer identifiers. It picks whichever
// bitmask form comes out smaller, the dense mask for compact id
// ranges or the sparse roaring container otherwise, tags the choice
// in the record's first byte, and runs the record through Bytes so
// the result is the same envelope every other shrink producer emits.
// Ids the dense codec cannot hold route to sparse unconditionally.
func Uints(ids []uint32) ([]byte, error) {
	sparse, err := bitmask.EncodeSparse(ids)
	if err != nil {
		return nil, err
	}

	dense, err := bitmask.Encode(ids)
	switch {
	case errors.Is(err, bitmask.ErrIdentifierTooLarge):
		return Bytes(append([]byte{tagSparse}, sparse...))
	case err != nil:
		return nil, err
	}

	if len(sparse) < len(dense) {
		return Bytes(append([]byte{tagSparse}, sparse...))
	}
	return Bytes(append([]byte{tagDense}, dense...))
}

// RestoreUints reverses Uints under DefaultLimits, returning ids in
// ascending order with duplicates collapsed.
func RestoreUints(buf []byte) ([]uint32, error) {
	return RestoreUintsLimits(buf, DefaultLimits())
}

// RestoreUintsLimits is RestoreUints with an explicit restore cap on
// the envelope. A restored record with no tag or an unrecognized one
// fails with ErrUnknownEncoding.
func RestoreUintsLimits(buf []byte, limits Limits) ([]uint32, error) {
	rec, err := RestoreBytesLimits(buf, limits)
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("%w: empty record", ErrUnknownEncoding)
	}
	switch rec[0] {
	case tagDense:
		return bitmask.Decode(rec[1:])
	case tagSparse:
		return bitmask.DecodeSparse(rec[1:])
	}
	return nil, fmt.Errorf("%w: tag 0x%02x", ErrUnknownEncoding, rec[0])
}
