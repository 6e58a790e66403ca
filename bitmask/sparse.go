package bitmask

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/jozzzzep/shrink/framing"
)

// EncodeSparse packs ids as a serialized roaring bitmap under a length
// prefix carrying the element count. It trades the dense format's
// fixed bit-per-id cost for compressed containers, which wins once
// identifiers are large or sparse; a dense mask for id 1<<20 spends
// 128 KiB where the sparse form spends a few dozen bytes.
//
// The wire format is distinct from Encode's and the two do not mix.
// Unlike Encode, an empty set here carries a count of zero.
func EncodeSparse(ids []uint32) ([]byte, error) {
	rb := roaring.BitmapOf(ids...)
	body, err := rb.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("bitmask: serialize sparse set: %w", err)
	}
	return framing.AddPrefix(body, uint32(rb.GetCardinality())), nil
}

// DecodeSparse reverses EncodeSparse, returning ids in ascending
// order. The prefix must agree with the container's cardinality;
// disagreement fails with ErrCountMismatch.
func DecodeSparse(buf []byte) ([]uint32, error) {
	count, body, err := framing.SplitPrefix(buf)
	if err != nil {
		return nil, err
	}

	rb := roaring.New()
	if err := rb.UnmarshalBinary(body); err != nil {
		return nil, fmt.Errorf("bitmask: parse sparse set: %w", err)
	}
	if got := uint32(rb.GetCardinality()); got != count {
		return nil, fmt.Errorf("%w: prefix declares %d, container holds %d", ErrCountMismatch, count, got)
	}
	return rb.ToArray(), nil
}
