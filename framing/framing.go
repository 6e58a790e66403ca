// Package framing implements the toolkit's length-prefix framing
// convention: a fixed 4-byte big-endian unsigned length followed by an
// opaque payload.
//
// The prefix value belongs to the caller. It is usually a byte count,
// but nothing here enforces that; the bitmask codec stores a bit count
// in it. External systems persist buffers in this layout, so the wire
// format is frozen.
package framing

import (
	"encoding/binary"
	"errors"
)

// PrefixLen is the size of the length prefix in bytes.
const PrefixLen = 4

var (
	ErrInputTooShort = errors.New("framing: input shorter than length prefix")
)

// AddPrefix returns a new buffer holding length as a 4-byte big-endian
// prefix followed by a copy of payload. length is caller-chosen and is
// not required to equal len(payload). It always succeeds, including
// for an empty payload.
func AddPrefix(payload []byte, length uint32) []byte {
	buf := make([]byte, PrefixLen+len(payload))
	binary.BigEndian.PutUint32(buf[0:PrefixLen], length)
	copy(buf[PrefixLen:], payload)
	return buf
}

// SplitPrefix reads the 4-byte big-endian length prefix from buf and
// returns it along with the remaining payload. It fails with
// ErrInputTooShort when buf holds fewer than PrefixLen bytes.
//
// The returned payload is a sub-slice of buf, not a copy; it is valid
// only as long as buf is. The prefix value is never validated against
// the payload size.
func SplitPrefix(buf []byte) (uint32, []byte, error) {
	if len(buf) < PrefixLen {
		return 0, nil, ErrInputTooShort
	}
	return binary.BigEndian.Uint32(buf[0:PrefixLen]), buf[PrefixLen:], nil
}
