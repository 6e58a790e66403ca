// Package shrink compresses byte buffers into self-describing
// length-prefixed frames and restores them.
//
// A shrunk buffer is a 4-byte big-endian prefix holding the
// UNCOMPRESSED length, followed by a zstd stream of the original
// bytes (see framing for the prefix layout). Restoring checks the
// declared length both before decompression, against a configurable
// cap, and after, against what actually came out. Typed payloads
// build on the same frame: String and JSON shrink text, Uints routes
// integer sets through the bitmask codecs.
package shrink

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/jozzzzep/shrink/framing"
)

var (
	ErrPayloadTooLarge = errors.New("shrink: restored payload too large")
	ErrLengthMismatch  = errors.New("shrink: restored length mismatch")
	ErrCorruptPayload  = errors.New("shrink: corrupt payload")
	ErrInvalidJSON     = errors.New("shrink: invalid json")
	ErrUnknownEncoding = errors.New("shrink: unknown encoding")
)

// maxRestoreMemory is the hard ceiling a single restore may
// materialize, regardless of Limits. Backstops decompression bombs.
const maxRestoreMemory = 1 << 30

// WithZeroFrames keeps empty payloads as real zstd frames, so every
// shrunk buffer carries a frame regardless of content. Construction
// can only fail on a bad option, so a failure here is a programming
// error and panics at init.
var (
	zenc = mustEncoder(zstd.NewWriter(nil, zstd.WithZeroFrames(true)))
	zdec = mustDecoder(zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxRestoreMemory)))
)

func mustEncoder(enc *zstd.Encoder, err error) *zstd.Encoder {
	if err != nil {
		panic(err)
	}
	return enc
}

func mustDecoder(dec *zstd.Decoder, err error) *zstd.Decoder {
	if err != nil {
		panic(err)
	}
	return dec
}

// Limits constrains restore-side allocation.
type Limits struct {
	// MaxRestoredBytes caps the size a buffer may claim to restore
	// to. Buffers declaring more are rejected before decompression.
	MaxRestoredBytes uint32
}

// DefaultLimits caps restored payloads at 1<<26 bytes (64 MiB).
func DefaultLimits() Limits {
	return Limits{MaxRestoredBytes: 1 << 26}
}

// Bytes shrinks raw into a framed zstd buffer whose prefix records
// len(raw). The shared encoder is safe for concurrent use.
func Bytes(raw []byte) ([]byte, error) {
	if len(raw) > maxRestoreMemory {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(raw))
	}
	body := zenc.EncodeAll(raw, make([]byte, 0, len(raw)/2))
	return framing.AddPrefix(body, uint32(len(raw))), nil
}

// RestoreBytes reverses Bytes under DefaultLimits.
func RestoreBytes(buf []byte) ([]byte, error) {
	return RestoreBytesLimits(buf, DefaultLimits())
}

// RestoreBytesLimits reverses Bytes with an explicit restore cap.
// It fails with framing.ErrInputTooShort when buf cannot hold a
// prefix, ErrPayloadTooLarge when the declared length exceeds the
// cap, and ErrLengthMismatch when the decompressed size disagrees
// with the prefix.
func RestoreBytesLimits(buf []byte, limits Limits) ([]byte, error) {
	declared, body, err := framing.SplitPrefix(buf)
	if err != nil {
		return nil, err
	}
	if declared > limits.MaxRestoredBytes {
		return nil, fmt.Errorf("%w: declares %d bytes, cap is %d", ErrPayloadTooLarge, declared, limits.MaxRestoredBytes)
	}

	raw, err := zdec.DecodeAll(body, make([]byte, 0, declared))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	if uint32(len(raw)) != declared {
		return nil, fmt.Errorf("%w: declares %d bytes, restored %d", ErrLengthMismatch, declared, len(raw))
	}
	return raw, nil
}

// String shrinks s. Restore with RestoreString.
func String(s string) ([]byte, error) {
	return Bytes([]byte(s))
}

// RestoreString reverses String under DefaultLimits.
func RestoreString(buf []byte) (string, error) {
	return RestoreStringLimits(buf, DefaultLimits())
}

// RestoreStringLimits is RestoreString with an explicit restore cap.
func RestoreStringLimits(buf []byte, limits Limits) (string, error) {
	raw, err := RestoreBytesLimits(buf, limits)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
