package shrink

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// JSON shrinks a JSON document, byte for byte. The input must parse;
// anything else fails with ErrInvalidJSON before compression. No
// normalization happens, so RestoreJSON returns the exact original
// bytes, whitespace and key order included.
func JSON(raw []byte) ([]byte, error) {
	if !jsoniter.Valid(raw) {
		return nil, fmt.Errorf("%w: input does not parse", ErrInvalidJSON)
	}
	return Bytes(raw)
}

// RestoreJSON reverses JSON under DefaultLimits. A buffer that
// restores cleanly but does not hold JSON, such as one produced by
// Bytes, fails with ErrInvalidJSON.
func RestoreJSON(buf []byte) ([]byte, error) {
	return RestoreJSONLimits(buf, DefaultLimits())
}

// RestoreJSONLimits is RestoreJSON with an explicit restore cap.
func RestoreJSONLimits(buf []byte, limits Limits) ([]byte, error) {
	raw, err := RestoreBytesLimits(buf, limits)
	if err != nil {
		return nil, err
	}
	if !jsoniter.Valid(raw) {
		return nil, fmt.Errorf("%w: restored payload does not parse", ErrInvalidJSON)
	}
	return raw, nil
}
