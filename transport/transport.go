// Package transport renders binary buffers on text-safe channels.
//
// Framed buffers are raw bytes; JSON fields, query strings, and log
// lines are not byte-clean. The functions and adapters here bridge
// the two without touching the buffer's framing or contents.
package transport

import (
	"encoding/base64"
	"errors"
	"fmt"
)

var ErrInvalidEncoding = errors.New("transport: invalid encoding")

// EncodeBase64 renders buf as standard padded base64.
func EncodeBase64(buf []byte) string {
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeBase64 reverses EncodeBase64. Input that is not valid padded
// base64 fails with ErrInvalidEncoding.
func DecodeBase64(s string) ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}
