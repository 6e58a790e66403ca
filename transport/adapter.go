package transport

import (
	"encoding/hex"
	"fmt"
)

// Adapter is a reversible text rendering of a binary buffer. Stores
// and services pick one per channel; the adapter never inspects the
// buffer it carries.
type Adapter interface {
	// Name identifies the encoding in config files and logs.
	Name() string
	Encode(buf []byte) string
	Decode(s string) ([]byte, error)
}

// Base64 carries buffers as standard padded base64. It is the default
// adapter and the densest text form offered here.
type Base64 struct{}

func (Base64) Name() string                    { return "base64" }
func (Base64) Encode(buf []byte) string        { return EncodeBase64(buf) }
func (Base64) Decode(s string) ([]byte, error) { return DecodeBase64(s) }

// Hex carries buffers as lowercase hexadecimal. Bulkier than base64
// but byte boundaries stay visible, which is what you want in debug
// logs and fixtures.
type Hex struct{}

func (Hex) Name() string             { return "hex" }
func (Hex) Encode(buf []byte) string { return hex.EncodeToString(buf) }

func (Hex) Decode(s string) ([]byte, error) {
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}

// ByName resolves a config-file adapter name. The empty string means
// the default, Base64.
func ByName(name string) (Adapter, error) {
	switch name {
	case "", "base64":
		return Base64{}, nil
	case "hex":
		return Hex{}, nil
	}
	return nil, fmt.Errorf("transport: unknown adapter %q", name)
}
