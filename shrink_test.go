package shrink

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/jozzzzep/shrink/framing"
)

func TestBytesRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"text", []byte("length-prefixed zstd payload")},
		{"binary", []byte{0x00, 0xff, 0x00, 0xff, 0x80}},
		{"empty", nil},
		{"single byte", []byte{0x2a}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Bytes(tc.raw)
			if err != nil {
				t.Fatalf("Bytes: %v", err)
			}
			if got := binary.BigEndian.Uint32(out[:framing.PrefixLen]); got != uint32(len(tc.raw)) {
				t.Fatalf("declared length = %d, want %d", got, len(tc.raw))
			}
			back, err := RestoreBytes(out)
			if err != nil {
				t.Fatalf("RestoreBytes: %v", err)
			}
			if !bytes.Equal(back, tc.raw) {
				t.Fatalf("round trip = %x, want %x", back, tc.raw)
			}
		})
	}
}

func TestBytesCompresses(t *testing.T) {
	raw := bytes.Repeat([]byte("buffer buffer buffer "), 500)
	out, err := Bytes(raw)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(out) >= len(raw) {
		t.Fatalf("shrunk %d bytes into %d", len(raw), len(out))
	}
}

func TestRestoreBytesShortInput(t *testing.T) {
	if _, err := RestoreBytes([]byte{0x00, 0x01}); !errors.Is(err, framing.ErrInputTooShort) {
		t.Fatalf("err = %v, want ErrInputTooShort", err)
	}
}

func TestRestoreBytesOverCap(t *testing.T) {
	out, err := Bytes([]byte("small"))
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	_, body, err := framing.SplitPrefix(out)
	if err != nil {
		t.Fatalf("SplitPrefix: %v", err)
	}
	huge := framing.AddPrefix(body, DefaultLimits().MaxRestoredBytes+1)
	if _, err := RestoreBytes(huge); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
	if _, err := RestoreBytesLimits(huge, Limits{MaxRestoredBytes: 1 << 30}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("raised cap: err = %v, want ErrLengthMismatch", err)
	}
}

func TestRestoreBytesLengthMismatch(t *testing.T) {
	out, err := Bytes([]byte("twelve bytes"))
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	_, body, err := framing.SplitPrefix(out)
	if err != nil {
		t.Fatalf("SplitPrefix: %v", err)
	}
	for _, declared := range []uint32{0, 11, 13} {
		if _, err := RestoreBytes(framing.AddPrefix(body, declared)); !errors.Is(err, ErrLengthMismatch) {
			t.Fatalf("declared %d: err = %v, want ErrLengthMismatch", declared, err)
		}
	}
}

func TestRestoreBytesGarbageBody(t *testing.T) {
	buf := framing.AddPrefix([]byte("definitely not zstd"), 19)
	if _, err := RestoreBytes(buf); !errors.Is(err, ErrCorruptPayload) {
		t.Fatalf("err = %v, want ErrCorruptPayload", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	s := "framed text with unicode: éü世界"
	out, err := String(s)
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	back, err := RestoreString(out)
	if err != nil {
		t.Fatalf("RestoreString: %v", err)
	}
	if back != s {
		t.Fatalf("round trip = %q, want %q", back, s)
	}
}

func TestStringLargePayload(t *testing.T) {
	s := strings.Repeat("0123456789abcdef", 1<<12)
	out, err := String(s)
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	back, err := RestoreString(out)
	if err != nil {
		t.Fatalf("RestoreString: %v", err)
	}
	if back != s {
		t.Fatal("large payload did not survive round trip")
	}
}
