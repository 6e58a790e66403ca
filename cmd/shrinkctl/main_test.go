package main

import (
	"math"
	"testing"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"0", " 7", "4096"})
	if err != nil {
		t.Fatalf("parseIDs: %v", err)
	}
	want := []uint32{0, 7, 4096}
	if len(ids) != len(want) {
		t.Fatalf("got %d ids, want %d", len(ids), len(want))
	}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("ids[%d] = %d, want %d", i, ids[i], id)
		}
	}
}

func TestParseMaxBits(t *testing.T) {
	for _, v := range []uint64{1, 1 << 26, math.MaxUint32} {
		got, err := parseMaxBits(v)
		if err != nil {
			t.Fatalf("parseMaxBits(%d): %v", v, err)
		}
		if uint64(got) != v {
			t.Fatalf("parseMaxBits(%d) = %d", v, got)
		}
	}
	if _, err := parseMaxBits(math.MaxUint32 + 1); err == nil {
		t.Fatal("out-of-range max-bits accepted")
	}
}

func TestParseIDsRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"abc", "-1", "4294967296", ""} {
		if _, err := parseIDs([]string{raw}); err == nil {
			t.Fatalf("parseIDs(%q) accepted bad input", raw)
		}
	}
}
