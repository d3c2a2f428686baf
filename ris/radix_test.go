package ris

import (
	"math"
	"strings"
	"testing"
)

// ============================================================
// Radix Coder Tests
// ============================================================

func TestRadixRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 2, 42, 93, 94, 95, 8835, 8836,
		1000000, 999999999999, 1000000000000,
		1 << 52, 1 << 63, math.MaxUint64,
	}
	widths := []int{0, 1, 4, 7, 10}

	for _, n := range values {
		for _, w := range widths {
			enc := RadixEncode(n, w)
			if len(enc) < w {
				t.Errorf("RadixEncode(%d, %d) = %q, shorter than min width", n, w, enc)
			}
			got, err := RadixDecode(enc)
			if err != nil {
				t.Fatalf("RadixDecode(%q): %v", enc, err)
			}
			if got != n {
				t.Errorf("round trip %d with width %d: got %d", n, w, got)
			}
		}
	}
}

func TestRadixEncode_Fixed(t *testing.T) {
	tests := []struct {
		n     uint64
		width int
		want  string
	}{
		{0, 0, ""},
		{0, 1, "!"},
		{0, 4, "!!!!"},
		{1, 1, "\""},
		{1, 4, "!!!\""},
		{93, 1, "~"},
		{94, 1, "\"!"}, // overflows the width, never truncated
		{94, 2, "\"!"},
	}

	for _, tt := range tests {
		if got := RadixEncode(tt.n, tt.width); got != tt.want {
			t.Errorf("RadixEncode(%d, %d) = %q, want %q", tt.n, tt.width, got, tt.want)
		}
	}
}

func TestRadixDecode_Empty(t *testing.T) {
	got, err := RadixDecode("")
	if err != nil || got != 0 {
		t.Errorf("RadixDecode(\"\") = %d, %v; want 0, nil", got, err)
	}
}

func TestRadixDecode_Errors(t *testing.T) {
	if _, err := RadixDecode("ab\ncd"); err == nil {
		t.Error("expected error for glyph outside the printable range")
	}
	if _, err := RadixDecode(strings.Repeat("~", 11)); err == nil {
		t.Error("expected overflow error for an 11-digit value")
	}
}

func TestEntropyWidth(t *testing.T) {
	tests := []struct {
		max  uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{93, 1},
		{94, 2},
		{8835, 2},
		{8836, 3},
		{math.MaxUint64, 10},
	}

	for _, tt := range tests {
		if got := EntropyWidth(tt.max); got != tt.want {
			t.Errorf("EntropyWidth(%d) = %d, want %d", tt.max, got, tt.want)
		}
	}
}

// Digit order is most-significant first, so fixed-width fields compare in
// value order. The graph format depends on this for unambiguous reads.
func TestRadixEncode_Monotonic(t *testing.T) {
	prev := ""
	for n := uint64(0); n < 300; n++ {
		enc := RadixEncode(n, 3)
		if len(enc) != 3 {
			t.Fatalf("RadixEncode(%d, 3) has width %d", n, len(enc))
		}
		if n > 0 && enc <= prev {
			t.Fatalf("encoding not monotonic at %d: %q <= %q", n, enc, prev)
		}
		prev = enc
	}
}
