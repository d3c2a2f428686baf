package ris

import (
	"strings"
	"testing"
)

// ============================================================
// Escape Coder Tests
// ============================================================

func TestEscapeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"ascii", "hello, world"},
		{"verbatim range", "+,-./09:;<=>?@AZ[\\]^_`az{|}~"},
		{"low controls", "\x00\x01\t\n\r\x1f"},
		{"low printables", " !\"#$%&'()*"},
		{"latin1", "café naïve °ÿ"},
		{"del and c1", "\u007f\u0080\u009f\u00a0"},
		{"bmp", "Ā中文￿"},
		{"astral", "\U0001F600\U0001F680\U00010000"},
		{"mixed", "a\tbéc中d\U0001F600e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := EscapeEncode(tt.input)
			for i := 0; i < len(enc); i++ {
				if enc[i] < 33 || enc[i] > 126 {
					t.Fatalf("output byte %d = %q outside the printable range", i, enc[i])
				}
			}
			got, err := EscapeDecode(enc)
			if err != nil {
				t.Fatalf("EscapeDecode: %v", err)
			}
			if got != tt.input {
				t.Errorf("round trip = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestEscapeEncode_Fixed(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"az", "az"},           // verbatim
		{"\n", "!+"},           // unit 10: marker 1, digit 10
		{"*", "!K"},            // unit 42: marker 1, digit 42
		{"+", "+"},             // unit 43: first verbatim byte
		{"é", "\"Y"},      // unit 233: marker 2, digit 56
		{"中", "%9v"},      // unit 20013: 3-byte escape of 37685
	}

	for _, tt := range tests {
		if got := EscapeEncode(tt.input); got != tt.want {
			t.Errorf("EscapeEncode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// Decoding ignores bytes outside 33..126, even in the middle of an escape
// sequence, so payloads survive reflowing.
func TestEscapeDecode_IgnoresWhitespace(t *testing.T) {
	input := "tab\tnewline\nunicode 中é done"
	enc := EscapeEncode(input)

	var sb strings.Builder
	for i := 0; i < len(enc); i++ {
		sb.WriteByte(enc[i])
		if i%3 == 2 {
			sb.WriteString("\n ")
		}
	}

	got, err := EscapeDecode(sb.String())
	if err != nil {
		t.Fatalf("EscapeDecode: %v", err)
	}
	if got != input {
		t.Errorf("decode with injected whitespace = %q, want %q", got, input)
	}
}

func TestEscapeDecode_Truncated(t *testing.T) {
	for _, bad := range []string{"!", "\"", "%9"} {
		if _, err := EscapeDecode(bad); err == nil {
			t.Errorf("EscapeDecode(%q): expected truncation error", bad)
		}
	}
}
