package ris

import (
	"fmt"
	"math"
)

// Base-94 numeral coder over the printable ASCII alphabet. Every integer
// field in the RIS wire format is written with this coder; field widths are
// sized with EntropyWidth so fixed-width reads are unambiguous.
const (
	radixBase = 94
	radixMin  = '!' // byte 33, also the zero glyph
	radixMax  = '~' // byte 126
)

// radixPow returns 94^w. Widths above 10 exceed uint64 and never occur in
// the format (every field is at most 10 digits).
func radixPow(w int) uint64 {
	n := uint64(1)
	for i := 0; i < w; i++ {
		n *= radixBase
	}
	return n
}

// RadixEncode encodes n in base 94, most-significant digit first, left-padded
// with the zero glyph '!' to minWidth. RadixEncode(0, 0) is the empty string.
func RadixEncode(n uint64, minWidth int) string {
	var buf [10]byte // 94^10 > 2^64, so 10 digits always suffice
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = radixMin + byte(n%radixBase)
		n /= radixBase
	}
	digits := len(buf) - pos
	if digits >= minWidth {
		return string(buf[pos:])
	}
	out := make([]byte, minWidth)
	for i := 0; i < minWidth-digits; i++ {
		out[i] = radixMin
	}
	copy(out[minWidth-digits:], buf[pos:])
	return string(out)
}

// RadixDecode evaluates a base-94 digit string. The empty string decodes to
// zero. Glyphs outside 33..126 are an error; callers that tolerate embedded
// whitespace strip it before decoding.
func RadixDecode(s string) (uint64, error) {
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < radixMin || c > radixMax {
			return 0, fmt.Errorf("ris: radix glyph %q out of range at %d", c, i)
		}
		d := uint64(c - radixMin)
		if n > (math.MaxUint64-d)/radixBase {
			return 0, fmt.Errorf("ris: radix value overflows uint64")
		}
		n = n*radixBase + d
	}
	return n, nil
}

// EntropyWidth returns the minimum digit count w such that 94^w > max.
// EntropyWidth(0) is 0.
func EntropyWidth(max uint64) int {
	w := 0
	limit := uint64(1)
	for limit <= max {
		w++
		if limit > math.MaxUint64/radixBase {
			break
		}
		limit *= radixBase
	}
	return w
}
