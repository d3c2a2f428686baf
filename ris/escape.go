package ris

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Escape coder: maps arbitrary text onto the printable alphabet 33..126.
//
// The scheme operates on UTF-16 code units (astral runes travel as surrogate
// pairs, so a unit never exceeds 0xFFFF) and partitions the output space by
// the leading glyph's digit value:
//
//	digit 0  ('!')  2-byte escape for units 0..42 and 127..176
//	digit 1  ('"')  2-byte escape for units 177..255
//	digit 2..9      3-byte escape: the base-94 digits of 2*94*94 + unit
//	digit 10+       the unit itself, verbatim (43..126)
//
// Decoding skips any input byte outside 33..126, so line breaks or other
// formatting inserted into a payload never corrupt it.
const (
	escMarkLow  = radixMin     // '!', digit value 0
	escMarkHigh = radixMin + 1 // '"', digit value 1
	escBias     = 2 * radixBase * radixBase
)

// EscapeEncode encodes s using only printable bytes.
func EscapeEncode(s string) string {
	var sb strings.Builder
	for _, u := range utf16.Encode([]rune(s)) {
		switch {
		case u >= 43 && u <= 126:
			sb.WriteByte(byte(u))
		case u <= 42:
			sb.WriteByte(escMarkLow)
			sb.WriteByte(radixMin + byte(u))
		case u <= 176:
			sb.WriteByte(escMarkLow)
			sb.WriteByte(radixMin + byte(u-83))
		case u <= 255:
			sb.WriteByte(escMarkHigh)
			sb.WriteByte(radixMin + byte(u-177))
		default:
			sb.WriteString(RadixEncode(escBias+uint64(u), 3))
		}
	}
	return sb.String()
}

// EscapeDecode inverts EscapeEncode. Bytes outside 33..126 are skipped,
// including inside an escape sequence.
func EscapeDecode(s string) (string, error) {
	units := make([]uint16, 0, len(s))
	i := 0
	next := func() (byte, bool) {
		for i < len(s) {
			c := s[i]
			i++
			if c >= radixMin && c <= radixMax {
				return c, true
			}
		}
		return 0, false
	}
	for {
		c, ok := next()
		if !ok {
			break
		}
		dv := c - radixMin
		switch {
		case dv == 0:
			d, ok := next()
			if !ok {
				return "", fmt.Errorf("ris: truncated 2-byte escape at end of input")
			}
			u := uint16(d - radixMin)
			if u > 42 {
				u += 83
			}
			units = append(units, u)
		case dv == 1:
			d, ok := next()
			if !ok {
				return "", fmt.Errorf("ris: truncated 2-byte escape at end of input")
			}
			units = append(units, uint16(d-radixMin)+177)
		case dv <= 9:
			d1, ok1 := next()
			d2, ok2 := next()
			if !ok1 || !ok2 {
				return "", fmt.Errorf("ris: truncated 3-byte escape at end of input")
			}
			v := (uint64(dv)*radixBase+uint64(d1-radixMin))*radixBase + uint64(d2-radixMin)
			if v-escBias > 0xFFFF {
				return "", fmt.Errorf("ris: escaped code unit %d out of range", v-escBias)
			}
			units = append(units, uint16(v-escBias))
		default:
			units = append(units, uint16(c))
		}
	}
	return string(utf16.Decode(units)), nil
}
