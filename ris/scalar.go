package ris

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Constant-token prefixes. Each real constant in the table is one
// self-delimiting token: a prefix byte carrying type (and folded metadata)
// followed by a fixed- or length-prefixed payload. All prefixes are distinct
// printable bytes, so the decoder dispatches on a single leading byte.
const (
	prefixLongStr  = '!' // 5-digit escaped length, then payload
	prefixShortStr = '#' // bytes 35..57: escaped length 0..22 folded in
	shortStrMax    = 22
	prefixDate     = '@' // 7-digit zigzag-folded epoch millis
	prefixNegInt   = 'A' // 'A'..'J': negative, digit count 1..10
	prefixArray    = '['
	prefixFunc     = '^' // 4-digit length, rewritten source
	prefixCtorFunc = '_' // accepted on decode; constructor promotion unused
	prefixPosInt   = 'a' // 'a'..'j': positive, digit count 1..10
	maxIntDigits   = 10
	prefixRegex    = 'p' // 'p'..'w': flag combination 0..7 folded in
	prefixObject   = '{'
	prefixFloat    = '~' // 2-digit packed exponent, 8-digit mantissa
)

// Field widths for length/payload fields.
const (
	strLenWidth   = 5
	regexLenWidth = 4
	funcLenWidth  = 4
	dateWidth     = 7
	floatExpWidth = 2
	floatManWidth = 8
)

// ============================================================
// Integer
// ============================================================

// encodeIntToken encodes any non-zero int64. Zero is a sentinel and never
// reaches this codec.
func encodeIntToken(n int64) string {
	base := byte(prefixPosInt)
	mag := uint64(n)
	if n < 0 {
		base = prefixNegInt
		mag = -mag
	}
	digits := RadixEncode(mag, 1)
	return string(base+byte(len(digits)-1)) + digits
}

func decodeIntToken(r *tokenReader, prefix byte) (*Value, error) {
	neg := prefix >= prefixNegInt && prefix < prefixNegInt+maxIntDigits
	var width int
	if neg {
		width = int(prefix-prefixNegInt) + 1
	} else {
		width = int(prefix-prefixPosInt) + 1
	}
	mag, err := r.radix(width)
	if err != nil {
		return nil, err
	}
	if neg {
		if mag > 1<<63 {
			return nil, r.errorf("integer magnitude %d overflows int64", mag)
		}
		return Int(int64(-mag)), nil
	}
	if mag > math.MaxInt64 {
		return nil, r.errorf("integer magnitude %d overflows int64", mag)
	}
	return Int(int64(mag)), nil
}

// ============================================================
// Float
// ============================================================

// encodeFloatToken encodes a finite, non-integral, non-zero float exactly.
// The value is normalized so |x| / 2^e lands in [2^52, 2^53); the residue
// after subtracting 2^52 then fits the 8-digit mantissa field, and the
// exponent's sign and magnitude pack with the value sign into 2 digits.
// Rounding can push the residue marginally below zero; it is clamped, not
// errored.
func encodeFloatToken(f float64) string {
	sign := uint64(0)
	a := f
	if math.Signbit(f) {
		sign = 1
		a = -f
	}
	_, exp := math.Frexp(a)
	e := exp - 53 // a/2^e in [2^52, 2^53)
	m := int64(math.Round(math.Ldexp(a, -e))) - (1 << 52)
	if m < 0 {
		m = 0
	}
	expSign := uint64(0)
	if e < 0 {
		expSign = 1
		e = -e
	}
	packed := sign + 2*expSign + 4*uint64(e)
	return string(prefixFloat) + RadixEncode(packed, floatExpWidth) + RadixEncode(uint64(m), floatManWidth)
}

func decodeFloatToken(r *tokenReader) (*Value, error) {
	packed, err := r.radix(floatExpWidth)
	if err != nil {
		return nil, err
	}
	m, err := r.radix(floatManWidth)
	if err != nil {
		return nil, err
	}
	e := int(packed >> 2)
	if packed&2 != 0 {
		e = -e
	}
	x := math.Ldexp(float64(m)+(1<<52), e)
	if packed&1 != 0 {
		x = -x
	}
	return Float(x), nil
}

// ============================================================
// String
// ============================================================

func encodeStrToken(s string) (string, error) {
	esc := EscapeEncode(s)
	if len(esc) <= shortStrMax {
		return string(prefixShortStr+byte(len(esc))) + esc, nil
	}
	if uint64(len(esc)) >= radixPow(strLenWidth) {
		return "", fmt.Errorf("ris: string escapes to %d bytes, exceeding the format limit", len(esc))
	}
	return string(prefixLongStr) + RadixEncode(uint64(len(esc)), strLenWidth) + esc, nil
}

func decodeStrToken(r *tokenReader, prefix byte) (*Value, error) {
	var n int
	if prefix == prefixLongStr {
		ln, err := r.radix(strLenWidth)
		if err != nil {
			return nil, err
		}
		n = int(ln)
	} else {
		n = int(prefix - prefixShortStr)
	}
	payload, err := r.take(n)
	if err != nil {
		return nil, err
	}
	s, err := EscapeDecode(payload)
	if err != nil {
		return nil, &FormatError{Msg: err.Error(), Offset: r.pos - n}
	}
	return Str(s), nil
}

// ============================================================
// Regex
// ============================================================

func encodeRegexToken(rv *RegexValue) (string, error) {
	esc := EscapeEncode(rv.Pattern)
	if uint64(len(esc)) >= radixPow(regexLenWidth) {
		return "", fmt.Errorf("ris: regex pattern escapes to %d bytes, exceeding the format limit", len(esc))
	}
	return string(prefixRegex+byte(rv.Flags&7)) + RadixEncode(uint64(len(esc)), regexLenWidth) + esc, nil
}

func decodeRegexToken(r *tokenReader, prefix byte) (*Value, error) {
	flags := RegexFlags(prefix - prefixRegex)
	ln, err := r.radix(regexLenWidth)
	if err != nil {
		return nil, err
	}
	payload, err := r.take(int(ln))
	if err != nil {
		return nil, err
	}
	pattern, err := EscapeDecode(payload)
	if err != nil {
		return nil, &FormatError{Msg: err.Error(), Offset: r.pos - int(ln)}
	}
	return NewRegex(pattern, flags), nil
}

// ============================================================
// Function source
// ============================================================

// Formals are rewritten into positional-argument bindings so the wire form
// carries no parameter list and a reconstructed function accepts any arity
// uniformly. The rewrite is canonical, which lets decode parse the bindings
// back out of the body prefix.
var formalBinding = regexp.MustCompile(`^var ([A-Za-z_$][A-Za-z0-9_$]*)=arguments\[(\d+)\];`)

func rewriteFormals(fv *FuncValue) string {
	var sb strings.Builder
	for i, p := range fv.Params {
		fmt.Fprintf(&sb, "var %s=arguments[%d];", p, i)
	}
	sb.WriteString(fv.Body)
	return sb.String()
}

func parseFormals(src string) *FuncValue {
	var params []string
	for {
		m := formalBinding.FindStringSubmatch(src)
		if m == nil {
			break
		}
		idx, err := strconv.Atoi(m[2])
		if err != nil || idx != len(params) {
			break
		}
		params = append(params, m[1])
		src = src[len(m[0]):]
	}
	return &FuncValue{Params: params, Body: src}
}

func encodeFuncToken(fv *FuncValue) (string, error) {
	esc := EscapeEncode(rewriteFormals(fv))
	if uint64(len(esc)) >= radixPow(funcLenWidth) {
		return "", fmt.Errorf("ris: function source escapes to %d bytes, exceeding the format limit", len(esc))
	}
	return string(prefixFunc) + RadixEncode(uint64(len(esc)), funcLenWidth) + esc, nil
}

func decodeFuncToken(r *tokenReader) (*Value, error) {
	ln, err := r.radix(funcLenWidth)
	if err != nil {
		return nil, err
	}
	payload, err := r.take(int(ln))
	if err != nil {
		return nil, err
	}
	src, err := EscapeDecode(payload)
	if err != nil {
		return nil, &FormatError{Msg: err.Error(), Offset: r.pos - int(ln)}
	}
	fv := parseFormals(src)
	return &Value{kind: KindFunc, funcVal: fv}, nil
}

// ============================================================
// Date
// ============================================================

// Dates zigzag-fold signed epoch millis into the 7-digit field, bounding the
// representable range to about ±1021 years around the epoch.
func encodeDateToken(ms int64) (string, error) {
	zig := uint64(ms)<<1 ^ uint64(ms>>63)
	if zig >= radixPow(dateWidth) {
		return "", fmt.Errorf("ris: date %dms out of the representable range", ms)
	}
	return string(prefixDate) + RadixEncode(zig, dateWidth), nil
}

func decodeDateToken(r *tokenReader) (*Value, error) {
	zig, err := r.radix(dateWidth)
	if err != nil {
		return nil, err
	}
	ms := int64(zig>>1) ^ -int64(zig&1)
	return DateMillis(ms), nil
}

// ============================================================
// Token reader
// ============================================================

// tokenReader is a cursor over a sanitized (printable-only) payload.
type tokenReader struct {
	src string
	pos int
}

func (r *tokenReader) eof() bool {
	return r.pos >= len(r.src)
}

func (r *tokenReader) errorf(format string, args ...interface{}) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...), Offset: r.pos}
}

func (r *tokenReader) take(n int) (string, error) {
	if r.pos+n > len(r.src) {
		return "", &FormatError{
			Msg:    fmt.Sprintf("truncated field: need %d bytes, have %d", n, len(r.src)-r.pos),
			Offset: r.pos,
		}
	}
	s := r.src[r.pos : r.pos+n]
	r.pos += n
	return s, nil
}

func (r *tokenReader) radix(width int) (uint64, error) {
	s, err := r.take(width)
	if err != nil {
		return 0, err
	}
	n, err := RadixDecode(s)
	if err != nil {
		return 0, &FormatError{Msg: err.Error(), Offset: r.pos - width}
	}
	return n, nil
}

// readConstant decodes one self-delimiting constant token, dispatching on
// its prefix byte. Container markers decode to empty shells; their contents
// are wired later from the reference graph.
func readConstant(r *tokenReader) (*Value, error) {
	start := r.pos
	prefix, err := r.take(1)
	if err != nil {
		return nil, err
	}
	b := prefix[0]
	switch {
	case b == prefixLongStr:
		return decodeStrToken(r, b)
	case b >= prefixShortStr && b <= prefixShortStr+shortStrMax:
		return decodeStrToken(r, b)
	case b == prefixDate:
		return decodeDateToken(r)
	case b >= prefixNegInt && b < prefixNegInt+maxIntDigits:
		return decodeIntToken(r, b)
	case b == prefixArray:
		return NewArray(), nil
	case b == prefixFunc || b == prefixCtorFunc:
		return decodeFuncToken(r)
	case b >= prefixPosInt && b < prefixPosInt+maxIntDigits:
		return decodeIntToken(r, b)
	case b >= prefixRegex && b < prefixRegex+8:
		return decodeRegexToken(r, b)
	case b == prefixObject:
		return NewObject(), nil
	case b == prefixFloat:
		return decodeFloatToken(r)
	default:
		return nil, &FormatError{Msg: fmt.Sprintf("unknown constant prefix %q", b), Offset: start}
	}
}
