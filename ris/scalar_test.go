package ris

import (
	"math"
	"testing"
)

// ============================================================
// Scalar Codec Tests
// ============================================================

func TestIntegerToken_Prefixes(t *testing.T) {
	tests := []struct {
		n          int64
		wantPrefix byte
		wantLen    int
	}{
		{1, 'a', 2},
		{93, 'a', 2},
		{94, 'b', 3},
		{8836, 'c', 4},
		{-1, 'A', 2},
		{-94, 'B', 3},
		{math.MaxInt64, 'j', 11},
		{math.MinInt64, 'J', 11},
	}

	for _, tt := range tests {
		tok := encodeIntToken(tt.n)
		if tok[0] != tt.wantPrefix {
			t.Errorf("encodeIntToken(%d) prefix = %q, want %q", tt.n, tok[0], tt.wantPrefix)
		}
		if len(tok) != tt.wantLen {
			t.Errorf("encodeIntToken(%d) length = %d, want %d", tt.n, len(tok), tt.wantLen)
		}
	}
}

func TestIntegerToken_RoundTrip(t *testing.T) {
	values := []int64{
		1, -1, 7, 42, -42, 93, 94, 8835, 8836,
		1<<31 - 1, -(1 << 31), 1<<53 + 1,
		math.MaxInt64, math.MinInt64,
	}

	for _, n := range values {
		tok := encodeIntToken(n)
		r := &tokenReader{src: tok[1:]}
		v, err := decodeIntToken(r, tok[0])
		if err != nil {
			t.Fatalf("decodeIntToken(%d): %v", n, err)
		}
		got, _ := v.AsInt()
		if got != n {
			t.Errorf("integer round trip %d = %d", n, got)
		}
		if !r.eof() {
			t.Errorf("integer token for %d not fully consumed", n)
		}
	}
}

func TestFloatToken_BitExact(t *testing.T) {
	values := []float64{
		0.5, -0.5, 1.0 / 3.0, -1.0 / 3.0, 3.141592653589793,
		1e300, -1e-300, 6.62607015e-34,
		math.MaxFloat64, math.SmallestNonzeroFloat64,
		-math.SmallestNonzeroFloat64, 2.2250738585072014e-308,
	}

	for _, f := range values {
		tok := encodeFloatToken(f)
		if len(tok) != 1+floatExpWidth+floatManWidth {
			t.Fatalf("float token for %g has length %d", f, len(tok))
		}
		r := &tokenReader{src: tok[1:]}
		v, err := decodeFloatToken(r)
		if err != nil {
			t.Fatalf("decodeFloatToken(%g): %v", f, err)
		}
		got, _ := v.AsFloat()
		if math.Float64bits(got) != math.Float64bits(f) {
			t.Errorf("float round trip %g: got %g (bits %x vs %x)",
				f, got, math.Float64bits(got), math.Float64bits(f))
		}
	}
}

func TestStringToken_ShortVsLong(t *testing.T) {
	short, err := encodeStrToken("hi")
	if err != nil {
		t.Fatal(err)
	}
	if short[0] != prefixShortStr+2 || len(short) != 3 {
		t.Errorf("short string token = %q", short)
	}

	long := make([]byte, 50)
	for i := range long {
		long[i] = 'x'
	}
	tok, err := encodeStrToken(string(long))
	if err != nil {
		t.Fatal(err)
	}
	if tok[0] != prefixLongStr {
		t.Errorf("long string prefix = %q, want %q", tok[0], byte(prefixLongStr))
	}

	for _, s := range []string{"hi", string(long), "é中\U0001F600"} {
		tok, err := encodeStrToken(s)
		if err != nil {
			t.Fatal(err)
		}
		r := &tokenReader{src: tok}
		v, err := readConstant(r)
		if err != nil {
			t.Fatalf("readConstant(%q): %v", s, err)
		}
		got, _ := v.AsStr()
		if got != s || !r.eof() {
			t.Errorf("string round trip %q = %q", s, got)
		}
	}
}

func TestRegexToken_FlagFolding(t *testing.T) {
	for flags := RegexFlags(0); flags < 8; flags++ {
		tok, err := encodeRegexToken(&RegexValue{Pattern: "a+(b|c)*", Flags: flags})
		if err != nil {
			t.Fatal(err)
		}
		if tok[0] != prefixRegex+byte(flags) {
			t.Errorf("flags %d: prefix = %q", flags, tok[0])
		}
		r := &tokenReader{src: tok}
		v, err := readConstant(r)
		if err != nil {
			t.Fatalf("readConstant: %v", err)
		}
		rv, _ := v.AsRegex()
		if rv.Pattern != "a+(b|c)*" || rv.Flags != flags {
			t.Errorf("regex round trip flags %d = %+v", flags, rv)
		}
	}
}

func TestFormalsRewrite(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		body   string
		want   string
	}{
		{"two params", []string{"a", "b"}, "return a+b;",
			"var a=arguments[0];var b=arguments[1];return a+b;"},
		{"no params", nil, "return 42;", "return 42;"},
		{"dollar ident", []string{"$x"}, "return $x;", "var $x=arguments[0];return $x;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := &FuncValue{Params: tt.params, Body: tt.body}
			got := rewriteFormals(fv)
			if got != tt.want {
				t.Fatalf("rewriteFormals = %q, want %q", got, tt.want)
			}
			back := parseFormals(got)
			if back.Body != tt.body || len(back.Params) != len(tt.params) {
				t.Errorf("parseFormals(%q) = %+v", got, back)
			}
			for i := range tt.params {
				if back.Params[i] != tt.params[i] {
					t.Errorf("param %d = %q, want %q", i, back.Params[i], tt.params[i])
				}
			}
		})
	}
}

// A binding that does not start at argument 0 belongs to the body, not the
// parameter list.
func TestParseFormals_NonSequential(t *testing.T) {
	fv := parseFormals("var y=arguments[1];return y;")
	if len(fv.Params) != 0 || fv.Body != "var y=arguments[1];return y;" {
		t.Errorf("parseFormals kept a non-sequential binding: %+v", fv)
	}
}

func TestFuncToken_RoundTrip(t *testing.T) {
	tok, err := encodeFuncToken(&FuncValue{Params: []string{"n"}, Body: "return n*2;"})
	if err != nil {
		t.Fatal(err)
	}
	if tok[0] != prefixFunc {
		t.Errorf("function prefix = %q", tok[0])
	}
	r := &tokenReader{src: tok}
	v, err := readConstant(r)
	if err != nil {
		t.Fatal(err)
	}
	fv, _ := v.AsFunc()
	if len(fv.Params) != 1 || fv.Params[0] != "n" || fv.Body != "return n*2;" {
		t.Errorf("function round trip = %+v", fv)
	}
}

func TestDateToken_RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 1700000000123, -1000000000000, 32000000000000, -32000000000000}

	for _, ms := range values {
		tok, err := encodeDateToken(ms)
		if err != nil {
			t.Fatalf("encodeDateToken(%d): %v", ms, err)
		}
		if len(tok) != 1+dateWidth {
			t.Fatalf("date token for %d has length %d", ms, len(tok))
		}
		r := &tokenReader{src: tok[1:]}
		v, err := decodeDateToken(r)
		if err != nil {
			t.Fatal(err)
		}
		got, _ := v.AsDateMillis()
		if got != ms {
			t.Errorf("date round trip %d = %d", ms, got)
		}
	}
}

func TestDateToken_OutOfRange(t *testing.T) {
	if _, err := encodeDateToken(1 << 60); err == nil {
		t.Error("expected range error for a far-future date")
	}
}
