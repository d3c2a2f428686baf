package ris

import "math"

// Equal reports structural equality of two value graphs. It is safe on
// cyclic and shared-reference graphs: once a pair of containers is under
// comparison, revisiting that pair is treated as equal, which is the right
// answer for graphs built by Decode (corresponding cycles line up by table
// index).
//
// Numeric comparison follows the codec's number model rather than the Go
// types: Int(3) equals Float(3.0), floats compare by bit pattern, and all
// NaNs are equal. Object fields compare by key, not by order.
func Equal(a, b *Value) bool {
	return equalValue(a, b, make(map[valuePair]bool))
}

type valuePair struct{ a, b *Value }

func equalValue(a, b *Value, seen map[valuePair]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return a.IsNull() && b.IsNull()
	}

	// Cross-kind numeric equality: one number type on the wire.
	if an, aok := a.Number(); aok {
		bn, bok := b.Number()
		if !bok {
			return false
		}
		if a.kind != b.kind {
			return an == bn
		}
		if a.kind == KindInt {
			return a.intVal == b.intVal
		}
		return math.Float64bits(an) == math.Float64bits(bn) ||
			(math.IsNaN(an) && math.IsNaN(bn))
	}

	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull, KindAbsent:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindStr:
		return a.strVal == b.strVal
	case KindRegex:
		return a.regexVal.Pattern == b.regexVal.Pattern && a.regexVal.Flags == b.regexVal.Flags
	case KindFunc:
		if a.funcVal.Body != b.funcVal.Body || len(a.funcVal.Params) != len(b.funcVal.Params) {
			return false
		}
		for i := range a.funcVal.Params {
			if a.funcVal.Params[i] != b.funcVal.Params[i] {
				return false
			}
		}
		return true
	case KindDate:
		return a.dateMillis == b.dateMillis
	case KindArray:
		p := valuePair{a, b}
		if seen[p] {
			return true
		}
		seen[p] = true
		if len(a.arrayVal) != len(b.arrayVal) {
			return false
		}
		for i := range a.arrayVal {
			if !equalValue(a.arrayVal[i], b.arrayVal[i], seen) {
				return false
			}
		}
		return true
	case KindObject:
		p := valuePair{a, b}
		if seen[p] {
			return true
		}
		seen[p] = true
		if len(a.objectVal) != len(b.objectVal) {
			return false
		}
		for _, f := range a.objectVal {
			bf, ok := lookupField(b, f.Key)
			if !ok || !equalValue(f.Value, bf, seen) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func lookupField(v *Value, key string) (*Value, bool) {
	for _, f := range v.objectVal {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}
