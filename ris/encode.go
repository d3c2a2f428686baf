package ris

import (
	"fmt"
	"math"
	"strings"
)

// Sentinel table positions 0..8. These values are always implicitly present
// and never occupy a serialized table slot.
const (
	sentFalse = iota
	sentTrue
	sentNull
	sentAbsent
	sentNaN
	sentPosInf
	sentNegInf
	sentEmptyStr
	sentZero

	sentinelCount = 9
)

// headerWidth is the fixed width of the constant-count, root-index and
// edge-group-count fields, independent of table size.
const headerWidth = 4

// Encode serializes a value graph to printable text. The walk deduplicates
// strings by value and containers (arrays, objects, dates, regexes,
// functions) by pointer identity; a container's table slot is reserved
// before its children are visited, so cycles and shared references resolve
// to the already-assigned index and the traversal always terminates.
//
// All bookkeeping lives in an encoder-local arena keyed on *Value identity;
// the input graph is never annotated or otherwise mutated, on any path.
func Encode(v *Value) (string, error) {
	e := &encoder{
		visited:  make(map[*Value]int),
		strIndex: make(map[string]int),
		groups:   make(map[int][]edge),
	}
	root, err := e.visit(v)
	if err != nil {
		return "", err
	}
	return e.assemble(root)
}

type edge struct {
	slot, value int
}

type encoder struct {
	tokens   []string // one token per real constant, table order
	visited  map[*Value]int
	strIndex map[string]int
	groups   map[int][]edge
	order    []int // container indices in table order
}

func (e *encoder) push(token string) int {
	e.tokens = append(e.tokens, token)
	return sentinelCount + len(e.tokens) - 1
}

func (e *encoder) addEdge(parent, slot, value int) {
	e.groups[parent] = append(e.groups[parent], edge{slot: slot, value: value})
}

// strConst resolves a string to its table index, deduplicating by value.
func (e *encoder) strConst(s string) (int, error) {
	if s == "" {
		return sentEmptyStr, nil
	}
	if idx, ok := e.strIndex[s]; ok {
		return idx, nil
	}
	token, err := encodeStrToken(s)
	if err != nil {
		return 0, err
	}
	idx := e.push(token)
	e.strIndex[s] = idx
	return idx, nil
}

func (e *encoder) visit(v *Value) (int, error) {
	if v == nil {
		return sentNull, nil
	}
	switch v.kind {
	case KindNull:
		return sentNull, nil
	case KindAbsent:
		return sentAbsent, nil
	case KindBool:
		if v.boolVal {
			return sentTrue, nil
		}
		return sentFalse, nil

	case KindInt:
		if v.intVal == 0 {
			return sentZero, nil
		}
		return e.push(encodeIntToken(v.intVal)), nil

	case KindFloat:
		f := v.floatVal
		switch {
		case math.IsNaN(f):
			return sentNaN, nil
		case math.IsInf(f, 1):
			return sentPosInf, nil
		case math.IsInf(f, -1):
			return sentNegInf, nil
		case f == 0: // covers -0: the sign is lost by design
			return sentZero, nil
		}
		// Integral values in int64 range take the integer encoding; larger
		// integral magnitudes keep their exact bits through the float codec.
		if f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 {
			return e.push(encodeIntToken(int64(f))), nil
		}
		return e.push(encodeFloatToken(f)), nil

	case KindStr:
		return e.strConst(v.strVal)

	case KindDate:
		if idx, ok := e.visited[v]; ok {
			return idx, nil
		}
		token, err := encodeDateToken(v.dateMillis)
		if err != nil {
			return 0, err
		}
		idx := e.push(token)
		e.visited[v] = idx
		return idx, nil

	case KindRegex:
		if idx, ok := e.visited[v]; ok {
			return idx, nil
		}
		token, err := encodeRegexToken(v.regexVal)
		if err != nil {
			return 0, err
		}
		idx := e.push(token)
		e.visited[v] = idx
		return idx, nil

	case KindFunc:
		if idx, ok := e.visited[v]; ok {
			return idx, nil
		}
		token, err := encodeFuncToken(v.funcVal)
		if err != nil {
			return 0, err
		}
		idx := e.push(token)
		e.visited[v] = idx
		return idx, nil

	case KindArray:
		if idx, ok := e.visited[v]; ok {
			return idx, nil
		}
		idx := e.push(string(prefixArray))
		e.visited[v] = idx
		e.order = append(e.order, idx)
		for i, elem := range v.arrayVal {
			ci, err := e.visit(elem)
			if err != nil {
				return 0, err
			}
			e.addEdge(idx, i, ci)
		}
		return idx, nil

	case KindObject:
		if idx, ok := e.visited[v]; ok {
			return idx, nil
		}
		idx := e.push(string(prefixObject))
		e.visited[v] = idx
		e.order = append(e.order, idx)
		for _, f := range v.objectVal {
			ki, err := e.strConst(f.Key)
			if err != nil {
				return 0, err
			}
			vi, err := e.visit(f.Value)
			if err != nil {
				return 0, err
			}
			e.addEdge(idx, ki, vi)
		}
		return idx, nil

	default:
		return 0, fmt.Errorf("ris: unsupported value kind %d has no encoding", v.kind)
	}
}

func (e *encoder) assemble(root int) (string, error) {
	// Array slots and per-parent edge counts share the table-index width but
	// are not bounded by the table size. Pad the table with inert constants
	// until the width derived from the count covers the largest edge field;
	// decoders never reference the padding.
	maxField := uint64(0)
	for _, p := range e.order {
		g := e.groups[p]
		if uint64(len(g)) > maxField {
			maxField = uint64(len(g))
		}
		for _, ed := range g {
			if uint64(ed.slot) > maxField {
				maxField = uint64(ed.slot)
			}
		}
	}
	count := sentinelCount + len(e.tokens)
	for EntropyWidth(uint64(count-1)) < EntropyWidth(maxField) {
		e.tokens = append(e.tokens, encodeIntToken(1))
		count++
	}
	if uint64(count) >= radixPow(headerWidth) {
		return "", fmt.Errorf("ris: graph produced %d constants, exceeding the format limit", count)
	}

	w := EntropyWidth(uint64(count - 1))
	var sb strings.Builder
	sb.WriteString(RadixEncode(uint64(count-sentinelCount), headerWidth))
	sb.WriteString(RadixEncode(uint64(root), headerWidth))
	for _, t := range e.tokens {
		sb.WriteString(t)
	}

	withEdges := e.order[:0]
	for _, p := range e.order {
		if len(e.groups[p]) > 0 {
			withEdges = append(withEdges, p)
		}
	}
	sb.WriteString(RadixEncode(uint64(len(withEdges)), headerWidth))
	for _, p := range withEdges {
		g := e.groups[p]
		sb.WriteString(RadixEncode(uint64(p), w))
		sb.WriteString(RadixEncode(uint64(len(g)), w))
		for _, ed := range g {
			sb.WriteString(RadixEncode(uint64(ed.slot), w))
			sb.WriteString(RadixEncode(uint64(ed.value), w))
		}
	}
	return sb.String(), nil
}
