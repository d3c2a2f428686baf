package ris

import (
	"fmt"
	"math"
	"strings"
)

// FormatError reports a malformed payload: an unknown token prefix, a
// truncated field, or an index outside the constant table. Offsets are into
// the sanitized (printable-only) stream.
type FormatError struct {
	Msg    string
	Offset int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ris: %s at offset %d", e.Msg, e.Offset)
}

// sanitize strips every byte outside the printable range 33..126 so that
// whitespace and line breaks inserted into a payload never shift field
// boundaries.
func sanitize(s string) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if s[i] < radixMin || s[i] > radixMax {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= radixMin && s[i] <= radixMax {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// newSentinels returns fresh sentinel values for table positions 0..8.
// Fresh per decode call: decoded graphs share these pointers internally but
// never across calls.
func newSentinels() []*Value {
	return []*Value{
		Bool(false),
		Bool(true),
		Null(),
		Absent(),
		Float(math.NaN()),
		Float(math.Inf(1)),
		Float(math.Inf(-1)),
		Str(""),
		Int(0),
	}
}

// Decode reconstructs a value graph from text produced by Encode. Two
// sequential passes, no recursion: first every constant token is decoded in
// table order (containers as empty shells), then the reference graph is
// replayed against the complete table, which wires cycles and shared
// references by index. A payload that ends after the constant table is read
// as having no edges.
func Decode(input string) (*Value, error) {
	r := &tokenReader{src: sanitize(input)}

	declared, err := r.radix(headerWidth)
	if err != nil {
		return nil, err
	}
	root, err := r.radix(headerWidth)
	if err != nil {
		return nil, err
	}

	table := newSentinels()
	for i := uint64(0); i < declared; i++ {
		v, err := readConstant(r)
		if err != nil {
			return nil, err
		}
		table = append(table, v)
	}
	if root >= uint64(len(table)) {
		return nil, r.errorf("root index %d out of range (table size %d)", root, len(table))
	}
	if r.eof() {
		return table[root], nil
	}

	if err := wireEdges(r, table); err != nil {
		return nil, err
	}
	return table[root], nil
}

// wireEdges replays the reference graph: per group, a parent index, an edge
// count, then (slot, value) pairs assigned as parent[slot] = value.
func wireEdges(r *tokenReader, table []*Value) error {
	w := EntropyWidth(uint64(len(table) - 1))
	groups, err := r.radix(headerWidth)
	if err != nil {
		return err
	}
	for g := uint64(0); g < groups; g++ {
		parent, err := r.radix(w)
		if err != nil {
			return err
		}
		if parent >= uint64(len(table)) {
			return r.errorf("parent index %d out of range (table size %d)", parent, len(table))
		}
		pv := table[parent]
		edgeCount, err := r.radix(w)
		if err != nil {
			return err
		}
		for i := uint64(0); i < edgeCount; i++ {
			slot, err := r.radix(w)
			if err != nil {
				return err
			}
			value, err := r.radix(w)
			if err != nil {
				return err
			}
			if value >= uint64(len(table)) {
				return r.errorf("value index %d out of range (table size %d)", value, len(table))
			}
			child := table[value]
			switch pv.Kind() {
			case KindArray:
				pv.SetIndex(int(slot), child)
			case KindObject:
				if slot >= uint64(len(table)) {
					return r.errorf("slot index %d out of range (table size %d)", slot, len(table))
				}
				key, err := table[slot].AsStr()
				if err != nil {
					return r.errorf("object key constant %d is %s, want str", slot, table[slot].Kind())
				}
				pv.Set(key, child)
			default:
				return r.errorf("constant %d is a %s and cannot carry edges", parent, pv.Kind())
			}
		}
	}
	return nil
}
