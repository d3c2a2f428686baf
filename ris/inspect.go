package ris

import (
	"fmt"
	"strconv"
)

// Inspection is a structural summary of an encoded payload: the constant
// table and the reference graph, without materializing the value graph.
// It backs the CLI's inspect command and is handy when debugging payloads.
type Inspection struct {
	ConstantCount int // including the 9 sentinels
	RootIndex     int
	Width         int // shared digit width of the edge fields
	Constants     []ConstantInfo
	Groups        []EdgeGroupInfo
}

// ConstantInfo describes one real (non-sentinel) table entry.
type ConstantInfo struct {
	Index   int
	Kind    Kind
	Token   string // the raw token bytes
	Summary string
}

// EdgeGroupInfo is the decoded edge list of one container constant.
type EdgeGroupInfo struct {
	Parent int
	Edges  []EdgeInfo
}

// EdgeInfo is a single (slot, value) pair. For array parents Slot is the
// element index; for object parents it is the table index of the key string.
type EdgeInfo struct {
	Slot  int
	Value int
}

// Inspect parses an encoded payload into an Inspection. It performs the
// same validation as Decode but keeps indices instead of wiring values.
func Inspect(input string) (*Inspection, error) {
	r := &tokenReader{src: sanitize(input)}

	declared, err := r.radix(headerWidth)
	if err != nil {
		return nil, err
	}
	root, err := r.radix(headerWidth)
	if err != nil {
		return nil, err
	}

	ins := &Inspection{
		ConstantCount: sentinelCount + int(declared),
		RootIndex:     int(root),
	}
	for i := uint64(0); i < declared; i++ {
		start := r.pos
		v, err := readConstant(r)
		if err != nil {
			return nil, err
		}
		ins.Constants = append(ins.Constants, ConstantInfo{
			Index:   sentinelCount + int(i),
			Kind:    v.Kind(),
			Token:   r.src[start:r.pos],
			Summary: summarize(v),
		})
	}
	if root >= uint64(ins.ConstantCount) {
		return nil, r.errorf("root index %d out of range (table size %d)", root, ins.ConstantCount)
	}

	ins.Width = EntropyWidth(uint64(ins.ConstantCount - 1))
	if r.eof() {
		return ins, nil
	}
	groups, err := r.radix(headerWidth)
	if err != nil {
		return nil, err
	}
	for g := uint64(0); g < groups; g++ {
		parent, err := r.radix(ins.Width)
		if err != nil {
			return nil, err
		}
		edgeCount, err := r.radix(ins.Width)
		if err != nil {
			return nil, err
		}
		group := EdgeGroupInfo{Parent: int(parent)}
		for i := uint64(0); i < edgeCount; i++ {
			slot, err := r.radix(ins.Width)
			if err != nil {
				return nil, err
			}
			value, err := r.radix(ins.Width)
			if err != nil {
				return nil, err
			}
			group.Edges = append(group.Edges, EdgeInfo{Slot: int(slot), Value: int(value)})
		}
		ins.Groups = append(ins.Groups, group)
	}
	return ins, nil
}

// summarize renders a one-line description of a decoded constant.
func summarize(v *Value) string {
	switch v.Kind() {
	case KindInt:
		return strconv.FormatInt(v.intVal, 10)
	case KindFloat:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case KindStr:
		s := v.strVal
		if len(s) > 40 {
			s = s[:40] + "..."
		}
		return strconv.Quote(s)
	case KindRegex:
		return v.regexVal.String()
	case KindFunc:
		return fmt.Sprintf("function/%d", len(v.funcVal.Params))
	case KindDate:
		t, _ := v.AsDate()
		return t.Format("2006-01-02T15:04:05.000Z")
	case KindArray:
		return "[]"
	case KindObject:
		return "{}"
	default:
		return v.Kind().String()
	}
}
