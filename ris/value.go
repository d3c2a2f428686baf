package ris

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindAbsent
	KindBool
	KindInt
	KindFloat
	KindStr
	KindRegex
	KindFunc
	KindDate
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindAbsent:
		return "absent"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindRegex:
		return "regex"
	case KindFunc:
		return "func"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// RegexFlags carries the source-language regex flag combination.
type RegexFlags uint8

const (
	RegexIgnoreCase RegexFlags = 1
	RegexMultiline  RegexFlags = 2
	RegexGlobal     RegexFlags = 4
)

// String returns the flags in their conventional "gim" spelling.
func (f RegexFlags) String() string {
	var sb strings.Builder
	if f&RegexGlobal != 0 {
		sb.WriteByte('g')
	}
	if f&RegexIgnoreCase != 0 {
		sb.WriteByte('i')
	}
	if f&RegexMultiline != 0 {
		sb.WriteByte('m')
	}
	return sb.String()
}

// RegexValue is a regular expression carried as data: pattern text plus the
// flag combination it was declared with.
type RegexValue struct {
	Pattern string
	Flags   RegexFlags
}

// String renders the regex in /pattern/flags form.
func (r *RegexValue) String() string {
	return "/" + r.Pattern + "/" + r.Flags.String()
}

// Compile builds a Go regexp from the pattern. IgnoreCase and Multiline map
// onto Go's (?i) and (?m); Global has no Go analog and is carried as data
// only. Pattern dialect differences surface as compile errors.
func (r *RegexValue) Compile() (*regexp.Regexp, error) {
	expr := r.Pattern
	var inline string
	if r.Flags&RegexIgnoreCase != 0 {
		inline += "i"
	}
	if r.Flags&RegexMultiline != 0 {
		inline += "m"
	}
	if inline != "" {
		expr = "(?" + inline + ")" + expr
	}
	return regexp.Compile(expr)
}

// FuncValue is function source text in structured form: the declared
// parameter names and the body. RIS never compiles this into a callable;
// that is an explicitly untrusted concern left outside the codec.
type FuncValue struct {
	Params []string
	Body   string
}

// String renders the function as anonymous source text.
func (f *FuncValue) String() string {
	return "function (" + strings.Join(f.Params, ",") + "){" + f.Body + "}"
}

// Field is one ordered key/value entry of an object.
type Field struct {
	Key   string
	Value *Value
}

// Value is a node in a RIS object graph. Pointer identity is object
// identity: two fields holding the same *Value are a shared reference, and a
// Value reachable from itself is a cycle. Both survive a round trip.
type Value struct {
	kind Kind

	boolVal    bool
	intVal     int64
	floatVal   float64
	strVal     string
	regexVal   *RegexValue
	funcVal    *FuncValue
	dateMillis int64
	arrayVal   []*Value
	objectVal  []Field
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Absent creates an absence marker (the undefined analog).
func Absent() *Value {
	return &Value{kind: KindAbsent}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Float creates a float value.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindStr, strVal: v}
}

// NewRegex creates a regex value.
func NewRegex(pattern string, flags RegexFlags) *Value {
	return &Value{kind: KindRegex, regexVal: &RegexValue{Pattern: pattern, Flags: flags}}
}

// NewFunc creates a function-source value.
func NewFunc(params []string, body string) *Value {
	return &Value{kind: KindFunc, funcVal: &FuncValue{Params: params, Body: body}}
}

// DateMillis creates a date value from milliseconds since the Unix epoch.
func DateMillis(ms int64) *Value {
	return &Value{kind: KindDate, dateMillis: ms}
}

// Date creates a date value from t, truncated to millisecond precision.
func Date(t time.Time) *Value {
	return DateMillis(t.UnixMilli())
}

// NewArray creates an array value.
func NewArray(elems ...*Value) *Value {
	return &Value{kind: KindArray, arrayVal: elems}
}

// NewObject creates an object value with ordered fields.
func NewObject(fields ...Field) *Value {
	return &Value{kind: KindObject, objectVal: fields}
}

// FieldOf creates a Field for use in NewObject.
func FieldOf(key string, value *Value) Field {
	return Field{Key: key, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind. A nil Value reads as null.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("ris: nil value")
	}
	if v.kind != KindBool {
		return false, fmt.Errorf("ris: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("ris: nil value")
	}
	if v.kind != KindInt {
		return 0, fmt.Errorf("ris: expected int, got %s", v.kind)
	}
	return v.intVal, nil
}

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("ris: nil value")
	}
	if v.kind != KindFloat {
		return 0, fmt.Errorf("ris: expected float, got %s", v.kind)
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", fmt.Errorf("ris: nil value")
	}
	if v.kind != KindStr {
		return "", fmt.Errorf("ris: expected str, got %s", v.kind)
	}
	return v.strVal, nil
}

// AsRegex returns the regex value.
func (v *Value) AsRegex() (*RegexValue, error) {
	if v == nil {
		return nil, fmt.Errorf("ris: nil value")
	}
	if v.kind != KindRegex {
		return nil, fmt.Errorf("ris: expected regex, got %s", v.kind)
	}
	return v.regexVal, nil
}

// AsFunc returns the function-source value.
func (v *Value) AsFunc() (*FuncValue, error) {
	if v == nil {
		return nil, fmt.Errorf("ris: nil value")
	}
	if v.kind != KindFunc {
		return nil, fmt.Errorf("ris: expected func, got %s", v.kind)
	}
	return v.funcVal, nil
}

// AsDate returns the date as a UTC time.
func (v *Value) AsDate() (time.Time, error) {
	ms, err := v.AsDateMillis()
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// AsDateMillis returns the date as milliseconds since the Unix epoch.
func (v *Value) AsDateMillis() (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("ris: nil value")
	}
	if v.kind != KindDate {
		return 0, fmt.Errorf("ris: expected date, got %s", v.kind)
	}
	return v.dateMillis, nil
}

// Items returns the array elements.
func (v *Value) Items() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("ris: nil value")
	}
	if v.kind != KindArray {
		return nil, fmt.Errorf("ris: expected array, got %s", v.kind)
	}
	return v.arrayVal, nil
}

// Fields returns the ordered object fields.
func (v *Value) Fields() ([]Field, error) {
	if v == nil {
		return nil, fmt.Errorf("ris: nil value")
	}
	if v.kind != KindObject {
		return nil, fmt.Errorf("ris: expected object, got %s", v.kind)
	}
	return v.objectVal, nil
}

// Len returns the length of an array or object, 0 otherwise.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindArray:
		return len(v.arrayVal)
	case KindObject:
		return len(v.objectVal)
	default:
		return 0
	}
}

// Get returns an object field value by key, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	for _, f := range v.objectVal {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Index returns the i-th element of an array.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil || v.kind != KindArray {
		return nil, fmt.Errorf("ris: not an array")
	}
	if i < 0 || i >= len(v.arrayVal) {
		return nil, fmt.Errorf("ris: index %d out of bounds (len=%d)", i, len(v.arrayVal))
	}
	return v.arrayVal[i], nil
}

// Number returns a numeric value as float64 if int or float.
func (v *Value) Number() (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		return float64(v.intVal), true
	case KindFloat:
		return v.floatVal, true
	default:
		return 0, false
	}
}

// ============================================================
// Mutators
// ============================================================

// Append adds a value to an array.
func (v *Value) Append(val *Value) {
	if v.kind != KindArray {
		panic("ris: cannot append to non-array")
	}
	v.arrayVal = append(v.arrayVal, val)
}

// SetIndex assigns array slot i, growing the array with nulls as needed.
func (v *Value) SetIndex(i int, val *Value) {
	if v.kind != KindArray {
		panic("ris: cannot index non-array")
	}
	for len(v.arrayVal) <= i {
		v.arrayVal = append(v.arrayVal, Null())
	}
	v.arrayVal[i] = val
}

// Set assigns an object field, replacing an existing key or appending.
func (v *Value) Set(key string, val *Value) {
	if v.kind != KindObject {
		panic("ris: cannot set on non-object")
	}
	for i := range v.objectVal {
		if v.objectVal[i].Key == key {
			v.objectVal[i].Value = val
			return
		}
	}
	v.objectVal = append(v.objectVal, Field{Key: key, Value: val})
}
