package ris

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ============================================================
// JSON / YAML Bridge
// ============================================================
//
// Converts between interchange documents and *Value graphs. Two modes:
//   - Strict (default): dates/regexes/functions degrade to strings and
//     absent to null, fully JSON compatible
//   - Extended: uses $ris marker objects for lossless round-trip
//
// Interchange trees cannot express cycles; exporting a cyclic graph is an
// error rather than an infinite walk.

// BridgeOpts configures bridge behavior.
type BridgeOpts struct {
	// Extended enables $ris markers for lossless round-trip of dates,
	// regexes, functions and absence markers. When false (default), these
	// degrade to plain strings and null.
	Extended bool
}

// DefaultBridgeOpts returns the default (strict) options.
func DefaultBridgeOpts() BridgeOpts {
	return BridgeOpts{Extended: false}
}

// maxSafeInt is the largest float64 magnitude with integer precision.
const maxSafeInt = 1<<53 - 1

// FromJSON converts JSON bytes to a value graph using strict mode.
func FromJSON(data []byte) (*Value, error) {
	return FromJSONWithOpts(data, DefaultBridgeOpts())
}

// FromJSONWithOpts converts JSON bytes to a value graph with options.
func FromJSONWithOpts(data []byte, opts BridgeOpts) (*Value, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("ris: JSON parse error: %w", err)
	}
	return fromDocValue(v, opts)
}

// FromYAML converts YAML bytes to a value graph using strict mode.
func FromYAML(data []byte) (*Value, error) {
	return FromYAMLWithOpts(data, DefaultBridgeOpts())
}

// FromYAMLWithOpts converts YAML bytes to a value graph with options.
// YAML timestamps become date values.
func FromYAMLWithOpts(data []byte, opts BridgeOpts) (*Value, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("ris: YAML parse error: %w", err)
	}
	return fromDocValue(v, opts)
}

// fromDocValue maps a decoded interchange value onto the RIS model. Object
// keys are sorted so the same document always encodes to the same bytes.
func fromDocValue(v interface{}, opts BridgeOpts) (*Value, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil

	case bool:
		return Bool(val), nil

	case int:
		return Int(int64(val)), nil

	case int64:
		return Int(val), nil

	case uint64:
		if val > math.MaxInt64 {
			return Float(float64(val)), nil
		}
		return Int(int64(val)), nil

	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			// Never appears in JSON; YAML can produce .nan and .inf.
			return Float(val), nil
		}
		if val == math.Trunc(val) && val >= -maxSafeInt && val <= maxSafeInt {
			return Int(int64(val)), nil
		}
		return Float(val), nil

	case string:
		return Str(val), nil

	case time.Time:
		return Date(val), nil

	case []interface{}:
		arr := NewArray()
		for i, elem := range val {
			gv, err := fromDocValue(elem, opts)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr.Append(gv)
		}
		return arr, nil

	case map[string]interface{}:
		if opts.Extended {
			if marker, ok := val["$ris"].(string); ok {
				return fromMarker(marker, val)
			}
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			gv, err := fromDocValue(val[k], opts)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj.Set(k, gv)
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("ris: unsupported document type %T", v)
	}
}

func fromMarker(marker string, obj map[string]interface{}) (*Value, error) {
	switch marker {
	case "absent":
		return Absent(), nil

	case "date":
		ms, ok := obj["ms"].(float64)
		if !ok {
			if n, isInt := obj["ms"].(int); isInt {
				return DateMillis(int64(n)), nil
			}
			return nil, fmt.Errorf("ris: $ris date marker missing ms")
		}
		return DateMillis(int64(ms)), nil

	case "regex":
		pattern, ok := obj["pattern"].(string)
		if !ok {
			return nil, fmt.Errorf("ris: $ris regex marker missing pattern")
		}
		flagStr, _ := obj["flags"].(string)
		flags, err := ParseRegexFlags(flagStr)
		if err != nil {
			return nil, err
		}
		return NewRegex(pattern, flags), nil

	case "func":
		body, ok := obj["body"].(string)
		if !ok {
			return nil, fmt.Errorf("ris: $ris func marker missing body")
		}
		var params []string
		if raw, ok := obj["params"].([]interface{}); ok {
			for _, p := range raw {
				s, ok := p.(string)
				if !ok {
					return nil, fmt.Errorf("ris: $ris func marker has non-string param %v", p)
				}
				params = append(params, s)
			}
		}
		return NewFunc(params, body), nil

	default:
		return nil, fmt.Errorf("ris: unknown $ris marker type %q", marker)
	}
}

// ParseRegexFlags parses a "gim"-style flag string.
func ParseRegexFlags(s string) (RegexFlags, error) {
	var flags RegexFlags
	for _, c := range s {
		switch c {
		case 'g':
			flags |= RegexGlobal
		case 'i':
			flags |= RegexIgnoreCase
		case 'm':
			flags |= RegexMultiline
		default:
			return 0, fmt.Errorf("ris: unknown regex flag %q", c)
		}
	}
	return flags, nil
}

// ToJSON converts a value graph to JSON bytes using strict mode.
func ToJSON(v *Value) ([]byte, error) {
	return ToJSONWithOpts(v, DefaultBridgeOpts())
}

// ToJSONWithOpts converts a value graph to JSON bytes with options.
func ToJSONWithOpts(v *Value, opts BridgeOpts) ([]byte, error) {
	doc, err := toDocValue(v, opts, false, make(map[*Value]bool))
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// ToYAML converts a value graph to YAML bytes using strict mode. Dates are
// emitted as native YAML timestamps.
func ToYAML(v *Value) ([]byte, error) {
	return ToYAMLWithOpts(v, DefaultBridgeOpts())
}

// ToYAMLWithOpts converts a value graph to YAML bytes with options.
func ToYAMLWithOpts(v *Value, opts BridgeOpts) ([]byte, error) {
	doc, err := toDocValue(v, opts, true, make(map[*Value]bool))
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// toDocValue exports a value graph to an interchange tree. onPath tracks the
// containers on the current walk path: revisiting one means the graph is
// cyclic and cannot be represented.
func toDocValue(v *Value, opts BridgeOpts, yamlNative bool, onPath map[*Value]bool) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch v.kind {
	case KindNull:
		return nil, nil

	case KindAbsent:
		if opts.Extended {
			return map[string]interface{}{"$ris": "absent"}, nil
		}
		return nil, nil

	case KindBool:
		return v.boolVal, nil

	case KindInt:
		return v.intVal, nil

	case KindFloat:
		if !yamlNative && (math.IsNaN(v.floatVal) || math.IsInf(v.floatVal, 0)) {
			return nil, fmt.Errorf("ris: NaN/Infinity cannot be represented in JSON")
		}
		return v.floatVal, nil

	case KindStr:
		return v.strVal, nil

	case KindRegex:
		if opts.Extended {
			return map[string]interface{}{
				"$ris":    "regex",
				"pattern": v.regexVal.Pattern,
				"flags":   v.regexVal.Flags.String(),
			}, nil
		}
		return v.regexVal.String(), nil

	case KindFunc:
		if opts.Extended {
			params := make([]interface{}, len(v.funcVal.Params))
			for i, p := range v.funcVal.Params {
				params[i] = p
			}
			return map[string]interface{}{
				"$ris":   "func",
				"params": params,
				"body":   v.funcVal.Body,
			}, nil
		}
		return v.funcVal.String(), nil

	case KindDate:
		if yamlNative && !opts.Extended {
			return time.UnixMilli(v.dateMillis).UTC(), nil
		}
		if opts.Extended {
			return map[string]interface{}{"$ris": "date", "ms": v.dateMillis}, nil
		}
		return time.UnixMilli(v.dateMillis).UTC().Format("2006-01-02T15:04:05.000Z07:00"), nil

	case KindArray:
		if onPath[v] {
			return nil, fmt.Errorf("ris: cyclic graph cannot be exported to a document tree")
		}
		onPath[v] = true
		defer delete(onPath, v)
		items := make([]interface{}, 0, len(v.arrayVal))
		for _, elem := range v.arrayVal {
			doc, err := toDocValue(elem, opts, yamlNative, onPath)
			if err != nil {
				return nil, err
			}
			items = append(items, doc)
		}
		return items, nil

	case KindObject:
		if onPath[v] {
			return nil, fmt.Errorf("ris: cyclic graph cannot be exported to a document tree")
		}
		onPath[v] = true
		defer delete(onPath, v)
		obj := make(map[string]interface{}, len(v.objectVal))
		for _, f := range v.objectVal {
			doc, err := toDocValue(f.Value, opts, yamlNative, onPath)
			if err != nil {
				return nil, err
			}
			obj[f.Key] = doc
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("ris: unsupported value kind %s", v.kind)
	}
}
