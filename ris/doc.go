// Package ris implements RIS, a graph-aware value serializer that turns an
// arbitrary in-memory object graph into a compact printable string and back.
//
// RIS is designed to be:
//   - Graph-faithful: cycles and shared references survive a round trip
//   - Printable: output uses only bytes 33..126; injected whitespace is ignored
//   - Exact: floats decode to the original bit pattern, not an approximation
//   - Pure: encode/decode never mutate their input and keep no global state
//
// # Data Model
//
// Scalars: null, absent, bool, int, float, str, regex, function source, date
// Containers: array, object (ordered string-keyed fields)
//
// Nine sentinel values (false, true, null, absent, NaN, +Inf, -Inf, "", 0)
// occupy fixed table positions 0..8 and are never re-serialized.
//
// # Wire Format
//
//	[4: constant count - 9][4: root index]
//	[constant tokens, each self-delimiting]
//	[4: edge group count]
//	  per group: [w: parent][w: edge count] then [w: slot][w: value] pairs
//
// All integer fields are base-94 over the printable alphabet; w is the
// entropy width of the final constant count. Containers serialize as empty
// markers whose contents are replayed from the edge groups, so decoding
// needs no recursion and wires cycles by table index.
//
// # Example
//
//	a := ris.NewArray()
//	a.Append(a) // self-referential
//	s, _ := ris.Encode(a)
//	b, _ := ris.Decode(s)
//	// b is an array of length 1 whose sole element is b itself
//
// Function values are carried as structured source text (parameter list plus
// body); RIS never compiles decoded source into a callable.
package ris
