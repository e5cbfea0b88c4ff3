// Package codec converts native SDK objects to and from structured values:
// nested map[string]any / []any trees holding only strings, numbers, booleans
// and nil, the shape any JSON-like host runtime can carry.
//
// Encoding never fails for a well-formed model value. Decoding fails with a
// bridgeerr MalformedInput when a required field is missing or ill-typed and
// with InvalidEnumValue when an enumerated code is unknown. Request types are
// decoded from fixed-order arrays, mirroring the host's positional calls.
// Bitmaps are encode-only.
package codec
