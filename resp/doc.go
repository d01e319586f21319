// Package resp encodes Go values to the REdis Serialization Protocol and
// decodes RESP buffers back into Go values.
//
// Values describe their shape to a Serializer, either by implementing
// Marshaler or through the built-in mapping of Go kinds: integers become
// RESP integers, bool a boolean, string a simple string, []byte a bulk
// string, slices arrays, nil pointers and interfaces the null value.
// Floats, maps, structs and fixed-size arrays have no RESP form and fail
// with a KindMessage error.
//
// Decoding works on one complete buffer. Decode builds a Value, Unmarshal
// fills a Go value, and DecodeVisitor drives a caller supplied Visitor.
// Every function reports how many bytes it consumed, so several values can
// be read from a single buffer, which is what Decoder does.
package resp
