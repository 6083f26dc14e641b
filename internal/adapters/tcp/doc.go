// Package tcp is the reference transport for tickfeed: length-prefixed
// frames over TCP carrying a one-byte message type and a CBOR body.
//
// Frame layout:
//
//	+----------------+------+------------------+
//	| length (4, BE) | type | CBOR body        |
//	+----------------+------+------------------+
//
// Wire tables and dictionaries travel as CBOR tags TagFlip and TagWireDict.
// CBOR has one integer and one float type, so columns of bytes, shorts,
// ints, reals, timespans or GUIDs are wrapped in a TagColumn carrying their
// kind and narrowed back on decode. Their null sentinels survive the trip.
// Loose values outside a table decode as int64, float64 and []byte.
// A connection starts with a login frame carrying the target's credential
// string; the remote side answers with a response (true) or an error.
package tcp
