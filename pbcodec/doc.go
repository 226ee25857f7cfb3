// Package pbcodec encodes domain types through protobuf messages behind the
// rawcodec buffer protocol.
//
// A bridged type converts itself to a message for encoding and back after
// decoding, so its bytes follow protobuf evolution rules instead of the
// native layout:
//
//	var levelBridge = pbcodec.NewBridge(
//	    func(l *Level) (*wrapperspb.UInt32Value, error) { return wrapperspb.UInt32(uint32(*l)), nil },
//	    func(m *wrapperspb.UInt32Value) (Level, error) { return pbcodec.Narrow[Level](m.GetValue()) },
//	)
//
//	func (l Level) RawMeasure(p rawcodec.Purpose) (int, error) { return levelBridge.Measure(&l, p) }
//	func (l Level) RawEncode(b []byte, p rawcodec.Purpose) ([]byte, error) { return levelBridge.Encode(&l, b, p) }
//	func (l *Level) RawDecode(b []byte) ([]byte, error) { return levelBridge.Decode(b, l) }
//
// # Sizing
//
// Messages are measured and written with deterministic marshaling, so the
// size reported by Measure is exactly what Encode writes and equal values
// always produce equal bytes. Encode panics with *errors.InvariantViolation
// if the two disagree.
//
// # Decoding
//
// A protobuf message does not record its own length. Decode therefore reads
// the whole input and returns an empty suffix: the caller must frame bridged
// values itself, for example as the last field of a record or inside a
// length-prefixed byte string.
//
// Fields the message type does not know are kept rather than rejected. Empty
// is the extreme case: it accepts any message and reports what it skipped.
//
// # Conversions
//
// Conversion failures are returned as InvalidFormat and logged at error
// level through rawcodec.Logger. Protobuf has no 8 or 16 bit integers; use
// Narrow to bring widened fields back, which fails on values out of range
// instead of truncating them. Truncate is the explicit lossy alternative.
package pbcodec
