// Package rawcodec is a binary serialization framework built around a
// two-phase buffer protocol: measure the exact encoded size, allocate once,
// encode into the front of the buffer, decode by consuming a prefix.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	rawcodec/            Root package with the Encoder/Decoder contracts and helpers
//	├── codec/           Reflection-driven native codec executing resolved plans
//	├── schema/          Declarations, attribute resolution, codec plans, plan bundles
//	├── pbcodec/         Bridge to protobuf messages behind the same contract
//	├── errors/          Stable error codes, wire mapping, structured errors
//	└── cmd/rawplan/     Plan resolution and inspection tool
//
// # Quick Start
//
// Types either implement Encoder and Decoder themselves or are handled by
// the codec package from their struct tags:
//
//	type Profile struct {
//	    _    struct{} `raw:",rename_all=camelCase"`
//	    ID   uint64
//	    Name string
//	    Bio  *string `raw:",skip_hash"`
//	}
//
//	data, err := codec.Marshal(&p)
//	var out Profile
//	err = codec.Unmarshal(data, &out)
//
// # Buffer Protocol
//
// RawMeasure returns the exact number of bytes RawEncode writes for the same
// purpose. RawEncode writes at the front of the supplied buffer and returns
// the unused suffix; RawDecode consumes a prefix and returns the remaining
// suffix. Composite codecs chain calls by passing each returned suffix to the
// next field.
//
// A measure that disagrees with the bytes actually written is a programming
// error. EncodeToBuffer panics with *errors.InvariantViolation when it sees one.
//
// # Purposes
//
// PurposeSerialize produces the canonical transmission form. PurposeHash
// produces the form fed to content hashing; it omits fields excluded from
// hashing and must be stable across runs. Digest hashes it with BLAKE3.
//
// # Borrowed Data
//
// Decoders may return byte strings and Views that alias the input buffer.
// They remain valid only while the input is neither modified nor reused.
//
// # Thread Safety
//
// The helpers keep no state. Values being encoded must not be mutated
// concurrently.
package rawcodec
