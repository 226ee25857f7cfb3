// Package codec executes codec plans against Go values in the native layout.
//
// This package turns Go structs, enums, lists, maps and primitives into the
// compact native byte representation and back, following the plan resolved
// for each type by package schema.
//
// # Native Layout
//
// Nothing on the wire names a field. Values are written back to back in
// declared order:
//
//	Type            Encoding
//	──────────────────────────────────────────────────────────
//	bool            1 byte, 0 or 1
//	u8/s8           1 byte
//	u16/s16         2 bytes, big-endian
//	u32/s32/f32     4 bytes, big-endian (IEEE-754 for floats)
//	u64/s64/f64     8 bytes, big-endian; Go int and uint use this
//	string, []byte  uvarint length + bytes
//	[]T             uvarint count + elements
//	[N]T            N elements
//	map[K]V         uvarint count + entries sorted by encoded key
//	*T              presence byte (0 or 1) + T when present
//	struct          fields in declared order
//	enum            tag (see below) + variant content
//
// Types implementing rawcodec.Encoder and rawcodec.Decoder write themselves.
// rawcodec.View is one of them: it decodes as a window on the input.
//
// # Enums
//
// A Go enum is a struct marked `raw:",enum"` with one field per variant: a
// pointer whose non-nil value carries the content, or a bool for unit
// variants. Exactly one must be set when encoding.
//
//	Tag style   Encoding
//	──────────────────────────────────────────────────────────
//	external    uvarint variant ordinal + content
//	internal    variant name + content
//	adjacent    variant name + uvarint content length + content
//	untagged    content; decoding tries variants in order
//
// Enums declared with field_identifier or variant_identifier encode as the
// name of their variant. Named tags that match no variant select the
// variant marked `other` unless deny_unknown_fields is set.
//
// # Missing Data
//
// Decoding a struct stops reading when its input runs out. The remaining
// fields decode as absent if they are pointers, take their default if they
// have one, and fail with InvalidFormat otherwise. A newer version of a type
// can therefore append optional or defaulted fields and still decode data
// written by the older one. An older decoder reading newer data leaves the
// appended bytes unread.
//
// Under optimize_option the presence bytes of a struct's pointer fields are
// replaced by one bitmap ahead of the fields. An empty input means every
// optional field is absent.
//
// # Key Types
//
//	Compiler      - Pre-compiles Go types against their plans
//	Encoder       - Measures and writes values
//	Decoder       - Reads values, zero-copy for borrowed fields
//	Codec         - Encoder and Decoder over one compiler
//	Value         - A Go value adapted to the rawcodec interfaces
//
// # Encoding Flow
//
//  1. Compiler.Compile(goType) → CompiledType
//  2. Encoder.Measure(v, purpose) → exact size
//  3. Encoder.Encode(v, buf, purpose) → unused suffix of buf
//
// Codec.Marshal does all three into an exact-size buffer and panics with
// *errors.InvariantViolation when encode disagrees with measure.
//
// # Decoding Flow
//
//  1. Compiler.Compile(goType) → CompiledType
//  2. Decoder.Decode(buf, &v) → unread suffix of buf
//
// DecodeFormat picks the backend from a rawcodec.DecodeOption first, so one
// entry point reads native, protobuf and JSON payloads.
//
// # Zero Copy
//
// Fields marked `borrow` decode as views of the input: strings through
// unsafe.String, byte slices as subslices with clipped capacity. The input
// must outlive the decoded value and must not be modified while it is in
// use. Config.ZeroCopyStrings extends this to every string.
//
// # Registered Plans
//
// Plans normally come from `raw` struct tags. Compiler.Register and
// Compiler.Bind attach plans resolved elsewhere, for example loaded from a
// bundle, and bind their fields to Go fields by name ignoring case, dashes
// and underscores.
//
// # Thread Safety
//
// Compiler, Encoder, Decoder and Codec are safe for concurrent use. Compiled
// types are immutable after compilation.
package codec
