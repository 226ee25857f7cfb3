package rawcodec

import (
	"fmt"

	"github.com/wippyai/rawcodec/errors"
	"github.com/wippyai/rawcodec/internal/wire"
)

// Purpose selects which encoding an Encoder produces.
type Purpose uint8

const (
	PurposeSerialize Purpose = 0 // canonical transmission form
	PurposeHash      Purpose = 1 // content hashing form
)

func (p Purpose) String() string {
	switch p {
	case PurposeSerialize:
		return "serialize"
	case PurposeHash:
		return "hash"
	}
	return fmt.Sprintf("purpose(%d)", uint8(p))
}

// Format selects the wire representation a decoder expects.
type Format uint8

const (
	FormatRaw      Format = 0 // native layout
	FormatProtobuf Format = 1 // structured message
	FormatJSON     Format = 2 // textual
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatProtobuf:
		return "protobuf"
	case FormatJSON:
		return "json"
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// DecodeOption is passed to version- or format-aware decoders. The zero
// value means native layout, version 0.
type DecodeOption struct {
	Version uint8
	Format  Format
}

// RawMeasure implements Encoder.
func (o DecodeOption) RawMeasure(Purpose) (int, error) {
	return 2, nil
}

// RawEncode implements Encoder.
func (o DecodeOption) RawEncode(buf []byte, _ Purpose) ([]byte, error) {
	if len(buf) < 2 {
		return buf, errors.OutOfLimit(errors.PhaseEncode, []string{"decode_option"}, 2, len(buf))
	}
	buf, _ = wire.PutU8(buf, o.Version)
	return wire.PutU8(buf, uint8(o.Format))
}

// RawDecode implements Decoder. Format bytes other than the known formats
// fail with CodeNotSupport and leave o unchanged.
func (o *DecodeOption) RawDecode(buf []byte) ([]byte, error) {
	if len(buf) < 2 {
		return buf, errors.Truncated(errors.PhaseDecode, []string{"decode_option"}, 2, len(buf))
	}
	f := Format(buf[1])
	if f > FormatJSON {
		return buf, errors.New(errors.PhaseDecode, errors.CodeNotSupport).
			Path("decode_option", "format").
			Value(buf[1]).
			Detail("unknown format %s", f).
			Build()
	}
	o.Version, o.Format = buf[0], f
	return buf[2:], nil
}

// Encoder is implemented by values with a native encoding.
type Encoder interface {
	// RawMeasure returns the exact size RawEncode writes for purpose.
	RawMeasure(purpose Purpose) (int, error)
	// RawEncode writes at the front of buf and returns the unused suffix.
	// It fails with CodeOutOfLimit when buf is too small.
	RawEncode(buf []byte, purpose Purpose) ([]byte, error)
}

// Decoder is implemented by pointers to values with a native encoding.
type Decoder interface {
	// RawDecode fills the receiver from a prefix of buf and returns the
	// remaining suffix. The receiver may retain references into buf.
	RawDecode(buf []byte) ([]byte, error)
}

// OptionDecoder is implemented by decoders that branch on version or format.
type OptionDecoder interface {
	Decoder
	RawDecodeWithOption(buf []byte, opt DecodeOption) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Encoder
	Decoder
}

// FixedSizer is implemented by types whose encoded size has static bounds.
// Callers use it to preallocate without measuring.
type FixedSizer interface {
	RawMinBytes() int
	RawMaxBytes() int
}
