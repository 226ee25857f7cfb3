package pbcodec

import (
	"bytes"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/wippyai/rawcodec"
)

// Empty is a content type with no fields. It encodes to nothing and decodes
// any protobuf message, consuming the whole input. Fields written by a newer
// version of the content are kept as unknown fields and reported with a
// warning rather than an error.
type Empty struct {
	unknown []byte
}

func (Empty) RawMeasure(rawcodec.Purpose) (int, error) {
	return 0, nil
}

func (Empty) RawEncode(buf []byte, _ rawcodec.Purpose) ([]byte, error) {
	return buf, nil
}

func (e *Empty) RawDecode(buf []byte) ([]byte, error) {
	var m emptypb.Empty
	rest, err := DecodeMessage(buf, &m)
	if err != nil {
		return buf, err
	}
	e.unknown = nil
	if u := m.ProtoReflect().GetUnknown(); len(u) > 0 {
		e.unknown = bytes.Clone(u)
		rawcodec.Logger().Warn("empty content carries unknown fields",
			zap.Int("bytes", len(u)))
	}
	return rest, nil
}

// UnknownFields returns the raw protobuf fields the last decode did not
// recognize.
func (e *Empty) UnknownFields() []byte {
	return e.unknown
}

// RawMinBytes implements rawcodec.FixedSizer.
func (Empty) RawMinBytes() int { return 0 }

// RawMaxBytes implements rawcodec.FixedSizer.
func (Empty) RawMaxBytes() int { return 0 }
