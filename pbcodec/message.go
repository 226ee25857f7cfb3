package pbcodec

import (
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/errors"
)

var (
	marshalOpts   = proto.MarshalOptions{Deterministic: true}
	unmarshalOpts = proto.UnmarshalOptions{}
)

// MeasureMessage returns the exact number of bytes EncodeMessage writes for m.
func MeasureMessage(m proto.Message) int {
	return marshalOpts.Size(m)
}

// EncodeMessage serializes m deterministically into the front of buf and
// returns the unused suffix.
func EncodeMessage(m proto.Message, buf []byte) ([]byte, error) {
	size := marshalOpts.Size(m)
	if len(buf) < size {
		return buf, errors.New(errors.PhaseEncode, errors.CodeOutOfLimit).
			GoType(messageName(m)).
			Value(size).
			Detail("need %d bytes, have %d", size, len(buf)).
			Build()
	}
	out, err := marshalOpts.MarshalAppend(buf[:0:size], m)
	if err != nil {
		rawcodec.Logger().Error("encode protobuf message",
			zap.String("message", messageName(m)),
			zap.Error(err))
		return buf, errors.New(errors.PhaseEncode, errors.CodeOutOfLimit).
			GoType(messageName(m)).
			Cause(err).
			Detail("encode protobuf message").
			Build()
	}
	if len(out) != size || (size > 0 && &out[0] != &buf[0]) {
		panic(errors.SizeMismatch("EncodeMessage", size, len(out)))
	}
	return buf[size:], nil
}

// DecodeMessage parses all of buf into m. A message has no length of its
// own, so the caller must pass exactly the bytes that belong to it; the
// returned suffix is always empty.
func DecodeMessage(buf []byte, m proto.Message) ([]byte, error) {
	if err := unmarshalOpts.Unmarshal(buf, m); err != nil {
		rawcodec.Logger().Error("decode protobuf message",
			zap.String("message", messageName(m)),
			zap.Int("bytes", len(buf)),
			zap.Error(err))
		return buf, errors.New(errors.PhaseDecode, errors.CodeInvalidFormat).
			GoType(messageName(m)).
			Cause(err).
			Detail("decode protobuf message").
			Build()
	}
	return buf[len(buf):], nil
}

func messageName(m proto.Message) string {
	if m == nil {
		return "nil"
	}
	return string(m.ProtoReflect().Descriptor().FullName())
}
