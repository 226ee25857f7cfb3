package pbcodec

import (
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/errors"
)

var (
	textMarshal   = protojson.MarshalOptions{UseProtoNames: true}
	textUnmarshal = protojson.UnmarshalOptions{}
)

// Bridge encodes a domain type T through the protobuf message M. Both
// conversions may fail; failures are logged and returned as InvalidFormat.
// A Bridge holds no state besides its conversions and is safe for
// concurrent use.
type Bridge[T any, M proto.Message] struct {
	toMessage   func(*T) (M, error)
	fromMessage func(M) (T, error)
	name        string
}

// NewBridge creates a bridge from a pair of conversions.
func NewBridge[T any, M proto.Message](to func(*T) (M, error), from func(M) (T, error)) *Bridge[T, M] {
	return &Bridge[T, M]{
		toMessage:   to,
		fromMessage: from,
		name:        fmt.Sprintf("%T", *new(T)),
	}
}

// NewMessage returns an empty M.
func (b *Bridge[T, M]) NewMessage() M {
	var zero M
	return zero.ProtoReflect().Type().New().Interface().(M)
}

// ToMessage converts v to its message.
func (b *Bridge[T, M]) ToMessage(v *T) (M, error) {
	m, err := b.toMessage(v)
	if err != nil {
		var zero M
		return zero, b.convertError(errors.PhaseEncode, "to message", err)
	}
	return m, nil
}

// FromMessage converts m back to the domain type.
func (b *Bridge[T, M]) FromMessage(m M) (T, error) {
	v, err := b.fromMessage(m)
	if err != nil {
		var zero T
		return zero, b.convertError(errors.PhaseDecode, "from message", err)
	}
	return v, nil
}

func (b *Bridge[T, M]) convertError(phase errors.Phase, dir string, err error) error {
	rawcodec.Logger().Error("convert protobuf message",
		zap.String("type", b.name),
		zap.String("direction", dir),
		zap.Error(err))
	return errors.New(phase, errors.CodeInvalidFormat).
		GoType(b.name).
		Cause(err).
		Detail("convert %s %s", b.name, dir).
		Build()
}

// Measure returns the encoded size of v. The purpose does not change the
// message encoding, which is deterministic under both.
func (b *Bridge[T, M]) Measure(v *T, _ rawcodec.Purpose) (int, error) {
	m, err := b.ToMessage(v)
	if err != nil {
		return 0, err
	}
	return MeasureMessage(m), nil
}

// Encode writes the message of v into the front of buf.
func (b *Bridge[T, M]) Encode(v *T, buf []byte, _ rawcodec.Purpose) ([]byte, error) {
	m, err := b.ToMessage(v)
	if err != nil {
		return buf, err
	}
	return EncodeMessage(m, buf)
}

// Decode parses all of buf as a message and converts it into v.
func (b *Bridge[T, M]) Decode(buf []byte, v *T) ([]byte, error) {
	m := b.NewMessage()
	rest, err := DecodeMessage(buf, m)
	if err != nil {
		return buf, err
	}
	if *v, err = b.FromMessage(m); err != nil {
		return buf, err
	}
	return rest, nil
}

// MarshalText returns the protojson form of v.
func (b *Bridge[T, M]) MarshalText(v *T) ([]byte, error) {
	m, err := b.ToMessage(v)
	if err != nil {
		return nil, err
	}
	data, err := textMarshal.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.CodeInvalidFormat, err, "protojson encode")
	}
	return data, nil
}

// UnmarshalText reads the protojson form into v.
func (b *Bridge[T, M]) UnmarshalText(data []byte, v *T) error {
	m := b.NewMessage()
	if err := textUnmarshal.Unmarshal(data, m); err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.CodeInvalidFormat, err, "protojson decode")
	}
	out, err := b.FromMessage(m)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// Bind adapts v to the rawcodec interfaces. The result decodes textual
// payloads when the decode option asks for FormatJSON and protobuf bytes
// otherwise.
func (b *Bridge[T, M]) Bind(v *T) *Bound[T, M] {
	return &Bound[T, M]{bridge: b, v: v}
}

// Bound is a value paired with its bridge.
type Bound[T any, M proto.Message] struct {
	bridge *Bridge[T, M]
	v      *T
}

func (b *Bound[T, M]) RawMeasure(purpose rawcodec.Purpose) (int, error) {
	return b.bridge.Measure(b.v, purpose)
}

func (b *Bound[T, M]) RawEncode(buf []byte, purpose rawcodec.Purpose) ([]byte, error) {
	return b.bridge.Encode(b.v, buf, purpose)
}

func (b *Bound[T, M]) RawDecode(buf []byte) ([]byte, error) {
	return b.bridge.Decode(buf, b.v)
}

func (b *Bound[T, M]) RawDecodeWithOption(buf []byte, opt rawcodec.DecodeOption) ([]byte, error) {
	if opt.Format == rawcodec.FormatJSON {
		if err := b.bridge.UnmarshalText(buf, b.v); err != nil {
			return buf, err
		}
		return buf[len(buf):], nil
	}
	return b.bridge.Decode(buf, b.v)
}

// Value returns the bound value.
func (b *Bound[T, M]) Value() *T {
	return b.v
}
