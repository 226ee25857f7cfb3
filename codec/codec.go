package codec

import (
	"reflect"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/errors"
	"github.com/wippyai/rawcodec/schema"
)

// Codec pairs an Encoder and a Decoder sharing one compiler.
type Codec struct {
	*Encoder
	*Decoder
	compiler *Compiler
}

func New() *Codec {
	return NewWithCompiler(NewCompiler())
}

func NewWithCompiler(c *Compiler) *Codec {
	return &Codec{
		Encoder:  NewEncoderWithCompiler(c),
		Decoder:  NewDecoderWithCompiler(c),
		compiler: c,
	}
}

func (c *Codec) Compiler() *Compiler {
	return c.compiler
}

// Marshal encodes v under PurposeSerialize into an exact-size buffer.
func (c *Codec) Marshal(v any) ([]byte, error) {
	return rawcodec.EncodeToBuffer(c.Value(v), rawcodec.PurposeSerialize)
}

// HashEncode encodes v under PurposeHash into an exact-size buffer.
func (c *Codec) HashEncode(v any) ([]byte, error) {
	return rawcodec.EncodeToBuffer(c.Value(v), rawcodec.PurposeHash)
}

// Unmarshal decodes data into ptr and rejects trailing bytes.
func (c *Codec) Unmarshal(data []byte, ptr any) error {
	return rawcodec.Unmarshal(data, c.Value(ptr))
}

// Value adapts v to the rawcodec interfaces so the helpers of package
// rawcodec (Digest, WriteFile, ToHex, ...) work on plain Go values. Decoding
// requires v to be a non-nil pointer.
func (c *Codec) Value(v any) *Value {
	return &Value{codec: c, v: v}
}

// Value is a Go value bound to a Codec.
type Value struct {
	codec *Codec
	v     any
}

func (v *Value) RawMeasure(purpose rawcodec.Purpose) (int, error) {
	return v.codec.Measure(v.v, purpose)
}

func (v *Value) RawEncode(buf []byte, purpose rawcodec.Purpose) ([]byte, error) {
	return v.codec.Encode(v.v, buf, purpose)
}

func (v *Value) RawDecode(buf []byte) ([]byte, error) {
	return v.codec.Decode(buf, v.v)
}

func (v *Value) RawDecodeWithOption(buf []byte, opt rawcodec.DecodeOption) ([]byte, error) {
	return v.codec.DecodeFormat(buf, opt, v.v)
}

// Interface returns the bound value.
func (v *Value) Interface() any {
	return v.v
}

var defaultCodec = New()

// Default returns the process-wide codec used by the package functions.
func Default() *Codec {
	return defaultCodec
}

// Marshal encodes v with the default codec.
func Marshal(v any) ([]byte, error) {
	return defaultCodec.Marshal(v)
}

// Unmarshal decodes data into ptr with the default codec and rejects
// trailing bytes.
func Unmarshal(data []byte, ptr any) error {
	return defaultCodec.Unmarshal(data, ptr)
}

// Decode decodes the leading value of buf into ptr with the default codec
// and returns the unread suffix.
func Decode(buf []byte, ptr any) ([]byte, error) {
	return defaultCodec.Decode(buf, ptr)
}

// Register registers plan for the type of sample with the default codec.
func Register(sample any, plan *schema.Plan) error {
	t := reflect.TypeOf(sample)
	if t == nil {
		return errors.InvalidParam(errors.PhaseCompile, nil, "Register sample is nil")
	}
	return defaultCodec.compiler.Register(t, plan)
}
