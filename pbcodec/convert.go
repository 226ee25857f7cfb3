package pbcodec

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/errors"
)

// EncodeStringList formats every item with its String method.
func EncodeStringList[T fmt.Stringer](list []T) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = item.String()
	}
	return out
}

// DecodeStringList parses every string with parse.
func DecodeStringList[T any](list []string, parse func(string) (T, error)) ([]T, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]T, len(list))
	for i, s := range list {
		v, err := parse(s)
		if err != nil {
			return nil, conversionFailed(errors.PhaseConvert, []string{index(i)}, s, fmt.Sprintf("%T", v), err)
		}
		out[i] = v
	}
	return out, nil
}

// EncodeBufList serializes every item in the native layout, one buffer each.
func EncodeBufList[T rawcodec.Encoder](list []T) ([][]byte, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([][]byte, len(list))
	for i, item := range list {
		data, err := rawcodec.Marshal(item)
		if err != nil {
			return nil, errors.At(err, index(i))
		}
		out[i] = data
	}
	return out, nil
}

// DecodeBufList decodes one item from the front of every buffer. Bytes
// after an item are ignored, and items may alias their buffer.
func DecodeBufList[T any, PT interface {
	*T
	rawcodec.Decoder
}](list [][]byte) ([]T, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]T, len(list))
	for i, data := range list {
		if err := rawcodec.DecodeSlice(data, PT(&out[i])); err != nil {
			return nil, errors.At(err, index(i))
		}
	}
	return out, nil
}

// EncodeNestedList converts every item to its message.
func EncodeNestedList[T any, M proto.Message](b *Bridge[T, M], list []T) ([]M, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]M, len(list))
	for i := range list {
		m, err := b.ToMessage(&list[i])
		if err != nil {
			return nil, errors.At(err, index(i))
		}
		out[i] = m
	}
	return out, nil
}

// DecodeNestedList converts every message back to the domain type.
func DecodeNestedList[T any, M proto.Message](b *Bridge[T, M], list []M) ([]T, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]T, len(list))
	for i, m := range list {
		v, err := b.FromMessage(m)
		if err != nil {
			return nil, errors.At(err, index(i))
		}
		out[i] = v
	}
	return out, nil
}

// ConvertList applies conv to every item.
func ConvertList[From, To any](list []From, conv func(From) (To, error)) ([]To, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]To, len(list))
	for i, v := range list {
		c, err := conv(v)
		if err != nil {
			return nil, errors.At(err, index(i))
		}
		out[i] = c
	}
	return out, nil
}

// ConvertMap converts keys and values of m. Two keys converting to the same
// key are rejected.
func ConvertMap[K1, K2 comparable, V1, V2 any](m map[K1]V1, key func(K1) (K2, error), val func(V1) (V2, error)) (map[K2]V2, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[K2]V2, len(m))
	for k, v := range m {
		ck, err := key(k)
		if err != nil {
			return nil, errors.At(err, fmt.Sprintf("[%v]", k))
		}
		if _, dup := out[ck]; dup {
			return nil, errors.InvalidFormat(errors.PhaseConvert, []string{fmt.Sprintf("[%v]", k)},
				"key %v collides after conversion", ck)
		}
		cv, err := val(v)
		if err != nil {
			return nil, errors.At(err, fmt.Sprintf("[%v]", k))
		}
		out[ck] = cv
	}
	return out, nil
}

// ConvertOptional converts the value behind v, keeping nil as nil.
func ConvertOptional[From, To any](v *From, conv func(From) (To, error)) (*To, error) {
	if v == nil {
		return nil, nil
	}
	c, err := conv(*v)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Integer is the set of integer types Narrow and Truncate convert between.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Narrow converts v to To and fails when the value does not survive the
// conversion. Protobuf has no 8 or 16 bit integers, so fields of those types
// travel widened and come back through Narrow.
func Narrow[To, From Integer](v From) (To, error) {
	to := To(v)
	if From(to) != v || (to < 0) != (v < 0) {
		var zero To
		return zero, conversionFailed(errors.PhaseConvert, nil, v, fmt.Sprintf("%T", zero), nil)
	}
	return to, nil
}

// NarrowList applies Narrow to every item.
func NarrowList[To, From Integer](list []From) ([]To, error) {
	return ConvertList(list, Narrow[To, From])
}

// Truncate converts v to To keeping only the low bits. Use it where losing
// the high bits is intended.
func Truncate[To, From Integer](v From) To {
	return To(v)
}

// ParseUint parses a decimal string into an unsigned integer type of any
// width, failing on values the type cannot hold.
func ParseUint[T ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint](s string) (T, error) {
	var zero T
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return zero, conversionFailed(errors.PhaseConvert, nil, s, fmt.Sprintf("%T", zero), err)
	}
	return Narrow[T](n)
}

func conversionFailed(phase errors.Phase, path []string, value any, target string, cause error) error {
	rawcodec.Logger().Error("decode value to target type failed",
		zap.Any("value", value),
		zap.String("target", target),
		zap.Error(cause))
	b := errors.New(phase, errors.CodeInvalidFormat).
		Path(path...).
		GoType(target).
		Value(value).
		Detail("%v does not convert to %s", value, target)
	if cause != nil {
		b = b.Cause(cause)
	}
	return b.Build()
}

func index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
