package codec

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/errors"
)

// DecodeFormat decodes an opaque payload into target with the backend
// opt.Format selects:
//
//   - FormatRaw: the native layout, with opt forwarded to nested types.
//   - FormatProtobuf: proto.Unmarshal for messages, otherwise the target's
//     own rawcodec.Decoder, which is how bridged types read their messages.
//   - FormatJSON: protojson for messages, encoding/json otherwise. Comments
//     and trailing commas are stripped first.
//
// The structured and textual backends consume the whole payload.
func (c *Codec) DecodeFormat(buf []byte, opt rawcodec.DecodeOption, target any) ([]byte, error) {
	if v, ok := target.(*Value); ok {
		target = v.Interface()
	}
	rawcodec.Logger().Debug("decode payload",
		zap.Stringer("format", opt.Format),
		zap.Uint8("version", opt.Version),
		zap.String("target", typeName(target)),
		zap.Int("bytes", len(buf)))

	switch opt.Format {
	case rawcodec.FormatRaw:
		return c.DecodeWithOption(buf, target, opt)

	case rawcodec.FormatProtobuf:
		switch t := target.(type) {
		case proto.Message:
			if err := proto.Unmarshal(buf, t); err != nil {
				return buf, errors.Wrap(errors.PhaseDecode, errors.CodeInvalidFormat, err, "protobuf payload")
			}
			return buf[len(buf):], nil
		case rawcodec.Decoder:
			rest, err := rawcodec.DecodeWithOption(t, buf, opt)
			if err != nil {
				return buf, err
			}
			return rest, nil
		}

	case rawcodec.FormatJSON:
		data := jsonc.ToJSON(buf)
		var err error
		if m, ok := target.(proto.Message); ok {
			err = protojson.Unmarshal(data, m)
		} else {
			err = json.Unmarshal(data, target)
		}
		if err != nil {
			return buf, errors.Wrap(errors.PhaseDecode, errors.CodeInvalidFormat, err, "json payload")
		}
		return buf[len(buf):], nil

	default:
		return buf, errors.NotSupport(errors.PhaseDecode, fmt.Sprintf("unknown payload format %s", opt.Format))
	}

	return buf, errors.New(errors.PhaseDecode, errors.CodeNotSupport).
		GoType(typeName(target)).
		Detail("%s payload needs a proto.Message or rawcodec.Decoder target", opt.Format).
		Build()
}

// DecodeFormat decodes buf with the default codec.
func DecodeFormat(buf []byte, opt rawcodec.DecodeOption, target any) ([]byte, error) {
	return defaultCodec.DecodeFormat(buf, opt, target)
}
