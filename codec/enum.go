package codec

import (
	"math"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/codec/internal/types"
	"github.com/wippyai/rawcodec/errors"
	"github.com/wippyai/rawcodec/internal/wire"
	"github.com/wippyai/rawcodec/schema"
)

// activeVariant finds the single variant field that is set: a non-nil
// pointer or a true bool.
func activeVariant(ct *types.CompiledType, v reflect.Value) (*types.Variant, reflect.Value, error) {
	var (
		found   *types.Variant
		payload reflect.Value
	)
	for i := range ct.Variants {
		vr := &ct.Variants[i]
		fv := v.Field(vr.Index)
		set := false
		if vr.Unit {
			set = fv.Bool()
		} else {
			set = !fv.IsNil()
		}
		if !set {
			continue
		}
		if found != nil {
			return nil, payload, errors.New(errors.PhaseEncode, errors.CodeInvalidParam).
				GoType(ct.GoType.String()).
				Detail("variants %s and %s are both set", found.Name, vr.Name).
				Build()
		}
		found = vr
		if !vr.Unit {
			payload = fv.Elem()
		}
	}
	if found == nil {
		return nil, payload, errors.New(errors.PhaseEncode, errors.CodeInvalidParam).
			GoType(ct.GoType.String()).
			Detail("no variant set").
			Build()
	}
	if found.Plan.SkipSerialize {
		return nil, payload, errors.New(errors.PhaseEncode, errors.CodeNotSupport).
			Path(found.Plan.Name).
			GoType(ct.GoType.String()).
			Detail("variant %s is never serialized", found.Name).
			Build()
	}
	return found, payload, nil
}

func (p pass) measurePayload(vr *types.Variant, payload reflect.Value) (int, error) {
	if vr.Type == nil {
		return 0, nil
	}
	n, err := p.measure(vr.Type, payload)
	if err != nil {
		return 0, errors.At(err, vr.Plan.Name)
	}
	return n, nil
}

func (p pass) measureEnum(ct *types.CompiledType, v reflect.Value) (int, error) {
	vr, payload, err := activeVariant(ct, v)
	if err != nil {
		return 0, err
	}
	content, err := p.measurePayload(vr, payload)
	if err != nil {
		return 0, err
	}

	head := 0
	switch ct.Plan.Tag.Kind {
	case schema.TagExternal:
		head = wire.UvarintSize(uint64(vr.Plan.Index))
	case schema.TagInternal:
		head = wire.BytesSize(len(vr.Plan.Names.Ser))
	case schema.TagAdjacent:
		head = wire.BytesSize(len(vr.Plan.Names.Ser)) + wire.UvarintSize(uint64(content))
	}
	return addSize(head, content)
}

func (p pass) encodeEnum(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	vr, payload, err := activeVariant(ct, v)
	if err != nil {
		return buf, err
	}

	tag := ct.Plan.Tag
	switch tag.Kind {
	case schema.TagExternal:
		buf, err = wire.PutUvarint(buf, uint64(vr.Plan.Index))
	case schema.TagInternal:
		buf, err = wire.PutString(buf, vr.Plan.Names.Ser)
	case schema.TagAdjacent:
		var content int
		if content, err = p.measurePayload(vr, payload); err != nil {
			return buf, err
		}
		if buf, err = wire.PutString(buf, vr.Plan.Names.Ser); err == nil {
			buf, err = wire.PutUvarint(buf, uint64(content))
		}
	}
	if err != nil {
		return buf, errors.FromWire(errors.PhaseEncode, []string{vr.Plan.Name}, err)
	}

	if vr.Type == nil {
		return buf, nil
	}
	if buf, err = p.encode(vr.Type, payload, buf); err != nil {
		return buf, errors.At(err, vr.Plan.Name)
	}
	return buf, nil
}

func (d *decoder) decodeEnum(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	tag := ct.Plan.Tag
	if tag.Kind == schema.TagUntagged {
		return d.decodeUntagged(ct, v, buf)
	}

	var (
		vr   *types.Variant
		rest []byte
	)
	switch tag.Kind {
	case schema.TagExternal:
		ord, r, err := wire.Uvarint(buf)
		if err != nil {
			return buf, errors.FromWire(errors.PhaseDecode, []string{"[variant]"}, err)
		}
		if ord <= math.MaxInt32 {
			vr = ct.Variant(int(ord))
		}
		if vr == nil {
			e := errors.InvalidOrdinal(errors.PhaseDecode, nil, ord, len(ct.Variants))
			e.GoType = ct.GoType.String()
			return buf, e
		}
		rest = r
	default:
		name, r, err := wire.Bytes(buf)
		if err != nil {
			return buf, errors.FromWire(errors.PhaseDecode, []string{tagField(tag)}, err)
		}
		if vr = ct.VariantByTag(string(name)); vr == nil {
			return buf, errors.New(errors.PhaseDecode, errors.CodeInvalidFormat).
				Path(tagField(tag)).
				GoType(ct.GoType.String()).
				Value(string(name)).
				Detail("unknown variant %q", name).
				Build()
		}
		rest = r
	}
	if vr.Plan.SkipDeserialize {
		return buf, errors.New(errors.PhaseDecode, errors.CodeInvalidFormat).
			Path(vr.Plan.Name).
			GoType(ct.GoType.String()).
			Detail("variant %s is never deserialized", vr.Name).
			Build()
	}

	v.SetZero()
	if tag.Kind != schema.TagAdjacent {
		return d.decodePayload(vr, v, rest)
	}

	size, r, err := wire.Uvarint(rest)
	if err != nil {
		return buf, errors.FromWire(errors.PhaseDecode, []string{tag.Content}, err)
	}
	if size > uint64(len(r)) {
		return buf, errors.Truncated(errors.PhaseDecode, []string{tag.Content}, int(min(size, math.MaxInt32)), len(r))
	}
	content := r[:size:size]
	left, err := d.decodePayload(vr, v, content)
	if err != nil {
		return buf, err
	}
	if len(left) > 0 {
		rawcodec.Logger().Debug("variant content not fully consumed",
			zap.String("type", ct.GoType.String()),
			zap.String("variant", vr.Name),
			zap.Int("unread", len(left)))
	}
	return r[size:], nil
}

func tagField(tag schema.TagStyle) string {
	if tag.Tag == "" {
		return "[variant]"
	}
	return tag.Tag
}

// decodeUntagged tries every deserializable variant in declaration order
// and keeps the first that decodes. Unit variants read nothing and are
// tried only after every variant with content.
func (d *decoder) decodeUntagged(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	order := make([]*types.Variant, 0, len(ct.Variants))
	for i := range ct.Variants {
		if vr := &ct.Variants[i]; !vr.Unit && !vr.Plan.SkipDeserialize {
			order = append(order, vr)
		}
	}
	for i := range ct.Variants {
		if vr := &ct.Variants[i]; vr.Unit && !vr.Plan.SkipDeserialize {
			order = append(order, vr)
		}
	}
	for _, vr := range order {
		scratch := reflect.New(ct.GoType).Elem()
		rest, err := d.decodePayload(vr, scratch, buf)
		if err == nil {
			v.Set(scratch)
			return rest, nil
		}
	}
	return buf, errors.New(errors.PhaseDecode, errors.CodeInvalidFormat).
		GoType(ct.GoType.String()).
		Detail("data did not match any variant of untagged enum %s", ct.Plan.Name).
		Build()
}

func (d *decoder) decodePayload(vr *types.Variant, v reflect.Value, buf []byte) ([]byte, error) {
	fv := v.Field(vr.Index)
	if vr.Unit {
		fv.SetBool(true)
		return buf, nil
	}
	p := reflect.New(fv.Type().Elem())
	rest, err := d.decode(vr.Type, p.Elem(), buf, vr.Plan.Borrow)
	if err != nil {
		return buf, errors.At(err, vr.Plan.Name)
	}
	fv.Set(p)
	return rest, nil
}

func (d *decoder) decodeIdentifier(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	name, rest, err := wire.Bytes(buf)
	if err != nil {
		return buf, errors.FromWire(errors.PhaseDecode, nil, err)
	}
	vr := ct.VariantByTag(string(name))
	if vr == nil {
		return buf, errors.New(errors.PhaseDecode, errors.CodeInvalidFormat).
			GoType(ct.GoType.String()).
			Value(string(name)).
			Detail("unknown identifier %q", name).
			Build()
	}
	v.SetZero()
	return d.decodePayload(vr, v, rest)
}
