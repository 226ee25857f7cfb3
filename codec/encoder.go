package codec

import (
	"reflect"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/codec/internal/types"
	"github.com/wippyai/rawcodec/errors"
	"github.com/wippyai/rawcodec/internal/wire"
	"github.com/wippyai/rawcodec/schema"
)

// Encoder measures and writes values in the native layout.
type Encoder struct {
	compiler *Compiler
}

func NewEncoder() *Encoder {
	return &Encoder{
		compiler: NewCompiler(),
	}
}

func NewEncoderWithCompiler(c *Compiler) *Encoder {
	return &Encoder{compiler: c}
}

// Measure returns the exact number of bytes Encode writes for v.
func (e *Encoder) Measure(v any, purpose rawcodec.Purpose) (int, error) {
	ct, rv, err := e.target(v)
	if err != nil {
		return 0, err
	}
	return pass{purpose: purpose}.measure(ct, rv)
}

// Encode writes v at the front of buf and returns the unused suffix.
func (e *Encoder) Encode(v any, buf []byte, purpose rawcodec.Purpose) ([]byte, error) {
	ct, rv, err := e.target(v)
	if err != nil {
		return buf, err
	}
	return pass{purpose: purpose}.encode(ct, rv, buf)
}

// target compiles the type of v and returns an addressable value for it,
// copying v when it was not passed by pointer.
func (e *Encoder) target(v any) (*types.CompiledType, reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, rv, errors.InvalidParam(errors.PhaseEncode, nil, "cannot encode nil")
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, rv, errors.New(errors.PhaseEncode, errors.CodeInvalidParam).
				GoType(rv.Type().String()).
				Detail("cannot encode nil pointer").
				Build()
		}
		rv = rv.Elem()
	} else {
		rv = addressable(rv)
	}
	ct, err := e.compiler.Compile(rv.Type())
	if err != nil {
		return nil, rv, err
	}
	return ct, rv, nil
}

func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// pass carries the purpose through one measure or encode walk.
type pass struct {
	purpose rawcodec.Purpose
}

func (p pass) hash() bool {
	return p.purpose == rawcodec.PurposeHash
}

func sizeOverflow() error {
	return errors.New(errors.PhaseMeasure, errors.CodeOutOfLimit).
		Detail("encoded size overflows int").
		Build()
}

func (p pass) measure(ct *types.CompiledType, v reflect.Value) (int, error) {
	if ct.Size >= 0 {
		return ct.Size, nil
	}

	switch ct.Kind {
	case types.KindString, types.KindBytes:
		return wire.BytesSize(v.Len()), nil

	case types.KindSlice, types.KindArray:
		n := v.Len()
		total := 0
		if ct.Kind == types.KindSlice {
			total = wire.UvarintSize(uint64(n))
		}
		if ct.Elem.Size >= 0 {
			body, ok := wire.SafeMul(n, ct.Elem.Size)
			if !ok {
				return 0, sizeOverflow()
			}
			return addSize(total, body)
		}
		for i := 0; i < n; i++ {
			size, err := p.measure(ct.Elem, v.Index(i))
			if err != nil {
				return 0, errors.At(err, indexName(i))
			}
			if total, err = addSize(total, size); err != nil {
				return 0, err
			}
		}
		return total, nil

	case types.KindMap:
		total := wire.UvarintSize(uint64(v.Len()))
		iter := v.MapRange()
		for iter.Next() {
			ks, err := p.measure(ct.Key, addressable(iter.Key()))
			if err != nil {
				return 0, errors.At(err, "[key]")
			}
			vs, err := p.measure(ct.Elem, addressable(iter.Value()))
			if err != nil {
				return 0, errors.At(err, "[value]")
			}
			if total, err = addSize(total, ks+vs); err != nil {
				return 0, err
			}
		}
		return total, nil

	case types.KindOption:
		if v.IsNil() {
			return 1, nil
		}
		n, err := p.measure(ct.Elem, v.Elem())
		if err != nil {
			return 0, err
		}
		return addSize(n, 1)

	case types.KindStruct, types.KindTuple:
		return p.measureStruct(ct, v)

	case types.KindUnit:
		return 0, nil

	case types.KindEnum:
		return p.measureEnum(ct, v)

	case types.KindIdentifier:
		vr, _, err := activeVariant(ct, v)
		if err != nil {
			return 0, err
		}
		return wire.BytesSize(len(vr.Plan.Names.Ser)), nil

	case types.KindCustom:
		return customEncoder(ct, v).RawMeasure(p.purpose)
	}
	return 0, unsupportedKind(errors.PhaseMeasure, ct)
}

func addSize(a, b int) (int, error) {
	n, ok := wire.SafeAdd(a, b)
	if !ok {
		return 0, sizeOverflow()
	}
	return n, nil
}

// taggedStruct reports a struct that writes its own name ahead of its
// fields because it was declared with `tag`.
func taggedStruct(p *schema.Plan) bool {
	return p.Shape == schema.ShapeStruct && p.Tag.Kind == schema.TagInternal && p.Tag.Tag != ""
}

func bitmapSize(ct *types.CompiledType) int {
	return (ct.Optionals + 7) / 8
}

func (p pass) measureStruct(ct *types.CompiledType, v reflect.Value) (int, error) {
	total := 0
	if taggedStruct(ct.Plan) {
		total = wire.BytesSize(len(ct.Plan.Names.Ser))
	}
	if ct.Plan.OptimizeOption {
		total += bitmapSize(ct)
	}
	for i := range ct.Fields {
		f := &ct.Fields[i]
		if !f.Plan.Encoded(p.hash()) {
			continue
		}
		fv := v.Field(f.Index)
		var (
			n   int
			err error
		)
		if f.Bit >= 0 {
			if fv.IsNil() {
				continue
			}
			n, err = p.measure(f.Type.Elem, fv.Elem())
		} else {
			n, err = p.measure(f.Type, fv)
		}
		if err != nil {
			return 0, errors.At(err, f.Plan.Name)
		}
		if total, err = addSize(total, n); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (p pass) encode(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	var err error
	switch ct.Kind {
	case types.KindBool:
		buf, err = wire.PutBool(buf, v.Bool())
	case types.KindU8:
		buf, err = wire.PutU8(buf, uint8(v.Uint()))
	case types.KindS8:
		buf, err = wire.PutU8(buf, uint8(v.Int()))
	case types.KindU16:
		buf, err = wire.PutU16(buf, uint16(v.Uint()))
	case types.KindS16:
		buf, err = wire.PutU16(buf, uint16(v.Int()))
	case types.KindU32:
		buf, err = wire.PutU32(buf, uint32(v.Uint()))
	case types.KindS32:
		buf, err = wire.PutU32(buf, uint32(v.Int()))
	case types.KindU64:
		buf, err = wire.PutU64(buf, v.Uint())
	case types.KindS64:
		buf, err = wire.PutU64(buf, uint64(v.Int()))
	case types.KindF32:
		buf, err = wire.PutF32(buf, float32(v.Float()))
	case types.KindF64:
		buf, err = wire.PutF64(buf, v.Float())
	case types.KindString:
		buf, err = wire.PutString(buf, v.String())
	case types.KindBytes:
		buf, err = wire.PutBytes(buf, v.Bytes())

	case types.KindSlice, types.KindArray:
		n := v.Len()
		if ct.Kind == types.KindSlice {
			if buf, err = wire.PutUvarint(buf, uint64(n)); err != nil {
				break
			}
		}
		for i := 0; i < n; i++ {
			if buf, err = p.encode(ct.Elem, v.Index(i), buf); err != nil {
				return buf, errors.At(err, indexName(i))
			}
		}
		return buf, nil

	case types.KindMap:
		return p.encodeMap(ct, v, buf)

	case types.KindOption:
		if buf, err = wire.PutPresence(buf, !v.IsNil()); err != nil || v.IsNil() {
			break
		}
		return p.encode(ct.Elem, v.Elem(), buf)

	case types.KindStruct, types.KindTuple:
		return p.encodeStruct(ct, v, buf)

	case types.KindUnit:
		return buf, nil

	case types.KindEnum:
		return p.encodeEnum(ct, v, buf)

	case types.KindIdentifier:
		vr, _, verr := activeVariant(ct, v)
		if verr != nil {
			return buf, verr
		}
		buf, err = wire.PutString(buf, vr.Plan.Names.Ser)

	case types.KindCustom:
		return customEncoder(ct, v).RawEncode(buf, p.purpose)

	default:
		return buf, unsupportedKind(errors.PhaseEncode, ct)
	}
	if err != nil {
		return buf, errors.FromWire(errors.PhaseEncode, nil, err)
	}
	return buf, nil
}

func (p pass) encodeStruct(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	var err error
	if taggedStruct(ct.Plan) {
		if buf, err = wire.PutString(buf, ct.Plan.Names.Ser); err != nil {
			return buf, errors.FromWire(errors.PhaseEncode, []string{ct.Plan.Tag.Tag}, err)
		}
	}
	if ct.Plan.OptimizeOption {
		if buf, err = p.encodeBitmap(ct, v, buf); err != nil {
			return buf, err
		}
	}
	for i := range ct.Fields {
		f := &ct.Fields[i]
		if !f.Plan.Encoded(p.hash()) {
			continue
		}
		fv := v.Field(f.Index)
		if f.Bit >= 0 {
			if fv.IsNil() {
				continue
			}
			buf, err = p.encode(f.Type.Elem, fv.Elem(), buf)
		} else {
			buf, err = p.encode(f.Type, fv, buf)
		}
		if err != nil {
			return buf, errors.At(err, f.Plan.Name)
		}
	}
	return buf, nil
}

// encodeBitmap writes one presence bit per optional field in place of the
// per-field presence bytes.
func (p pass) encodeBitmap(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	n := bitmapSize(ct)
	if len(buf) < n {
		return buf, errors.OutOfLimit(errors.PhaseEncode, []string{"[optional bitmap]"}, n, len(buf))
	}
	bitmap := buf[:n]
	clear(bitmap)
	for i := range ct.Fields {
		f := &ct.Fields[i]
		if f.Bit < 0 || !f.Plan.Encoded(p.hash()) || v.Field(f.Index).IsNil() {
			continue
		}
		bitmap[f.Bit/8] |= 1 << (f.Bit % 8)
	}
	return buf[n:], nil
}

func customEncoder(ct *types.CompiledType, v reflect.Value) rawcodec.Encoder {
	if ct.PtrCustom {
		return v.Addr().Interface().(rawcodec.Encoder)
	}
	return v.Interface().(rawcodec.Encoder)
}

func unsupportedKind(phase errors.Phase, ct *types.CompiledType) error {
	return errors.New(phase, errors.CodeNotSupport).
		GoType(ct.GoType.String()).
		Detail("no native layout for kind %s", ct.Kind).
		Build()
}
