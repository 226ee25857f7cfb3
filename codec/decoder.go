package codec

import (
	"bytes"
	"math"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/codec/internal/layout"
	"github.com/wippyai/rawcodec/codec/internal/types"
	"github.com/wippyai/rawcodec/errors"
	"github.com/wippyai/rawcodec/internal/wire"
	"github.com/wippyai/rawcodec/schema"
)

// Decoder reads values in the native layout.
type Decoder struct {
	compiler *Compiler
}

func NewDecoder() *Decoder {
	return &Decoder{
		compiler: NewCompiler(),
	}
}

func NewDecoderWithCompiler(c *Compiler) *Decoder {
	return &Decoder{compiler: c}
}

// Decode reads one value into the value ptr points to and returns the
// unread suffix of buf.
func (d *Decoder) Decode(buf []byte, ptr any) ([]byte, error) {
	return d.DecodeWithOption(buf, ptr, rawcodec.DecodeOption{})
}

// DecodeWithOption is Decode with a caller supplied option, forwarded to
// every nested type that implements rawcodec.OptionDecoder.
func (d *Decoder) DecodeWithOption(buf []byte, ptr any, opt rawcodec.DecodeOption) ([]byte, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return buf, errors.New(errors.PhaseDecode, errors.CodeInvalidParam).
			GoType(typeName(ptr)).
			Detail("decode target must be a non-nil pointer").
			Build()
	}
	ct, err := d.compiler.Compile(rv.Type())
	if err != nil {
		return buf, err
	}
	st := &decoder{cfg: d.compiler.cfg, opt: opt}
	return st.decode(ct, rv.Elem(), buf, false)
}

// typeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// decoder carries the options of one decode call.
type decoder struct {
	cfg *Config
	opt rawcodec.DecodeOption
}

func (d *decoder) decode(ct *types.CompiledType, v reflect.Value, buf []byte, borrow bool) ([]byte, error) {
	switch ct.Kind {
	case types.KindBool:
		b, rest, err := wire.Bool(buf)
		if err != nil {
			return buf, errors.FromWire(errors.PhaseDecode, nil, err)
		}
		v.SetBool(b)
		return rest, nil
	case types.KindU8, types.KindS8, types.KindU16, types.KindS16,
		types.KindU32, types.KindS32, types.KindU64, types.KindS64:
		return d.decodeInt(ct, v, buf)
	case types.KindF32:
		f, rest, err := wire.F32(buf)
		if err != nil {
			return buf, errors.FromWire(errors.PhaseDecode, nil, err)
		}
		v.SetFloat(float64(f))
		return rest, nil
	case types.KindF64:
		f, rest, err := wire.F64(buf)
		if err != nil {
			return buf, errors.FromWire(errors.PhaseDecode, nil, err)
		}
		v.SetFloat(f)
		return rest, nil
	case types.KindString:
		return d.decodeString(v, buf, borrow)
	case types.KindBytes:
		return d.decodeBytes(v, buf, borrow)
	case types.KindSlice:
		return d.decodeSlice(ct, v, buf)
	case types.KindArray:
		for i := 0; i < ct.Len; i++ {
			rest, err := d.decode(ct.Elem, v.Index(i), buf, false)
			if err != nil {
				return buf, errors.At(err, indexName(i))
			}
			buf = rest
		}
		return buf, nil
	case types.KindMap:
		return d.decodeMap(ct, v, buf)
	case types.KindOption:
		present, rest, err := wire.Presence(buf)
		if err != nil {
			return buf, errors.FromWire(errors.PhaseDecode, nil, err)
		}
		if !present {
			v.SetZero()
			return rest, nil
		}
		return d.decodeInto(ct.Elem, v, rest, borrow)
	case types.KindStruct, types.KindTuple:
		return d.decodeStruct(ct, v, buf)
	case types.KindUnit:
		return buf, nil
	case types.KindEnum:
		return d.decodeEnum(ct, v, buf)
	case types.KindIdentifier:
		return d.decodeIdentifier(ct, v, buf)
	case types.KindCustom:
		return d.decodeCustom(v, buf)
	}
	return buf, unsupportedKind(errors.PhaseDecode, ct)
}

// decodeInto allocates the pointee of the pointer v and decodes into it.
func (d *decoder) decodeInto(elem *types.CompiledType, v reflect.Value, buf []byte, borrow bool) ([]byte, error) {
	p := reflect.New(elem.GoType)
	rest, err := d.decode(elem, p.Elem(), buf, borrow)
	if err != nil {
		return buf, err
	}
	v.Set(p)
	return rest, nil
}

func (d *decoder) decodeInt(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	var (
		u    uint64
		rest []byte
		err  error
	)
	switch ct.Kind.FixedSize() {
	case 1:
		var b uint8
		b, rest, err = wire.U8(buf)
		u = uint64(b)
	case 2:
		var h uint16
		h, rest, err = wire.U16(buf)
		u = uint64(h)
	case 4:
		var w uint32
		w, rest, err = wire.U32(buf)
		u = uint64(w)
	default:
		u, rest, err = wire.U64(buf)
	}
	if err != nil {
		return buf, errors.FromWire(errors.PhaseDecode, nil, err)
	}

	switch ct.Kind {
	case types.KindS8:
		v.SetInt(int64(int8(u)))
	case types.KindS16:
		v.SetInt(int64(int16(u)))
	case types.KindS32:
		v.SetInt(int64(int32(u)))
	case types.KindS64:
		if v.OverflowInt(int64(u)) {
			return buf, errors.Overflow(errors.PhaseDecode, nil, int64(u), ct.GoType.String())
		}
		v.SetInt(int64(u))
	default:
		if v.OverflowUint(u) {
			return buf, errors.Overflow(errors.PhaseDecode, nil, u, ct.GoType.String())
		}
		v.SetUint(u)
	}
	return rest, nil
}

func (d *decoder) byteString(buf []byte) ([]byte, []byte, error) {
	b, rest, err := wire.Bytes(buf)
	if err != nil {
		return nil, buf, errors.FromWire(errors.PhaseDecode, nil, err)
	}
	if len(b) > d.cfg.MaxStringSize {
		return nil, buf, errors.New(errors.PhaseDecode, errors.CodeOutOfLimit).
			Value(len(b)).
			Detail("string of %d bytes exceeds limit %d", len(b), d.cfg.MaxStringSize).
			Build()
	}
	return b, rest, nil
}

// decodeString copies unless the field borrows or the config asks for
// zero-copy strings, in which case the string aliases the input.
func (d *decoder) decodeString(v reflect.Value, buf []byte, borrow bool) ([]byte, error) {
	b, rest, err := d.byteString(buf)
	if err != nil {
		return buf, err
	}
	switch {
	case len(b) == 0:
		v.SetString("")
	case borrow || d.cfg.ZeroCopyStrings:
		v.SetString(unsafe.String(unsafe.SliceData(b), len(b)))
	default:
		v.SetString(string(b))
	}
	return rest, nil
}

// decodeBytes decodes empty byte strings to nil.
func (d *decoder) decodeBytes(v reflect.Value, buf []byte, borrow bool) ([]byte, error) {
	b, rest, err := d.byteString(buf)
	if err != nil {
		return buf, err
	}
	switch {
	case len(b) == 0:
		v.SetZero()
	case borrow:
		v.SetBytes(b)
	default:
		v.SetBytes(bytes.Clone(b))
	}
	return rest, nil
}

// count reads an element count and rejects counts the remaining input
// cannot possibly hold. An entry is one value of each of the given types.
func (d *decoder) count(buf []byte, entry ...*types.CompiledType) (int, []byte, error) {
	n, rest, err := wire.Uvarint(buf)
	if err != nil {
		return 0, buf, errors.FromWire(errors.PhaseDecode, nil, err)
	}
	if n > uint64(d.cfg.MaxListLength) {
		return 0, buf, errors.New(errors.PhaseDecode, errors.CodeOutOfLimit).
			Value(n).
			Detail("%d elements exceed limit %d", n, d.cfg.MaxListLength).
			Build()
	}
	m, empty := 0, true
	for _, ct := range entry {
		m += layout.Min(ct)
		empty = empty && layout.Empty(ct)
	}
	if m == 0 && !empty {
		// every encoded entry takes at least a byte
		m = 1
	}
	if m > 0 && n > uint64(len(rest)/m) {
		want, ok := wire.SafeMul(int(n), m)
		if !ok {
			want = math.MaxInt
		}
		return 0, buf, errors.Truncated(errors.PhaseDecode, nil, want, len(rest))
	}
	return int(n), rest, nil
}

// decodeSlice decodes empty lists to nil.
func (d *decoder) decodeSlice(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	n, rest, err := d.count(buf, ct.Elem)
	if err != nil {
		return buf, err
	}
	if n == 0 {
		v.SetZero()
		return rest, nil
	}
	s := reflect.MakeSlice(ct.GoType, n, n)
	for i := 0; i < n; i++ {
		if rest, err = d.decode(ct.Elem, s.Index(i), rest, false); err != nil {
			return buf, errors.At(err, indexName(i))
		}
	}
	v.Set(s)
	return rest, nil
}

func (d *decoder) decodeMap(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	n, rest, err := d.count(buf, ct.Key, ct.Elem)
	if err != nil {
		return buf, err
	}
	if n == 0 {
		v.SetZero()
		return rest, nil
	}
	m := reflect.MakeMapWithSize(ct.GoType, n)
	for i := 0; i < n; i++ {
		k := reflect.New(ct.Key.GoType).Elem()
		if rest, err = d.decode(ct.Key, k, rest, false); err != nil {
			return buf, errors.At(err, "[key]")
		}
		e := reflect.New(ct.Elem.GoType).Elem()
		if rest, err = d.decode(ct.Elem, e, rest, false); err != nil {
			return buf, errors.At(err, "[value]")
		}
		m.SetMapIndex(k, e)
	}
	if m.Len() != n {
		return buf, errors.InvalidFormat(errors.PhaseDecode, nil, "map holds duplicate keys: %d entries, %d distinct", n, m.Len())
	}
	v.Set(m)
	return rest, nil
}

func (d *decoder) decodeCustom(v reflect.Value, buf []byte) ([]byte, error) {
	dec := v.Addr().Interface().(rawcodec.Decoder)
	if od, ok := dec.(rawcodec.OptionDecoder); ok {
		return od.RawDecodeWithOption(buf, d.opt)
	}
	return dec.RawDecode(buf)
}

// structDefaults builds the container default at most once per struct.
type structDefaults struct {
	ct  *types.CompiledType
	val reflect.Value
}

func (s *structDefaults) apply(f *types.Field, fv reflect.Value) {
	switch f.Plan.Default.Kind {
	case schema.DefaultContainer:
		if !s.val.IsValid() {
			s.val = s.ct.Default()
		}
		fv.Set(s.val.Field(f.Index))
	case schema.DefaultPath, schema.DefaultZero:
		fv.Set(f.Default())
	default:
		fv.SetZero()
	}
}

// decodeStruct reads fields in declared order. Input that ends early is
// accepted for trailing fields that are optional or defaulted, which is what
// lets a type gain such fields without breaking older encodings.
func (d *decoder) decodeStruct(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	p := ct.Plan
	rest := buf
	if taggedStruct(p) {
		name, r, err := wire.Bytes(rest)
		if err != nil {
			return buf, errors.FromWire(errors.PhaseDecode, []string{p.Tag.Tag}, err)
		}
		if !p.Names.Matches(string(name)) {
			return buf, errors.New(errors.PhaseDecode, errors.CodeInvalidFormat).
				Path(p.Tag.Tag).
				GoType(ct.GoType.String()).
				Value(string(name)).
				Detail("expected %q, got %q", p.Names.De, name).
				Build()
		}
		rest = r
	}

	var bitmap []byte
	if p.OptimizeOption && len(rest) > 0 {
		n := bitmapSize(ct)
		if len(rest) < n {
			return buf, errors.Truncated(errors.PhaseDecode, []string{"[optional bitmap]"}, n, len(rest))
		}
		bitmap, rest = rest[:n], rest[n:]
	}

	defaults := structDefaults{ct: ct}
	for i := range ct.Fields {
		f := &ct.Fields[i]
		fv := v.Field(f.Index)

		if f.Plan.SkipSerialize {
			// never written
			defaults.apply(f, fv)
			continue
		}

		if f.Bit >= 0 {
			if !bitSet(bitmap, f.Bit) {
				if f.Plan.SkipDeserialize {
					defaults.apply(f, fv)
				} else {
					fv.SetZero()
				}
				continue
			}
			r, err := d.decodeField(&defaults, f, f.Type.Elem, fv, rest, true)
			if err != nil {
				return buf, errors.At(err, f.Plan.Name)
			}
			rest = r
			continue
		}

		if len(rest) == 0 && f.Type.Size != 0 {
			switch {
			case f.Optional && !f.Plan.SkipDeserialize:
				fv.SetZero()
				continue
			case f.Plan.Default.Applies():
				defaults.apply(f, fv)
				continue
			}
			return buf, errors.New(errors.PhaseDecode, errors.CodeInvalidFormat).
				Path(f.Plan.Name).
				GoType(ct.GoType.String()).
				Detail("input ended before required field %s (%d of %d fields read, %d bytes consumed)",
					f.Plan.Name, i, len(ct.Fields), len(buf)).
				Build()
		}

		r, err := d.decodeField(&defaults, f, f.Type, fv, rest, false)
		if err != nil {
			return buf, errors.At(err, f.Plan.Name)
		}
		rest = r
	}
	return rest, nil
}

// decodeField decodes one field. Fields that are written but never read
// are decoded into scratch space to skip their bytes, then defaulted.
func (d *decoder) decodeField(defaults *structDefaults, f *types.Field, ft *types.CompiledType, fv reflect.Value, buf []byte, viaBitmap bool) ([]byte, error) {
	if f.Plan.SkipDeserialize {
		scratch := reflect.New(ft.GoType).Elem()
		rest, err := d.decode(ft, scratch, buf, true)
		if err != nil {
			return buf, err
		}
		defaults.apply(f, fv)
		return rest, nil
	}
	if viaBitmap {
		return d.decodeInto(ft, fv, buf, f.Plan.Borrow)
	}
	return d.decode(ft, fv, buf, f.Plan.Borrow)
}

func bitSet(bitmap []byte, bit int) bool {
	if bit/8 >= len(bitmap) {
		return false
	}
	return bitmap[bit/8]&(1<<(bit%8)) != 0
}

func indexName(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
