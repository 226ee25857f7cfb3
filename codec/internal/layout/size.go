package layout

import (
	"reflect"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/codec/internal/types"
	"github.com/wippyai/rawcodec/internal/wire"
	"github.com/wippyai/rawcodec/schema"
)

var fixedSizer = reflect.TypeFor[rawcodec.FixedSizer]()

// Size returns the encoded size shared by every value of ct under both
// purposes, or -1 when the size depends on the value.
func Size(ct *types.CompiledType) int {
	switch ct.Kind {
	case types.KindUnit:
		return 0
	case types.KindArray:
		if ct.Elem.Size < 0 {
			return -1
		}
		n, ok := wire.SafeMul(ct.Len, ct.Elem.Size)
		if !ok {
			return -1
		}
		return n
	case types.KindStruct, types.KindTuple:
		return structSize(ct)
	case types.KindCustom:
		return customSize(ct.GoType)
	}
	if n := ct.Kind.FixedSize(); n > 0 {
		return n
	}
	return -1
}

func structSize(ct *types.CompiledType) int {
	p := ct.Plan
	if p.OptimizeOption || (p.Tag.Kind == schema.TagInternal && p.Tag.Tag != "") {
		return -1
	}
	total := 0
	for i := range ct.Fields {
		f := &ct.Fields[i]
		if f.Plan.SkipSerialize {
			continue
		}
		if f.Optional || f.Plan.SkipHash || f.Type.Size < 0 {
			return -1
		}
		var ok bool
		if total, ok = wire.SafeAdd(total, f.Type.Size); !ok {
			return -1
		}
	}
	return total
}

// customSize trusts types that declare equal minimum and maximum sizes.
func customSize(t reflect.Type) int {
	fs := fixedSizerOf(t)
	if fs == nil || fs.RawMinBytes() != fs.RawMaxBytes() {
		return -1
	}
	return fs.RawMinBytes()
}

func fixedSizerOf(t reflect.Type) rawcodec.FixedSizer {
	if t == nil {
		return nil
	}
	switch {
	case t.Implements(fixedSizer):
		return reflect.Zero(t).Interface().(rawcodec.FixedSizer)
	case reflect.PointerTo(t).Implements(fixedSizer):
		return reflect.New(t).Interface().(rawcodec.FixedSizer)
	}
	return nil
}

// Min returns a lower bound on the bytes a decoder consumes for any value
// of ct. Decoders use it to reject element counts the remaining input
// cannot hold.
func Min(ct *types.CompiledType) int {
	return bounds{}.min(ct)
}

// Empty reports whether an encoder can write some value of ct as zero
// bytes. Values of any other type take at least one byte on the wire even
// when a decoder would accept less.
func Empty(ct *types.CompiledType) bool {
	return bounds{}.empty(ct)
}

// bounds tracks the types being walked. A type met again through a
// recursive variant contributes nothing.
type bounds map[*types.CompiledType]bool

func (b bounds) enter(ct *types.CompiledType) bool {
	if b[ct] {
		return false
	}
	b[ct] = true
	return true
}

func (b bounds) min(ct *types.CompiledType) int {
	if ct.Size >= 0 {
		return ct.Size
	}
	switch ct.Kind {
	case types.KindString, types.KindBytes, types.KindSlice, types.KindMap,
		types.KindOption, types.KindIdentifier:
		return 1
	case types.KindArray:
		n, ok := wire.SafeMul(ct.Len, b.min(ct.Elem))
		if !ok {
			return 0
		}
		return n
	case types.KindStruct, types.KindTuple:
		if ct.Plan == nil || !b.enter(ct) {
			return 0
		}
		defer delete(b, ct)
		return b.structMin(ct)
	case types.KindEnum:
		if ct.Plan == nil || !b.enter(ct) {
			return 0
		}
		defer delete(b, ct)
		return b.enumMin(ct)
	case types.KindCustom:
		if fs := fixedSizerOf(ct.GoType); fs != nil {
			return max(fs.RawMinBytes(), 0)
		}
	}
	return 0
}

// structMin counts the fields a decoder insists on. Optional and defaulted
// fields may be missing from the end of the input.
func (b bounds) structMin(ct *types.CompiledType) int {
	p := ct.Plan
	total := 0
	if tagged(p) {
		total = 1
	}
	required := 0
	for i := range ct.Fields {
		f := &ct.Fields[i]
		if f.Plan.SkipSerialize || f.Bit >= 0 || f.Optional || f.Plan.Default.Applies() {
			continue
		}
		var ok bool
		if required, ok = wire.SafeAdd(required, b.min(f.Type)); !ok {
			return total
		}
	}
	if required > 0 && p.OptimizeOption {
		required += (ct.Optionals + 7) / 8
	}
	return total + required
}

// enumMin is one byte for every tagged style: an ordinal or a name is
// always read. Untagged enums need as little as their smallest variant.
func (b bounds) enumMin(ct *types.CompiledType) int {
	if ct.Plan.Tag.Kind != schema.TagUntagged {
		return 1
	}
	least := -1
	for i := range ct.Variants {
		vr := &ct.Variants[i]
		if vr.Plan.SkipDeserialize {
			continue
		}
		n := 0
		if !vr.Unit {
			n = b.min(vr.Type)
		}
		if least < 0 || n < least {
			least = n
		}
	}
	return max(least, 0)
}

func (b bounds) empty(ct *types.CompiledType) bool {
	if ct.Size >= 0 {
		return ct.Size == 0
	}
	switch ct.Kind {
	case types.KindArray:
		return ct.Len == 0 || b.empty(ct.Elem)
	case types.KindStruct, types.KindTuple:
		p := ct.Plan
		if p == nil || !b.enter(ct) {
			return true
		}
		defer delete(b, ct)
		if tagged(p) || (p.OptimizeOption && ct.Optionals > 0) {
			return false
		}
		for i := range ct.Fields {
			f := &ct.Fields[i]
			if f.Plan.SkipSerialize {
				continue
			}
			if f.Optional || !b.empty(f.Type) {
				return false
			}
		}
		return true
	case types.KindEnum:
		if ct.Plan == nil || !b.enter(ct) {
			return true
		}
		defer delete(b, ct)
		if ct.Plan.Tag.Kind != schema.TagUntagged {
			return false
		}
		for i := range ct.Variants {
			if vr := &ct.Variants[i]; vr.Unit || b.empty(vr.Type) {
				return true
			}
		}
		return false
	case types.KindCustom:
		fs := fixedSizerOf(ct.GoType)
		return fs == nil || fs.RawMinBytes() <= 0
	}
	return false
}

func tagged(p *schema.Plan) bool {
	return p.Shape == schema.ShapeStruct && p.Tag.Kind == schema.TagInternal && p.Tag.Tag != ""
}
