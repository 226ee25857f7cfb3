package layout

import (
	"reflect"
	"testing"

	"github.com/wippyai/rawcodec/codec/internal/types"
	"github.com/wippyai/rawcodec/schema"
)

func prim(k types.Kind) *types.CompiledType {
	return &types.CompiledType{Kind: k, Size: k.FixedSize()}
}

func structOf(plan *schema.Plan, fields ...types.Field) *types.CompiledType {
	for i := range fields {
		if fields[i].Plan == nil {
			fields[i].Plan = &schema.FieldPlan{}
		}
	}
	return &types.CompiledType{Kind: types.KindStruct, Plan: plan, Fields: fields, Size: -1}
}

type word struct{}

func (word) RawMinBytes() int { return 4 }
func (word) RawMaxBytes() int { return 4 }

type varword struct{}

func (*varword) RawMinBytes() int { return 1 }
func (*varword) RawMaxBytes() int { return 9 }

func TestSize(t *testing.T) {
	u32 := prim(types.KindU32)
	str := &types.CompiledType{Kind: types.KindString, Size: -1}

	tests := []struct {
		name string
		ct   *types.CompiledType
		want int
	}{
		{"u32", u32, 4},
		{"string", str, -1},
		{"unit", &types.CompiledType{Kind: types.KindUnit}, 0},
		{"array", &types.CompiledType{Kind: types.KindArray, Len: 3, Elem: u32}, 12},
		{"array of strings", &types.CompiledType{Kind: types.KindArray, Len: 3, Elem: str}, -1},
		{"flat struct", structOf(&schema.Plan{}, types.Field{Type: u32}, types.Field{Type: prim(types.KindBool)}), 5},
		{"skipped field", structOf(&schema.Plan{},
			types.Field{Type: u32},
			types.Field{Type: str, Plan: &schema.FieldPlan{SkipSerialize: true}}), 4},
		{"optional field", structOf(&schema.Plan{}, types.Field{Type: u32, Optional: true}), -1},
		{"hash excluded field", structOf(&schema.Plan{}, types.Field{Type: u32, Plan: &schema.FieldPlan{SkipHash: true}}), -1},
		{"optimize_option", structOf(&schema.Plan{OptimizeOption: true}, types.Field{Type: u32}), -1},
		{"fixed custom", &types.CompiledType{Kind: types.KindCustom, GoType: reflect.TypeFor[word]()}, 4},
		{"variable custom", &types.CompiledType{Kind: types.KindCustom, GoType: reflect.TypeFor[varword]()}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Size(tt.ct); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMin(t *testing.T) {
	u16 := prim(types.KindU16)
	list := &types.CompiledType{Kind: types.KindSlice, Elem: u16, Size: -1}
	arr := &types.CompiledType{Kind: types.KindArray, Len: 4, Elem: list, Size: -1}
	enum := &types.CompiledType{Kind: types.KindEnum, Size: -1}

	if got := Min(u16); got != 2 {
		t.Errorf("Min(u16) = %d", got)
	}
	if got := Min(list); got != 1 {
		t.Errorf("Min(list) = %d", got)
	}
	if got := Min(arr); got != 4 {
		t.Errorf("Min([4]list) = %d", got)
	}
	if got := Min(enum); got != 0 {
		t.Errorf("Min(enum) = %d", got)
	}
}

func TestMin_Composite(t *testing.T) {
	u32 := prim(types.KindU32)
	u8 := prim(types.KindU8)
	opt := &types.CompiledType{Kind: types.KindOption, Elem: u8, Size: -1}
	unitVariant := func(i int) types.Variant {
		return types.Variant{Unit: true, Plan: &schema.VariantPlan{Index: i}}
	}
	dataVariant := func(i int, ct *types.CompiledType) types.Variant {
		return types.Variant{Type: ct, Plan: &schema.VariantPlan{Index: i}}
	}
	enumOf := func(kind schema.TagKind, vs ...types.Variant) *types.CompiledType {
		return &types.CompiledType{Kind: types.KindEnum, Size: -1,
			Plan: &schema.Plan{Shape: schema.ShapeEnum, Tag: schema.TagStyle{Kind: kind}}, Variants: vs}
	}

	bitmapped := structOf(&schema.Plan{OptimizeOption: true},
		types.Field{Type: u8, Optional: true, Bit: 0},
		types.Field{Type: u32, Bit: -1})
	bitmapped.Optionals = 1

	tests := []struct {
		name  string
		ct    *types.CompiledType
		min   int
		empty bool
	}{
		{"optional only", structOf(&schema.Plan{},
			types.Field{Type: opt, Optional: true, Bit: -1}), 0, false},
		{"required then optional", structOf(&schema.Plan{},
			types.Field{Type: u32, Bit: -1},
			types.Field{Type: opt, Optional: true, Bit: -1}), 4, false},
		{"defaulted", structOf(&schema.Plan{},
			types.Field{Type: u32, Bit: -1, Plan: &schema.FieldPlan{Default: schema.DefaultPolicy{Kind: schema.DefaultZero}}}), 0, false},
		{"internally tagged", structOf(&schema.Plan{Tag: schema.TagStyle{Kind: schema.TagInternal, Tag: "type"}},
			types.Field{Type: opt, Optional: true, Bit: -1}), 1, false},
		{"bitmap", bitmapped, 5, false},
		{"external enum", enumOf(schema.TagExternal, unitVariant(0)), 1, false},
		{"untagged enum", enumOf(schema.TagUntagged, dataVariant(0, u32), dataVariant(1, u8)), 1, false},
		{"untagged unit", enumOf(schema.TagUntagged, dataVariant(0, u32), unitVariant(1)), 0, true},
		{"sized custom", &types.CompiledType{Kind: types.KindCustom, GoType: reflect.TypeFor[varword](), Size: -1}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Min(tt.ct); got != tt.min {
				t.Errorf("Min() = %d, want %d", got, tt.min)
			}
			if got := Empty(tt.ct); got != tt.empty {
				t.Errorf("Empty() = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestMin_RecursiveEnum(t *testing.T) {
	expr := &types.CompiledType{Kind: types.KindEnum, Size: -1,
		Plan: &schema.Plan{Shape: schema.ShapeEnum, Tag: schema.TagStyle{Kind: schema.TagUntagged}}}
	expr.Variants = []types.Variant{
		{Type: expr, Plan: &schema.VariantPlan{Index: 0}},
		{Type: prim(types.KindU16), Plan: &schema.VariantPlan{Index: 1}},
	}
	if got := Min(expr); got != 0 {
		t.Errorf("Min() = %d, want 0", got)
	}
	if !Empty(expr) {
		t.Error("a self-referencing variant may be empty")
	}
}
