package types

import (
	"reflect"

	"github.com/wippyai/rawcodec/schema"
)

// CompiledType is the executable form of a Go type: its kind, its resolved
// plan and the compiled types of everything it contains.
type CompiledType struct {
	GoType reflect.Type
	Plan   *schema.Plan
	Elem   *CompiledType
	Key    *CompiledType
	// Default builds the container default, nil when the plan has none.
	Default  func() reflect.Value
	Fields   []Field
	Variants []Variant
	// Optionals counts the fields covered by the presence bitmap under
	// optimize_option.
	Optionals int
	Len       int
	// Size is the encoded size when it never depends on the value, else -1.
	Size int
	Kind Kind
	// PtrCustom is set when only the pointer type implements the codec
	// interfaces.
	PtrCustom bool
}

// Field binds one planned field to its Go struct field.
type Field struct {
	Type    *CompiledType
	Plan    *schema.FieldPlan
	Default func() reflect.Value
	Name    string
	Index   int
	// Optional fields are Go pointers, absent when nil.
	Optional bool
	// Bit is the position in the optimize_option bitmap, -1 if unused.
	Bit int
}

// Variant binds one planned enum variant to its Go struct field. Unit
// variants are bool fields and have no Type.
type Variant struct {
	Type  *CompiledType
	Plan  *schema.VariantPlan
	Name  string
	Index int
	Unit  bool
}

func (ct *CompiledType) IsPrimitive() bool {
	return ct.Kind.IsPrimitive()
}

// IsFixed reports whether every value of the type encodes to Size bytes.
func (ct *CompiledType) IsFixed() bool {
	return ct.Size >= 0
}

// Variant returns the variant with the given declaration index.
func (ct *CompiledType) Variant(index int) *Variant {
	for i := range ct.Variants {
		if ct.Variants[i].Plan.Index == index {
			return &ct.Variants[i]
		}
	}
	return nil
}

// VariantByTag returns the variant a decoded name selects.
func (ct *CompiledType) VariantByTag(tag string) *Variant {
	vp, ok := ct.Plan.VariantByTag(tag)
	if !ok {
		return nil
	}
	return ct.Variant(vp.Index)
}
