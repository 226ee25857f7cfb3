package schema

import (
	"fmt"
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/rawcodec/errors"
)

// FromWIT builds a declaration from a WIT type definition. Records map to
// structs, variants, enums and results to enums, tuples to tuples and flags
// to structs of bools. WIT carries no codec configuration, so the
// declaration has no attributes; callers append their own before resolving.
func FromWIT(name string, t wit.Type) (Declaration, error) {
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return Declaration{}, errors.NotSupport(errors.PhaseResolve, fmt.Sprintf("%s: WIT type %T has no declaration", name, t))
	}
	if name == "" && td.Name != nil {
		name = *td.Name
	}
	pos := Pos{Item: name}
	d := Declaration{Name: name, Pos: pos}

	switch kind := td.Kind.(type) {
	case *wit.Record:
		d.Shape = ShapeStruct
		for _, f := range kind.Fields {
			d.Fields = append(d.Fields, FieldDecl{Name: f.Name, Type: witTypeRef(f.Type), Pos: itemPos(name, f.Name)})
		}
	case *wit.Flags:
		d.Shape = ShapeStruct
		for _, f := range kind.Flags {
			d.Fields = append(d.Fields, FieldDecl{Name: f.Name, Type: TypeRef{Name: "bool"}, Pos: itemPos(name, f.Name)})
		}
	case *wit.Tuple:
		d.Shape = ShapeTuple
		for i, et := range kind.Types {
			d.Fields = append(d.Fields, FieldDecl{Type: witTypeRef(et), Pos: itemPos(name, strconv.Itoa(i))})
		}
	case *wit.Enum:
		d.Shape = ShapeEnum
		for _, c := range kind.Cases {
			d.Variants = append(d.Variants, VariantDecl{Name: c.Name, Shape: ShapeUnit, Pos: itemPos(name, c.Name)})
		}
	case *wit.Variant:
		d.Shape = ShapeEnum
		for _, c := range kind.Cases {
			d.Variants = append(d.Variants, witCase(name, c.Name, c.Type))
		}
	case *wit.Result:
		d.Shape = ShapeEnum
		d.Variants = []VariantDecl{witCase(name, "ok", kind.OK), witCase(name, "err", kind.Err)}
	case wit.Type:
		return FromWIT(name, kind)
	default:
		return Declaration{}, errors.NotSupport(errors.PhaseResolve, fmt.Sprintf("%s: unsupported WIT kind %T", name, kind))
	}
	return d, nil
}

func witCase(owner, name string, t wit.Type) VariantDecl {
	v := VariantDecl{Name: name, Shape: ShapeUnit, Pos: itemPos(owner, name)}
	if t != nil {
		v.Shape = ShapeNewtype
		v.Fields = []FieldDecl{{Type: witTypeRef(t), Pos: v.Pos}}
	}
	return v
}

func itemPos(owner, item string) Pos {
	return Pos{Item: owner + "." + item}
}

func witTypeRef(t wit.Type) TypeRef {
	switch v := t.(type) {
	case wit.Bool:
		return TypeRef{Name: "bool"}
	case wit.U8:
		return TypeRef{Name: "u8"}
	case wit.S8:
		return TypeRef{Name: "s8"}
	case wit.U16:
		return TypeRef{Name: "u16"}
	case wit.S16:
		return TypeRef{Name: "s16"}
	case wit.U32:
		return TypeRef{Name: "u32"}
	case wit.S32:
		return TypeRef{Name: "s32"}
	case wit.U64:
		return TypeRef{Name: "u64"}
	case wit.S64:
		return TypeRef{Name: "s64"}
	case wit.F32:
		return TypeRef{Name: "f32"}
	case wit.F64:
		return TypeRef{Name: "f64"}
	case wit.Char:
		return TypeRef{Name: "char"}
	case wit.String:
		return TypeRef{Name: "string", Borrowable: true}
	case *wit.TypeDef:
		switch k := v.Kind.(type) {
		case *wit.List:
			if _, ok := k.Type.(wit.U8); ok {
				return TypeRef{Name: "list<u8>", Borrowable: true}
			}
			return TypeRef{Name: "list<" + witTypeRef(k.Type).Name + ">"}
		case *wit.Option:
			inner := witTypeRef(k.Type)
			inner.Name = "option<" + inner.Name + ">"
			inner.Optional = true
			return inner
		}
		if v.Name != nil {
			return TypeRef{Name: *v.Name}
		}
		return TypeRef{Name: "typedef"}
	}
	return TypeRef{Name: fmt.Sprintf("%T", t)}
}
