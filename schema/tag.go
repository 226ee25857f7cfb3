package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/errors"
)

// TagName is the struct tag key read by FromType.
const TagName = "raw"

var viewType = reflect.TypeFor[rawcodec.View]()

// FromType builds a declaration from the struct tags of t.
//
// Field tags follow the encoding/json layout: an optional name, which
// renames the field, followed by comma separated options written as `flag`
// or `key=value`. Container options go on a blank field:
//
//	type Shape struct {
//	    _      struct{} `raw:",enum,tag=kind,rename_all=snake_case"`
//	    Circle *Circle
//	    Square *Square `raw:",alias=box"`
//	    Empty  bool
//	}
//
// The `enum` and `tuple` markers select the shape. Enum fields must be
// pointers, whose non-nil value marks the active variant, or bools for unit
// variants. A tag of "-" excludes a field from the plan entirely.
func FromType(t reflect.Type) (Declaration, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Declaration{}, errors.NotSupport(errors.PhaseResolve, fmt.Sprintf("%s is not a struct", t))
	}

	name := t.Name()
	if name == "" {
		name = t.String()
	}
	d := Declaration{Name: name, Pos: Pos{Item: t.String()}}

	info, err := scanStruct(t)
	if err != nil {
		return Declaration{}, err
	}
	d.Attrs = info.attrs

	switch {
	case info.markers["enum"]:
		d.Shape = ShapeEnum
		for _, sf := range info.fields {
			v, err := variantDecl(t, sf)
			if err != nil {
				return Declaration{}, err
			}
			d.Variants = append(d.Variants, v)
		}
		return d, nil
	case info.markers["tuple"]:
		d.Shape = ShapeTuple
	case len(info.fields) == 0:
		d.Shape = ShapeUnit
	default:
		d.Shape = ShapeStruct
	}

	for _, sf := range info.fields {
		d.Fields = append(d.Fields, fieldDecl(t, sf))
	}
	return d, nil
}

type structInfo struct {
	markers map[string]bool
	attrs   []Attr
	fields  []taggedField
}

type taggedField struct {
	field reflect.StructField
	attrs []Attr
}

// scanStruct collects the container options of the blank field and the
// tagged exported fields of t.
func scanStruct(t reflect.Type) (structInfo, error) {
	info := structInfo{markers: map[string]bool{}}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, hasTag := sf.Tag.Lookup(TagName)

		if sf.Name == "_" {
			if !hasTag {
				continue
			}
			attrs, markers := parseTag(tag, Pos{Item: t.String()})
			for _, m := range markers {
				info.markers[m] = true
			}
			info.attrs = append(info.attrs, attrs...)
			continue
		}
		if !sf.IsExported() || tag == "-" {
			continue
		}

		attrs, markers := parseTag(tag, Pos{Item: t.String() + "." + sf.Name})
		if len(markers) > 0 {
			return structInfo{}, errors.InvalidParam(errors.PhaseResolve, []string{t.String(), sf.Name},
				fmt.Sprintf("marker `%s` belongs on the blank `_` field", markers[0]))
		}
		info.fields = append(info.fields, taggedField{field: sf, attrs: attrs})
	}
	return info, nil
}

var directional = map[string]struct {
	name string
	ser  bool
}{
	"rename_serialize":       {"rename", true},
	"rename_deserialize":     {"rename", false},
	"rename_all_serialize":   {"rename_all", true},
	"rename_all_deserialize": {"rename_all", false},
	"bound_serialize":        {"bound", true},
	"bound_deserialize":      {"bound", false},
}

// parseTag splits a tag into attributes and shape markers.
func parseTag(tag string, pos Pos) ([]Attr, []string) {
	if tag == "" {
		return nil, nil
	}
	parts := strings.Split(tag, ",")
	var attrs []Attr
	var markers []string

	if parts[0] != "" {
		attrs = append(attrs, Attr{Name: "rename", Value: parts[0], Pos: pos})
	}
	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		key, value, hasValue := strings.Cut(opt, "=")
		if !hasValue && (key == "enum" || key == "tuple") {
			markers = append(markers, key)
			continue
		}
		if d, ok := directional[key]; ok {
			a := Attr{Name: d.name, Pos: pos}
			if d.ser {
				a.Ser = value
			} else {
				a.De = value
			}
			attrs = append(attrs, a)
			continue
		}
		attrs = append(attrs, Attr{Name: key, Value: value, Pos: pos})
	}
	return attrs, markers
}

func fieldDecl(owner reflect.Type, tf taggedField) FieldDecl {
	return FieldDecl{
		Name:  tf.field.Name,
		Type:  TypeOf(tf.field.Type),
		Attrs: tf.attrs,
		Pos:   Pos{Item: owner.String() + "." + tf.field.Name},
	}
}

func variantDecl(owner reflect.Type, tf taggedField) (VariantDecl, error) {
	sf := tf.field
	v := VariantDecl{
		Name:  sf.Name,
		Attrs: tf.attrs,
		Pos:   Pos{Item: owner.String() + "." + sf.Name},
	}

	switch {
	case sf.Type.Kind() == reflect.Bool:
		v.Shape = ShapeUnit
		return v, nil
	case sf.Type.Kind() != reflect.Pointer:
		return VariantDecl{}, errors.InvalidParam(errors.PhaseResolve, []string{owner.String(), sf.Name},
			fmt.Sprintf("enum variant must be a pointer or bool, got %s", sf.Type))
	}

	elem := sf.Type.Elem()
	if elem.Kind() != reflect.Struct || elem == viewType {
		v.Shape = ShapeNewtype
		v.Fields = []FieldDecl{{Type: TypeOf(elem), Pos: v.Pos}}
		return v, nil
	}

	info, err := scanStruct(elem)
	if err != nil {
		return VariantDecl{}, err
	}
	switch {
	case info.markers["tuple"]:
		v.Shape = ShapeTuple
	case len(info.fields) == 0:
		v.Shape = ShapeUnit
	default:
		v.Shape = ShapeStruct
	}
	for _, f := range info.fields {
		v.Fields = append(v.Fields, fieldDecl(elem, f))
	}
	return v, nil
}

// TypeOf describes a Go type for resolution.
func TypeOf(t reflect.Type) TypeRef {
	ref := TypeRef{Name: t.String()}
	if t.Kind() == reflect.Pointer {
		inner := TypeOf(t.Elem())
		inner.Name = ref.Name
		inner.Optional = true
		return inner
	}
	switch {
	case t == viewType:
		ref.Borrowable, ref.Implicit = true, true
	case t.Kind() == reflect.String:
		ref.Borrowable = true
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		ref.Borrowable = true
	}
	return ref
}
