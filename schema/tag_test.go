package schema

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/rawcodec"
)

type tagAccount struct {
	_       struct{} `raw:"Acct,rename_all=snake_case,deny_unknown_fields"`
	OwnerID uint64
	Label   string  `raw:"name,alias=title"`
	Avatar  []byte  `raw:",borrow,skip_hash"`
	Note    *string `raw:",rename_serialize=memo"`
	Raw     rawcodec.View
	Secret  string `raw:"-"`
	hidden  int
}

type tagCircle struct {
	Radius float64
}

type tagShape struct {
	_      struct{} `raw:",enum,tag=kind"`
	Circle *tagCircle
	Label  *string `raw:",rename=text"`
	Empty  bool    `raw:",other"`
}

type tagBroken struct {
	_       struct{} `raw:",enum"`
	NotSure int
}

func TestFromType_Struct(t *testing.T) {
	d, err := FromType(reflect.TypeFor[*tagAccount]())
	if err != nil {
		t.Fatalf("FromType: %v", err)
	}
	if d.Shape != ShapeStruct || d.Name != "tagAccount" {
		t.Fatalf("decl = %s %v", d.Name, d.Shape)
	}

	var names []string
	for _, f := range d.Fields {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"OwnerID", "Label", "Avatar", "Note", "Raw"}, names); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}

	p := mustResolve(t, d)
	if p.Names.Ser != "Acct" || !p.DenyUnknownFields {
		t.Errorf("container = %+v", p.Names)
	}
	tests := []struct {
		field string
		ser   string
		de    string
	}{
		{"OwnerID", "owner_id", "owner_id"},
		{"Label", "name", "name"},
		{"Avatar", "avatar", "avatar"},
		{"Note", "memo", "note"},
	}
	for _, tt := range tests {
		f, ok := p.Field(tt.field)
		if !ok {
			t.Fatalf("missing field %s", tt.field)
		}
		if f.Names.Ser != tt.ser || f.Names.De != tt.de {
			t.Errorf("%s names = %+v, want %s/%s", tt.field, f.Names, tt.ser, tt.de)
		}
	}

	avatar, _ := p.Field("Avatar")
	if !avatar.Borrow || !avatar.SkipHash {
		t.Errorf("Avatar = %+v", avatar)
	}
	note, _ := p.Field("Note")
	if !note.Type.Optional || !note.Type.Borrowable {
		t.Errorf("Note type = %+v", note.Type)
	}
	raw, _ := p.Field("Raw")
	if !raw.Borrow {
		t.Error("View fields borrow implicitly")
	}
}

func TestFromType_Enum(t *testing.T) {
	d, err := FromType(reflect.TypeFor[tagShape]())
	if err != nil {
		t.Fatalf("FromType: %v", err)
	}
	if d.Shape != ShapeEnum || len(d.Variants) != 3 {
		t.Fatalf("decl = %v with %d variants", d.Shape, len(d.Variants))
	}
	shapes := []Shape{d.Variants[0].Shape, d.Variants[1].Shape, d.Variants[2].Shape}
	if diff := cmp.Diff([]Shape{ShapeStruct, ShapeNewtype, ShapeUnit}, shapes); diff != "" {
		t.Errorf("variant shapes (-want +got):\n%s", diff)
	}
	if d.Variants[0].Fields[0].Name != "Radius" {
		t.Errorf("struct variant fields = %+v", d.Variants[0].Fields)
	}

	p := mustResolve(t, d)
	if p.Tag.Kind != TagInternal || p.Tag.Tag != "kind" {
		t.Errorf("Tag = %+v", p.Tag)
	}
	if v, _ := p.Variant("Label"); v.Names.Ser != "text" {
		t.Errorf("Label variant = %+v", v.Names)
	}
	if v, _ := p.Variant("Empty"); !v.Other {
		t.Error("Empty should be the other variant")
	}
}

func TestFromType_Errors(t *testing.T) {
	if _, err := FromType(reflect.TypeFor[int]()); err == nil {
		t.Error("non-struct should fail")
	}
	_, err := FromType(reflect.TypeFor[tagBroken]())
	if err == nil || !strings.Contains(err.Error(), "enum variant must be a pointer or bool") {
		t.Errorf("err = %v", err)
	}
}

func TestParseTag(t *testing.T) {
	attrs, markers := parseTag("x,enum,rename_deserialize=y,default=NewX,,skip", Pos{Item: "T"})
	if diff := cmp.Diff([]string{"enum"}, markers); diff != "" {
		t.Errorf("markers (-want +got):\n%s", diff)
	}
	want := []Attr{
		{Name: "rename", Value: "x", Pos: Pos{Item: "T"}},
		{Name: "rename", De: "y", Pos: Pos{Item: "T"}},
		{Name: "default", Value: "NewX", Pos: Pos{Item: "T"}},
		{Name: "skip", Pos: Pos{Item: "T"}},
	}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Errorf("attrs (-want +got):\n%s", diff)
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want TypeRef
	}{
		{reflect.TypeFor[string](), TypeRef{Name: "string", Borrowable: true}},
		{reflect.TypeFor[[]byte](), TypeRef{Name: "[]uint8", Borrowable: true}},
		{reflect.TypeFor[*[]byte](), TypeRef{Name: "*[]uint8", Borrowable: true, Optional: true}},
		{reflect.TypeFor[rawcodec.View](), TypeRef{Name: "rawcodec.View", Borrowable: true, Implicit: true}},
		{reflect.TypeFor[uint32](), TypeRef{Name: "uint32"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, TypeOf(tt.typ)); diff != "" {
			t.Errorf("TypeOf(%s) (-want +got):\n%s", tt.typ, diff)
		}
	}
}
