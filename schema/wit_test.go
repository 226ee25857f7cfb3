package schema

import (
	"testing"

	"go.bytecodealliance.org/wit"
)

func TestFromWIT_Record(t *testing.T) {
	record := &wit.TypeDef{
		Kind: &wit.Record{
			Fields: []wit.Field{
				{Name: "user-id", Type: wit.U64{}},
				{Name: "avatar", Type: &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}},
				{Name: "nick", Type: &wit.TypeDef{Kind: &wit.Option{Type: wit.String{}}}},
			},
		},
	}
	d, err := FromWIT("profile", record)
	if err != nil {
		t.Fatalf("FromWIT: %v", err)
	}
	if d.Shape != ShapeStruct || len(d.Fields) != 3 {
		t.Fatalf("decl = %v with %d fields", d.Shape, len(d.Fields))
	}
	if got := d.Fields[1].Type; got.Name != "list<u8>" || !got.Borrowable {
		t.Errorf("avatar type = %+v", got)
	}
	if got := d.Fields[2].Type; got.Name != "option<string>" || !got.Optional || !got.Borrowable {
		t.Errorf("nick type = %+v", got)
	}

	d.Attrs = append(d.Attrs, Attr{Name: "rename_all", Value: "camelCase"})
	p := mustResolve(t, d)
	if p.Fields[0].Names.Ser != "userId" {
		t.Errorf("user-id renamed to %q", p.Fields[0].Names.Ser)
	}
}

func TestFromWIT_Variant(t *testing.T) {
	variant := &wit.TypeDef{
		Kind: &wit.Variant{
			Cases: []wit.Case{
				{Name: "none"},
				{Name: "text", Type: wit.String{}},
				{Name: "count", Type: wit.U32{}},
			},
		},
	}
	d, err := FromWIT("payload", variant)
	if err != nil {
		t.Fatalf("FromWIT: %v", err)
	}
	if d.Shape != ShapeEnum || len(d.Variants) != 3 {
		t.Fatalf("decl = %v with %d variants", d.Shape, len(d.Variants))
	}
	if d.Variants[0].Shape != ShapeUnit || d.Variants[1].Shape != ShapeNewtype {
		t.Errorf("shapes = %v %v", d.Variants[0].Shape, d.Variants[1].Shape)
	}

	d.Variants[1].Attrs = []Attr{{Name: "borrow"}}
	p := mustResolve(t, d)
	if !p.Variants[1].Borrow || !p.Variants[1].Fields[0].Borrow {
		t.Error("borrowed newtype variant should borrow its field")
	}

	d.Variants[2].Attrs = []Attr{{Name: "borrow"}}
	if _, err := Resolve(d); err == nil {
		t.Error("borrow on a u32 newtype should fail")
	}
}

func TestFromWIT_EnumFlagsTuple(t *testing.T) {
	tests := []struct {
		name  string
		typ   *wit.TypeDef
		shape Shape
		count int
	}{
		{"enum", &wit.TypeDef{Kind: &wit.Enum{Cases: []wit.EnumCase{{Name: "red"}, {Name: "green"}}}}, ShapeEnum, 2},
		{"flags", &wit.TypeDef{Kind: &wit.Flags{Flags: []wit.Flag{{Name: "read"}, {Name: "write"}, {Name: "exec"}}}}, ShapeStruct, 3},
		{"tuple", &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U32{}, wit.String{}}}}, ShapeTuple, 2},
		{"result", &wit.TypeDef{Kind: &wit.Result{OK: wit.U32{}}}, ShapeEnum, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromWIT(tt.name, tt.typ)
			if err != nil {
				t.Fatalf("FromWIT: %v", err)
			}
			if d.Shape != tt.shape {
				t.Errorf("Shape = %v, want %v", d.Shape, tt.shape)
			}
			if n := len(d.Fields) + len(d.Variants); n != tt.count {
				t.Errorf("got %d members, want %d", n, tt.count)
			}
			if _, err := Resolve(d); err != nil {
				t.Errorf("Resolve: %v", err)
			}
		})
	}
}

func TestFromWIT_Unsupported(t *testing.T) {
	if _, err := FromWIT("s", wit.String{}); err == nil {
		t.Error("primitive types have no declaration")
	}
}
