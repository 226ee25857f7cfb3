package schema

import (
	"testing"
)

func compatPlan(t *testing.T, fields ...FieldDecl) *Plan {
	t.Helper()
	return mustResolve(t, Declaration{Name: "Content", Shape: ShapeStruct, Fields: fields})
}

func TestCheckCompatible(t *testing.T) {
	name := FieldDecl{Name: "name", Type: TypeRef{Name: "string"}}
	optional := FieldDecl{Name: "tag", Type: TypeRef{Name: "?string", Optional: true}}
	defaulted := FieldDecl{Name: "size", Type: TypeRef{Name: "u32"}, Attrs: []Attr{{Name: "default"}}}
	required := FieldDecl{Name: "size", Type: TypeRef{Name: "u32"}}
	retyped := FieldDecl{Name: "name", Type: TypeRef{Name: "bytes"}}

	tests := []struct {
		name    string
		old     []FieldDecl
		next    []FieldDecl
		wantErr string
	}{
		{"empty to optional", nil, []FieldDecl{optional}, ""},
		{"append defaulted", []FieldDecl{name}, []FieldDecl{name, optional, defaulted}, ""},
		{"append required", []FieldDecl{name}, []FieldDecl{name, required}, "new field must be optional or have a default"},
		{"removed", []FieldDecl{name, optional}, []FieldDecl{name}, "field removed"},
		{"reordered", []FieldDecl{name, optional}, []FieldDecl{optional, name}, "renamed or reordered"},
		{"retyped", []FieldDecl{name}, []FieldDecl{retyped}, "type changed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCompatible(compatPlan(t, tt.old...), compatPlan(t, tt.next...))
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !containsMsg(configErrors(t, err), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestCheckCompatible_Variants(t *testing.T) {
	v1 := mustResolve(t, Declaration{Name: "Op", Shape: ShapeEnum, Variants: []VariantDecl{
		{Name: "Get", Shape: ShapeUnit},
	}})
	v2 := mustResolve(t, Declaration{Name: "Op", Shape: ShapeEnum, Variants: []VariantDecl{
		{Name: "Get", Shape: ShapeUnit},
		{Name: "Put", Shape: ShapeNewtype, Fields: []FieldDecl{{Type: TypeRef{Name: "bytes"}}}},
	}})
	if err := CheckCompatible(v1, v2); err != nil {
		t.Errorf("appending a variant: %v", err)
	}
	if err := CheckCompatible(v2, v1); err == nil {
		t.Error("removing a variant should fail")
	}

	tagged := mustResolve(t, Declaration{Name: "Op", Shape: ShapeEnum,
		Attrs:    []Attr{{Name: "tag", Value: "op"}},
		Variants: []VariantDecl{{Name: "Get", Shape: ShapeUnit}}})
	if err := CheckCompatible(v1, tagged); err == nil {
		t.Error("changing the tag style should fail")
	}
}
