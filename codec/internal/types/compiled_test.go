package types

import (
	"testing"

	"github.com/wippyai/rawcodec/schema"
)

func TestCompiledType_VariantByTag(t *testing.T) {
	plan := &schema.Plan{
		Name:  "Event",
		Shape: schema.ShapeEnum,
		Variants: []schema.VariantPlan{
			{Name: "Start", Index: 0, Names: schema.Names{Ser: "start", De: "start"}},
			{Name: "Stop", Index: 1, Names: schema.Names{Ser: "stop", De: "stop", Aliases: []string{"halt"}}},
			{Name: "Unknown", Index: 2, Other: true},
		},
	}
	ct := &CompiledType{Kind: KindEnum, Plan: plan, Size: -1}
	for i := range plan.Variants {
		ct.Variants = append(ct.Variants, Variant{Plan: &plan.Variants[i], Name: plan.Variants[i].Name, Index: i + 1})
	}

	tests := []struct {
		tag  string
		want string
	}{
		{"start", "Start"},
		{"halt", "Stop"},
		{"pause", "Unknown"},
	}
	for _, tc := range tests {
		v := ct.VariantByTag(tc.tag)
		if v == nil || v.Name != tc.want {
			t.Errorf("VariantByTag(%q) = %v, want %s", tc.tag, v, tc.want)
		}
	}

	plan.DenyUnknownFields = true
	if v := ct.VariantByTag("pause"); v != nil {
		t.Errorf("deny_unknown_fields should reject unknown tags, got %s", v.Name)
	}
	if ct.IsFixed() {
		t.Error("enum with Size -1 reported as fixed")
	}
}
