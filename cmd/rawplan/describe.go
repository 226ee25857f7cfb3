package main

import (
	"fmt"
	"strings"

	"github.com/wippyai/rawcodec/schema"
)

// summary is the one-line form used in listings.
func summary(p *schema.Plan) string {
	n := len(p.Fields)
	unit := "fields"
	if p.Shape == schema.ShapeEnum {
		n = len(p.Variants)
		unit = "variants"
	}
	s := fmt.Sprintf("%s %s (%d %s)", p.Shape, p.Name, n, unit)
	if p.Shape == schema.ShapeEnum {
		s += " " + p.Tag.Kind.String()
	}
	return s
}

// describe renders the full plan of one type.
func describe(p *schema.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", p.Shape, p.Name)
	line := func(k, v string) {
		fmt.Fprintf(&b, "  %-20s %s\n", k+":", v)
	}

	line("names", names(p.Names))
	if p.Pos != (schema.Pos{}) {
		line("declared", p.Pos.String())
	}
	if p.RenameAll.Ser != schema.RenameNone || p.RenameAll.De != schema.RenameNone {
		line("rename_all", rules(p.RenameAll))
	}
	if p.Default.Applies() {
		line("default", policy(p.Default))
	}
	if p.OptimizeOption {
		line("optimize_option", "true")
	}
	if p.DenyUnknownFields {
		line("deny_unknown_fields", "true")
	}
	if len(p.HashExclude) > 0 {
		line("hash excludes", strings.Join(p.HashExclude, ", "))
	}

	if p.Shape == schema.ShapeEnum {
		tag := p.Tag.Kind.String()
		if p.Tag.Tag != "" {
			tag += " tag=" + p.Tag.Tag
		}
		if p.Tag.Content != "" {
			tag += " content=" + p.Tag.Content
		}
		line("representation", tag)
		switch p.Identifier {
		case schema.IdentifierField:
			line("identifier", "field")
		case schema.IdentifierVariant:
			line("identifier", "variant")
		}
		b.WriteString("  variants:\n")
		for i := range p.Variants {
			writeVariant(&b, &p.Variants[i])
		}
		return b.String()
	}

	if len(p.Fields) > 0 {
		b.WriteString("  fields:\n")
		for i := range p.Fields {
			writeField(&b, "    ", &p.Fields[i])
		}
	}
	return b.String()
}

func writeVariant(b *strings.Builder, v *schema.VariantPlan) {
	fmt.Fprintf(b, "    %d %s %s", v.Index, v.Name, v.Shape)
	if n := names(v.Names); n != v.Name {
		fmt.Fprintf(b, " as %s", n)
	}
	b.WriteString(flags(map[string]bool{
		"skip_serializing":   v.SkipSerialize,
		"skip_deserializing": v.SkipDeserialize,
		"other":              v.Other,
		"borrow":             v.Borrow,
	}))
	b.WriteByte('\n')
	for i := range v.Fields {
		writeField(b, "      ", &v.Fields[i])
	}
}

func writeField(b *strings.Builder, indent string, f *schema.FieldPlan) {
	name := f.Name
	if name == "" {
		name = fmt.Sprintf("%d", f.Index)
	}
	fmt.Fprintf(b, "%s%s: %s", indent, name, f.Type.Name)
	if n := names(f.Names); n != f.Name && f.Name != "" {
		fmt.Fprintf(b, " as %s", n)
	}
	b.WriteString(flags(map[string]bool{
		"skip_serializing":   f.SkipSerialize,
		"skip_deserializing": f.SkipDeserialize,
		"skip_hash":          f.SkipHash,
		"borrow":             f.Borrow,
	}))
	if f.Default.Applies() {
		b.WriteString(" default=" + policy(f.Default))
	}
	b.WriteByte('\n')
}

func names(n schema.Names) string {
	s := n.Ser
	if n.De != n.Ser {
		s = fmt.Sprintf("%s/%s", n.Ser, n.De)
	}
	if len(n.Aliases) > 0 {
		s += " alias " + strings.Join(n.Aliases, "|")
	}
	return s
}

func rules(r schema.RenameRules) string {
	if r.Ser == r.De {
		return r.Ser.String()
	}
	return fmt.Sprintf("serialize=%s deserialize=%s", r.Ser, r.De)
}

func policy(d schema.DefaultPolicy) string {
	switch d.Kind {
	case schema.DefaultZero:
		return "zero"
	case schema.DefaultContainer:
		return "container"
	case schema.DefaultPath:
		return d.Path
	}
	return "none"
}

var flagOrder = []string{"skip_serializing", "skip_deserializing", "skip_hash", "other", "borrow"}

func flags(set map[string]bool) string {
	var out []string
	for _, name := range flagOrder {
		if set[name] {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return ""
	}
	return " [" + strings.Join(out, " ") + "]"
}
