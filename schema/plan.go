package schema

import "slices"

// TagKind selects how an enum identifies its active variant.
type TagKind uint8

const (
	// TagExternal writes the variant ordinal before its content.
	TagExternal TagKind = iota
	// TagInternal writes the variant name before its content.
	TagInternal
	// TagAdjacent writes the variant name and then the length-prefixed content.
	TagAdjacent
	// TagUntagged writes only the content; decoding tries variants in order.
	TagUntagged
)

func (k TagKind) String() string {
	switch k {
	case TagExternal:
		return "external"
	case TagInternal:
		return "internal"
	case TagAdjacent:
		return "adjacent"
	case TagUntagged:
		return "untagged"
	}
	return "unknown"
}

// TagStyle is the resolved enum representation.
type TagStyle struct {
	Tag     string
	Content string
	Kind    TagKind
}

// Identifier marks enums that name fields or variants.
type Identifier uint8

const (
	IdentifierNone Identifier = iota
	IdentifierField
	IdentifierVariant
)

// DefaultKind selects where a missing value comes from.
type DefaultKind uint8

const (
	DefaultNone      DefaultKind = iota // missing data is an error
	DefaultZero                         // the type's zero value
	DefaultPath                         // computed by a named function
	DefaultContainer                    // taken from the container's default value
)

// DefaultPolicy is the resolved default of a field or container.
type DefaultPolicy struct {
	Path string
	Kind DefaultKind
}

// Applies reports whether missing data can be filled in.
func (d DefaultPolicy) Applies() bool {
	return d.Kind != DefaultNone
}

// Names holds the resolved identifiers of a field, variant or container.
type Names struct {
	Ser     string
	De      string
	Aliases []string
}

// Matches reports whether s names this element on the decode side.
func (n Names) Matches(s string) bool {
	return s == n.De || slices.Contains(n.Aliases, s)
}

// Bounds are opaque type constraints recorded for code generators.
type Bounds struct {
	Ser []string
	De  []string
}

// RenameRules pairs the case conversion applied in each direction.
type RenameRules struct {
	Ser RenameRule
	De  RenameRule
}

// Plan is the resolved codec plan of one type. It is computed once and never
// re-validated by the codec executing it.
type Plan struct {
	Name              string
	Names             Names
	Fields            []FieldPlan
	Variants          []VariantPlan
	HashExclude       []string
	Bounds            Bounds
	Pos               Pos
	Tag               TagStyle
	Default           DefaultPolicy
	RenameAll         RenameRules
	Shape             Shape
	Identifier        Identifier
	OptimizeOption    bool
	DenyUnknownFields bool
}

// FieldPlan is the resolved configuration of one field.
type FieldPlan struct {
	Name            string
	Names           Names
	Type            TypeRef
	Bounds          Bounds
	Default         DefaultPolicy
	Index           int
	SkipSerialize   bool
	SkipDeserialize bool
	SkipHash        bool
	Borrow          bool
}

// Encoded reports whether the field is written for the given purpose.
func (f *FieldPlan) Encoded(hash bool) bool {
	if f.SkipSerialize {
		return false
	}
	return !hash || !f.SkipHash
}

// VariantPlan is the resolved configuration of one enum variant.
type VariantPlan struct {
	Name            string
	Names           Names
	Fields          []FieldPlan
	Bounds          Bounds
	RenameAll       RenameRules
	Index           int
	Shape           Shape
	SkipSerialize   bool
	SkipDeserialize bool
	Other           bool
	Borrow          bool
}

// Field returns the field declared under name.
func (p *Plan) Field(name string) (*FieldPlan, bool) {
	for i := range p.Fields {
		if p.Fields[i].Name == name {
			return &p.Fields[i], true
		}
	}
	return nil, false
}

// Variant returns the variant declared under name.
func (p *Plan) Variant(name string) (*VariantPlan, bool) {
	for i := range p.Variants {
		if p.Variants[i].Name == name {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// VariantByTag returns the variant a decoded tag selects, falling back to
// the `other` variant unless unknown names are denied.
func (p *Plan) VariantByTag(tag string) (*VariantPlan, bool) {
	var other *VariantPlan
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.SkipDeserialize {
			continue
		}
		if v.Names.Matches(tag) {
			return v, true
		}
		if v.Other {
			other = v
		}
	}
	if other != nil && !p.DenyUnknownFields {
		return other, true
	}
	return nil, false
}
