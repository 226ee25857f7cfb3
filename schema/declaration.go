package schema

import (
	"fmt"
	"strings"
)

// Shape is the structural form of a type or enum variant.
type Shape uint8

const (
	ShapeStruct  Shape = iota // named fields
	ShapeTuple                // positional fields
	ShapeUnit                 // no fields
	ShapeNewtype              // exactly one positional field
	ShapeEnum                 // one of several variants
)

var shapeNames = [...]string{
	ShapeStruct:  "struct",
	ShapeTuple:   "tuple",
	ShapeUnit:    "unit",
	ShapeNewtype: "newtype",
	ShapeEnum:    "enum",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// ParseShape is the inverse of Shape.String.
func ParseShape(s string) (Shape, bool) {
	for i, name := range shapeNames {
		if name == s {
			return Shape(i), true
		}
	}
	return 0, false
}

// Pos locates a declaration element for diagnostics. Item names the element
// when no file position is known.
type Pos struct {
	File   string
	Item   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" && p.Line == 0 {
		return p.Item
	}
	var b strings.Builder
	b.WriteString(p.File)
	if p.Line > 0 {
		fmt.Fprintf(&b, ":%d", p.Line)
		if p.Column > 0 {
			fmt.Fprintf(&b, ":%d", p.Column)
		}
	}
	return b.String()
}

// Attr is one configuration entry as written by the user. Value applies to
// both directions; Ser and De hold direction-specific values.
type Attr struct {
	Name  string
	Value string
	Ser   string
	De    string
	Pos   Pos
}

// TypeRef describes a field type as far as resolution cares.
type TypeRef struct {
	Name string
	// Borrowable types can alias the decode input: strings and byte strings.
	Borrowable bool
	// Implicit types are always borrowed, without an explicit attribute.
	Implicit bool
	// Optional types may be absent.
	Optional bool
}

// Declaration is the unresolved configuration of one type.
type Declaration struct {
	Name     string
	Shape    Shape
	Attrs    []Attr
	Fields   []FieldDecl
	Variants []VariantDecl
	Pos      Pos
}

// FieldDecl declares a struct or tuple field. Tuple fields have no name.
type FieldDecl struct {
	Name  string
	Type  TypeRef
	Attrs []Attr
	Pos   Pos
}

// VariantDecl declares an enum variant.
type VariantDecl struct {
	Name   string
	Shape  Shape
	Fields []FieldDecl
	Attrs  []Attr
	Pos    Pos
}

func (d *Declaration) pos() Pos {
	if d.Pos == (Pos{}) {
		return Pos{Item: d.Name}
	}
	return d.Pos
}

func fieldName(f FieldDecl, i int) string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("%d", i)
}
