package schema

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/rawcodec/errors"
)

// LoadYAML parses a declaration file. File is used in positions only.
//
//	types:
//	  - name: Profile
//	    shape: struct
//	    attrs:
//	      - rename_all: camelCase
//	      - deny_unknown_fields
//	    fields:
//	      - name: user_id
//	        type: u64
//	      - name: bio
//	        type: ?string
//	        attrs: [skip_hash, {rename: {serialize: about}}]
//
// Types are u8..u64, i8..i64, f32, f64, bool, string, bytes, view or any
// other name; a leading `?` marks an optional type.
func LoadYAML(data []byte, file string) ([]Declaration, error) {
	var doc yamlFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.CodeInvalidFormat, err, "parse "+file)
	}

	var errs errors.ConfigErrors
	decls := make([]Declaration, 0, len(doc.Types))
	for _, yt := range doc.Types {
		decls = append(decls, yt.declaration(file, &errs))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return decls, nil
}

type yamlFile struct {
	Types []yamlType `yaml:"types"`
}

type yamlType struct {
	Name     string        `yaml:"name"`
	Shape    string        `yaml:"shape"`
	Attrs    []yaml.Node   `yaml:"attrs"`
	Fields   []yamlField   `yaml:"fields"`
	Variants []yamlVariant `yaml:"variants"`
	line     int
	column   int
}

func (t *yamlType) UnmarshalYAML(n *yaml.Node) error {
	type plain yamlType
	t.line, t.column = n.Line, n.Column
	return n.Decode((*plain)(t))
}

type yamlField struct {
	Name   string      `yaml:"name"`
	Type   string      `yaml:"type"`
	Attrs  []yaml.Node `yaml:"attrs"`
	line   int
	column int
}

func (f *yamlField) UnmarshalYAML(n *yaml.Node) error {
	type plain yamlField
	f.line, f.column = n.Line, n.Column
	return n.Decode((*plain)(f))
}

type yamlVariant struct {
	Name   string      `yaml:"name"`
	Shape  string      `yaml:"shape"`
	Attrs  []yaml.Node `yaml:"attrs"`
	Fields []yamlField `yaml:"fields"`
	line   int
	column int
}

func (v *yamlVariant) UnmarshalYAML(n *yaml.Node) error {
	type plain yamlVariant
	v.line, v.column = n.Line, n.Column
	return n.Decode((*plain)(v))
}

func (t *yamlType) declaration(file string, errs *errors.ConfigErrors) Declaration {
	pos := Pos{File: file, Line: t.line, Column: t.column, Item: t.Name}
	d := Declaration{Name: t.Name, Pos: pos}
	if t.Name == "" {
		errs.Add(pos.String(), "type without a name")
	}

	shape, ok := ParseShape(defaultString(t.Shape, "struct"))
	if !ok || shape == ShapeNewtype {
		errs.Add(pos.String(), "unknown type shape `%s`", t.Shape)
	}
	d.Shape = shape
	d.Attrs = yamlAttrs(t.Attrs, file, errs)

	if shape == ShapeEnum {
		if len(t.Fields) > 0 {
			errs.Add(pos.String(), "enum `%s` declares fields, use variants", t.Name)
		}
		for _, yv := range t.Variants {
			d.Variants = append(d.Variants, yv.declaration(file, errs))
		}
		return d
	}
	if len(t.Variants) > 0 {
		errs.Add(pos.String(), "%s `%s` declares variants", shape, t.Name)
	}
	for _, yf := range t.Fields {
		d.Fields = append(d.Fields, yf.declaration(file, errs))
	}
	return d
}

func (v *yamlVariant) declaration(file string, errs *errors.ConfigErrors) VariantDecl {
	pos := Pos{File: file, Line: v.line, Column: v.column, Item: v.Name}
	shape, ok := ParseShape(defaultString(v.Shape, "unit"))
	if !ok || shape == ShapeEnum {
		errs.Add(pos.String(), "unknown variant shape `%s`", v.Shape)
	}
	vd := VariantDecl{Name: v.Name, Shape: shape, Pos: pos, Attrs: yamlAttrs(v.Attrs, file, errs)}
	for _, yf := range v.Fields {
		vd.Fields = append(vd.Fields, yf.declaration(file, errs))
	}
	if shape == ShapeNewtype && len(vd.Fields) != 1 {
		errs.Add(pos.String(), "newtype variant `%s` must have exactly one field", v.Name)
	}
	if shape == ShapeUnit && len(vd.Fields) != 0 {
		errs.Add(pos.String(), "unit variant `%s` cannot have fields", v.Name)
	}
	return vd
}

func (f *yamlField) declaration(file string, errs *errors.ConfigErrors) FieldDecl {
	return FieldDecl{
		Name:  f.Name,
		Type:  ParseTypeRef(f.Type),
		Attrs: yamlAttrs(f.Attrs, file, errs),
		Pos:   Pos{File: file, Line: f.line, Column: f.column, Item: f.Name},
	}
}

// yamlAttrs reads attributes written as `flag`, `key: value`,
// `key: {serialize: a, deserialize: b}` or `key: [a, b]` for repeatable keys.
func yamlAttrs(nodes []yaml.Node, file string, errs *errors.ConfigErrors) []Attr {
	var out []Attr
	for i := range nodes {
		n := &nodes[i]
		pos := Pos{File: file, Line: n.Line, Column: n.Column}
		switch n.Kind {
		case yaml.ScalarNode:
			out = append(out, Attr{Name: n.Value, Pos: pos})
		case yaml.MappingNode:
			for j := 0; j+1 < len(n.Content); j += 2 {
				key, val := n.Content[j], n.Content[j+1]
				kpos := Pos{File: file, Line: key.Line, Column: key.Column}
				out = append(out, yamlAttrValue(key.Value, val, kpos, errs)...)
			}
		default:
			errs.Add(pos.String(), "attribute must be a name or a single key mapping")
		}
	}
	return out
}

func yamlAttrValue(name string, val *yaml.Node, pos Pos, errs *errors.ConfigErrors) []Attr {
	switch val.Kind {
	case yaml.ScalarNode:
		return []Attr{{Name: name, Value: val.Value, Pos: pos}}
	case yaml.SequenceNode:
		out := make([]Attr, 0, len(val.Content))
		for _, item := range val.Content {
			ipos := Pos{File: pos.File, Line: item.Line, Column: item.Column}
			out = append(out, Attr{Name: name, Value: item.Value, Pos: ipos})
		}
		return out
	case yaml.MappingNode:
		a := Attr{Name: name, Pos: pos}
		for j := 0; j+1 < len(val.Content); j += 2 {
			switch k, v := val.Content[j].Value, val.Content[j+1].Value; k {
			case "serialize":
				a.Ser = v
			case "deserialize":
				a.De = v
			default:
				errs.Add(pos.String(), "unknown direction `%s` for `%s`", k, name)
			}
		}
		return []Attr{a}
	}
	errs.Add(pos.String(), "unsupported value for `%s`", name)
	return nil
}

// ParseTypeRef interprets a type name from a declaration file.
func ParseTypeRef(s string) TypeRef {
	ref := TypeRef{Name: s}
	name := s
	if rest, ok := strings.CutPrefix(name, "?"); ok {
		ref.Optional = true
		name = rest
	} else if inner, ok := cutWrapped(name, "option<", ">"); ok {
		ref.Optional = true
		name = inner
	}
	switch name {
	case "string", "bytes", "list<u8>":
		ref.Borrowable = true
	case "view":
		ref.Borrowable, ref.Implicit = true, true
	}
	return ref
}

func cutWrapped(s, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return s, false
	}
	return s[len(prefix) : len(s)-len(suffix)], true
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
