package schema

// check validates combinations that no single attribute can judge alone.
func (r *resolver) check(p *Plan) {
	d := r.decl
	if p.Shape == ShapeEnum {
		r.checkEnum(p)
	}
	r.checkFieldNames(p.Fields, d.Name, func(i int) Pos { return d.Fields[i].Pos })
}

func (r *resolver) checkEnum(p *Plan) {
	d := r.decl
	if len(p.Variants) == 0 {
		r.errs.Add(d.pos().String(), "enum `%s` has no variants", d.Name)
	}

	otherSeen := false
	for i, v := range p.Variants {
		vd := d.Variants[i]
		if v.Other {
			if otherSeen {
				r.errs.Add(vd.Pos.String(), "only one variant can be marked `other`")
			}
			otherSeen = true
			if p.DenyUnknownFields {
				r.errs.Add(vd.Pos.String(), "`other` conflicts with `deny_unknown_fields`")
			}
		}

		switch p.Tag.Kind {
		case TagInternal:
			if vd.Shape == ShapeTuple {
				r.errs.Add(vd.Pos.String(), "`tag` cannot be used with tuple variant `%s`", vd.Name)
			}
			for j, f := range v.Fields {
				if vd.Shape == ShapeStruct && f.Names.Ser == p.Tag.Tag {
					r.errs.Add(vd.Fields[j].Pos.String(), "field `%s` conflicts with internal tag `%s`", f.Name, p.Tag.Tag)
				}
			}
		case TagUntagged:
			if v.Other {
				r.errs.Add(vd.Pos.String(), "`other` cannot be used in untagged enums")
			}
		}

		if p.Identifier != IdentifierNone && vd.Shape != ShapeUnit {
			r.errs.Add(vd.Pos.String(), "identifier enum variant `%s` must be a unit variant", vd.Name)
		}

		idx := i
		r.checkFieldNames(v.Fields, d.Name+"::"+vd.Name, func(j int) Pos { return d.Variants[idx].Fields[j].Pos })
	}

	if p.Identifier != IdentifierNone {
		if p.Tag.Kind != TagExternal {
			r.errs.Add(d.pos().String(), "identifier enums cannot be %s tagged", p.Tag.Kind)
		}
		for i, v := range p.Variants {
			if v.Other && i != len(p.Variants)-1 {
				r.errs.Add(d.Variants[i].Pos.String(), "`other` must be the last variant of an identifier enum")
			}
		}
	}

	if p.Tag.Kind == TagUntagged {
		r.checkUntaggedOrder(p)
	}

	seen := make(map[string]string)
	for i, v := range p.Variants {
		if v.SkipDeserialize {
			continue
		}
		for _, name := range append([]string{v.Names.De}, v.Names.Aliases...) {
			if prev, dup := seen[name]; dup {
				r.errs.Add(d.Variants[i].Pos.String(), "variant name `%s` already used by `%s`", name, prev)
				continue
			}
			seen[name] = v.Name
		}
	}
}

// checkUntaggedOrder rejects variants that follow an untagged unit variant.
// A unit variant matches without reading anything, so nothing declared
// after it could ever be decoded.
func (r *resolver) checkUntaggedOrder(p *Plan) {
	d := r.decl
	unit := -1
	for i, v := range p.Variants {
		if v.SkipDeserialize {
			continue
		}
		if unit >= 0 {
			r.errs.Add(d.Variants[unit].Pos.String(),
				"untagged unit variant `%s` matches any input, variant `%s` after it can never be decoded",
				p.Variants[unit].Name, v.Name)
			return
		}
		if d.Variants[i].Shape == ShapeUnit {
			unit = i
		}
	}
}

// checkFieldNames rejects two fields that decode under the same name.
func (r *resolver) checkFieldNames(fields []FieldPlan, owner string, pos func(int) Pos) {
	seen := make(map[string]string, len(fields))
	for i, f := range fields {
		if f.SkipDeserialize {
			continue
		}
		for _, name := range append([]string{f.Names.De}, f.Names.Aliases...) {
			if prev, dup := seen[name]; dup {
				r.errs.Add(pos(i).String(), "field name `%s` in `%s` already used by `%s`", name, owner, prev)
				continue
			}
			seen[name] = f.Name
		}
	}
}
