package schema

import (
	"github.com/wippyai/rawcodec/errors"
)

// Resolve turns a declaration into a codec plan. Every concern is resolved
// independently and every defect is collected, so the returned error is an
// errors.ConfigErrors listing all of them.
func Resolve(decl Declaration) (*Plan, error) {
	var errs errors.ConfigErrors
	r := resolver{errs: &errs, decl: &decl}
	plan := r.container()
	r.check(plan)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return plan, nil
}

// ResolveAll resolves several declarations and reports the defects of all
// of them together.
func ResolveAll(decls []Declaration) ([]*Plan, error) {
	var errs errors.ConfigErrors
	plans := make([]*Plan, 0, len(decls))
	seen := make(map[string]Pos, len(decls))
	for _, d := range decls {
		if prev, dup := seen[d.Name]; dup {
			errs.Add(d.pos().String(), "type `%s` already declared at %s", d.Name, prev)
			continue
		}
		seen[d.Name] = d.pos()
		p, err := Resolve(d)
		if err != nil {
			errs.Merge(err)
			continue
		}
		plans = append(plans, p)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

type resolver struct {
	errs *errors.ConfigErrors
	decl *Declaration
}

type containerAttrs struct {
	rename         pair[string]
	renameAll      pair[RenameRule]
	renameFields   pair[RenameRule]
	bound          pair[string]
	defaultPolicy  slot[DefaultPolicy]
	tag            slot[string]
	content        slot[string]
	untagged       slot[bool]
	denyUnknown    slot[bool]
	optimizeOption slot[bool]
	fieldIdent     slot[bool]
	variantIdent   slot[bool]
}

func (r *resolver) container() *Plan {
	d := r.decl
	c := containerAttrs{
		rename:         newPair[string]("rename"),
		renameAll:      newPair[RenameRule]("rename_all"),
		renameFields:   newPair[RenameRule]("rename_all_fields"),
		bound:          newPair[string]("bound"),
		defaultPolicy:  newSlot[DefaultPolicy]("default"),
		tag:            newSlot[string]("tag"),
		content:        newSlot[string]("content"),
		untagged:       newSlot[bool]("untagged"),
		denyUnknown:    newSlot[bool]("deny_unknown_fields"),
		optimizeOption: newSlot[bool]("optimize_option"),
		fieldIdent:     newSlot[bool]("field_identifier"),
		variantIdent:   newSlot[bool]("variant_identifier"),
	}

	for _, a := range d.Attrs {
		switch a.Name {
		case "rename":
			putAttr(r.errs, &c.rename, a, identity)
		case "rename_all":
			putAttr(r.errs, &c.renameAll, a, renameRuleParser(r.errs, a))
		case "rename_all_fields":
			if d.Shape != ShapeEnum {
				r.errs.Add(a.Pos.String(), "`rename_all_fields` can only be used on enums")
				continue
			}
			putAttr(r.errs, &c.renameFields, a, renameRuleParser(r.errs, a))
		case "bound":
			putAttr(r.errs, &c.bound, a, identity)
		case "default":
			if d.Shape != ShapeStruct {
				r.errs.Add(a.Pos.String(), "`default` can only be used on structs with named fields")
				continue
			}
			c.defaultPolicy.put(r.errs, a.Pos, defaultOf(a))
		case "tag":
			if d.Shape != ShapeEnum && d.Shape != ShapeStruct {
				r.errs.Add(a.Pos.String(), "`tag` can only be used on enums and structs with named fields")
				continue
			}
			if a.Value == "" {
				r.errs.Add(a.Pos.String(), "attribute `tag` requires a value")
				continue
			}
			c.tag.put(r.errs, a.Pos, a.Value)
		case "content":
			if d.Shape != ShapeEnum {
				r.errs.Add(a.Pos.String(), "`content` can only be used on enums")
				continue
			}
			if a.Value == "" {
				r.errs.Add(a.Pos.String(), "attribute `content` requires a value")
				continue
			}
			c.content.put(r.errs, a.Pos, a.Value)
		case "untagged":
			if d.Shape != ShapeEnum {
				r.errs.Add(a.Pos.String(), "`untagged` can only be used on enums")
				continue
			}
			flag(r.errs, &c.untagged, a)
		case "deny_unknown_fields":
			flag(r.errs, &c.denyUnknown, a)
		case "optimize_option":
			flag(r.errs, &c.optimizeOption, a)
		case "field_identifier", "variant_identifier":
			if d.Shape != ShapeEnum {
				r.errs.Add(a.Pos.String(), "`%s` can only be used on enums", a.Name)
				continue
			}
			if a.Name == "field_identifier" {
				flag(r.errs, &c.fieldIdent, a)
			} else {
				flag(r.errs, &c.variantIdent, a)
			}
		default:
			r.errs.Add(a.Pos.String(), "unknown container attribute `%s`", a.Name)
		}
	}

	plan := &Plan{
		Name:  d.Name,
		Shape: d.Shape,
		Pos:   d.pos(),
		Names: Names{
			Ser: c.rename.ser.get(d.Name),
			De:  c.rename.de.get(d.Name),
		},
		RenameAll: RenameRules{
			Ser: c.renameAll.ser.get(RenameNone),
			De:  c.renameAll.de.get(RenameNone),
		},
		Bounds:            boundsOf(&c.bound),
		Default:           c.defaultPolicy.get(DefaultPolicy{}),
		OptimizeOption:    c.optimizeOption.get(false),
		DenyUnknownFields: c.denyUnknown.get(false),
	}
	plan.Tag = r.tagStyle(&c)
	plan.Identifier = r.identifier(&c)

	switch d.Shape {
	case ShapeEnum:
		fieldRules := RenameRules{
			Ser: c.renameFields.ser.get(RenameNone),
			De:  c.renameFields.de.get(RenameNone),
		}
		plan.Variants = r.variants(plan, fieldRules)
	default:
		plan.Fields = r.fields(d.Fields, plan.RenameAll, plan.Default)
	}
	plan.HashExclude = hashExclusions(plan)
	return plan
}

// tagStyle combines tag, content and untagged into one representation.
func (r *resolver) tagStyle(c *containerAttrs) TagStyle {
	tag, content, untagged := c.tag.set, c.content.set, c.untagged.set
	switch {
	case untagged && tag:
		r.errs.Add(c.untagged.pos.String(), "enum cannot be both untagged and tagged with `%s`", c.tag.val)
		return TagStyle{Kind: TagUntagged}
	case untagged && content:
		r.errs.Add(c.content.pos.String(), "untagged enum cannot have `content`")
		return TagStyle{Kind: TagUntagged}
	case untagged:
		return TagStyle{Kind: TagUntagged}
	case tag && content:
		if c.tag.val == c.content.val {
			r.errs.Add(c.content.pos.String(), "`tag` and `content` must be different, both are `%s`", c.tag.val)
		}
		return TagStyle{Kind: TagAdjacent, Tag: c.tag.val, Content: c.content.val}
	case tag:
		return TagStyle{Kind: TagInternal, Tag: c.tag.val}
	case content:
		r.errs.Add(c.content.pos.String(), "`content` can only be used together with `tag`")
	}
	return TagStyle{Kind: TagExternal}
}

func (r *resolver) identifier(c *containerAttrs) Identifier {
	switch {
	case c.fieldIdent.set && c.variantIdent.set:
		r.errs.Add(c.variantIdent.pos.String(), "`field_identifier` and `variant_identifier` cannot both be set")
		return IdentifierNone
	case c.fieldIdent.set:
		return IdentifierField
	case c.variantIdent.set:
		return IdentifierVariant
	}
	return IdentifierNone
}

type variantAttrs struct {
	rename    pair[string]
	renameAll pair[RenameRule]
	bound     pair[string]
	skipSer   slot[bool]
	skipDe    slot[bool]
	other     slot[bool]
	borrow    slot[bool]
	aliases   []string
}

func (r *resolver) variants(plan *Plan, fieldRules RenameRules) []VariantPlan {
	out := make([]VariantPlan, 0, len(r.decl.Variants))
	for i, vd := range r.decl.Variants {
		va := variantAttrs{
			rename:    newPair[string]("rename"),
			renameAll: newPair[RenameRule]("rename_all"),
			bound:     newPair[string]("bound"),
			skipSer:   newSlot[bool]("skip_serializing"),
			skipDe:    newSlot[bool]("skip_deserializing"),
			other:     newSlot[bool]("other"),
			borrow:    newSlot[bool]("borrow"),
		}
		for _, a := range vd.Attrs {
			switch a.Name {
			case "rename":
				putAttr(r.errs, &va.rename, a, identity)
			case "alias":
				if a.Value == "" {
					r.errs.Add(a.Pos.String(), "attribute `alias` requires a value")
					continue
				}
				va.aliases = append(va.aliases, a.Value)
			case "rename_all":
				putAttr(r.errs, &va.renameAll, a, renameRuleParser(r.errs, a))
			case "bound":
				putAttr(r.errs, &va.bound, a, identity)
			case "skip":
				flag(r.errs, &va.skipSer, a)
				flag(r.errs, &va.skipDe, a)
			case "skip_serializing":
				flag(r.errs, &va.skipSer, a)
			case "skip_deserializing":
				flag(r.errs, &va.skipDe, a)
			case "other":
				if vd.Shape != ShapeUnit {
					r.errs.Add(a.Pos.String(), "`other` can only be used on unit variants")
					continue
				}
				flag(r.errs, &va.other, a)
			case "borrow":
				if vd.Shape != ShapeNewtype || len(vd.Fields) != 1 || !vd.Fields[0].Type.Borrowable {
					r.errs.Add(a.Pos.String(), "`borrow` can only be used on newtype variants wrapping borrowable data")
					continue
				}
				flag(r.errs, &va.borrow, a)
			default:
				r.errs.Add(a.Pos.String(), "unknown variant attribute `%s`", a.Name)
			}
		}

		vp := VariantPlan{
			Name:  vd.Name,
			Index: i,
			Shape: vd.Shape,
			Names: Names{
				Ser:     va.rename.ser.get(plan.RenameAll.Ser.Apply(vd.Name)),
				De:      va.rename.de.get(plan.RenameAll.De.Apply(vd.Name)),
				Aliases: va.aliases,
			},
			RenameAll: RenameRules{
				Ser: va.renameAll.ser.get(fieldRules.Ser),
				De:  va.renameAll.de.get(fieldRules.De),
			},
			Bounds:          boundsOf(&va.bound),
			SkipSerialize:   va.skipSer.get(false),
			SkipDeserialize: va.skipDe.get(false),
			Other:           va.other.get(false),
			Borrow:          va.borrow.get(false),
		}
		vp.Fields = r.fields(vd.Fields, vp.RenameAll, DefaultPolicy{})
		if vp.Borrow && len(vp.Fields) == 1 {
			vp.Fields[0].Borrow = true
		}
		out = append(out, vp)
	}
	return out
}

type fieldAttrs struct {
	rename        pair[string]
	bound         pair[string]
	defaultPolicy slot[DefaultPolicy]
	skipSer       slot[bool]
	skipDe        slot[bool]
	skipHash      slot[bool]
	borrow        slot[bool]
	aliases       []string
}

func (r *resolver) fields(decls []FieldDecl, rules RenameRules, containerDefault DefaultPolicy) []FieldPlan {
	out := make([]FieldPlan, 0, len(decls))
	for i, fd := range decls {
		fa := fieldAttrs{
			rename:        newPair[string]("rename"),
			bound:         newPair[string]("bound"),
			defaultPolicy: newSlot[DefaultPolicy]("default"),
			skipSer:       newSlot[bool]("skip_serializing"),
			skipDe:        newSlot[bool]("skip_deserializing"),
			skipHash:      newSlot[bool]("skip_hash"),
			borrow:        newSlot[bool]("borrow"),
		}
		name := fieldName(fd, i)
		for _, a := range fd.Attrs {
			switch a.Name {
			case "rename":
				putAttr(r.errs, &fa.rename, a, identity)
			case "alias":
				if a.Value == "" {
					r.errs.Add(a.Pos.String(), "attribute `alias` requires a value")
					continue
				}
				fa.aliases = append(fa.aliases, a.Value)
			case "bound":
				putAttr(r.errs, &fa.bound, a, identity)
			case "default":
				fa.defaultPolicy.put(r.errs, a.Pos, defaultOf(a))
			case "skip":
				flag(r.errs, &fa.skipSer, a)
				flag(r.errs, &fa.skipDe, a)
			case "skip_serializing":
				flag(r.errs, &fa.skipSer, a)
			case "skip_deserializing":
				flag(r.errs, &fa.skipDe, a)
			case "skip_hash":
				flag(r.errs, &fa.skipHash, a)
			case "borrow":
				if !fd.Type.Borrowable {
					r.errs.Add(a.Pos.String(), "`borrow` requires a borrowable field type, `%s` is not", fd.Type.Name)
					continue
				}
				flag(r.errs, &fa.borrow, a)
			default:
				r.errs.Add(a.Pos.String(), "unknown field attribute `%s`", a.Name)
			}
		}

		fp := FieldPlan{
			Name:  name,
			Index: i,
			Type:  fd.Type,
			Names: Names{
				Ser:     fa.rename.ser.get(rules.Ser.Apply(name)),
				De:      fa.rename.de.get(rules.De.Apply(name)),
				Aliases: fa.aliases,
			},
			Bounds:          boundsOf(&fa.bound),
			Default:         fa.defaultPolicy.get(DefaultPolicy{}),
			SkipSerialize:   fa.skipSer.get(false),
			SkipDeserialize: fa.skipDe.get(false),
			SkipHash:        fa.skipHash.get(false),
			Borrow:          fa.borrow.get(false) || fd.Type.Implicit,
		}
		if !fp.Default.Applies() {
			switch {
			case containerDefault.Applies():
				fp.Default = DefaultPolicy{Kind: DefaultContainer}
			case fp.SkipDeserialize:
				// never read, so it needs a placeholder
				fp.Default = DefaultPolicy{Kind: DefaultZero}
			}
		}
		out = append(out, fp)
	}
	return out
}

// hashExclusions lists every field left out of the hash encoding, variant
// fields qualified with their variant name.
func hashExclusions(p *Plan) []string {
	var out []string
	for _, f := range p.Fields {
		if f.SkipHash {
			out = append(out, f.Name)
		}
	}
	for _, v := range p.Variants {
		for _, f := range v.Fields {
			if f.SkipHash {
				out = append(out, v.Name+"."+f.Name)
			}
		}
	}
	return out
}
