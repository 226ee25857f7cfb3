package schema

import (
	"github.com/wippyai/rawcodec/errors"
)

// CheckCompatible reports every change from old to next that breaks the
// additive evolution rule: a newer version may only append fields that are
// optional or defaulted, and may only append enum variants. Data written by
// either version then stays readable by the other.
func CheckCompatible(old, next *Plan) error {
	var errs errors.ConfigErrors
	where := next.Name

	if old.Shape != next.Shape {
		errs.Add(where, "shape changed from %s to %s", old.Shape, next.Shape)
		return errs.Err()
	}
	if old.OptimizeOption != next.OptimizeOption {
		errs.Add(where, "`optimize_option` changed, optional field layout differs")
	}

	if old.Shape == ShapeEnum {
		checkVariants(&errs, old, next)
	} else {
		checkFields(&errs, where, old.Fields, next.Fields)
	}
	return errs.Err()
}

func checkFields(errs *errors.ConfigErrors, where string, old, next []FieldPlan) {
	for i, of := range old {
		if i >= len(next) {
			errs.Add(where+"."+of.Name, "field removed")
			continue
		}
		nf := next[i]
		if nf.Name != of.Name {
			errs.Add(where+"."+of.Name, "field at position %d renamed or reordered to `%s`", i, nf.Name)
			continue
		}
		if nf.Type.Name != of.Type.Name {
			errs.Add(where+"."+of.Name, "type changed from `%s` to `%s`", of.Type.Name, nf.Type.Name)
		}
		if nf.SkipSerialize != of.SkipSerialize || nf.SkipDeserialize != of.SkipDeserialize {
			errs.Add(where+"."+of.Name, "skip configuration changed")
		}
	}
	for _, nf := range next[min(len(old), len(next)):] {
		if !nf.Type.Optional && !nf.Default.Applies() {
			errs.Add(where+"."+nf.Name, "new field must be optional or have a default")
		}
	}
}

func checkVariants(errs *errors.ConfigErrors, old, next *Plan) {
	where := next.Name
	if old.Tag != next.Tag {
		errs.Add(where, "tag style changed from %s to %s", old.Tag.Kind, next.Tag.Kind)
	}
	for i, ov := range old.Variants {
		if i >= len(next.Variants) {
			errs.Add(where+"::"+ov.Name, "variant removed")
			continue
		}
		nv := next.Variants[i]
		if nv.Name != ov.Name {
			errs.Add(where+"::"+ov.Name, "variant at position %d renamed or reordered to `%s`", i, nv.Name)
			continue
		}
		if nv.Names.Ser != ov.Names.Ser && old.Tag.Kind != TagExternal && old.Tag.Kind != TagUntagged {
			errs.Add(where+"::"+ov.Name, "tag name changed from `%s` to `%s`", ov.Names.Ser, nv.Names.Ser)
		}
		if nv.Shape != ov.Shape {
			errs.Add(where+"::"+ov.Name, "variant shape changed from %s to %s", ov.Shape, nv.Shape)
			continue
		}
		checkFields(errs, where+"::"+ov.Name, ov.Fields, nv.Fields)
	}
}
