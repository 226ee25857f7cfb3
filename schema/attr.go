package schema

import (
	"github.com/wippyai/rawcodec/errors"
)

// slot holds one configuration concern. Setting it twice records a
// duplicate at the second occurrence and keeps the first value.
type slot[T any] struct {
	val  T
	pos  Pos
	name string
	set  bool
}

func newSlot[T any](name string) slot[T] {
	return slot[T]{name: name}
}

func (s *slot[T]) put(errs *errors.ConfigErrors, pos Pos, v T) {
	if s.set {
		errs.Add(pos.String(), "duplicate attribute `%s`", s.name)
		return
	}
	s.val, s.pos, s.set = v, pos, true
}

func (s *slot[T]) get(def T) T {
	if s.set {
		return s.val
	}
	return def
}

// pair holds the serialize and deserialize sides of a concern that can be
// configured for both directions at once or for each separately.
type pair[T any] struct {
	ser slot[T]
	de  slot[T]
}

func newPair[T any](name string) pair[T] {
	return pair[T]{ser: newSlot[T](name), de: newSlot[T](name)}
}

func (p *pair[T]) isSet() bool {
	return p.ser.set || p.de.set
}

// putAttr applies an attribute whose value is parsed by conv. A plain value
// sets both sides; Ser and De set one side each.
func putAttr[T any](errs *errors.ConfigErrors, p *pair[T], a Attr, conv func(string) (T, bool)) {
	if a.Value == "" && a.Ser == "" && a.De == "" {
		errs.Add(a.Pos.String(), "attribute `%s` requires a value", a.Name)
		return
	}
	if a.Value != "" {
		v, ok := conv(a.Value)
		if !ok {
			return
		}
		if p.isSet() {
			errs.Add(a.Pos.String(), "duplicate attribute `%s`", a.Name)
			return
		}
		p.ser.put(errs, a.Pos, v)
		p.de.put(errs, a.Pos, v)
	}
	if a.Ser != "" {
		if v, ok := conv(a.Ser); ok {
			p.ser.put(errs, a.Pos, v)
		}
	}
	if a.De != "" {
		if v, ok := conv(a.De); ok {
			p.de.put(errs, a.Pos, v)
		}
	}
}

func identity(s string) (string, bool) { return s, true }

// flag records a valueless attribute.
func flag(errs *errors.ConfigErrors, s *slot[bool], a Attr) {
	if a.Value != "" || a.Ser != "" || a.De != "" {
		errs.Add(a.Pos.String(), "attribute `%s` does not take a value", a.Name)
		return
	}
	s.put(errs, a.Pos, true)
}

func boundsOf(p *pair[string]) Bounds {
	var b Bounds
	if p.ser.set {
		b.Ser = []string{p.ser.val}
	}
	if p.de.set {
		b.De = []string{p.de.val}
	}
	return b
}

func renameRuleParser(errs *errors.ConfigErrors, a Attr) func(string) (RenameRule, bool) {
	return func(s string) (RenameRule, bool) {
		r, ok := ParseRenameRule(s)
		if !ok {
			errs.Add(a.Pos.String(), "unknown rename rule `%s` for `%s`", s, a.Name)
		}
		return r, ok
	}
}

func defaultOf(a Attr) DefaultPolicy {
	if a.Value == "" {
		return DefaultPolicy{Kind: DefaultZero}
	}
	return DefaultPolicy{Kind: DefaultPath, Path: a.Value}
}
