// Package schema turns per-type codec configuration into codec plans.
//
// A Declaration lists the attributes written by the user on a type, its
// fields and its enum variants. Resolve checks them and produces a Plan:
// the serialize and deserialize names of every element, which fields are
// skipped in which direction or excluded from hashing, how missing data is
// defaulted, how an enum identifies its variant and which fields borrow from
// the decode input.
//
// Resolution never stops at the first problem. Every concern (rename,
// rename_all, bound, tag, content, skip, default, alias, identifier role,
// borrow, optimize_option) is resolved on its own, a concern configured twice
// is reported at its second occurrence, and all defects come back together
// as errors.ConfigErrors.
//
// # Declarations
//
// Three front ends produce declarations:
//
//   - FromType reads `raw` struct tags from Go types.
//   - LoadYAML reads declaration files.
//   - FromWIT converts WIT type definitions.
//
// # Attributes
//
// Container: rename, rename_all, rename_all_fields, bound, default, tag,
// content, untagged, deny_unknown_fields, optimize_option, field_identifier,
// variant_identifier.
//
// Variant: rename, alias, rename_all, bound, skip, skip_serializing,
// skip_deserializing, other, borrow.
//
// Field: rename, alias, bound, default, skip, skip_serializing,
// skip_deserializing, skip_hash, borrow.
//
// rename, rename_all and bound take either one value for both directions or
// separate serialize and deserialize values. An explicit rename always wins
// over a rename_all rule.
//
// # Bundles
//
// Resolved plans can be stored with MarshalBundle and loaded with
// UnmarshalBundle. CheckCompatible compares two versions of a plan against
// the additive evolution rule.
package schema
