// Package layout computes static size facts about compiled types.
//
// Size reports the encoded size of types whose encoding never depends on
// the value: primitives, fixed arrays and structs made only of those. The
// codec uses it to measure such values without walking them and to size
// lists of them with one multiplication.
//
// Min gives a lower bound used when decoding element counts, so a short
// input claiming millions of elements fails before anything is allocated.
//
// This package is internal to the codec.
package layout
