package codec

import (
	"bytes"
	"reflect"
	"slices"

	"github.com/wippyai/rawcodec/codec/internal/types"
	"github.com/wippyai/rawcodec/errors"
	"github.com/wippyai/rawcodec/internal/wire"
)

type mapEntry struct {
	value      reflect.Value
	key        []byte
	start, end int
}

// encodeMap writes the entry count followed by the entries in ascending
// order of their encoded keys, so equal maps always encode identically.
func (p pass) encodeMap(ct *types.CompiledType, v reflect.Value, buf []byte) ([]byte, error) {
	buf, err := wire.PutUvarint(buf, uint64(v.Len()))
	if err != nil {
		return buf, errors.FromWire(errors.PhaseEncode, nil, err)
	}
	if v.Len() == 0 {
		return buf, nil
	}

	s := getMapScratch()
	defer putMapScratch(s)

	total := 0
	iter := v.MapRange()
	for iter.Next() {
		k := addressable(iter.Key())
		n, err := p.measure(ct.Key, k)
		if err != nil {
			return buf, errors.At(err, "[key]")
		}
		start := total
		if total, err = addSize(total, n); err != nil {
			return buf, err
		}
		s.arena = slices.Grow(s.arena[:start], n)[:total]
		rest, err := p.encode(ct.Key, k, s.arena[start:total])
		if err != nil {
			return buf, errors.At(err, "[key]")
		}
		if len(rest) != 0 {
			panic(errors.SizeMismatch("map key encode", n, n-len(rest)))
		}
		s.entries = append(s.entries, mapEntry{value: addressable(iter.Value()), start: start, end: total})
	}

	// slice the keys only now that the arena has stopped moving
	for i := range s.entries {
		e := &s.entries[i]
		e.key = s.arena[e.start:e.end:e.end]
	}

	slices.SortFunc(s.entries, func(a, b mapEntry) int {
		return bytes.Compare(a.key, b.key)
	})
	for _, e := range s.entries {
		if buf, err = wire.Raw(buf, e.key); err != nil {
			return buf, errors.FromWire(errors.PhaseEncode, []string{"[key]"}, err)
		}
		if buf, err = p.encode(ct.Elem, e.value, buf); err != nil {
			return buf, errors.At(err, "[value]")
		}
	}
	return buf, nil
}
