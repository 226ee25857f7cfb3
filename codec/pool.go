package codec

import "sync"

const (
	// Pool limits to prevent memory bloat
	poolMaxEntries  = 1024 // max map entries kept in a pooled slice
	poolMaxArena    = 64 << 10
	poolInitEntries = 16
)

// mapScratch holds the encoded keys of one map while its entries are sorted.
type mapScratch struct {
	entries []mapEntry
	arena   []byte
}

var mapScratchPool = sync.Pool{
	New: func() any {
		return &mapScratch{entries: make([]mapEntry, 0, poolInitEntries)}
	},
}

func getMapScratch() *mapScratch {
	return mapScratchPool.Get().(*mapScratch)
}

func putMapScratch(s *mapScratch) {
	if s == nil || cap(s.entries) > poolMaxEntries || cap(s.arena) > poolMaxArena {
		return // reject oversized
	}
	clear(s.entries)
	s.entries = s.entries[:0]
	s.arena = s.arena[:0]
	mapScratchPool.Put(s)
}
