// Package hashtable provides the static bucket stores backing LSH tables.
// A store is bulk-loaded once during construction (Add, then a single
// Finalize) and read-only afterwards.
package hashtable

import (
	"math/bits"
	"sort"
)

// Kind selects a bucket storage strategy.
type Kind int

const (
	// Flat stores buckets as a sorted key array with grouped id runs.
	Flat Kind = iota
	// BitPackedFlat is Flat with ids packed to the minimum bit width.
	BitPackedFlat
	// STL uses a plain Go map from key to id slice.
	STL
	// LinearProbing uses an open-addressing table with linear probing.
	LinearProbing
)

// Store is a bucket store mapping hash keys to point ids.
// Add must not be called after Finalize; Get must not be called before.
type Store interface {
	Add(key uint64, id int32)
	Get(key uint64) []int32
	Finalize()
}

// New creates an empty store of the given kind sized for numPoints entries.
func New(kind Kind, numPoints int) Store {
	switch kind {
	case STL:
		return &stlStore{m: make(map[uint64][]int32)}
	case LinearProbing:
		return &linearProbingStore{pairs: make([]entry, 0, numPoints)}
	case BitPackedFlat:
		return &bitPackedFlatStore{
			flatStore: flatStore{pairs: make([]entry, 0, numPoints)},
			idBits:    idBits(numPoints),
		}
	default:
		return &flatStore{pairs: make([]entry, 0, numPoints)}
	}
}

func idBits(numPoints int) uint {
	if numPoints <= 1 {
		return 1
	}
	return uint(bits.Len(uint(numPoints - 1)))
}

type entry struct {
	key uint64
	id  int32
}

// stlStore is the map-backed strategy.
type stlStore struct {
	m map[uint64][]int32
}

func (s *stlStore) Add(key uint64, id int32) { s.m[key] = append(s.m[key], id) }
func (s *stlStore) Get(key uint64) []int32   { return s.m[key] }
func (s *stlStore) Finalize()                {}

// flatStore keeps a sorted array of keys with offsets into a contiguous id
// array, resolved by binary search.
type flatStore struct {
	pairs   []entry
	keys    []uint64
	offsets []int
	ids     []int32
}

func (s *flatStore) Add(key uint64, id int32) {
	s.pairs = append(s.pairs, entry{key: key, id: id})
}

func (s *flatStore) Finalize() {
	sort.SliceStable(s.pairs, func(i, j int) bool { return s.pairs[i].key < s.pairs[j].key })
	s.ids = make([]int32, len(s.pairs))
	for i, e := range s.pairs {
		s.ids[i] = e.id
		if i == 0 || e.key != s.pairs[i-1].key {
			s.keys = append(s.keys, e.key)
			s.offsets = append(s.offsets, i)
		}
	}
	s.offsets = append(s.offsets, len(s.pairs))
	s.pairs = nil
}

// bucket returns the [start, end) id range for key, or (0, 0, false).
func (s *flatStore) bucket(key uint64) (int, int, bool) {
	i := sort.Search(len(s.keys), func(i int) bool { return s.keys[i] >= key })
	if i >= len(s.keys) || s.keys[i] != key {
		return 0, 0, false
	}
	return s.offsets[i], s.offsets[i+1], true
}

func (s *flatStore) Get(key uint64) []int32 {
	start, end, ok := s.bucket(key)
	if !ok {
		return nil
	}
	return s.ids[start:end]
}

// bitPackedFlatStore packs the id array into 64-bit words at the minimum
// bit width for the point count, trading unpack work for memory.
type bitPackedFlatStore struct {
	flatStore
	idBits uint
	packed []uint64
}

func (s *bitPackedFlatStore) Finalize() {
	s.flatStore.Finalize()
	s.packed = make([]uint64, (len(s.ids)*int(s.idBits)+63)/64)
	for i, id := range s.ids {
		s.put(i, uint64(id))
	}
	s.ids = nil
}

func (s *bitPackedFlatStore) put(i int, v uint64) {
	bit := i * int(s.idBits)
	word, off := bit/64, uint(bit%64)
	s.packed[word] |= v << off
	if off+s.idBits > 64 {
		s.packed[word+1] |= v >> (64 - off)
	}
}

func (s *bitPackedFlatStore) at(i int) int32 {
	bit := i * int(s.idBits)
	word, off := bit/64, uint(bit%64)
	v := s.packed[word] >> off
	if off+s.idBits > 64 {
		v |= s.packed[word+1] << (64 - off)
	}
	return int32(v & (1<<s.idBits - 1))
}

func (s *bitPackedFlatStore) Get(key uint64) []int32 {
	start, end, ok := s.bucket(key)
	if !ok {
		return nil
	}
	out := make([]int32, end-start)
	for i := range out {
		out[i] = s.at(start + i)
	}
	return out
}

// linearProbingStore groups pairs into buckets, then places them in an
// open-addressing slot array probed linearly on lookup.
type linearProbingStore struct {
	pairs []entry
	slots []lpSlot
	ids   []int32
	mask  uint64
}

type lpSlot struct {
	key      uint64
	start    int
	end      int
	occupied bool
}

func (s *linearProbingStore) Add(key uint64, id int32) {
	s.pairs = append(s.pairs, entry{key: key, id: id})
}

func (s *linearProbingStore) Finalize() {
	sort.SliceStable(s.pairs, func(i, j int) bool { return s.pairs[i].key < s.pairs[j].key })

	distinct := 0
	for i := range s.pairs {
		if i == 0 || s.pairs[i].key != s.pairs[i-1].key {
			distinct++
		}
	}
	size := 4
	for size < 2*distinct {
		size <<= 1
	}
	s.slots = make([]lpSlot, size)
	s.mask = uint64(size - 1)
	s.ids = make([]int32, len(s.pairs))

	start := 0
	for i := range s.pairs {
		s.ids[i] = s.pairs[i].id
		if i+1 == len(s.pairs) || s.pairs[i+1].key != s.pairs[i].key {
			s.place(s.pairs[i].key, start, i+1)
			start = i + 1
		}
	}
	s.pairs = nil
}

func (s *linearProbingStore) place(key uint64, start, end int) {
	for i := mix(key) & s.mask; ; i = (i + 1) & s.mask {
		if !s.slots[i].occupied {
			s.slots[i] = lpSlot{key: key, start: start, end: end, occupied: true}
			return
		}
	}
}

func (s *linearProbingStore) Get(key uint64) []int32 {
	for i := mix(key) & s.mask; ; i = (i + 1) & s.mask {
		if !s.slots[i].occupied {
			return nil
		}
		if s.slots[i].key == key {
			return s.ids[s.slots[i].start:s.slots[i].end]
		}
	}
}

// mix is the splitmix64 finalizer, spreading clustered bucket keys across
// the slot array.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
