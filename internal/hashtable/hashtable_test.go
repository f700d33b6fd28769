package hashtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKinds = map[string]Kind{
	"flat":           Flat,
	"bit_packed":     BitPackedFlat,
	"stl":            STL,
	"linear_probing": LinearProbing,
}

func TestStoreRoundtrip(t *testing.T) {
	for name, kind := range allKinds {
		t.Run(name, func(t *testing.T) {
			s := New(kind, 8)
			s.Add(42, 0)
			s.Add(7, 1)
			s.Add(42, 2)
			s.Add(0, 3)
			s.Add(42, 4)
			s.Finalize()

			assert.ElementsMatch(t, []int32{0, 2, 4}, s.Get(42))
			assert.ElementsMatch(t, []int32{1}, s.Get(7))
			assert.ElementsMatch(t, []int32{3}, s.Get(0))
		})
	}
}

func TestStoreMissingKey(t *testing.T) {
	for name, kind := range allKinds {
		t.Run(name, func(t *testing.T) {
			s := New(kind, 4)
			s.Add(1, 0)
			s.Add(2, 1)
			s.Finalize()

			assert.Empty(t, s.Get(999))
			assert.Empty(t, s.Get(0))
		})
	}
}

func TestStoreEmpty(t *testing.T) {
	for name, kind := range allKinds {
		t.Run(name, func(t *testing.T) {
			s := New(kind, 0)
			s.Finalize()
			assert.Empty(t, s.Get(0))
		})
	}
}

// Large keys exercise the full 64-bit key space in every strategy,
// including the splitmix64 slot placement.
func TestStoreLargeKeys(t *testing.T) {
	keys := []uint64{0, 1, 1 << 32, 1<<64 - 1, 0xdeadbeefcafebabe}
	for name, kind := range allKinds {
		t.Run(name, func(t *testing.T) {
			s := New(kind, len(keys))
			for i, k := range keys {
				s.Add(k, int32(i))
			}
			s.Finalize()
			for i, k := range keys {
				require.Equal(t, []int32{int32(i)}, s.Get(k))
			}
		})
	}
}

// A point count of 1000 gives 10-bit packed ids, so consecutive ids
// straddle 64-bit word boundaries. Every id must unpack intact.
func TestBitPackedWordBoundaries(t *testing.T) {
	const n = 1000
	s := New(BitPackedFlat, n)
	for i := int32(0); i < n; i++ {
		s.Add(uint64(i)%13, i)
	}
	s.Finalize()

	seen := 0
	for key := uint64(0); key < 13; key++ {
		for _, id := range s.Get(key) {
			require.Equal(t, uint64(id)%13, key)
			seen++
		}
	}
	assert.Equal(t, n, seen)
}

func TestBitPackedMaxID(t *testing.T) {
	// idBits(n) must be wide enough for the largest id, n-1.
	const n = 1 << 10
	s := New(BitPackedFlat, n)
	s.Add(5, n-1)
	s.Finalize()
	assert.Equal(t, []int32{n - 1}, s.Get(5))
}

func TestIDBits(t *testing.T) {
	tests := []struct {
		numPoints int
		want      uint
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{1024, 10},
		{1025, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, idBits(tt.numPoints), "numPoints=%d", tt.numPoints)
	}
}

func TestFlatGroupsDuplicateKeys(t *testing.T) {
	s := New(Flat, 6).(*flatStore)
	s.Add(9, 5)
	s.Add(3, 0)
	s.Add(9, 1)
	s.Add(3, 2)
	s.Finalize()

	// Keys are sorted and each appears once in the key array.
	require.Equal(t, []uint64{3, 9}, s.keys)
	assert.ElementsMatch(t, []int32{0, 2}, s.Get(3))
	assert.ElementsMatch(t, []int32{5, 1}, s.Get(9))
}
