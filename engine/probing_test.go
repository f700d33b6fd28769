package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandProbesBaseFirst(t *testing.T) {
	perts := []perturbation{
		{mask: 1, cost: 0.5, slot: 0},
		{mask: 2, cost: 1.0, slot: 1},
	}
	probes := expandProbes(0b100, perts, 10)

	require.NotEmpty(t, probes)
	assert.Equal(t, uint64(0b100), probes[0].key)
	assert.Equal(t, 0.0, probes[0].score)
}

func TestExpandProbesEnumeratesAllSubsets(t *testing.T) {
	// Three perturbations on distinct slots: every subset of them is a
	// valid probe, eight in total.
	perts := []perturbation{
		{mask: 1, cost: 0.25, slot: 0},
		{mask: 2, cost: 0.5, slot: 1},
		{mask: 4, cost: 1.0, slot: 2},
	}
	probes := expandProbes(0, perts, 100)

	require.Len(t, probes, 8)
	keys := make(map[uint64]float64, len(probes))
	for _, pr := range probes {
		_, dup := keys[pr.key]
		require.False(t, dup, "key %b emitted twice", pr.key)
		keys[pr.key] = pr.score
	}
	assert.Equal(t, 0.0, keys[0])
	assert.Equal(t, 0.25, keys[1])
	assert.Equal(t, 0.5, keys[2])
	assert.Equal(t, 0.75, keys[3])
	assert.Equal(t, 1.0, keys[4])
	assert.Equal(t, 1.25, keys[5])
	assert.Equal(t, 1.5, keys[6])
	assert.Equal(t, 1.75, keys[7])
}

func TestExpandProbesNondecreasingCost(t *testing.T) {
	perts := []perturbation{
		{mask: 1, cost: 0.3, slot: 0},
		{mask: 2, cost: 0.4, slot: 1},
		{mask: 4, cost: 0.7, slot: 2},
		{mask: 8, cost: 1.1, slot: 3},
	}
	probes := expandProbes(0, perts, 16)

	require.Len(t, probes, 16)
	for i := 1; i < len(probes); i++ {
		assert.LessOrEqual(t, probes[i-1].score, probes[i].score)
	}
}

func TestExpandProbesSlotExclusive(t *testing.T) {
	// Two alternatives for the same slot must never combine: with a
	// single slot there are only three probes (base plus one per
	// alternative), never base^1^2.
	perts := []perturbation{
		{mask: 1, cost: 0.5, slot: 0},
		{mask: 2, cost: 0.6, slot: 0},
	}
	probes := expandProbes(0, perts, 10)

	require.Len(t, probes, 3)
	assert.Equal(t, uint64(0), probes[0].key)
	assert.Equal(t, uint64(1), probes[1].key)
	assert.Equal(t, uint64(2), probes[2].key)
}

func TestExpandProbesRespectsMax(t *testing.T) {
	perts := []perturbation{
		{mask: 1, cost: 0.1, slot: 0},
		{mask: 2, cost: 0.2, slot: 1},
		{mask: 4, cost: 0.3, slot: 2},
	}
	probes := expandProbes(0, perts, 3)
	require.Len(t, probes, 3)
	// The cheapest three: base, {1}, {2}.
	assert.Equal(t, uint64(0), probes[0].key)
	assert.Equal(t, uint64(1), probes[1].key)
	assert.Equal(t, uint64(2), probes[2].key)
}

func TestExpandProbesUnsortedInput(t *testing.T) {
	perts := []perturbation{
		{mask: 2, cost: 0.9, slot: 1},
		{mask: 1, cost: 0.1, slot: 0},
	}
	probes := expandProbes(0, perts, 4)

	require.Len(t, probes, 4)
	assert.Equal(t, uint64(1), probes[1].key)
	assert.Equal(t, uint64(2), probes[2].key)
	assert.Equal(t, uint64(3), probes[3].key)
}

func TestExpandProbesNoPerturbations(t *testing.T) {
	probes := expandProbes(7, nil, 5)
	require.Len(t, probes, 1)
	assert.Equal(t, uint64(7), probes[0].key)
}

func TestNextAllowed(t *testing.T) {
	perts := []perturbation{
		{slot: 0}, {slot: 1}, {slot: 0}, {slot: 2},
	}
	assert.Equal(t, 0, nextAllowed(perts, 0, 0))
	assert.Equal(t, 1, nextAllowed(perts, 1, 0))
	assert.Equal(t, 3, nextAllowed(perts, 2, 1<<0))
	assert.Equal(t, -1, nextAllowed(perts, 2, 1<<0|1<<2))
	assert.Equal(t, -1, nextAllowed(perts, 4, 0))
}
