package engine

import (
	"container/heap"
	"sort"
)

// hasher produces bucket keys and multi-probe sequences for one hash table.
type hasher interface {
	// hashPoint returns the packed bucket key for a point.
	hashPoint(p []float64) uint64

	// probes returns up to max probes for a query, ordered by ascending
	// score. The first probe is always the query's own bucket at score 0.
	probes(q []float64, max int) []probe
}

// probe is one bucket to examine: a key plus the perturbation score that
// ranks it within the probing sequence (0 = the query's own bucket).
type probe struct {
	key   uint64
	score float64
}

// perturbation is a candidate change to a base key: XOR-ing mask into the
// key moves the probe to a neighboring bucket at the given cost. slot
// groups mutually exclusive perturbations: at most one perturbation per
// slot may be applied to a single probe.
type perturbation struct {
	mask uint64
	cost float64
	slot int
}

// probeState is a partial perturbation set tracked during expansion.
type probeState struct {
	key   uint64
	cost  float64
	last  int    // index of the largest applied perturbation
	slots uint64 // bitmask of occupied slots
}

// probeHeap is a min-heap of probeStates ordered by cost.
type probeHeap []probeState

func (h probeHeap) Len() int           { return len(h) }
func (h probeHeap) Less(i, j int) bool { return h[i].cost < h[j].cost }
func (h probeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *probeHeap) Push(x any)        { *h = append(*h, x.(probeState)) }
func (h *probeHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	*h = old[:n-1]
	return s
}

// expandProbes enumerates up to max probes in nondecreasing cost order:
// the base bucket first, then perturbation sets combined one element at a
// time using the extend/shift successor rule, skipping sets that would
// apply two perturbations to the same slot. perts must be sorted by
// ascending cost; expandProbes sorts defensively only when needed.
func expandProbes(base uint64, perts []perturbation, max int) []probe {
	out := make([]probe, 0, max)
	out = append(out, probe{key: base, score: 0})
	if max <= 1 || len(perts) == 0 {
		return out
	}
	if !sort.SliceIsSorted(perts, func(i, j int) bool { return perts[i].cost < perts[j].cost }) {
		sort.SliceStable(perts, func(i, j int) bool { return perts[i].cost < perts[j].cost })
	}

	h := &probeHeap{{
		key:   base ^ perts[0].mask,
		cost:  perts[0].cost,
		last:  0,
		slots: 1 << uint(perts[0].slot),
	}}
	heap.Init(h)

	for h.Len() > 0 && len(out) < max {
		s := heap.Pop(h).(probeState)
		out = append(out, probe{key: s.key, score: s.cost})

		if j := nextAllowed(perts, s.last+1, s.slots); j >= 0 {
			heap.Push(h, probeState{
				key:   s.key ^ perts[j].mask,
				cost:  s.cost + perts[j].cost,
				last:  j,
				slots: s.slots | 1<<uint(perts[j].slot),
			})
		}
		rem := s.slots &^ (1 << uint(perts[s.last].slot))
		if j := nextAllowed(perts, s.last+1, rem); j >= 0 {
			heap.Push(h, probeState{
				key:   s.key ^ perts[s.last].mask ^ perts[j].mask,
				cost:  s.cost - perts[s.last].cost + perts[j].cost,
				last:  j,
				slots: rem | 1<<uint(perts[j].slot),
			})
		}
	}
	return out
}

// nextAllowed returns the first perturbation index >= start whose slot is
// not already occupied, or -1 if none remains.
func nextAllowed(perts []perturbation, start int, slots uint64) int {
	for j := start; j < len(perts); j++ {
		if slots&(1<<uint(perts[j].slot)) == 0 {
			return j
		}
	}
	return -1
}
