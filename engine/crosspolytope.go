package engine

import (
	"math"
	"math/rand/v2"
	"sort"
)

// crossPolytopeHasher implements cross-polytope LSH. Each hash function
// applies a configurable number of pseudo-rotations (a random sign diagonal
// followed by a fast Walsh-Hadamard transform on a power-of-two dimension)
// and hashes to the closest cross-polytope vertex: the coordinate of
// maximum magnitude together with its sign. The last hash function may use
// a smaller polytope (LastCPDimension) to hit the configured key width.
type crossPolytopeHasher struct {
	dim int
	fns []cpFunc
}

type cpFunc struct {
	rotDim int
	bits   uint
	shift  uint
	signs  [][]float64
}

func newCrossPolytopeHasher(p Params, table int) *crossPolytopeHasher {
	rng := rand.New(rand.NewPCG(p.Seed, uint64(table)))
	rotDim := rotationDimension(p.Dimension)

	fns := make([]cpFunc, p.HashFunctions)
	var shift uint
	for i := range fns {
		d := rotDim
		if i == len(fns)-1 && p.LastCPDimension > 0 {
			d = p.LastCPDimension
		}
		signs := make([][]float64, p.Rotations)
		for r := range signs {
			row := make([]float64, d)
			for j := range row {
				if rng.Uint64()&1 == 0 {
					row[j] = 1
				} else {
					row[j] = -1
				}
			}
			signs[r] = row
		}
		fns[i] = cpFunc{
			rotDim: d,
			bits:   uint(ilog2(2 * d)),
			shift:  shift,
			signs:  signs,
		}
		shift += fns[i].bits
	}
	return &crossPolytopeHasher{dim: p.Dimension, fns: fns}
}

// rotate applies the function's pseudo-rotations to p and returns the
// rotated vector of length fn.rotDim.
func (fn *cpFunc) rotate(p []float64) []float64 {
	buf := make([]float64, fn.rotDim)
	copy(buf, p[:min(len(p), fn.rotDim)])
	for _, row := range fn.signs {
		for j := range buf {
			buf[j] *= row[j]
		}
		fwht(buf)
	}
	return buf
}

// vertex returns the packed vertex value for a rotated vector:
// coordinate index shifted left once, with the low bit carrying the sign.
func vertex(rotated []float64) uint64 {
	best := 0
	bestAbs := math.Abs(rotated[0])
	for i := 1; i < len(rotated); i++ {
		if a := math.Abs(rotated[i]); a > bestAbs {
			best, bestAbs = i, a
		}
	}
	v := uint64(best) << 1
	if rotated[best] < 0 {
		v |= 1
	}
	return v
}

func (h *crossPolytopeHasher) hashPoint(p []float64) uint64 {
	var key uint64
	for i := range h.fns {
		fn := &h.fns[i]
		key |= vertex(fn.rotate(p)) << fn.shift
	}
	return key
}

// probes ranks, per hash function, the alternative polytope vertices by how
// much worse they fit the rotated query than the chosen one, then combines
// substitutions across functions (at most one per function).
func (h *crossPolytopeHasher) probes(q []float64, max int) []probe {
	var base uint64
	var perts []perturbation
	for i := range h.fns {
		fn := &h.fns[i]
		rotated := fn.rotate(q)
		baseVal := vertex(rotated)
		base |= baseVal << fn.shift

		bestScore := math.Abs(rotated[baseVal>>1])
		alts := make([]perturbation, 0, 2*fn.rotDim-1)
		for j, x := range rotated {
			for sign := 0; sign < 2; sign++ {
				val := uint64(j)<<1 | uint64(sign)
				if val == baseVal {
					continue
				}
				score := x
				if sign == 1 {
					score = -x
				}
				alts = append(alts, perturbation{
					mask: (baseVal ^ val) << fn.shift,
					cost: bestScore - score,
					slot: i,
				})
			}
		}
		sort.Slice(alts, func(a, b int) bool { return alts[a].cost < alts[b].cost })
		if len(alts) > max {
			alts = alts[:max]
		}
		perts = append(perts, alts...)
	}
	return expandProbes(base, perts, max)
}

// fwht performs an in-place fast Walsh-Hadamard transform.
// len(v) must be a power of two.
func fwht(v []float64) {
	for h := 1; h < len(v); h <<= 1 {
		for i := 0; i < len(v); i += h << 1 {
			for j := i; j < i+h; j++ {
				x, y := v[j], v[j+h]
				v[j], v[j+h] = x+y, x-y
			}
		}
	}
}
