package engine

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// hyperplaneHasher implements random-hyperplane LSH: each of k hash
// functions is a Gaussian hyperplane through the origin, and each function
// contributes the sign bit of the projection onto it. The packed key is k
// bits wide.
type hyperplaneHasher struct {
	dim    int
	planes [][]float64
}

func newHyperplaneHasher(p Params, table int) *hyperplaneHasher {
	rng := rand.New(rand.NewPCG(p.Seed, uint64(table)))
	planes := make([][]float64, p.HashFunctions)
	for i := range planes {
		plane := make([]float64, p.Dimension)
		for j := range plane {
			plane[j] = rng.NormFloat64()
		}
		planes[i] = plane
	}
	return &hyperplaneHasher{dim: p.Dimension, planes: planes}
}

func (h *hyperplaneHasher) hashPoint(p []float64) uint64 {
	var key uint64
	for i, plane := range h.planes {
		if floats.Dot(plane, p) >= 0 {
			key |= 1 << uint(i)
		}
	}
	return key
}

// probes ranks bit flips by the query's margin to each hyperplane: the
// closer the query lies to a boundary, the cheaper it is to probe the
// bucket on the other side of it.
func (h *hyperplaneHasher) probes(q []float64, max int) []probe {
	var base uint64
	perts := make([]perturbation, len(h.planes))
	for i, plane := range h.planes {
		proj := floats.Dot(plane, q)
		if proj >= 0 {
			base |= 1 << uint(i)
		}
		perts[i] = perturbation{
			mask: 1 << uint(i),
			cost: math.Abs(proj),
			slot: i,
		}
	}
	return expandProbes(base, perts, max)
}
