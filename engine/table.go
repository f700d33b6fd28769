package engine

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/probelab/lshnn/internal/hashtable"
)

// lshTable is a constructed multi-probe LSH structure: one hasher plus one
// bucket store per hash table, sharing a single point set.
type lshTable struct {
	ps      *PointSet
	params  Params
	hashers []hasher
	stores  []hashtable.Store
	dist    distanceFunc

	numProbes     int
	maxCandidates int
}

var _ Table = (*lshTable)(nil)

func (t *lshTable) SetNumProbes(n int) { t.numProbes = n }
func (t *lshTable) NumProbes() int     { return t.numProbes }

func (t *lshTable) SetMaxCandidates(n int) { t.maxCandidates = n }
func (t *lshTable) MaxCandidates() int     { return t.maxCandidates }

// CandidatesWithDuplicates merges the per-table probing sequences by score
// and fetches buckets until the probe budget (and, if set, the candidate
// cap) is exhausted. Base buckets score 0, so the first l probes are the
// query's own bucket in each table.
func (t *lshTable) CandidatesWithDuplicates(q []float64) []int32 {
	type scoredProbe struct {
		table int
		probe
	}

	budget := t.numProbes
	if budget < 1 {
		budget = 1
	}
	all := make([]scoredProbe, 0, len(t.hashers))
	for ti, h := range t.hashers {
		for _, pr := range h.probes(q, budget) {
			all = append(all, scoredProbe{table: ti, probe: pr})
		}
	}
	// Stable sort keeps ties (all base buckets) in table order.
	sort.SliceStable(all, func(i, j int) bool { return all[i].score < all[j].score })
	if len(all) > budget {
		all = all[:budget]
	}

	var out []int32
	for _, sp := range all {
		for _, id := range t.stores[sp.table].Get(sp.key) {
			out = append(out, id)
			if t.maxCandidates != NoMaxCandidates && len(out) >= t.maxCandidates {
				return out
			}
		}
	}
	return out
}

// UniqueCandidates deduplicates the probing-sequence result, preserving
// first-seen order.
func (t *lshTable) UniqueCandidates(q []float64) []int32 {
	raw := t.CandidatesWithDuplicates(q)
	seen := roaring.New()
	out := make([]int32, 0, len(raw))
	for _, id := range raw {
		if seen.CheckedAdd(uint32(id)) {
			out = append(out, id)
		}
	}
	return out
}

func (t *lshTable) NearestNeighbor(q []float64) int32 {
	best := int32(-1)
	var bestDist float64
	for _, id := range t.UniqueCandidates(q) {
		d := t.dist(q, t.ps.Point(int(id)))
		if best < 0 || d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}
	return best
}

func (t *lshTable) KNearestNeighbors(q []float64, k int) []int32 {
	ids := t.UniqueCandidates(q)
	type ranked struct {
		id   int32
		dist float64
	}
	rs := make([]ranked, len(ids))
	for i, id := range ids {
		rs[i] = ranked{id: id, dist: t.dist(q, t.ps.Point(int(id)))}
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].dist != rs[j].dist {
			return rs[i].dist < rs[j].dist
		}
		return rs[i].id < rs[j].id
	})
	if len(rs) > k {
		rs = rs[:k]
	}
	out := make([]int32, len(rs))
	for i, r := range rs {
		out[i] = r.id
	}
	return out
}

func (t *lshTable) NearNeighbors(q []float64, radius float64) []int32 {
	var out []int32
	for _, id := range t.UniqueCandidates(q) {
		if t.dist(q, t.ps.Point(int(id))) <= radius {
			out = append(out, id)
		}
	}
	return out
}
