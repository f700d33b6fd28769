package lshnn

import (
	"time"

	"github.com/probelab/lshnn/engine"
)

// NoMaxCandidates disables the per-query candidate cap.
const NoMaxCandidates = engine.NoMaxCandidates

// Index owns a constructed LSH table structure together with the point set
// it indexes, and answers nearest-neighbor queries against it.
//
// An Index is immutable with respect to its point set: a changed dataset
// requires constructing a new Index. Two runtime knobs, the probe count and
// the candidate cap, are mutable after construction without rebuilding.
//
// Point indices on this surface are 1-based, referencing columns of the
// point set the index was built from. Internally the engine is 0-based;
// the translation happens exactly here.
//
// Concurrent read-only queries are safe for a fixed knob setting.
// SetNumProbes, SetMaxCandidates and TuneNumProbes mutate shared state and
// must not run concurrently with other traffic against the same Index.
type Index struct {
	table   engine.Table
	params  engine.Params
	points  int
	logger  *Logger
	metrics MetricsCollector
}

// NewIndex constructs the search structure for the given point set. This is
// the one-time, expensive step; the returned Index answers queries cheaply
// and repeatably.
//
// The point set's dimension must equal the configured dimension. The Index
// retains ps for its lifetime.
func NewIndex(ps *engine.PointSet, params engine.Params, optFns ...Option) (*Index, error) {
	opts := applyOptions(optFns)

	if ps == nil {
		return nil, &ErrInvalidArgument{Op: "NewIndex", Value: nil, Constraint: "point set must not be nil"}
	}
	if ps.Dimension() != params.Dimension {
		return nil, &ErrDimensionMismatch{Expected: params.Dimension, Actual: ps.Dimension()}
	}

	start := time.Now()
	table, err := engine.Construct(ps, params)
	duration := time.Since(start)
	if err != nil {
		err = translateError(err)
		opts.metricsCollector.RecordBuild(duration, err)
		opts.logger.LogBuild(ps.Len(), params.Dimension, params.HashTables, err)
		return nil, err
	}

	ix := &Index{
		table:   table,
		params:  params,
		points:  ps.Len(),
		logger:  opts.logger,
		metrics: opts.metricsCollector,
	}
	ix.metrics.RecordBuild(duration, nil)
	ix.logger.LogBuild(ps.Len(), params.Dimension, params.HashTables, nil)
	return ix, nil
}

// Dimension returns the dimensionality of the indexed points.
func (ix *Index) Dimension() int { return ix.params.Dimension }

// Size returns the number of indexed points.
func (ix *Index) Size() int { return ix.points }

// Params returns the configuration snapshot the index was built from.
func (ix *Index) Params() engine.Params { return ix.params }

func (ix *Index) checkQuery(q []float64) error {
	if len(q) != ix.params.Dimension {
		return &ErrDimensionMismatch{Expected: ix.params.Dimension, Actual: len(q)}
	}
	return nil
}

// FindNearest returns the index of the point nearest to q under the
// configured metric. The search is approximate: the result is the best
// candidate produced by the current probe configuration, and ErrNotFound
// is returned when that candidate set is empty.
func (ix *Index) FindNearest(q []float64) (int, error) {
	start := time.Now()
	if err := ix.checkQuery(q); err != nil {
		ix.recordQuery("FindNearest", start, 0, err)
		return 0, err
	}
	i := ix.table.NearestNeighbor(q)
	if i < 0 {
		ix.recordQuery("FindNearest", start, 0, ErrNotFound)
		return 0, ErrNotFound
	}
	ix.recordQuery("FindNearest", start, 1, nil)
	return int(i) + 1, nil
}

// FindKNearest returns up to k point indices ordered by increasing distance
// to q. k must be positive and at most Size. Fewer than k results is not an
// error: it means the probing sequence produced fewer distinct candidates.
func (ix *Index) FindKNearest(q []float64, k int) ([]int, error) {
	start := time.Now()
	if err := ix.checkQuery(q); err != nil {
		ix.recordQuery("FindKNearest", start, 0, err)
		return nil, err
	}
	if k < 1 || k > ix.points {
		err := &ErrInvalidArgument{Op: "FindKNearest", Value: k,
			Constraint: "k must be a positive integer not exceeding the point count"}
		ix.recordQuery("FindKNearest", start, 0, err)
		return nil, err
	}
	out := toCallerIndices(ix.table.KNearestNeighbors(q, k))
	ix.recordQuery("FindKNearest", start, len(out), nil)
	return out, nil
}

// FindWithinRadius returns all points within radius of q in the metric's
// native units (squared distance for the squared-Euclidean metric).
// The result contains no duplicates; its order is unspecified.
func (ix *Index) FindWithinRadius(q []float64, radius float64) ([]int, error) {
	start := time.Now()
	if err := ix.checkQuery(q); err != nil {
		ix.recordQuery("FindWithinRadius", start, 0, err)
		return nil, err
	}
	if radius < 0 {
		err := &ErrInvalidArgument{Op: "FindWithinRadius", Value: radius,
			Constraint: "radius must be non-negative"}
		ix.recordQuery("FindWithinRadius", start, 0, err)
		return nil, err
	}
	out := toCallerIndices(ix.table.NearNeighbors(q, radius))
	ix.recordQuery("FindWithinRadius", start, len(out), nil)
	return out, nil
}

// Candidates returns the raw probing-sequence result for q, before any
// distance ranking. A point colliding with the query in several hash tables
// appears once per collision; use UniqueCandidates for the deduplicated
// set. This is the low-level access the probe calibrator builds on.
func (ix *Index) Candidates(q []float64) ([]int, error) {
	start := time.Now()
	if err := ix.checkQuery(q); err != nil {
		ix.recordQuery("Candidates", start, 0, err)
		return nil, err
	}
	out := toCallerIndices(ix.table.CandidatesWithDuplicates(q))
	ix.recordQuery("Candidates", start, len(out), nil)
	return out, nil
}

// UniqueCandidates returns the probing-sequence result for q with
// duplicates removed, in first-seen order.
func (ix *Index) UniqueCandidates(q []float64) ([]int, error) {
	start := time.Now()
	if err := ix.checkQuery(q); err != nil {
		ix.recordQuery("UniqueCandidates", start, 0, err)
		return nil, err
	}
	out := toCallerIndices(ix.table.UniqueCandidates(q))
	ix.recordQuery("UniqueCandidates", start, len(out), nil)
	return out, nil
}

// SetNumProbes sets the total number of buckets probed per query in
// multi-probe LSH. Cheap; can be changed repeatedly without rebuilding.
func (ix *Index) SetNumProbes(n int) error {
	if n < 1 {
		return &ErrInvalidArgument{Op: "SetNumProbes", Value: n,
			Constraint: "probe count must be a positive integer"}
	}
	ix.table.SetNumProbes(n)
	return nil
}

// NumProbes returns the current multi-probe count.
func (ix *Index) NumProbes() int { return ix.table.NumProbes() }

// SetMaxCandidates caps the number of candidates considered per query,
// bounding the worst-case query cost. Pass NoMaxCandidates to remove the
// cap.
func (ix *Index) SetMaxCandidates(n int) error {
	if n != NoMaxCandidates && n < 1 {
		return &ErrInvalidArgument{Op: "SetMaxCandidates", Value: n,
			Constraint: "cap must be a positive integer or NoMaxCandidates"}
	}
	ix.table.SetMaxCandidates(n)
	return nil
}

// MaxCandidates returns the current candidate cap, or NoMaxCandidates.
func (ix *Index) MaxCandidates() int { return ix.table.MaxCandidates() }

func (ix *Index) recordQuery(op string, start time.Time, results int, err error) {
	ix.metrics.RecordQuery(op, time.Since(start), err)
	ix.logger.LogQuery(op, results, err)
}

// toCallerIndices converts the engine's 0-based indices to the 1-based
// caller-facing form.
func toCallerIndices(ids []int32) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id) + 1
	}
	return out
}
