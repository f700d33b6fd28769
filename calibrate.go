package lshnn

import (
	"time"

	"github.com/probelab/lshnn/engine"
)

// UnlimitedIterations removes the iteration budget from TuneNumProbes.
const UnlimitedIterations = -1

// TuneOptions contains options for TuneNumProbes.
type TuneOptions struct {
	// InitialProbes is the probe count the exponential phase starts from.
	// Default: 1.
	InitialProbes int

	// MaxIterations bounds the number of precision evaluations in the
	// exponential phase. Default: UnlimitedIterations.
	MaxIterations int
}

// TuneNumProbes finds the smallest probe count whose measured precision on
// the validation set reaches targetPrecision.
//
// Precision is the fraction of validation queries whose known correct
// answer (1-based, in answers) appears in the raw candidate set - a
// recall-style metric. It is assumed to be monotonically non-decreasing in
// the probe count; the search exploits this but does not verify it.
//
// Calibration is a measurement, not a configuration change: the index's
// probe count is restored on every exit path, and the caller must apply the
// returned value via SetNumProbes for it to take effect. Because the probe
// count is mutated and restored around every evaluation, TuneNumProbes must
// not run concurrently with other traffic against the same Index.
func (ix *Index) TuneNumProbes(queries *engine.PointSet, answers []int, targetPrecision float64, optFns ...func(o *TuneOptions)) (int, error) {
	start := time.Now()
	opts := TuneOptions{
		InitialProbes: 1,
		MaxIterations: UnlimitedIterations,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	probes, evaluations, err := ix.tune(queries, answers, targetPrecision, opts)
	ix.metrics.RecordCalibration(evaluations, time.Since(start), err)
	ix.logger.LogCalibration(targetPrecision, probes, evaluations, err)
	return probes, err
}

func (ix *Index) tune(queries *engine.PointSet, answers []int, targetPrecision float64, opts TuneOptions) (int, int, error) {
	if queries == nil || queries.Len() == 0 {
		return 0, 0, ErrEmptyValidationSet
	}
	if len(answers) != queries.Len() {
		return 0, 0, &ErrInvalidArgument{Op: "TuneNumProbes", Value: len(answers),
			Constraint: "answers must have one entry per validation query"}
	}
	if queries.Dimension() != ix.params.Dimension {
		return 0, 0, &ErrDimensionMismatch{Expected: ix.params.Dimension, Actual: queries.Dimension()}
	}
	if targetPrecision < 0 || targetPrecision > 1 {
		return 0, 0, &ErrInvalidArgument{Op: "TuneNumProbes", Value: targetPrecision,
			Constraint: "target precision must be in [0, 1]"}
	}
	if opts.InitialProbes < 1 {
		return 0, 0, &ErrInvalidArgument{Op: "TuneNumProbes", Value: opts.InitialProbes,
			Constraint: "initial probe count must be a positive integer"}
	}

	original := ix.table.NumProbes()
	defer ix.table.SetNumProbes(original)

	evaluations := 0
	eval := func(numProbes int) float64 {
		evaluations++
		return ix.probePrecision(queries, answers, numProbes)
	}

	probes, err := searchMinProbes(eval, targetPrecision, opts.InitialProbes, opts.MaxIterations)
	return probes, evaluations, err
}

// ProbePrecision measures the search precision the index achieves on a
// labeled validation set at the given probe count. The probe count in
// effect before the call is restored before returning.
func (ix *Index) ProbePrecision(queries *engine.PointSet, answers []int, numProbes int) (float64, error) {
	if queries == nil || queries.Len() == 0 {
		return 0, ErrEmptyValidationSet
	}
	if len(answers) != queries.Len() {
		return 0, &ErrInvalidArgument{Op: "ProbePrecision", Value: len(answers),
			Constraint: "answers must have one entry per validation query"}
	}
	if queries.Dimension() != ix.params.Dimension {
		return 0, &ErrDimensionMismatch{Expected: ix.params.Dimension, Actual: queries.Dimension()}
	}
	if numProbes < 1 {
		return 0, &ErrInvalidArgument{Op: "ProbePrecision", Value: numProbes,
			Constraint: "probe count must be a positive integer"}
	}

	original := ix.table.NumProbes()
	defer ix.table.SetNumProbes(original)

	return ix.probePrecision(queries, answers, numProbes), nil
}

// probePrecision evaluates precision at numProbes. Callers are responsible
// for restoring the probe count.
func (ix *Index) probePrecision(queries *engine.PointSet, answers []int, numProbes int) float64 {
	ix.table.SetNumProbes(numProbes)

	matches := 0
	for i := 0; i < queries.Len(); i++ {
		want := int32(answers[i] - 1)
		for _, candidate := range ix.table.CandidatesWithDuplicates(queries.Point(i)) {
			if candidate == want {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(queries.Len())
}

// searchMinProbes is the two-phase integer search at the heart of
// calibration: double the probe count until the evaluated precision meets
// the target (or the iteration budget runs out), then binary-search the
// bracketing interval down to the smallest passing value. eval is assumed
// monotonically non-decreasing.
//
// Kept free of Index state so it can be exercised against an arbitrary
// evaluator.
func searchMinProbes(eval func(numProbes int) float64, target float64, initialProbes, maxIterations int) (int, error) {
	probes := initialProbes
	best := 0.0

	iter := maxIterations
	for ; iter != 0; iter-- {
		precision := eval(probes)
		if precision > best {
			best = precision
		}
		if precision >= target {
			break
		}
		probes *= 2
	}
	if iter == 0 {
		return 0, &ErrCalibrationDidNotConverge{
			Iterations:    maxIterations,
			Target:        target,
			BestPrecision: best,
		}
	}

	// Bisect (probes/2, probes]: probes passes, everything at or below
	// probes/2 failed during the doubling phase (or was never probed,
	// when the initial count passed outright).
	for lo := probes / 2; probes-lo > 1; {
		mid := (probes + lo) / 2
		if eval(mid) >= target {
			probes = mid
		} else {
			lo = mid
		}
	}

	return probes, nil
}
