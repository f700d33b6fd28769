package lshnn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/lshnn/engine"
)

// stepEvaluator passes the target exactly at threshold and above.
func stepEvaluator(threshold int) func(int) float64 {
	return func(numProbes int) float64 {
		if numProbes >= threshold {
			return 1
		}
		return 0
	}
}

func TestSearchMinProbes(t *testing.T) {
	tests := []struct {
		name          string
		threshold     int
		initialProbes int
		want          int
	}{
		{name: "immediate pass", threshold: 1, initialProbes: 1, want: 1},
		{name: "power of two", threshold: 8, initialProbes: 1, want: 8},
		{name: "between powers", threshold: 13, initialProbes: 1, want: 13},
		{name: "just above power", threshold: 9, initialProbes: 1, want: 9},
		{name: "just below power", threshold: 15, initialProbes: 1, want: 15},
		{name: "larger start", threshold: 13, initialProbes: 3, want: 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := searchMinProbes(stepEvaluator(tt.threshold), 0.9, tt.initialProbes, UnlimitedIterations)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchMinProbesBudgetExhausted(t *testing.T) {
	evals := 0
	eval := func(numProbes int) float64 {
		evals++
		return 0.4
	}

	_, err := searchMinProbes(eval, 0.9, 1, 3)
	var cc *ErrCalibrationDidNotConverge
	require.ErrorAs(t, err, &cc)
	assert.Equal(t, 3, evals)
	assert.Equal(t, 3, cc.Iterations)
	assert.Equal(t, 0.9, cc.Target)
	assert.Equal(t, 0.4, cc.BestPrecision)
}

func TestSearchMinProbesBudgetSufficient(t *testing.T) {
	// The budget bounds only the doubling phase; bisection runs freely
	// once a passing count is bracketed.
	got, err := searchMinProbes(stepEvaluator(13), 0.9, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 13, got)
}

func TestSearchMinProbesEvaluationCount(t *testing.T) {
	evals := 0
	counted := func(numProbes int) float64 {
		evals++
		return stepEvaluator(13)(numProbes)
	}

	// Doubling probes 1, 2, 4, 8, 16; bisection of (8, 16] probes
	// 12, 14, 13.
	got, err := searchMinProbes(counted, 0.9, 1, UnlimitedIterations)
	require.NoError(t, err)
	assert.Equal(t, 13, got)
	assert.Equal(t, 8, evals)
}

// calibrationIndex is built so that a validation query placed on an indexed
// point always finds its answer in the first probed bucket: precision is 1
// from a single probe on.
func calibrationIndex(t *testing.T) *Index {
	t.Helper()
	b, err := NewParameterBuilder(4, 2)
	require.NoError(t, err)
	params := b.Family("hyperplane").
		Storage("flat_hash_table").
		NumHashFunctions(2).
		NumHashTables(2).
		Snapshot()
	ix, err := NewIndex(unitSquare(t), params)
	require.NoError(t, err)
	return ix
}

func TestTuneNumProbes(t *testing.T) {
	ix := calibrationIndex(t)
	queries := unitSquare(t)
	answers := []int{1, 2, 3, 4}

	probes, err := ix.TuneNumProbes(queries, answers, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 1, probes)

	// Calibration is deterministic: a second run on the same index and
	// validation set returns the same count.
	again, err := ix.TuneNumProbes(queries, answers, 1.0)
	require.NoError(t, err)
	assert.Equal(t, probes, again)
}

func TestTuneNumProbesRestoresProbeCount(t *testing.T) {
	ix := calibrationIndex(t)
	require.NoError(t, ix.SetNumProbes(7))

	_, err := ix.TuneNumProbes(unitSquare(t), []int{1, 2, 3, 4}, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 7, ix.NumProbes())

	// Restored on the error path too. Capping candidates at one keeps a
	// wrong answer out of every candidate set regardless of probe count.
	require.NoError(t, ix.SetMaxCandidates(1))
	_, err = ix.TuneNumProbes(unitSquare(t), []int{4, 3, 2, 1}, 1.0,
		func(o *TuneOptions) { o.MaxIterations = 2 })
	require.Error(t, err)
	assert.Equal(t, 7, ix.NumProbes())
}

func TestTuneNumProbesValidation(t *testing.T) {
	ix := calibrationIndex(t)
	queries := unitSquare(t)

	t.Run("nil validation set", func(t *testing.T) {
		_, err := ix.TuneNumProbes(nil, nil, 0.9)
		assert.ErrorIs(t, err, ErrEmptyValidationSet)
	})

	t.Run("answers length", func(t *testing.T) {
		_, err := ix.TuneNumProbes(queries, []int{1, 2}, 0.9)
		var ia *ErrInvalidArgument
		assert.ErrorAs(t, err, &ia)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		wrong, err := engine.NewPointSet([]float64{1, 2, 3}, 1, 3)
		require.NoError(t, err)
		_, err = ix.TuneNumProbes(wrong, []int{1}, 0.9)
		var dm *ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)
	})

	t.Run("target out of range", func(t *testing.T) {
		var ia *ErrInvalidArgument
		_, err := ix.TuneNumProbes(queries, []int{1, 2, 3, 4}, 1.5)
		assert.ErrorAs(t, err, &ia)
		_, err = ix.TuneNumProbes(queries, []int{1, 2, 3, 4}, -0.1)
		assert.ErrorAs(t, err, &ia)
	})

	t.Run("initial probes", func(t *testing.T) {
		var ia *ErrInvalidArgument
		_, err := ix.TuneNumProbes(queries, []int{1, 2, 3, 4}, 0.9,
			func(o *TuneOptions) { o.InitialProbes = 0 })
		assert.ErrorAs(t, err, &ia)
	})
}

func TestTuneNumProbesDidNotConverge(t *testing.T) {
	ix := calibrationIndex(t)

	// A candidate cap of one admits a single, predictable candidate per
	// query; with wrong answers the target precision is unreachable and
	// the budget must run out.
	require.NoError(t, ix.SetMaxCandidates(1))
	_, err := ix.TuneNumProbes(unitSquare(t), []int{4, 3, 2, 1}, 1.0,
		func(o *TuneOptions) { o.MaxIterations = 4 })
	var cc *ErrCalibrationDidNotConverge
	require.ErrorAs(t, err, &cc)
	assert.Equal(t, 4, cc.Iterations)
}

func TestProbePrecision(t *testing.T) {
	ix := calibrationIndex(t)
	queries := unitSquare(t)
	answers := []int{1, 2, 3, 4}

	p, err := ix.ProbePrecision(queries, answers, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)

	// More probes can only grow the candidate sets, so measured
	// precision never drops with the probe count.
	prev := -1.0
	for _, probes := range []int{1, 2, 4, 8} {
		p, err := ix.ProbePrecision(queries, []int{2, 1, 4, 3}, probes)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, prev, "probes=%d", probes)
		prev = p
	}
}

func TestProbePrecisionRestoresProbeCount(t *testing.T) {
	ix := calibrationIndex(t)
	require.NoError(t, ix.SetNumProbes(3))

	_, err := ix.ProbePrecision(unitSquare(t), []int{1, 2, 3, 4}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, ix.NumProbes())
}

func TestProbePrecisionValidation(t *testing.T) {
	ix := calibrationIndex(t)

	_, err := ix.ProbePrecision(nil, nil, 1)
	assert.ErrorIs(t, err, ErrEmptyValidationSet)

	var ia *ErrInvalidArgument
	_, err = ix.ProbePrecision(unitSquare(t), []int{1, 2, 3, 4}, 0)
	assert.ErrorAs(t, err, &ia)
}
