package lshnn

import (
	"errors"
	"fmt"

	"github.com/probelab/lshnn/engine"
)

var (
	// ErrNotFound is returned when a nearest-neighbor query produces an
	// empty candidate set under the current probe configuration.
	ErrNotFound = errors.New("not found")

	// ErrEmptyValidationSet is returned when calibration is invoked with
	// zero validation queries.
	ErrEmptyValidationSet = errors.New("validation set is empty")
)

// ErrInvalidDimension indicates a non-positive point count or dimension at
// builder creation.
type ErrInvalidDimension struct {
	Points    int
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: points=%d, dimension=%d (both must be positive)", e.Points, e.Dimension)
}

// ErrDimensionMismatch indicates a dataset/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidArgument indicates a structurally invalid argument, rejected
// before any engine call.
type ErrInvalidArgument struct {
	Op         string // Operation that rejected the argument
	Value      any    // Offending value
	Constraint string // Constraint that was violated
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("%s: invalid argument %v: %s", e.Op, e.Value, e.Constraint)
}

// ErrEngineConstruction indicates that the hashing engine rejected the
// configuration/dataset pair. Fatal to that Index; there is no partial or
// recoverable index state.
//
// The engine's error can be accessed via errors.Unwrap.
type ErrEngineConstruction struct {
	cause error
}

func (e *ErrEngineConstruction) Error() string {
	return fmt.Sprintf("engine construction failed: %v", e.cause)
}

func (e *ErrEngineConstruction) Unwrap() error { return e.cause }

// ErrCalibrationDidNotConverge indicates that the iteration budget was
// exhausted before the target precision was reached.
type ErrCalibrationDidNotConverge struct {
	Iterations    int     // Budget that was exhausted
	Target        float64 // Requested precision
	BestPrecision float64 // Last precision measured before giving up
}

func (e *ErrCalibrationDidNotConverge) Error() string {
	return fmt.Sprintf("calibration did not converge after %d iterations: target precision %v, best %v",
		e.Iterations, e.Target, e.BestPrecision)
}

// translateError normalizes engine errors into the package taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *engine.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var ip *engine.ErrInvalidParameters
	if errors.As(err, &ip) {
		return &ErrEngineConstruction{cause: err}
	}

	return err
}
