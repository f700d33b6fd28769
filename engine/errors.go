package engine

import "fmt"

// ErrDimensionMismatch indicates a point-set/parameter dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimension
	Actual   int // Actual dimension
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidParameters indicates an internally inconsistent configuration
// rejected at construction time.
type ErrInvalidParameters struct {
	Field  string // Offending parameter field
	Reason string // Constraint that was violated
}

func (e *ErrInvalidParameters) Error() string {
	return fmt.Sprintf("invalid parameters: %s: %s", e.Field, e.Reason)
}
