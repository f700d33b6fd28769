package engine

import "gonum.org/v1/gonum/floats"

// distanceFunc evaluates the configured metric between two equal-length
// vectors. Smaller is closer for both supported metrics.
type distanceFunc func(a, b []float64) float64

func newDistanceFunc(d DistanceFunction) distanceFunc {
	switch d {
	case DistanceNegativeInnerProduct:
		return negativeInnerProduct
	default:
		return euclideanSquared
	}
}

func euclideanSquared(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func negativeInnerProduct(a, b []float64) float64 {
	return -floats.Dot(a, b)
}
