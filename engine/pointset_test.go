package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPointSet(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	ps, err := NewPointSet(data, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, ps.Len())
	assert.Equal(t, 2, ps.Dimension())
	assert.Equal(t, []float64{1, 2}, ps.Point(0))
	assert.Equal(t, []float64{5, 6}, ps.Point(2))

	// The buffer is copied: mutating the input must not reach the set.
	data[0] = 99
	assert.Equal(t, []float64{1, 2}, ps.Point(0))
}

func TestNewPointSetValidation(t *testing.T) {
	tests := []struct {
		name      string
		data      []float64
		points    int
		dimension int
	}{
		{name: "zero points", data: nil, points: 0, dimension: 2},
		{name: "negative points", data: nil, points: -1, dimension: 2},
		{name: "zero dimension", data: nil, points: 2, dimension: 0},
		{name: "short buffer", data: []float64{1, 2, 3}, points: 2, dimension: 2},
		{name: "long buffer", data: []float64{1, 2, 3, 4, 5}, points: 2, dimension: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPointSet(tt.data, tt.points, tt.dimension)
			var ip *ErrInvalidParameters
			assert.ErrorAs(t, err, &ip)
		})
	}
}

func TestDistanceFuncs(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}

	assert.InDelta(t, 25.0, euclideanSquared(a, b), 1e-9)
	assert.InDelta(t, 0.0, euclideanSquared(a, a), 1e-9)
	assert.Equal(t, -25.0, negativeInnerProduct(a, b))

	assert.NotNil(t, newDistanceFunc(DistanceEuclideanSquared))
	assert.NotNil(t, newDistanceFunc(DistanceNegativeInnerProduct))
}
