package engine

// PointSet is a dense, column-major point matrix: one point per column,
// stored as a single contiguous float64 buffer.
type PointSet struct {
	data   []float64
	points int
	dim    int
}

// NewPointSet creates a PointSet from a flat column-major buffer holding
// points columns of dimension rows. The buffer is copied so that the point
// set (and any table built over it) owns its storage exclusively.
func NewPointSet(data []float64, points, dimension int) (*PointSet, error) {
	if points <= 0 {
		return nil, &ErrInvalidParameters{Field: "points", Reason: "must be positive"}
	}
	if dimension <= 0 {
		return nil, &ErrInvalidParameters{Field: "dimension", Reason: "must be positive"}
	}
	if len(data) != points*dimension {
		return nil, &ErrInvalidParameters{
			Field:  "data",
			Reason: "buffer length must equal points*dimension",
		}
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &PointSet{data: buf, points: points, dim: dimension}, nil
}

// Len returns the number of points.
func (ps *PointSet) Len() int { return ps.points }

// Dimension returns the dimensionality of the points.
func (ps *PointSet) Dimension() int { return ps.dim }

// Point returns the i-th point as a view into the underlying buffer.
// Callers must not modify the returned slice.
func (ps *PointSet) Point(i int) []float64 {
	return ps.data[i*ps.dim : (i+1)*ps.dim]
}
