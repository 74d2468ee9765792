package tensor

import "github.com/pkg/errors"

// ErrAxisOutOfRange is returned when an axis does not address a dimension of the shape.
var ErrAxisOutOfRange = errors.New("axis out of range")

// NormalizeAxis maps a possibly negative axis onto [0, rank).
// Negative values count from the last axis: -1 is rank-1.
func NormalizeAxis(axis, rank int) (int, error) {
	normalized := axis
	if normalized < 0 {
		normalized += rank
	}
	if normalized < 0 || normalized >= rank {
		return 0, errors.Wrapf(ErrAxisOutOfRange, "axis %d for rank %d", axis, rank)
	}
	return normalized, nil
}

// StrideCounts splits the shape around axis into the element counts before it (outer),
// at it (mid) and after it (inner).
//
// Element (o, m, i) lives at flat index o*mid*inner + m*inner + i, and the matching
// reduced element (o, i) at o*inner + i. The axis must already be normalized.
func (s Shape) StrideCounts(axis int) (outer, mid, inner int) {
	outer, inner = 1, 1
	for i := 0; i < axis; i++ {
		outer *= s[i]
	}
	mid = s[axis]
	for i := axis + 1; i < len(s); i++ {
		inner *= s[i]
	}
	return outer, mid, inner
}

// Squeeze returns the shape with axis erased.
// A rank-1 shape squeezes to [1]: a reduction never drops below rank 1.
func (s Shape) Squeeze(axis int) Shape {
	if len(s) <= 1 {
		return Shape{1}
	}
	out := make(Shape, 0, len(s)-1)
	for i, dim := range s {
		if i != axis {
			out = append(out, dim)
		}
	}
	return out
}

// WithUnitAxis returns a copy of the shape with the extent at axis forced to 1.
func (s Shape) WithUnitAxis(axis int) Shape {
	out := s.Clone()
	out[axis] = 1
	return out
}
