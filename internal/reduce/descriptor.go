package reduce

import (
	"github.com/pkg/errors"

	"github.com/born-ml/reduce/internal/tensor"
)

// Descriptor selects the reduced axis and whether it is kept with extent 1.
type Descriptor struct {
	Axis    int  // Axis to reduce; negative values count from the last axis.
	KeepDim bool // Keep the reduced axis with extent 1 instead of removing it.
}

// OutputShape returns the shape a reduction of shape under d produces.
// A rank-1 input always yields [1].
func (d Descriptor) OutputShape(shape tensor.Shape) (tensor.Shape, error) {
	rank := shape.Rank()
	if rank < 1 || rank > MaxRank {
		return nil, errors.Wrapf(ErrUnsupportedRank, "rank %d (shape %v), supported ranks are 1..%d", rank, shape, MaxRank)
	}
	axis, err := tensor.NormalizeAxis(d.Axis, rank)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAxis, "%v", err)
	}
	if d.KeepDim {
		return shape.WithUnitAxis(axis), nil
	}
	return shape.Squeeze(axis), nil
}
