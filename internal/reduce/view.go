package reduce

import (
	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"

	"github.com/born-ml/reduce/internal/tensor"
)

// Number is the element constraint of the reduction functors.
type Number interface {
	constraints.Integer | constraints.Float
}

// View is a typed, non-owning view of a flat row-major buffer under a given shape.
// It never owns memory: its lifetime is the lifetime of the tensor it was taken from.
type View[T Number] struct {
	data  []T
	shape tensor.Shape
}

// NewView wraps data as a view of the given shape.
// Panics if the element count of shape does not match len(data).
func NewView[T Number](data []T, shape tensor.Shape) View[T] {
	if shape.NumElements() != len(data) {
		exceptions.Panicf("reduce.NewView: shape %v needs %d elements, buffer has %d",
			shape, shape.NumElements(), len(data))
	}
	return View[T]{data: data, shape: shape}
}

// ViewOf binds a tensor's buffer to a typed view.
// A nil shape keeps the tensor's own shape; otherwise the buffer is reinterpreted under shape.
func ViewOf[T tensor.Numeric](raw *tensor.RawTensor, shape tensor.Shape) View[T] {
	if shape == nil {
		shape = raw.Shape()
	}
	return NewView(tensor.Flat[T](raw), shape)
}

// Data returns the underlying buffer.
func (v View[T]) Data() []T { return v.data }

// Shape returns the view's shape.
func (v View[T]) Shape() tensor.Shape { return v.shape }

// Rank returns the number of dimensions of the view.
func (v View[T]) Rank() int { return len(v.shape) }

// Len returns the number of elements.
func (v View[T]) Len() int { return len(v.data) }

// Broadcast holds the replication factor of each axis when expanding a reduced
// tensor back to the full shape: all ones except the reduced axis, which holds its
// original extent.
type Broadcast []int

// NewBroadcast returns the broadcast factors that expand shape.WithUnitAxis(axis) back to shape.
func NewBroadcast(shape tensor.Shape, axis int) Broadcast {
	b := make(Broadcast, len(shape))
	for i := range b {
		b[i] = 1
	}
	b[axis] = shape[axis]
	return b
}

// lanes returns the (outer, mid, inner) decomposition of full around the broadcast axis.
// All-ones factors are the identity broadcast, described as (N, 1, 1).
func (b Broadcast) lanes(full tensor.Shape) (outer, mid, inner int) {
	if len(b) != len(full) {
		exceptions.Panicf("broadcast factors %v do not match rank of %v", []int(b), full)
	}
	axis := -1
	for d, factor := range b {
		if factor == 1 {
			continue
		}
		if axis >= 0 {
			exceptions.Panicf("broadcast factors %v replicate more than one axis", []int(b))
		}
		if factor != full[d] {
			exceptions.Panicf("broadcast factor %d on axis %d does not match extent %d", factor, d, full[d])
		}
		axis = d
	}
	if axis < 0 {
		return full.NumElements(), 1, 1
	}
	return full.StrideCounts(axis)
}

// forEachBroadcast calls f(fullIdx, reducedIdx) for every element of the full shape,
// pairing it with the reduced element it is broadcast from. Lanes run through ctx.
func forEachBroadcast(ctx laneRunner, full tensor.Shape, b Broadcast, f func(fullIdx, reducedIdx int)) {
	outer, mid, inner := b.lanes(full)
	ctx.ForGrid(outer, inner, func(o, i int) {
		reduced := o*inner + i
		base := o*mid*inner + i
		for m := 0; m < mid; m++ {
			f(base+m*inner, reduced)
		}
	})
}

// laneRunner is the part of device.Context the functors need.
type laneRunner interface {
	ForGrid(outer, inner int, f func(o, i int))
}
