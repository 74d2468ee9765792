package reduce

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/reduce/internal/device"
)

// Forward computes out = reduce(in, axis).
//
// in has the full shape; out is viewed under the squeezed shape (axis removed),
// so out element (o, i) corresponds to the lane in[o, :, i].
type Forward[T Number] interface {
	Forward(ctx *device.Context, in, out View[T], axis int)
}

// Gradient computes the input gradient of a reduction.
//
// in and inGrad have the full shape. out and outGrad are viewed under the full shape
// with the reduced axis set to 1 and are expanded by bcast. size is the extent of
// the reduced axis.
type Gradient[T Number] interface {
	Backward(ctx *device.Context, in, inGrad, out, outGrad View[T], bcast Broadcast, size int)
}

// ElementGrad is the per-element gradient rule used by the raw-loop engine.
// It returns the value written at the input position holding x.
type ElementGrad[T Number] func(x, out, outGrad T, mid int) T

// foldLanes writes, for every (outer, inner) lane of in along axis, the fold of the lane into out.
func foldLanes[T Number](ctx *device.Context, in, out View[T], axis int, fold func(lane func(m int) T, mid int) T) {
	outer, mid, inner := in.shape.StrideCounts(axis)
	if out.Len() != outer*inner {
		exceptions.Panicf("reduce: output view %v holds %d elements, want %d for input %v along axis %d",
			out.shape, out.Len(), outer*inner, in.shape, axis)
	}
	src, dst := in.data, out.data
	ctx.ForGrid(outer, inner, func(o, i int) {
		base := o*mid*inner + i
		dst[o*inner+i] = fold(func(m int) T { return src[base+m*inner] }, mid)
	})
}

// SumFunctor computes out = Σ_axis in.
type SumFunctor[T Number] struct{}

// Forward implements Forward.
func (SumFunctor[T]) Forward(ctx *device.Context, in, out View[T], axis int) {
	foldLanes(ctx, in, out, axis, sumLane[T])
}

func sumLane[T Number](lane func(m int) T, mid int) T {
	var acc T
	for m := 0; m < mid; m++ {
		acc += lane(m)
	}
	return acc
}

// MeanFunctor computes out = (Σ_axis in) / extent(axis).
// Integer element types use truncating division.
type MeanFunctor[T Number] struct{}

// Forward implements Forward.
func (MeanFunctor[T]) Forward(ctx *device.Context, in, out View[T], axis int) {
	foldLanes(ctx, in, out, axis, func(lane func(m int) T, mid int) T {
		return sumLane(lane, mid) / T(mid)
	})
}

// MaxFunctor computes out = max_axis in.
type MaxFunctor[T Number] struct{}

// Forward implements Forward.
func (MaxFunctor[T]) Forward(ctx *device.Context, in, out View[T], axis int) {
	foldLanes(ctx, in, out, axis, func(lane func(m int) T, mid int) T {
		acc := lane(0)
		for m := 1; m < mid; m++ {
			if v := lane(m); v > acc {
				acc = v
			}
		}
		return acc
	})
}

// MinFunctor computes out = min_axis in.
type MinFunctor[T Number] struct{}

// Forward implements Forward.
func (MinFunctor[T]) Forward(ctx *device.Context, in, out View[T], axis int) {
	foldLanes(ctx, in, out, axis, func(lane func(m int) T, mid int) T {
		acc := lane(0)
		for m := 1; m < mid; m++ {
			if v := lane(m); v < acc {
				acc = v
			}
		}
		return acc
	})
}

// SumGradFunctor computes inGrad = broadcast(outGrad).
type SumGradFunctor[T Number] struct{}

// Backward implements Gradient.
func (SumGradFunctor[T]) Backward(ctx *device.Context, _, inGrad, _, outGrad View[T], bcast Broadcast, _ int) {
	dst, g := inGrad.data, outGrad.data
	forEachBroadcast(ctx, inGrad.shape, bcast, func(full, reduced int) {
		dst[full] = g[reduced]
	})
}

// MeanGradFunctor computes inGrad = broadcast(outGrad) / size.
type MeanGradFunctor[T Number] struct{}

// Backward implements Gradient.
func (MeanGradFunctor[T]) Backward(ctx *device.Context, _, inGrad, _, outGrad View[T], bcast Broadcast, size int) {
	dst, g := inGrad.data, outGrad.data
	n := T(size)
	forEachBroadcast(ctx, inGrad.shape, bcast, func(full, reduced int) {
		dst[full] = g[reduced] / n
	})
}

// MaxOrMinGradFunctor computes inGrad = broadcast(outGrad) * (in == broadcast(out)).
//
// Every position equal to the extremum receives the full gradient: ties are not split.
type MaxOrMinGradFunctor[T Number] struct{}

// Backward implements Gradient.
func (MaxOrMinGradFunctor[T]) Backward(ctx *device.Context, in, inGrad, out, outGrad View[T], bcast Broadcast, _ int) {
	x, dst, y, g := in.data, inGrad.data, out.data, outGrad.data
	forEachBroadcast(ctx, inGrad.shape, bcast, func(full, reduced int) {
		if x[full] == y[reduced] {
			dst[full] = g[reduced]
		} else {
			dst[full] = 0
		}
	})
}

// SumElementGrad passes the output gradient through unchanged.
func SumElementGrad[T Number](_, _, outGrad T, _ int) T {
	return outGrad
}

// MeanElementGrad gives each element an equal 1/mid share of the output gradient.
func MeanElementGrad[T Number](_, _, outGrad T, mid int) T {
	return outGrad / T(mid)
}

// MaxOrMinElementGrad routes the output gradient to elements equal to the extremum.
func MaxOrMinElementGrad[T Number](x, out, outGrad T, _ int) T {
	if x == out {
		return outGrad
	}
	return 0
}
