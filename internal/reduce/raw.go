package reduce

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/reduce/internal/tensor"
)

// GradRaw computes the input gradient of a reduction directly over flat buffers.
//
// x and xGrad hold the full shape, out and outGrad the reduced one (outer*inner elements).
// Traversal is outer-major, then inner, with the reduced axis innermost; each element of
// xGrad is written exactly once. It does not depend on the rank of shape.
func GradRaw[T Number](x, out, outGrad, xGrad []T, shape tensor.Shape, axis int, f ElementGrad[T]) {
	outer, mid, inner := shape.StrideCounts(axis)
	total := outer * mid * inner
	if len(x) != total || len(xGrad) != total {
		exceptions.Panicf("reduce.GradRaw: input buffers hold %d/%d elements, shape %v needs %d",
			len(x), len(xGrad), shape, total)
	}
	if len(out) != outer*inner || len(outGrad) != outer*inner {
		exceptions.Panicf("reduce.GradRaw: reduced buffers hold %d/%d elements, want %d",
			len(out), len(outGrad), outer*inner)
	}

	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			outOffset := inner*o + i
			for m := 0; m < mid; m++ {
				xOffset := (inner*mid)*o + inner*m + i
				xGrad[xOffset] = f(x[xOffset], out[outOffset], outGrad[outOffset], mid)
			}
		}
	}
}
