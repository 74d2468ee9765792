package reduce

import (
	"github.com/x448/float16"

	"github.com/born-ml/reduce/internal/tensor"
)

// Float16 tensors are reduced in float32: operands are widened into scratch buffers,
// the float32 functors run on them, and results are narrowed back into the destination.
// Widening is exact, so the equality mask of MaxOrMinGrad behaves as on native halves.

func widenHalf(raw *tensor.RawTensor) []float32 {
	src := raw.AsFloat16()
	dst := make([]float32, len(src))
	for i, v := range src {
		dst[i] = v.Float32()
	}
	return dst
}

func narrowHalf(dst *tensor.RawTensor, src []float32) {
	out := dst.AsFloat16()
	for i, v := range src {
		out[i] = float16.Fromfloat32(v)
	}
}
