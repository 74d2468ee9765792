package reduce

import (
	"fmt"
	"testing"

	"github.com/born-ml/reduce/internal/device"
	"github.com/born-ml/reduce/internal/tensor"
)

func benchTensors(b *testing.B, shape tensor.Shape, axis int) (x, out, xGrad *tensor.RawTensor) {
	b.Helper()
	var err error
	values := make([]float32, shape.NumElements())
	for i := range values {
		values[i] = float32(i%97) * 0.5
	}
	if x, err = tensor.FromSlice(values, shape); err != nil {
		b.Fatal(err)
	}
	if out, err = tensor.NewRaw(shape.Squeeze(axis), tensor.Float32, tensor.CPU); err != nil {
		b.Fatal(err)
	}
	if xGrad, err = tensor.NewRaw(shape, tensor.Float32, tensor.CPU); err != nil {
		b.Fatal(err)
	}
	return x, out, xGrad
}

func BenchmarkReduce(b *testing.B) {
	shape := tensor.Shape{64, 128, 256}
	contexts := map[string]*device.Context{
		"parallel":   device.Default(),
		"sequential": device.Sequential(),
	}
	for name, ctx := range contexts {
		engine := New(ctx)
		for _, axis := range []int{0, 1, 2} {
			x, out, _ := benchTensors(b, shape, axis)
			for _, kind := range []Kind{Sum, Max} {
				b.Run(fmt.Sprintf("%s/%s/axis%d", name, kind, axis), func(b *testing.B) {
					for i := 0; i < b.N; i++ {
						if err := engine.Reduce(x, out, Descriptor{Axis: axis}, kind); err != nil {
							b.Fatal(err)
						}
					}
				})
			}
		}
	}
}

func BenchmarkReduceGrad(b *testing.B) {
	shape := tensor.Shape{64, 128, 256}
	engine := New(device.Default())
	for _, axis := range []int{0, 2} {
		x, out, xGrad := benchTensors(b, shape, axis)
		if err := engine.Reduce(x, out, Descriptor{Axis: axis}, Max); err != nil {
			b.Fatal(err)
		}
		outGrad := out.Clone()

		b.Run(fmt.Sprintf("view/axis%d", axis), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if err := engine.ReduceGrad(x, out, outGrad, xGrad, axis, Max); err != nil {
					b.Fatal(err)
				}
			}
		})
		b.Run(fmt.Sprintf("raw/axis%d", axis), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if err := engine.ReduceGradRaw(x, out, outGrad, xGrad, axis, Max); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
