package op

import (
	"github.com/pkg/errors"

	"github.com/born-ml/reduce/internal/reduce"
	"github.com/born-ml/reduce/internal/tensor"
)

// Attribute names of the reduction operators.
const (
	AttrDim     = "dim"
	AttrKeepDim = "keep_dim"
)

// Slot names of the reduction operators.
const (
	SlotX   = "X"
	SlotOut = "Out"
)

// descriptor reads dim and keep_dim.
func descriptor(attrs Attrs) (reduce.Descriptor, error) {
	keepDim, err := attrs.Bool(AttrKeepDim)
	if err != nil {
		return reduce.Descriptor{}, err
	}
	return reduce.Descriptor{Axis: attrs.Int(AttrDim, 0), KeepDim: keepDim}, nil
}

// InferShape computes the Out shape of a forward reduction of a tensor shaped x.
func InferShape(x tensor.Shape, attrs Attrs) (tensor.Shape, error) {
	desc, err := descriptor(attrs)
	if err != nil {
		return nil, err
	}
	return desc.OutputShape(x)
}

func forwardKernel(kind reduce.Kind) Kernel {
	return func(ctx *ExecutionContext) error {
		x, err := ctx.Input(SlotX)
		if err != nil {
			return err
		}
		desc, err := descriptor(ctx.Attrs)
		if err != nil {
			return err
		}
		outShape, err := desc.OutputShape(x.Shape())
		if err != nil {
			return err
		}
		ctx.Scope.Declare(SlotOut)
		out, err := ctx.Allocate(SlotOut, outShape, x.DType())
		if err != nil {
			return err
		}
		return reduce.New(ctx.Device).Reduce(x, out, desc, kind)
	}
}

func gradKernel(kind reduce.Kind, raw bool) Kernel {
	return func(ctx *ExecutionContext) error {
		x, err := ctx.Input(SlotX)
		if err != nil {
			return err
		}
		out, err := ctx.Input(SlotOut)
		if err != nil {
			return err
		}
		outGrad, err := ctx.Input(GradVarName(SlotOut))
		if err != nil {
			return err
		}
		if outGrad.NumElements() != out.NumElements() {
			return errors.Wrapf(reduce.ErrShapeMismatch, "%s %v does not match %s %v",
				GradVarName(SlotOut), outGrad.Shape(), SlotOut, out.Shape())
		}
		// The gradient of X always has X's shape.
		xGrad, err := ctx.Allocate(GradVarName(SlotX), x.Shape(), x.DType())
		if err != nil {
			return err
		}

		engine := reduce.New(ctx.Device)
		axis := ctx.Attrs.Int(AttrDim, 0)
		if raw {
			return engine.ReduceGradRaw(x, out, outGrad, xGrad, axis, kind)
		}
		return engine.ReduceGrad(x, out, outGrad, xGrad, axis, kind)
	}
}
