// Package reduce implements single-axis Sum, Mean, Max and Min reductions over dense
// tensors of rank 1 to 6, together with their gradients.
//
// Forward and backward passes share one functor set per reduction kind. Gradients can be
// computed through typed array views and broadcasting (ReduceGrad) or through a raw
// strided loop over flat buffers (ReduceGradRaw); both produce the same values.
//
// The engine never allocates tensors: every destination is supplied by the caller,
// already shaped, and is fully overwritten on success.
package reduce

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/reduce/internal/device"
	"github.com/born-ml/reduce/internal/tensor"
)

// Engine runs reductions on a compute context.
type Engine struct {
	ctx *device.Context
}

// New creates an engine bound to ctx. A nil ctx uses device.Default().
func New(ctx *device.Context) *Engine {
	if ctx == nil {
		ctx = device.Default()
	}
	return &Engine{ctx: ctx}
}

// Context returns the engine's compute context.
func (e *Engine) Context() *device.Context {
	return e.ctx
}

// checkRank is the rank dispatcher guard: exactly ranks 1..6 are accepted.
func checkRank(op string, shape tensor.Shape) error {
	switch rank := shape.Rank(); rank {
	case 1, 2, 3, 4, 5, 6:
		return nil
	default:
		return errors.Wrapf(ErrUnsupportedRank, "%s: rank %d (shape %v), supported ranks are 1..%d",
			op, rank, shape, MaxRank)
	}
}

func checkKind(kind Kind) error {
	switch kind {
	case Sum, Mean, Max, Min:
		return nil
	}
	return errors.Errorf("unknown reduction kind %d", int(kind))
}

func checkDType(dtype tensor.DataType) error {
	switch dtype {
	case tensor.Float32, tensor.Float64, tensor.Int32, tensor.Int64, tensor.Float16:
		return nil
	}
	return errors.Wrapf(ErrUnsupportedDType, "%s", dtype)
}

// checkOperands verifies that all operands share x's dtype and live where the context computes.
func (e *Engine) checkOperands(op string, x *tensor.RawTensor, others ...*tensor.RawTensor) error {
	if err := checkDType(x.DType()); err != nil {
		return errors.WithMessage(err, op)
	}
	for _, t := range append([]*tensor.RawTensor{x}, others...) {
		if t.DType() != x.DType() {
			return errors.Wrapf(ErrDTypeMismatch, "%s: got %s and %s", op, x.DType(), t.DType())
		}
		if !e.ctx.Supports(t.Device()) {
			return errors.Wrapf(ErrUnsupportedPlace, "%s: tensor on %s, context %s", op, t.Device(), e.ctx)
		}
	}
	return nil
}

func normalizeAxis(op string, axis int, shape tensor.Shape) (int, error) {
	normalized, err := tensor.NormalizeAxis(axis, shape.Rank())
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAxis, "%s: axis %d for shape %v", op, axis, shape)
	}
	return normalized, nil
}

// Reduce writes reduce(x, desc.Axis) into out.
//
// out must be pre-allocated with x's dtype and x.NumElements()/extent(axis) elements;
// its shape may be the squeezed or the keep-dim form, the buffer is reinterpreted under
// the squeezed shape either way.
func (e *Engine) Reduce(x, out *tensor.RawTensor, desc Descriptor, kind Kind) error {
	op := "reduce_" + kind.String()
	if err := checkKind(kind); err != nil {
		return err
	}
	if err := checkRank(op, x.Shape()); err != nil {
		return err
	}
	axis, err := normalizeAxis(op, desc.Axis, x.Shape())
	if err != nil {
		return err
	}
	if err := e.checkOperands(op, x, out); err != nil {
		return err
	}
	squeezed := x.Shape().Squeeze(axis)
	if out.NumElements() != squeezed.NumElements() {
		return errors.Wrapf(ErrShapeMismatch, "%s: output %v cannot hold reduction of %v along axis %d",
			op, out.Shape(), x.Shape(), axis)
	}

	klog.V(2).Infof("%s: x=%s axis=%d keep_dim=%v out=%s on %s", op, x, axis, desc.KeepDim, out, e.ctx)
	return exceptions.TryCatch[error](func() {
		switch x.DType() {
		case tensor.Float32:
			forwardTyped[float32](e.ctx, kind, x, out, squeezed, axis)
		case tensor.Float64:
			forwardTyped[float64](e.ctx, kind, x, out, squeezed, axis)
		case tensor.Int32:
			forwardTyped[int32](e.ctx, kind, x, out, squeezed, axis)
		case tensor.Int64:
			forwardTyped[int64](e.ctx, kind, x, out, squeezed, axis)
		case tensor.Float16:
			forwardHalf(e.ctx, kind, x, out, squeezed, axis)
		default:
			exceptions.Panicf("%s: unsupported dtype %s", op, x.DType())
		}
	})
}

func mustFunctors[T Number](kind Kind) (Forward[T], Gradient[T], ElementGrad[T]) {
	fwd, grad, elem, err := functors[T](kind)
	if err != nil {
		panic(err)
	}
	return fwd, grad, elem
}

func forwardTyped[T tensor.Numeric](ctx *device.Context, kind Kind, x, out *tensor.RawTensor, squeezed tensor.Shape, axis int) {
	fwd, _, _ := mustFunctors[T](kind)
	fwd.Forward(ctx, ViewOf[T](x, nil), ViewOf[T](out, squeezed), axis)
}

func forwardHalf(ctx *device.Context, kind Kind, x, out *tensor.RawTensor, squeezed tensor.Shape, axis int) {
	fwd, _, _ := mustFunctors[float32](kind)
	result := make([]float32, squeezed.NumElements())
	fwd.Forward(ctx, NewView(widenHalf(x), x.Shape()), NewView(result, squeezed), axis)
	narrowHalf(out, result)
}

// gradOperands validates the operands of a gradient call and returns the normalized axis.
func (e *Engine) gradOperands(op string, x, out, outGrad, xGrad *tensor.RawTensor, axis int, kind Kind) (int, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	if err := checkRank(op, x.Shape()); err != nil {
		return 0, err
	}
	normalized, err := normalizeAxis(op, axis, x.Shape())
	if err != nil {
		return 0, err
	}
	if err := e.checkOperands(op, x, out, outGrad, xGrad); err != nil {
		return 0, err
	}
	if !xGrad.Shape().Equal(x.Shape()) {
		return 0, errors.Wrapf(ErrShapeMismatch, "%s: gradient destination %v must match input %v",
			op, xGrad.Shape(), x.Shape())
	}
	reduced := x.NumElements() / x.Shape()[normalized]
	for name, t := range map[string]*tensor.RawTensor{"Out": out, "Out@GRAD": outGrad} {
		if t.NumElements() != reduced {
			return 0, errors.Wrapf(ErrShapeMismatch, "%s: %s %v holds %d elements, want %d",
				op, name, t.Shape(), t.NumElements(), reduced)
		}
	}
	return normalized, nil
}

// ReduceGrad writes the gradient of reduce(x, axis) with respect to x into xGrad,
// given the forward output out and its gradient outGrad.
//
// A nil xGrad means the gradient is not requested: nothing is computed and nil is returned.
// out and outGrad may have the squeezed or keep-dim shape; both are viewed with the
// reduced axis at extent 1 and broadcast back across it.
func (e *Engine) ReduceGrad(x, out, outGrad, xGrad *tensor.RawTensor, axis int, kind Kind) error {
	op := "reduce_" + kind.String() + "_grad"
	if xGrad == nil {
		klog.V(2).Infof("%s: no gradient destination, skipping", op)
		return nil
	}
	axis, err := e.gradOperands(op, x, out, outGrad, xGrad, axis, kind)
	if err != nil {
		return err
	}
	reduced := x.Shape().WithUnitAxis(axis)
	bcast := NewBroadcast(x.Shape(), axis)
	size := x.Shape()[axis]

	klog.V(2).Infof("%s: x=%s axis=%d broadcast=%v on %s", op, x, axis, []int(bcast), e.ctx)
	return exceptions.TryCatch[error](func() {
		switch x.DType() {
		case tensor.Float32:
			gradTyped[float32](e.ctx, kind, x, out, outGrad, xGrad, reduced, bcast, size)
		case tensor.Float64:
			gradTyped[float64](e.ctx, kind, x, out, outGrad, xGrad, reduced, bcast, size)
		case tensor.Int32:
			gradTyped[int32](e.ctx, kind, x, out, outGrad, xGrad, reduced, bcast, size)
		case tensor.Int64:
			gradTyped[int64](e.ctx, kind, x, out, outGrad, xGrad, reduced, bcast, size)
		case tensor.Float16:
			gradHalf(e.ctx, kind, x, out, outGrad, xGrad, reduced, bcast, size)
		default:
			exceptions.Panicf("%s: unsupported dtype %s", op, x.DType())
		}
	})
}

func gradTyped[T tensor.Numeric](ctx *device.Context, kind Kind, x, out, outGrad, xGrad *tensor.RawTensor,
	reduced tensor.Shape, bcast Broadcast, size int) {
	_, grad, _ := mustFunctors[T](kind)
	grad.Backward(ctx,
		ViewOf[T](x, nil), ViewOf[T](xGrad, x.Shape()),
		ViewOf[T](out, reduced), ViewOf[T](outGrad, reduced),
		bcast, size)
}

func gradHalf(ctx *device.Context, kind Kind, x, out, outGrad, xGrad *tensor.RawTensor,
	reduced tensor.Shape, bcast Broadcast, size int) {
	_, grad, _ := mustFunctors[float32](kind)
	result := make([]float32, x.NumElements())
	grad.Backward(ctx,
		NewView(widenHalf(x), x.Shape()), NewView(result, x.Shape()),
		NewView(widenHalf(out), reduced), NewView(widenHalf(outGrad), reduced),
		bcast, size)
	narrowHalf(xGrad, result)
}

// ReduceGradRaw computes the same gradient as ReduceGrad with the raw strided loop of GradRaw.
// A nil xGrad is a no-op.
func (e *Engine) ReduceGradRaw(x, out, outGrad, xGrad *tensor.RawTensor, axis int, kind Kind) error {
	op := "reduce_" + kind.String() + "_grad_raw"
	if xGrad == nil {
		klog.V(2).Infof("%s: no gradient destination, skipping", op)
		return nil
	}
	axis, err := e.gradOperands(op, x, out, outGrad, xGrad, axis, kind)
	if err != nil {
		return err
	}

	klog.V(2).Infof("%s: x=%s axis=%d", op, x, axis)
	return exceptions.TryCatch[error](func() {
		switch x.DType() {
		case tensor.Float32:
			gradRawTyped[float32](kind, x, out, outGrad, xGrad, axis)
		case tensor.Float64:
			gradRawTyped[float64](kind, x, out, outGrad, xGrad, axis)
		case tensor.Int32:
			gradRawTyped[int32](kind, x, out, outGrad, xGrad, axis)
		case tensor.Int64:
			gradRawTyped[int64](kind, x, out, outGrad, xGrad, axis)
		case tensor.Float16:
			_, _, elem := mustFunctors[float32](kind)
			result := make([]float32, x.NumElements())
			GradRaw(widenHalf(x), widenHalf(out), widenHalf(outGrad), result, x.Shape(), axis, elem)
			narrowHalf(xGrad, result)
		default:
			exceptions.Panicf("%s: unsupported dtype %s", op, x.DType())
		}
	})
}

func gradRawTyped[T tensor.Numeric](kind Kind, x, out, outGrad, xGrad *tensor.RawTensor, axis int) {
	_, _, elem := mustFunctors[T](kind)
	GradRaw(tensor.Flat[T](x), tensor.Flat[T](out), tensor.Flat[T](outGrad), tensor.Flat[T](xGrad),
		x.Shape(), axis, elem)
}
