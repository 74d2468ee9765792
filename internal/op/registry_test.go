package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/reduce/internal/device"
	"github.com/born-ml/reduce/internal/reduce"
	"github.com/born-ml/reduce/internal/tensor"
)

func newInput(t *testing.T, values []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	x, err := tensor.FromSlice(values, shape)
	require.NoError(t, err)
	return x
}

func TestRegistrySupportedOps(t *testing.T) {
	r := NewRegistry()
	ops := r.SupportedOps()
	assert.Len(t, ops, 8)
	for _, kind := range reduce.Kinds() {
		assert.Contains(t, ops, ForwardOpName(kind))
		assert.Contains(t, ops, GradOpName(kind))
	}
	assert.Equal(t, "reduce_mean_grad", GradOpName(reduce.Mean))

	_, ok := r.Get("reduce_prod")
	assert.False(t, ok)
	err := r.Run("reduce_prod", NewExecutionContext(NewScope(), nil, nil))
	assert.Error(t, err)
}

func TestRegistryRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("reduce_sum", func(*ExecutionContext) error {
		called = true
		return nil
	})
	require.NoError(t, r.Run("reduce_sum", NewExecutionContext(NewScope(), nil, nil)))
	assert.True(t, called)
	assert.Len(t, r.SupportedOps(), 8)
}

func TestForwardOps(t *testing.T) {
	tests := []struct {
		op    string
		attrs Attrs
		shape tensor.Shape
		want  []float32
	}{
		{"reduce_sum", Attrs{AttrDim: 1}, tensor.Shape{2}, []float32{6, 15}},
		{"reduce_mean", Attrs{AttrDim: 1}, tensor.Shape{2}, []float32{2, 5}},
		{"reduce_max", Attrs{AttrDim: 0, AttrKeepDim: 1}, tensor.Shape{1, 3}, []float32{4, 5, 6}},
		{"reduce_min", Attrs{AttrDim: -1, AttrKeepDim: 1}, tensor.Shape{2, 1}, []float32{1, 4}},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			scope := NewScope()
			scope.Set(SlotX, newInput(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}))
			require.NoError(t, r.Run(tt.op, NewExecutionContext(scope, tt.attrs, device.Sequential())))

			out := scope.Get(SlotOut)
			require.NotNil(t, out)
			assert.Equal(t, tt.shape, out.Shape())
			assert.Equal(t, tt.want, out.AsFloat32())
		})
	}
}

func TestForwardOpReusesOutput(t *testing.T) {
	scope := NewScope()
	scope.Set(SlotX, newInput(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}))
	out, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	scope.Set(SlotOut, out)

	require.NoError(t, NewRegistry().Run("reduce_sum", NewExecutionContext(scope, nil, nil)))
	assert.Same(t, out, scope.Get(SlotOut))
	assert.Equal(t, []float32{5, 7, 9}, out.AsFloat32())
}

func TestForwardOpErrors(t *testing.T) {
	r := NewRegistry()

	err := r.Run("reduce_sum", NewExecutionContext(NewScope(), nil, nil))
	assert.Error(t, err, "missing X")

	scope := NewScope()
	scope.Set(SlotX, newInput(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}))
	err = r.Run("reduce_sum", NewExecutionContext(scope, Attrs{AttrDim: 2}, nil))
	assert.ErrorIs(t, err, reduce.ErrInvalidAxis)

	err = r.Run("reduce_sum", NewExecutionContext(scope, Attrs{AttrKeepDim: 2}, nil))
	assert.Error(t, err)

	scope.Set(SlotX, newInput(t, make([]float32, 7), tensor.Shape{1, 1, 1, 1, 1, 1, 7}))
	err = r.Run("reduce_sum", NewExecutionContext(scope, nil, nil))
	assert.ErrorIs(t, err, reduce.ErrUnsupportedRank)
}

func TestInferShape(t *testing.T) {
	got, err := InferShape(tensor.Shape{4, 5, 6}, Attrs{AttrDim: -2})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 6}, got)

	got, err = InferShape(tensor.Shape{4, 5, 6}, Attrs{AttrDim: 1, AttrKeepDim: 1})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 1, 6}, got)

	got, err = InferShape(tensor.Shape{4}, nil)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1}, got)

	_, err = InferShape(tensor.Shape{4, 5}, Attrs{AttrDim: -3})
	assert.Error(t, err)
}

func gradScope(t *testing.T, declareGrad bool) *Scope {
	t.Helper()
	scope := NewScope()
	scope.Set(SlotX, newInput(t, []float32{1, 5, 3, 4, 2, 6}, tensor.Shape{2, 3}))
	scope.Set(SlotOut, newInput(t, []float32{5, 6}, tensor.Shape{2}))
	scope.Set(GradVarName(SlotOut), newInput(t, []float32{1, 2}, tensor.Shape{2}))
	if declareGrad {
		scope.Declare(GradVarName(SlotX))
	}
	return scope
}

func TestGradOps(t *testing.T) {
	tests := []struct {
		op   string
		want []float32
	}{
		{"reduce_sum_grad", []float32{1, 1, 1, 2, 2, 2}},
		{"reduce_mean_grad", []float32{1.0 / 3, 1.0 / 3, 1.0 / 3, 2.0 / 3, 2.0 / 3, 2.0 / 3}},
		{"reduce_max_grad", []float32{0, 1, 0, 0, 0, 2}},
	}

	registries := map[string]*Registry{
		"view": NewRegistry(),
		"raw":  NewRegistry(WithRawGradients()),
	}
	for path, r := range registries {
		for _, tt := range tests {
			t.Run(path+"/"+tt.op, func(t *testing.T) {
				scope := gradScope(t, true)
				require.NoError(t, r.Run(tt.op, NewExecutionContext(scope, Attrs{AttrDim: 1}, nil)))

				xGrad := scope.Get(GradVarName(SlotX))
				require.NotNil(t, xGrad)
				assert.Equal(t, tensor.Shape{2, 3}, xGrad.Shape())
				assert.InDeltaSlice(t, tt.want, xGrad.AsFloat32(), 1e-6)
			})
		}
	}
}

func TestGradOpWithoutRequestedGradient(t *testing.T) {
	scope := gradScope(t, false)
	require.NoError(t, NewRegistry().Run("reduce_sum_grad", NewExecutionContext(scope, Attrs{AttrDim: 1}, nil)))
	assert.False(t, scope.Has(GradVarName(SlotX)))
}

func TestGradOpErrors(t *testing.T) {
	r := NewRegistry()

	scope := gradScope(t, true)
	scope.Set(GradVarName(SlotOut), newInput(t, []float32{1, 2, 3}, tensor.Shape{3}))
	err := r.Run("reduce_sum_grad", NewExecutionContext(scope, Attrs{AttrDim: 1}, nil))
	assert.ErrorIs(t, err, reduce.ErrShapeMismatch)

	scope = gradScope(t, true)
	scope.Set(SlotOut, nil)
	err = r.Run("reduce_sum_grad", NewExecutionContext(scope, Attrs{AttrDim: 1}, nil))
	assert.Error(t, err, "missing Out")
}

func TestAttrs(t *testing.T) {
	a := Attrs{AttrDim: -1, AttrKeepDim: 1}
	assert.Equal(t, -1, a.Int(AttrDim, 0))
	assert.Equal(t, 7, a.Int("missing", 7))

	keep, err := a.Bool(AttrKeepDim)
	require.NoError(t, err)
	assert.True(t, keep)

	keep, err = Attrs{}.Bool(AttrKeepDim)
	require.NoError(t, err)
	assert.False(t, keep)

	_, err = Attrs{AttrKeepDim: -1}.Bool(AttrKeepDim)
	assert.Error(t, err)
}

func TestScope(t *testing.T) {
	s := NewScope()
	s.Declare("b")
	s.Set("a", newInput(t, []float32{1}, tensor.Shape{1}))
	assert.True(t, s.Has("b"))
	assert.Nil(t, s.Get("b"))
	assert.Equal(t, []string{"a", "b"}, s.Names())

	// Declaring a bound slot keeps the tensor.
	s.Declare("a")
	assert.NotNil(t, s.Get("a"))
}
