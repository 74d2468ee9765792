// Package op exposes the reduction engine as named operators.
//
// Every operator reads its tensors from a Scope by slot name, its integer attributes
// from Attrs, and runs on the compute context of its ExecutionContext:
//
//	reduce_<kind>       inputs X            outputs Out     attrs dim, keep_dim
//	reduce_<kind>_grad  inputs X, Out, Out@GRAD   outputs X@GRAD (optional)
package op

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/reduce/internal/device"
	"github.com/born-ml/reduce/internal/tensor"
)

// GradSuffix marks the gradient slot of a variable.
const GradSuffix = "@GRAD"

// GradVarName returns the name of the gradient slot of name, e.g. "X@GRAD".
func GradVarName(name string) string {
	return name + GradSuffix
}

// Scope is a named tensor store.
//
// A slot can be declared without a tensor: operators allocate declared output
// slots and leave undeclared ones alone.
type Scope struct {
	vars map[string]*tensor.RawTensor
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]*tensor.RawTensor)}
}

// Set binds t to name.
func (s *Scope) Set(name string, t *tensor.RawTensor) {
	s.vars[name] = t
}

// Declare reserves an output slot to be filled by an operator.
func (s *Scope) Declare(name string) {
	if _, ok := s.vars[name]; !ok {
		s.vars[name] = nil
	}
}

// Get returns the tensor bound to name, or nil.
func (s *Scope) Get(name string) *tensor.RawTensor {
	return s.vars[name]
}

// Has reports whether name is bound or declared.
func (s *Scope) Has(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Names returns the sorted slot names.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Attrs holds integer operator attributes.
type Attrs map[string]int

// Int returns the attribute or defaultVal when unset.
func (a Attrs) Int(name string, defaultVal int) int {
	if v, ok := a[name]; ok {
		return v
	}
	return defaultVal
}

// Bool reads a 0/1 attribute.
func (a Attrs) Bool(name string) (bool, error) {
	switch v := a.Int(name, 0); v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Errorf("attribute %s must be 0 or 1, got %d", name, v)
	}
}

// ExecutionContext is what a kernel sees of the world.
type ExecutionContext struct {
	Scope  *Scope
	Attrs  Attrs
	Device *device.Context
}

// NewExecutionContext bundles a scope, attributes and compute context.
// A nil dev uses device.Default().
func NewExecutionContext(scope *Scope, attrs Attrs, dev *device.Context) *ExecutionContext {
	if dev == nil {
		dev = device.Default()
	}
	if attrs == nil {
		attrs = Attrs{}
	}
	return &ExecutionContext{Scope: scope, Attrs: attrs, Device: dev}
}

// Input returns the tensor bound to a required input slot.
func (c *ExecutionContext) Input(name string) (*tensor.RawTensor, error) {
	t := c.Scope.Get(name)
	if t == nil {
		return nil, errors.Errorf("input %s is not set", name)
	}
	return t, nil
}

// Allocate creates the tensor of an output slot with the given shape and dtype,
// binds it in the scope, and returns it. Undeclared slots return nil: the output
// was not requested.
func (c *ExecutionContext) Allocate(name string, shape tensor.Shape, dtype tensor.DataType) (*tensor.RawTensor, error) {
	if !c.Scope.Has(name) {
		return nil, nil
	}
	if t := c.Scope.Get(name); t != nil && t.Shape().Equal(shape) && t.DType() == dtype {
		return t, nil
	}
	t, err := tensor.NewRaw(shape, dtype, c.Device.Place())
	if err != nil {
		return nil, errors.Wrapf(err, "allocating %s", name)
	}
	c.Scope.Set(name, t)
	return t, nil
}
