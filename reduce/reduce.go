// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package reduce

import (
	"github.com/born-ml/reduce/internal/device"
	"github.com/born-ml/reduce/internal/op"
	"github.com/born-ml/reduce/internal/parallel"
	"github.com/born-ml/reduce/internal/reduce"
	"github.com/born-ml/reduce/tensor"
)

// Engine runs reductions on a compute context.
type Engine = reduce.Engine

// Descriptor selects the reduced axis and whether it is kept with extent 1.
type Descriptor = reduce.Descriptor

// Kind selects a reduction operator.
type Kind = reduce.Kind

// Supported reductions.
const (
	Sum  Kind = reduce.Sum
	Mean Kind = reduce.Mean
	Max  Kind = reduce.Max
	Min  Kind = reduce.Min
)

// MaxRank is the highest supported tensor rank.
const MaxRank = reduce.MaxRank

// Errors returned by the engine and operators. Match them with errors.Is.
var (
	ErrUnsupportedRank  = reduce.ErrUnsupportedRank
	ErrInvalidAxis      = reduce.ErrInvalidAxis
	ErrShapeMismatch    = reduce.ErrShapeMismatch
	ErrDTypeMismatch    = reduce.ErrDTypeMismatch
	ErrUnsupportedDType = reduce.ErrUnsupportedDType
	ErrUnsupportedPlace = reduce.ErrUnsupportedPlace
)

// Context is the compute context: device placement plus worker configuration.
type Context = device.Context

// Config controls parallel execution.
type Config = parallel.Config

// New creates an engine bound to ctx. A nil ctx runs on the CPU with the default worker configuration.
func New(ctx *Context) *Engine {
	return reduce.New(ctx)
}

// NewContext creates a compute context.
func NewContext(place tensor.Device, cfg Config) *Context {
	return device.New(place, cfg)
}

// DefaultConfig returns a worker configuration based on the CPU count.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// SequentialContext returns a CPU context that never spawns goroutines.
func SequentialContext() *Context {
	return device.Sequential()
}

// ParseKind parses a reduction name such as "sum" or "mean".
func ParseKind(name string) (Kind, error) {
	return reduce.ParseKind(name)
}

// Kinds lists every supported reduction.
func Kinds() []Kind {
	return reduce.Kinds()
}

// Operator layer

// Registry maps operator types to kernels.
type Registry = op.Registry

// Scope is a named tensor store.
type Scope = op.Scope

// Attrs holds integer operator attributes.
type Attrs = op.Attrs

// ExecutionContext bundles a scope, attributes and compute context for one operator run.
type ExecutionContext = op.ExecutionContext

// RegistryOption configures a Registry.
type RegistryOption = op.Option

// NewRegistry creates a registry with reduce_<kind> and reduce_<kind>_grad operators.
func NewRegistry(opts ...RegistryOption) *Registry {
	return op.NewRegistry(opts...)
}

// WithRawGradients makes gradient operators use the raw strided-loop engine.
func WithRawGradients() RegistryOption {
	return op.WithRawGradients()
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return op.NewScope()
}

// NewExecutionContext bundles a scope, attributes and compute context.
// A nil ctx uses the default CPU context.
func NewExecutionContext(scope *Scope, attrs Attrs, ctx *Context) *ExecutionContext {
	return op.NewExecutionContext(scope, attrs, ctx)
}

// GradVarName returns the gradient slot of name, e.g. "X@GRAD".
func GradVarName(name string) string {
	return op.GradVarName(name)
}
