package op

import (
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/reduce/internal/reduce"
)

// Kernel runs an operator against an execution context.
type Kernel func(ctx *ExecutionContext) error

// Registry maps operator types to kernels.
type Registry struct {
	kernels map[string]Kernel
	rawGrad bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithRawGradients makes the reduce_*_grad kernels use the raw strided-loop engine
// instead of the array-view engine.
func WithRawGradients() Option {
	return func(r *Registry) { r.rawGrad = true }
}

// NewRegistry creates a registry with forward and gradient kernels for every reduction kind.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		kernels: make(map[string]Kernel),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.registerReductions()
	return r
}

// Register adds or replaces a kernel.
func (r *Registry) Register(opType string, kernel Kernel) {
	r.kernels[opType] = kernel
}

// Get returns the kernel for an operator type.
func (r *Registry) Get(opType string) (Kernel, bool) {
	k, ok := r.kernels[opType]
	return k, ok
}

// SupportedOps returns the sorted list of registered operator types.
func (r *Registry) SupportedOps() []string {
	ops := make([]string, 0, len(r.kernels))
	for op := range r.kernels {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Run executes an operator.
func (r *Registry) Run(opType string, ctx *ExecutionContext) error {
	kernel, ok := r.kernels[opType]
	if !ok {
		return errors.Errorf("unsupported operator: %s", opType)
	}
	klog.V(1).Infof("running %s attrs=%v on %s", opType, map[string]int(ctx.Attrs), ctx.Device)
	if err := kernel(ctx); err != nil {
		return errors.WithMessage(err, opType)
	}
	return nil
}

// ForwardOpName returns "reduce_<kind>".
func ForwardOpName(kind reduce.Kind) string {
	return "reduce_" + kind.String()
}

// GradOpName returns "reduce_<kind>_grad".
func GradOpName(kind reduce.Kind) string {
	return ForwardOpName(kind) + "_grad"
}

func (r *Registry) registerReductions() {
	for _, kind := range reduce.Kinds() {
		r.Register(ForwardOpName(kind), forwardKernel(kind))
		r.Register(GradOpName(kind), gradKernel(kind, r.rawGrad))
	}
}
