package reduce

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind selects a reduction operator.
type Kind int

// Supported reductions.
const (
	Sum Kind = iota
	Mean
	Max
	Min
)

// Kinds lists every supported reduction in declaration order.
func Kinds() []Kind {
	return []Kind{Sum, Mean, Max, Min}
}

// String returns the lower-case operator name.
func (k Kind) String() string {
	switch k {
	case Sum:
		return "sum"
	case Mean:
		return "mean"
	case Max:
		return "max"
	case Min:
		return "min"
	default:
		return "unknown"
	}
}

// ParseKind converts "sum", "mean", "max" or "min" into a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sum":
		return Sum, nil
	case "mean", "avg":
		return Mean, nil
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	}
	return 0, errors.Errorf("unknown reduction %q", name)
}

// functors returns the forward functor, gradient functor and per-element gradient rule for kind.
// Max and Min share the same gradient rule.
func functors[T Number](kind Kind) (Forward[T], Gradient[T], ElementGrad[T], error) {
	switch kind {
	case Sum:
		return SumFunctor[T]{}, SumGradFunctor[T]{}, SumElementGrad[T], nil
	case Mean:
		return MeanFunctor[T]{}, MeanGradFunctor[T]{}, MeanElementGrad[T], nil
	case Max:
		return MaxFunctor[T]{}, MaxOrMinGradFunctor[T]{}, MaxOrMinElementGrad[T], nil
	case Min:
		return MinFunctor[T]{}, MaxOrMinGradFunctor[T]{}, MaxOrMinElementGrad[T], nil
	}
	return nil, nil, nil, errors.Errorf("unknown reduction kind %d", int(kind))
}
