package main

import (
	"strconv"
	"strings"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"

	"github.com/born-ml/reduce/internal/op"
	"github.com/born-ml/reduce/internal/reduce"
	"github.com/born-ml/reduce/internal/tensor"
)

// request is a parsed forward/backward invocation.
type request struct {
	kind    reduce.Kind
	x       *tensor.RawTensor
	axis    int
	keepDim bool
}

func (r *request) attrs() op.Attrs {
	attrs := op.Attrs{op.AttrDim: r.axis}
	if r.keepDim {
		attrs[op.AttrKeepDim] = 1
	}
	return attrs
}

func parseRequest(kindName, shapeText, valuesText, dtypeName string, axis int, keepDim bool) (*request, error) {
	kind, err := reduce.ParseKind(kindName)
	if err != nil {
		return nil, errors.WithMessage(err, "-kind")
	}
	shape, err := tensor.ParseShape(shapeText)
	if err != nil {
		return nil, errors.WithMessage(err, "-shape")
	}
	dtype, err := tensor.ParseDataType(dtypeName)
	if err != nil {
		return nil, errors.WithMessage(err, "-dtype")
	}
	values, err := parseValues(valuesText, shape.NumElements(), func(i int) float64 { return float64(i) })
	if err != nil {
		return nil, errors.WithMessage(err, "-values")
	}
	// Lengths match, so only an unsupported dtype could fail, and ParseDataType rules that out.
	x := must.M1(tensor.FromFloat64s(values, shape, dtype))
	return &request{kind: kind, x: x, axis: axis, keepDim: keepDim}, nil
}

// parseValues parses n comma-separated numbers. An empty text yields fill(0..n-1).
func parseValues(text string, n int, fill func(i int) float64) ([]float64, error) {
	text = strings.Trim(strings.TrimSpace(text), "[]")
	if text == "" {
		values := make([]float64, n)
		for i := range values {
			values[i] = fill(i)
		}
		return values, nil
	}
	parts := strings.Split(text, ",")
	if len(parts) != n {
		return nil, errors.Errorf("got %d values, want %d", len(parts), n)
	}
	values := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value #%d", i)
		}
		values[i] = v
	}
	return values, nil
}
