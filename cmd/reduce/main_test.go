package main

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/reduce/internal/op"
	"github.com/born-ml/reduce/internal/reduce"
	"github.com/born-ml/reduce/internal/tensor"
)

func TestParseValues(t *testing.T) {
	values, err := parseValues(" 1, 2.5,-3 ", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3}, values)

	values, err = parseValues("", 4, func(i int) float64 { return float64(i * i) })
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 4, 9}, values)

	_, err = parseValues("1,2", 3, nil)
	assert.Error(t, err)
	_, err = parseValues("1,x,3", 3, nil)
	assert.Error(t, err)
}

func TestParseRequest(t *testing.T) {
	req, err := parseRequest("mean", "2,3", "", "int32", -1, true)
	require.NoError(t, err)
	assert.Equal(t, reduce.Mean, req.kind)
	assert.Equal(t, tensor.Shape{2, 3}, req.x.Shape())
	assert.Equal(t, []int32{0, 1, 2, 3, 4, 5}, req.x.AsInt32())
	assert.Equal(t, op.Attrs{op.AttrDim: -1, op.AttrKeepDim: 1}, req.attrs())

	_, err = parseRequest("prod", "2,3", "", "f32", 0, false)
	assert.Error(t, err)
	_, err = parseRequest("sum", "2,0", "", "f32", 0, false)
	assert.Error(t, err)
	_, err = parseRequest("sum", "2,3", "", "bool", 0, false)
	assert.Error(t, err)
	_, err = parseRequest("sum", "2,3", "1,2", "f32", 0, false)
	assert.Error(t, err)
}

func TestParseOutGrad(t *testing.T) {
	out := must.M1(tensor.NewRaw(tensor.Shape{2, 1}, tensor.Float64, tensor.CPU))
	grad, err := parseOutGrad("", out)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 1}, grad.Shape())
	assert.Equal(t, []float64{1, 1}, grad.AsFloat64())

	_, err = parseOutGrad("1,2,3", out)
	assert.Error(t, err)
}

func TestTensorRows(t *testing.T) {
	x := must.M1(tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, tensor.Shape{2, 2, 3}))
	headers, rows := tensorRows(x)
	assert.Equal(t, []string{"index", "0", "1", "2"}, headers)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"[0,0]", "1", "2", "3"}, rows[0])
	assert.Equal(t, []string{"[1,0]", "7", "8", "9"}, rows[2])
	assert.Equal(t, []string{"[1,1]", "10", "11", "12"}, rows[3])

	v := must.M1(tensor.FromSlice([]int64{4, 5}, tensor.Shape{2}))
	_, rows = tensorRows(v)
	assert.Equal(t, [][]string{{"[]", "4", "5"}}, rows)
}

func TestSummary(t *testing.T) {
	x := must.M1(tensor.NewRaw(tensor.Shape{100, 30}, tensor.Float32, tensor.CPU))
	assert.Equal(t, "float32[100 30]@CPU: 3,000 elements, 12 kB", summary(x))
}

func TestDeviceContext(t *testing.T) {
	assert.False(t, deviceContext(8, true).Config().Enabled)

	dev := deviceContext(3, false)
	assert.Equal(t, 3, dev.Config().NumWorkers)
	assert.True(t, dev.Config().Enabled)
	assert.Equal(t, tensor.CPU, dev.Place())
}
