// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/x448/float16"

	"github.com/born-ml/reduce/internal/tensor"
)

// Type aliases for public API

// Numeric is the constraint for element types with direct slice access.
// Supported types: float32, float64, int32, int64.
type Numeric = tensor.Numeric

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Float16 DataType = tensor.Float16
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the low-level tensor representation.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32() // aliases the buffer
//	clone := raw.Clone()    // deep copy
type RawTensor = tensor.RawTensor

// ErrAxisOutOfRange is returned when an axis does not address a dimension of the shape.
var ErrAxisOutOfRange = tensor.ErrAxisOutOfRange

// Creation functions

// NewRaw allocates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice creates a CPU tensor holding a copy of data.
//
// Example:
//
//	x, err := tensor.FromSlice([]int64{1, 2, 3}, tensor.Shape{3})
func FromSlice[T Numeric](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromFloat16 creates a CPU Float16 tensor holding a copy of data.
func FromFloat16(data []float16.Float16, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat16(data, shape)
}

// FromFloat64s creates a CPU tensor of the given dtype, converting each value.
func FromFloat64s(values []float64, shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.FromFloat64s(values, shape, dtype)
}

// Flat returns the typed element slice of r. It panics if T does not match r's dtype.
func Flat[T Numeric](r *RawTensor) []T {
	return tensor.Flat[T](r)
}

// Parsing helpers

// ParseShape parses a comma-separated shape such as "2,3,4".
func ParseShape(text string) (Shape, error) {
	return tensor.ParseShape(text)
}

// ParseDataType parses a dtype name such as "f32" or "float64".
func ParseDataType(name string) (DataType, error) {
	return tensor.ParseDataType(name)
}

// NormalizeAxis maps a possibly negative axis into [0, rank).
func NormalizeAxis(axis, rank int) (int, error) {
	return tensor.NormalizeAxis(axis, rank)
}
