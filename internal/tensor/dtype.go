// Package tensor provides the dense tensor representation consumed by the reduction engine.
package tensor

import (
	"strings"

	"github.com/pkg/errors"
)

// Numeric is the constraint for element types that can be viewed directly as Go slices.
// Float16 tensors are stored as float16.Float16 and accessed through AsFloat16.
type Numeric interface {
	float32 | float64 | int32 | int64
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Float16
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Float16:
		return 2
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float16:
		return "float16"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the data type is a floating point type.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64 || dt == Float16
}

// ParseDataType converts a name such as "float32" or "f16" into a DataType.
func ParseDataType(name string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "float32", "f32":
		return Float32, nil
	case "float64", "f64":
		return Float64, nil
	case "int32", "i32":
		return Int32, nil
	case "int64", "i64":
		return Int64, nil
	case "float16", "f16", "half":
		return Float16, nil
	}
	return 0, errors.Errorf("unknown data type %q", name)
}

// DataTypeOf returns the DataType matching the Go type T.
func DataTypeOf[T Numeric]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	}
	panic("unsupported type")
}
