// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensors consumed by the reduction engine.
//
// # Overview
//
// A RawTensor is a flat, row-major buffer with a Shape, a DataType and the Device
// it lives on. Typed access is provided by AsFloat32, AsFloat64, AsInt32, AsInt64
// and AsFloat16, all of which alias the underlying buffer.
//
// # Basic Usage
//
//	import "github.com/born-ml/reduce/tensor"
//
//	func main() {
//	    x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(x, x.AsFloat32())
//	}
//
// # Axes
//
// Axes may be negative, counting from the last dimension. NormalizeAxis maps them
// into [0, rank).
package tensor
