// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package reduce provides single-axis Sum, Mean, Max and Min reductions over
// tensors of rank 1 to 6, with their gradients.
//
// # Basic Usage
//
//	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	out, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.CPU)
//
//	engine := reduce.New(nil) // CPU, default worker configuration
//	err := engine.Reduce(x, out, reduce.Descriptor{Axis: -1}, reduce.Sum)
//	// out = [6 15]
//
// # Operators
//
// The same reductions are available as named operators through a Registry:
//
//	registry := reduce.NewRegistry()
//	scope := reduce.NewScope()
//	scope.Set("X", x)
//	err := registry.Run("reduce_mean", reduce.NewExecutionContext(scope, reduce.Attrs{"dim": 1}, nil))
//	mean := scope.Get("Out")
//
// Gradient operators write X@GRAD only when the scope declares that slot.
package reduce
