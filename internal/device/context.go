// Package device provides the compute context handed to reduction functors.
//
// A Context carries the placement of the buffers it works on and the worker
// configuration used to spread element-wise work. Functors never spawn goroutines
// themselves: all parallelism goes through Context.For and Context.ForGrid.
package device

import (
	"fmt"

	"github.com/born-ml/reduce/internal/parallel"
	"github.com/born-ml/reduce/internal/tensor"
)

// Context is an execution context for element-wise and reduction work.
type Context struct {
	place tensor.Device
	cfg   parallel.Config
}

// New creates a context for the given placement and worker configuration.
func New(place tensor.Device, cfg parallel.Config) *Context {
	return &Context{place: place, cfg: cfg}
}

// Default returns a CPU context using parallel.DefaultConfig.
func Default() *Context {
	return New(tensor.CPU, parallel.DefaultConfig())
}

// Sequential returns a CPU context that runs everything on the calling goroutine.
func Sequential() *Context {
	return New(tensor.CPU, parallel.Sequential())
}

// Place returns the device the context computes on.
func (c *Context) Place() tensor.Device {
	return c.place
}

// Config returns the worker configuration.
func (c *Context) Config() parallel.Config {
	return c.cfg
}

// For runs f(i) for every i in [0, n).
func (c *Context) For(n int, f func(i int)) {
	parallel.For(n, f, c.cfg)
}

// ForGrid runs f(o, i) for every lane of an outer x inner grid.
func (c *Context) ForGrid(outer, inner int, f func(o, i int)) {
	parallel.ForGrid(outer, inner, f, c.cfg)
}

// Supports reports whether buffers placed on d can be computed by this context.
// Only host memory is addressable from Go code.
func (c *Context) Supports(d tensor.Device) bool {
	return d == c.place && d == tensor.CPU
}

// String describes the context, e.g. "CPU(workers=8)".
func (c *Context) String() string {
	workers := 1
	if c.cfg.Enabled {
		workers = c.cfg.NumWorkers
	}
	return fmt.Sprintf("%s(workers=%d)", c.place, workers)
}
