// Package main provides the reduce CLI: it runs reduction operators on literal
// tensors and prints the results as tables.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/reduce/internal/device"
	"github.com/born-ml/reduce/internal/op"
	"github.com/born-ml/reduce/internal/parallel"
	"github.com/born-ml/reduce/internal/tensor"
)

const version = "v0.1.0-dev"

var (
	flagKind    = flag.String("kind", "sum", "Reduction to run: sum, mean, max or min.")
	flagShape   = flag.String("shape", "2,3", "Comma-separated shape of the input tensor X, e.g. \"2,3,4\".")
	flagValues  = flag.String("values", "", "Comma-separated values of X in row-major order. Empty fills X with 0, 1, 2, ...")
	flagAxis    = flag.Int("axis", 0, "Axis to reduce. Negative values count from the last axis.")
	flagKeepDim = flag.Bool("keep_dim", false, "Keep the reduced axis with extent 1.")
	flagDType   = flag.String("dtype", "float32", "Element type: float32, float64, int32, int64 or float16.")
	flagOutGrad = flag.String("out_grad", "", "Comma-separated upstream gradient for backward. Empty uses all ones.")
	flagRaw     = flag.Bool("raw", false, "Compute gradients with the raw strided-loop engine.")
	flagWorkers = flag.Int("workers", 0, "Number of worker goroutines. 0 uses the number of CPUs.")
	flagSeq     = flag.Bool("sequential", false, "Run on the calling goroutine only.")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: reduce <command> [flags]\n\n")
	fmt.Fprintf(out, "Commands:\n")
	fmt.Fprintf(out, "  version    Show version\n")
	fmt.Fprintf(out, "  ops        List the registered operators\n")
	fmt.Fprintf(out, "  forward    Reduce X along -axis and print Out\n")
	fmt.Fprintf(out, "  backward   Reduce X, then print X@GRAD for -out_grad\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]
	if err := flag.CommandLine.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %q. See 'reduce -help'.", flag.Args())
		os.Exit(2)
	}

	var err error
	switch command {
	case "version":
		fmt.Printf("reduce %s\n", version)
	case "ops":
		printOps(op.NewRegistry())
	case "forward", "backward":
		err = run(command == "backward")
	case "help", "-help", "-h", "--help":
		usage()
	default:
		klog.Errorf("Unknown command %q. See 'reduce -help'.", command)
		os.Exit(2)
	}
	if err != nil {
		klog.Fatalf("reduce %s: %+v", command, err)
	}
}

// deviceContext builds the compute context from -workers and -sequential.
func deviceContext(workers int, sequential bool) *device.Context {
	if sequential {
		return device.Sequential()
	}
	cfg := parallel.DefaultConfig()
	if workers > 0 {
		cfg.NumWorkers = workers
		cfg.Enabled = workers > 1
	}
	return device.New(tensor.CPU, cfg)
}

func run(backward bool) error {
	req, err := parseRequest(*flagKind, *flagShape, *flagValues, *flagDType, *flagAxis, *flagKeepDim)
	if err != nil {
		return err
	}
	dev := deviceContext(*flagWorkers, *flagSeq)
	klog.V(1).Infof("running on %s", dev)

	var opts []op.Option
	if *flagRaw {
		opts = append(opts, op.WithRawGradients())
	}
	registry := op.NewRegistry(opts...)

	scope := op.NewScope()
	scope.Set(op.SlotX, req.x)
	ctx := op.NewExecutionContext(scope, req.attrs(), dev)
	if err := registry.Run(op.ForwardOpName(req.kind), ctx); err != nil {
		return err
	}
	printTensor(op.SlotX, req.x)
	out := scope.Get(op.SlotOut)
	printTensor(op.SlotOut, out)
	if !backward {
		return nil
	}

	outGrad, err := parseOutGrad(*flagOutGrad, out)
	if err != nil {
		return err
	}
	scope.Set(op.GradVarName(op.SlotOut), outGrad)
	scope.Declare(op.GradVarName(op.SlotX))
	if err := registry.Run(op.GradOpName(req.kind), ctx); err != nil {
		return err
	}
	printTensor(op.GradVarName(op.SlotOut), outGrad)
	printTensor(op.GradVarName(op.SlotX), scope.Get(op.GradVarName(op.SlotX)))
	return nil
}

// parseOutGrad builds the upstream gradient with Out's shape and dtype.
func parseOutGrad(text string, out *tensor.RawTensor) (*tensor.RawTensor, error) {
	values, err := parseValues(text, out.NumElements(), func(int) float64 { return 1 })
	if err != nil {
		return nil, errors.WithMessage(err, "-out_grad")
	}
	return tensor.FromFloat64s(values, out.Shape(), out.DType())
}
