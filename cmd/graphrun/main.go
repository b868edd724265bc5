// Command graphrun is a thin CLI over the engine's two operations:
// profiling a loaded graph's per-node evaluation cost, and (sketched
// only) comparing its outputs against a reference framework. Grounded
// on original_source/cli/src/main.rs's compare/profile split and the
// teacher's own flag-struct style in cmd/zerfoo-predict/main.go.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/graph"
	"github.com/tensorlace/graphrun/loader"
	"github.com/tensorlace/graphrun/ops"
	"github.com/tensorlace/graphrun/registry"
	"github.com/tensorlace/graphrun/state"
	"github.com/tensorlace/graphrun/tensor"
)

const defaultIters = 10000

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sub := os.Args[1]

	var err error

	switch sub {
	case "profile":
		err = runProfile(os.Args[2:])
	case "compare":
		err = runCompare(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: graphrun <profile|compare> -model <path> -size <WxHxTYPE> [-input name]... [-output name] [-d]...")
}

// params holds the flag surface shared by both subcommands, mirroring
// original_source/cli/src/main.rs's single Parameters struct populated
// once before dispatching to handle_profile/handle_compare.
type params struct {
	modelPath string
	inputs    stringList
	output    string
	sizeX     int
	sizeY     int
	sizeType  dtype.Type
	verbosity verbosity
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)

	return nil
}

// verbosity counts repeated -d flags the way clap's occurrences_of does
// for the original CLI's debug flag.
type verbosity int

func (v *verbosity) String() string   { return strconv.Itoa(int(*v)) }
func (v *verbosity) Set(string) error { *v++; return nil }
func (v *verbosity) IsBoolFlag() bool { return true }

// newCommonFlagSet registers the flag surface shared by both
// subcommands without parsing, so a caller can add its own flags (e.g.
// profile's -iters) before a single Parse call.
func newCommonFlagSet(name string) (*flag.FlagSet, *params, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	p := &params{}

	fs.StringVar(&p.modelPath, "model", "", "path to the zmf-encoded model (required)")
	fs.Var(&p.inputs, "input", "input node name (auto-detects Placeholder nodes otherwise, repeatable)")
	fs.StringVar(&p.output, "output", "", "output node name (auto-detects the graph's sink otherwise)")
	fs.Var(&p.verbosity, "d", "increase verbosity (repeatable)")

	size := fs.String("size", "", "input size, e.g. 32x64xf32 (required)")

	return fs, p, size
}

func finishParse(p *params, size *string) error {
	if p.modelPath == "" {
		return fmt.Errorf("-model is required")
	}

	if *size == "" {
		return fmt.Errorf("-size is required")
	}

	x, y, dt, err := parseSize(*size)
	if err != nil {
		return err
	}

	p.sizeX, p.sizeY, p.sizeType = x, y, dt

	return nil
}

// parseSize accepts "WxHxTYPE", the same format original_source/cli's
// -s/--size flag does.
func parseSize(s string) (int, int, dtype.Type, error) {
	parts := strings.SplitN(s, "x", 3)
	if len(parts) != 3 {
		return 0, 0, dtype.Invalid, fmt.Errorf("size should be formatted as {size}x{size}x{type}, got %q", s)
	}

	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, dtype.Invalid, fmt.Errorf("invalid size x: %w", err)
	}

	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, dtype.Invalid, fmt.Errorf("invalid size y: %w", err)
	}

	var dt dtype.Type

	switch strings.ToLower(parts[2]) {
	case "f64":
		dt = dtype.F64
	case "f32":
		dt = dtype.F32
	case "i32":
		dt = dtype.I32
	case "i8":
		dt = dtype.I8
	case "u8":
		dt = dtype.U8
	default:
		return 0, 0, dtype.Invalid, fmt.Errorf("type of the input should be f64, f32, i32, i8 or u8, got %q", parts[2])
	}

	return x, y, dt, nil
}

func runProfile(args []string) error {
	fs, p, size := newCommonFlagSet("profile")
	iters := fs.Int("iters", defaultIters, "number of iterations to average over")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := finishParse(p, size); err != nil {
		return err
	}

	g, err := loadGraph(p)
	if err != nil {
		return err
	}

	outputName, err := resolveOutput(g, p.output)
	if err != nil {
		return err
	}

	outputNode, err := g.NodeByName(outputName)
	if err != nil {
		return err
	}

	s := state.New(g)
	if err := bindInputs(g, s, p); err != nil {
		return err
	}

	plan, err := g.ExecutionPlan(outputNode.ID())
	if err != nil {
		return err
	}

	if p.verbosity > 0 {
		log.Printf("using execution plan: %v", plan)
		log.Printf("running %d iterations at each step", *iters)
	}

	fmt.Println()
	fmt.Printf("Profiling the execution of %s:\n", p.modelPath)

	for _, id := range plan {
		n, err := g.NodeByID(id)
		if err != nil {
			return err
		}

		if n.Op().OpType() == "Placeholder" {
			fmt.Printf("  [%d] %-20s %-12s SKIP\n", n.ID(), n.Name(), n.Op().OpType())

			continue
		}

		inputs := make([]*tensor.Tensor, len(n.Inputs()))

		for i, ref := range n.Inputs() {
			out, ok := s.Outputs(ref.Node)
			if !ok || ref.Slot >= len(out) {
				return fmt.Errorf("node %q: %w", n.Name(), state.ErrPrecondMissing)
			}

			inputs[i] = out[ref.Slot]
		}

		start := time.Now()

		for i := 0; i < *iters; i++ {
			if _, err := n.Op().Eval(inputs); err != nil {
				return fmt.Errorf("node %q: %w", n.Name(), err)
			}
		}

		elapsed := time.Since(start)

		if _, err := s.ComputeOne(id); err != nil {
			return fmt.Errorf("node %q: %w", n.Name(), err)
		}
		fmt.Printf("  [%d] %-20s %-12s %.4f ms\n", n.ID(), n.Name(), n.Op().OpType(), float64(elapsed.Milliseconds())/float64(*iters))
	}

	fmt.Println()

	return nil
}

// errNoReferenceBackend is returned by the compare subcommand: this
// build has no reference-framework backend wired in, matching
// spec.md's framing of cross-validation as an external collaborator
// this engine does not implement.
var errNoReferenceBackend = fmt.Errorf("compare requires a reference-framework backend, which is not wired into this build")

func runCompare(args []string) error {
	fs, p, size := newCommonFlagSet("compare")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := finishParse(p, size); err != nil {
		return err
	}

	return errNoReferenceBackend
}

func loadGraph(p *params) (*graph.Graph, error) {
	reg := registry.New()
	ops.RegisterAll(reg)

	return loader.LoadGraph(p.modelPath, reg)
}

// resolveOutput returns explicit when non-empty, otherwise the name of
// the graph's unique sink node: one that is never referenced as
// another node's input, mirroring original_source/cli/src/utils.rs's
// detect_output.
func resolveOutput(g *graph.Graph, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	referenced := make(map[int]bool)

	for _, n := range g.Nodes() {
		for _, in := range n.Inputs() {
			referenced[in.Node] = true
		}
	}

	var sinks []string

	for _, n := range g.Nodes() {
		if !referenced[n.ID()] {
			sinks = append(sinks, n.Name())
		}
	}

	if len(sinks) != 1 {
		return "", fmt.Errorf("cannot auto-detect a unique output node (candidates: %v); pass -output explicitly", sinks)
	}

	return sinks[0], nil
}

// bindInputs fills every requested (or auto-detected Placeholder) input
// node with a random tensor shaped by the -size flag, mirroring
// original_source/cli/src/utils.rs's random_matrix helper.
func bindInputs(g *graph.Graph, s *state.State, p *params) error {
	names := p.inputs
	if len(names) == 0 {
		for _, n := range g.Nodes() {
			if n.Op().OpType() == "Placeholder" {
				names = append(names, n.Name())
			}
		}
	}

	for _, name := range names {
		n, err := g.NodeByName(name)
		if err != nil {
			return err
		}

		t, err := randomTensor(p.sizeX, p.sizeY, p.sizeType)
		if err != nil {
			return err
		}

		if err := s.SetValue(n.ID(), []*tensor.Tensor{t}); err != nil {
			return err
		}
	}

	return nil
}

func randomTensor(x, y int, dt dtype.Type) (*tensor.Tensor, error) {
	shape := []int{x, y}
	size := x * y

	switch dt {
	case dtype.F32:
		data := make([]float32, size)
		for i := range data {
			data[i] = rand.Float32()
		}

		return tensor.New(shape, data)
	case dtype.F64:
		data := make([]float64, size)
		for i := range data {
			data[i] = rand.Float64()
		}

		return tensor.New(shape, data)
	case dtype.I32:
		data := make([]int32, size)
		for i := range data {
			data[i] = rand.Int31n(256)
		}

		return tensor.New(shape, data)
	case dtype.I8:
		data := make([]int8, size)
		for i := range data {
			data[i] = int8(rand.Intn(128))
		}

		return tensor.New(shape, data)
	case dtype.U8:
		data := make([]uint8, size)
		for i := range data {
			data[i] = uint8(rand.Intn(256))
		}

		return tensor.New(shape, data)
	default:
		return nil, fmt.Errorf("unsupported input type %s", dt)
	}
}
