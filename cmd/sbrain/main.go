// SBrain CLI - runs SBrain programs against stdin/stdout ports
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/sbrainlang/sbrain/manifest"
	"github.com/sbrainlang/sbrain/vm"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("sbrain")

func main() {
	expr := flag.String("e", "", "Run the given source text instead of a file")
	maxSteps := flag.Uint64("c", 0, "Step budget (0 = run until halt)")
	tapeSize := flag.Int("tape", 0, "Tape size override (minimum 65536)")
	stackCap := flag.Int("stack", 0, "Stack capacity override (minimum 256)")
	unbounded := flag.Bool("unbounded-stack", false, "Let the data stack grow past its capacity")
	inPath := flag.String("in", "", "Read the input port from a file instead of stdin")
	outPath := flag.String("out", "", "Write the output port to a file instead of stdout")
	snapPath := flag.String("snapshot", "", "Write a machine snapshot here if the step budget expires")
	resumePath := flag.String("resume", "", "Resume from a machine snapshot instead of loading source")
	verbosity := flag.Int("v", 0, "Log verbosity (0 = quiet)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sbrain [options] [program.sb]\n\n")
		fmt.Fprintf(os.Stderr, "Runs an SBrain program. The process exit status is the program's exit code.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sbrain hello.sb                # Run hello.sb with stdin/stdout ports\n")
		fmt.Fprintf(os.Stderr, "  sbrain -e '+++(@'              # Run inline source (exits 3)\n")
		fmt.Fprintf(os.Stderr, "  sbrain -c 100000 gen.sb        # Cap the run at 100000 steps\n")
		fmt.Fprintf(os.Stderr, "  sbrain -c 1000 -snapshot s.cbor gen.sb   # Save state if the budget expires\n")
		fmt.Fprintf(os.Stderr, "  sbrain -resume s.cbor          # Continue a saved run\n")
		fmt.Fprintf(os.Stderr, "\nWithout a program argument, the entry from sbrain.toml is used.\n")
	}
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	if err := run(*expr, flag.Args(), runOptions{
		maxSteps:   *maxSteps,
		tapeSize:   *tapeSize,
		stackCap:   *stackCap,
		unbounded:  *unbounded,
		inPath:     *inPath,
		outPath:    *outPath,
		snapPath:   *snapPath,
		resumePath: *resumePath,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	maxSteps   uint64
	tapeSize   int
	stackCap   int
	unbounded  bool
	inPath     string
	outPath    string
	snapPath   string
	resumePath string
}

// run executes one program and exits the process with its exit code. It
// returns an error only for failures before or during the run; a normal
// halt never returns.
func run(expr string, args []string, opts runOptions) error {
	if expr != "" && len(args) > 0 {
		return fmt.Errorf("cannot combine -e with a program file")
	}
	if len(args) > 1 {
		return fmt.Errorf("expected at most one program file, got %d", len(args))
	}

	// A manifest contributes machine defaults and the symbol table; flags win.
	mf, err := manifest.FindAndLoad(".")
	if err != nil {
		return err
	}

	input, output, closeAll, err := openPorts(opts.inPath, opts.outPath)
	if err != nil {
		return err
	}
	defer closeAll()

	machineOpts := []vm.Option{vm.WithInput(input), vm.WithOutput(output)}
	if mf != nil {
		machineOpts = append(machineOpts, mf.MachineOptions()...)
	}
	if opts.tapeSize > 0 {
		machineOpts = append(machineOpts, vm.WithTapeSize(opts.tapeSize))
	}
	if opts.stackCap > 0 {
		machineOpts = append(machineOpts, vm.WithStackCapacity(opts.stackCap))
	}
	if opts.unbounded {
		machineOpts = append(machineOpts, vm.WithUnboundedStack())
	}
	if opts.maxSteps > 0 {
		machineOpts = append(machineOpts, vm.WithMaxSteps(opts.maxSteps))
	}

	var m *vm.Machine
	switch {
	case opts.resumePath != "":
		m, err = loadSnapshot(opts.resumePath, machineOpts)
	default:
		m, err = loadProgram(expr, args, mf, machineOpts)
	}
	if err != nil {
		return err
	}

	res, err := m.Run(context.Background())
	if err != nil {
		return err
	}

	if !res.Halted {
		log.Warningf("step budget expired after %d steps without a halt", res.Steps)
		if opts.snapPath != "" {
			if err := writeSnapshot(m, opts.snapPath); err != nil {
				return err
			}
			log.Infof("snapshot written to %s", opts.snapPath)
		}
		closeAll()
		os.Exit(1)
	}

	log.Infof("halted after %d steps with exit code %d", res.Steps, res.ExitCode)
	closeAll()
	os.Exit(int(res.ExitCode))
	return nil
}

// loadProgram transliterates source from -e, a program file, or the
// manifest entry, and builds a machine for it.
func loadProgram(expr string, args []string, mf *manifest.Manifest, machineOpts []vm.Option) (*vm.Machine, error) {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else if expr == "" {
		if mf == nil || mf.EntryPath() == "" {
			return nil, fmt.Errorf("no program: give a file, -e source, or an sbrain.toml entry")
		}
		path = mf.EntryPath()
	}

	source := expr
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read program: %w", err)
		}
		source = string(data)
		log.Debugf("loaded %d bytes of source from %s", len(data), path)
	}

	trans := vm.NewTransliterator()
	if mf != nil {
		t, err := mf.Transliterator()
		if err != nil {
			return nil, err
		}
		trans = t
	}

	program := trans.Transliterate(source)
	log.Debugf("transliterated %d instructions", len(program))
	return vm.New(program, machineOpts...)
}

// loadSnapshot restores a machine from a CBOR snapshot file.
func loadSnapshot(path string, machineOpts []vm.Option) (*vm.Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read snapshot: %w", err)
	}
	snap, err := vm.UnmarshalSnapshot(data)
	if err != nil {
		return nil, err
	}
	log.Infof("resuming at step %d", snap.Steps)
	return vm.Restore(snap, machineOpts...)
}

// writeSnapshot saves the machine state for a later -resume.
func writeSnapshot(m *vm.Machine, path string) error {
	data, err := vm.MarshalSnapshot(m.Snapshot())
	if err != nil {
		return fmt.Errorf("cannot encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write snapshot: %w", err)
	}
	return nil
}

// openPorts wires the input and output ports to files or stdin/stdout.
func openPorts(inPath, outPath string) (io.Reader, io.Writer, func(), error) {
	var input io.Reader = os.Stdin
	var output io.Writer = os.Stdout
	var closers []func()

	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("cannot open input: %w", err)
		}
		input = f
		closers = append(closers, func() { f.Close() })
	}
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, nil, fmt.Errorf("cannot create output: %w", err)
		}
		output = f
		closers = append(closers, func() { f.Close() })
	}

	var once bool
	closeAll := func() {
		if once {
			return
		}
		once = true
		for _, c := range closers {
			c()
		}
	}
	return input, output, closeAll, nil
}
