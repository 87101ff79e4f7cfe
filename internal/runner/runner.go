package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"clox/internal/program"
	"clox/pkg/chunk"
	"clox/pkg/color"
	"clox/pkg/vm"

	"github.com/charmbracelet/log"
)

var ErrNoProgram = errors.New("no program given")

type Runner struct {
	Help        bool   // Show help message
	Verbose     bool   // Enable verbose output
	NoColor     bool   // Disable colored output
	Disassemble bool   // Print the chunk listing before running
	Trace       bool   // Trace every instruction to stderr
	Demo        string // Name of a built-in program to run instead of SourceFile
	SourceFile  string // Path to a .toml program or .cbor image
	OutputFile  string // Path to write the program as a CBOR image

	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr
}

// Run loads the program, optionally writes its image and listing, and interprets it.
func (opts *Runner) Run() error {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	p, err := opts.load()
	if err != nil {
		return err
	}

	if opts.OutputFile != "" {
		data, err := program.MarshalImage(p)
		if err != nil {
			return fmt.Errorf("encoding image: %w", err)
		}
		if err := os.WriteFile(opts.OutputFile, data, 0644); err != nil {
			return fmt.Errorf("writing image: %w", err)
		}
		log.Info("Wrote image", "file", opts.OutputFile, "bytes", len(data))
	}

	var vmOpts []vm.Option
	vmOpts = append(vmOpts, vm.WithWriter(stdout))
	if opts.Trace {
		vmOpts = append(vmOpts, vm.WithTrace(stderr))
	}

	machine := vm.New(vmOpts...)
	defer machine.Free()

	c, err := p.Build(machine.Heap())
	if err != nil {
		return fmt.Errorf("building %s: %w", p.Name, err)
	}
	defer c.Free()

	if opts.Disassemble {
		fmt.Fprintln(stdout, color.GreenText("=== Disassembly ==="))
		var listing strings.Builder
		chunk.Disassemble(&listing, c, p.Name)
		fmt.Fprint(stdout, color.GrayText(listing.String()))
	}

	if opts.Verbose {
		fmt.Fprintln(stdout, color.GreenText("\n=== Program Output ==="))
	}

	result, err := machine.Interpret(c)
	if err != nil {
		var rerr *vm.RuntimeError
		if errors.As(err, &rerr) {
			fmt.Fprintln(stderr, color.ErrorAtLine(rerr.Line, rerr.Message))
		}
		return fmt.Errorf("interpretation failed (%s): %w", result, err)
	}

	log.Debug("Program finished", "program", p.Name, "result", result, "objects", machine.Heap().Count())
	return nil
}

func (opts *Runner) load() (*program.Program, error) {
	if opts.Demo != "" {
		p, ok := program.Demo(opts.Demo)
		if !ok {
			return nil, fmt.Errorf("unknown demo %s (available: %s)",
				color.YellowText(opts.Demo), strings.Join(program.Demos(), ", "))
		}
		log.Info("Running demo", "demo", opts.Demo)
		return p, nil
	}

	if opts.SourceFile == "" {
		return nil, ErrNoProgram
	}

	log.Info("Processing file", "file", opts.SourceFile)
	return program.Load(opts.SourceFile)
}
