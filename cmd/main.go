package main

import (
	"clox/internal/logger"
	"clox/internal/program"
	"clox/internal/runner"
	"clox/pkg/color"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Main entry point for the clox bytecode runner.
func main() {
	options := runner.Runner{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.BoolVar(&options.Disassemble, "d", false, "Disassemble the chunk before running")
	flag.BoolVar(&options.Trace, "t", false, "Trace execution to stderr")
	flag.StringVar(&options.Demo, "demo", "", fmt.Sprintf("Run a built-in program (%s)", strings.Join(program.Demos(), ", ")))
	flag.StringVar(&options.OutputFile, "o", "", "Write the program as a CBOR image")

	flag.Parse()
	args := flag.Args()

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] <program.toml|image.cbor>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if len(args) == 0 && options.Demo == "" {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	if len(args) > 0 {
		options.SourceFile = args[0]
	}

	if err := options.Run(); err != nil {
		log.Fatal("Run failed", "error", err)
	}
}
