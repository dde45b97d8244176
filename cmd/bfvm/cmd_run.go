package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	units "github.com/docker/go-units"

	"github.com/bfvm/bfvm"
)

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	jit := fs.Bool("jit", false, "execute through the x86-64 JIT")
	jitThreshold := fs.Int("jit-threshold", 0, "IR ops to interpret before handing the tail to the JIT")
	mem := fs.String("mem", "", "tape size in cells, e.g. 100000 or 512K")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfvm run [-jit] [-jit-threshold N] [-mem SIZE] <file>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
	}

	config := bfvm.NewRuntimeConfig().
		WithJIT(*jit).
		WithJITThreshold(*jitThreshold)
	if *mem != "" {
		config = config.WithMemorySize(parseMemSize(*mem))
	}

	r := bfvm.NewRuntimeWithConfig(config)
	if err := r.Run(context.Background(), readSource(fs.Arg(0))); err != nil {
		fatal(err)
	}
}

// parseMemSize accepts either a plain cell count or a human-readable size
// such as 512K; the tape has one-byte cells, so bytes and cells coincide.
func parseMemSize(s string) int {
	size, err := units.RAMInBytes(s)
	if err != nil {
		fatal(fmt.Errorf("invalid -mem %q: %w", s, err))
	}
	if size <= 0 {
		fatal(fmt.Errorf("invalid -mem %q: size must be positive", s))
	}
	return int(size)
}
