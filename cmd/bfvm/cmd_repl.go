package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"github.com/bfvm/bfvm"
)

const (
	replPrompt = "\033[32mbf>\033[0m "
)

// cmdRepl runs an interactive session. Each line is a complete program
// compiled and executed on the session's persistent tape, so `+++` on one
// line followed by `.` on the next prints 3.
func cmdRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	mem := fs.String("mem", "", "tape size in cells, e.g. 100000 or 512K")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfvm repl [-mem SIZE]")
		fs.PrintDefaults()
		os.Exit(1)
	}
	fs.Parse(args)

	config := bfvm.NewRuntimeConfig()
	if *mem != "" {
		config = config.WithMemorySize(parseMemSize(*mem))
	}
	r := bfvm.NewRuntimeWithConfig(config)

	l, err := readline.NewEx(&readline.Config{
		Prompt:            replPrompt,
		HistoryFile:       os.TempDir() + "/.bfvm-history",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fatal(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			fatal(err)
		}
		if line == "" {
			continue
		}

		if runErr := r.Run(context.Background(), []byte(line)); runErr != nil {
			fmt.Fprintln(os.Stderr, "error:", runErr)
			continue
		}
		fmt.Println()
	}
}
