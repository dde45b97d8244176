// Command bfvm runs Brainfuck programs through the bfvm engine.
package main

import (
	"fmt"
	"os"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bfvm <command> [options] <file>

commands:
  run [-jit] [-mem SIZE] <file>    Run the program (default command)
  tokens <file>                    Dump lexer output
  ir <file>                        Dump compiled IR
  repl [-mem SIZE]                 Interactive session with a persistent tape`)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "run":
		cmdRun(args)
	case "tokens":
		cmdTokens(args)
	case "ir":
		cmdIR(args)
	case "repl":
		cmdRepl(args)
	case "-h", "-help", "--help", "help":
		usage()
	default:
		// `bfvm prog.bf` is shorthand for `bfvm run prog.bf`.
		cmdRun(os.Args[1:])
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "bfvm:", err)
	os.Exit(1)
}

func readSource(file string) []byte {
	src, err := os.ReadFile(file)
	if err != nil {
		fatal(err)
	}
	return src
}
