package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bfvm/bfvm/internal/ir"
	"github.com/bfvm/bfvm/internal/token"
)

func cmdTokens(args []string) {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfvm tokens <file>")
		os.Exit(1)
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
	}

	for _, tok := range token.Tokenize(readSource(fs.Arg(0))) {
		fmt.Printf("%d\t%v\n", tok.Pos, tok.Kind)
	}
}

func cmdIR(args []string) {
	fs := flag.NewFlagSet("ir", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfvm ir <file>")
		os.Exit(1)
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
	}

	p, err := ir.Compile(token.Tokenize(readSource(fs.Arg(0))))
	if err != nil {
		fatal(err)
	}
	fmt.Print(ir.Dump(p))
}
