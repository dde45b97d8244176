// Package bfvm executes Brainfuck programs through an optimizing bytecode
// compiler and either an IR interpreter or a template-based x86-64 JIT.
//
// The two execution modes share the IR and agree on semantics: byte cells
// with wrap-around arithmetic, a fixed-size tape with a centered starting
// cursor, hard failure when the cursor escapes the tape, and EOF reads
// storing zero.
//
//	r := bfvm.NewRuntime()
//	err := r.Run(ctx, source)
//
// Native execution is opt-in via the config and degrades with an explicit
// error on hosts without x86-64 or anonymous executable mappings:
//
//	r := bfvm.NewRuntimeWithConfig(bfvm.NewRuntimeConfig().WithJIT(true))
package bfvm

import (
	"context"
	"io"
	"os"

	"github.com/bfvm/bfvm/internal/engine"
	"github.com/bfvm/bfvm/internal/engine/interpreter"
	"github.com/bfvm/bfvm/internal/engine/jit"
	"github.com/bfvm/bfvm/internal/ir"
	"github.com/bfvm/bfvm/internal/token"
)

// DefaultMemorySize is the tape length in cells.
const DefaultMemorySize = interpreter.DefaultMemorySize

// ErrMemoryOutOfRange is returned by Run when the cursor escapes the tape in
// interpreted execution. In native execution the same condition terminates
// the process via the abort trampoline instead.
var ErrMemoryOutOfRange = engine.ErrMemoryOutOfRange

// Errors surfaced when native execution is requested on a host that cannot
// run it.
var (
	ErrUnsupportedArchitecture = jit.ErrUnsupportedArchitecture
	ErrUnsupportedPlatform     = jit.ErrUnsupportedPlatform
)

// RuntimeConfig configures a Runtime. Values are immutable: each WithX
// returns a copy, so configs can be shared and forked freely.
type RuntimeConfig struct {
	jitEnabled   bool
	jitThreshold int
	memorySize   int
	stdin        io.Reader
	stdout       io.Writer
}

// NewRuntimeConfig returns the default configuration: interpreter only,
// DefaultMemorySize cells, standard input and output.
func NewRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		memorySize: DefaultMemorySize,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}
}

// WithJIT enables or disables handing execution over to native code.
func (c RuntimeConfig) WithJIT(enabled bool) RuntimeConfig {
	c.jitEnabled = enabled
	return c
}

// WithJITThreshold sets how many IR ops are interpreted before the remaining
// tail is handed to the JIT. Zero hands off immediately.
func (c RuntimeConfig) WithJITThreshold(ops int) RuntimeConfig {
	c.jitThreshold = ops
	return c
}

// WithMemorySize sets the tape length in cells. Non-positive values select
// DefaultMemorySize.
func (c RuntimeConfig) WithMemorySize(cells int) RuntimeConfig {
	c.memorySize = cells
	return c
}

// WithStdin sets the reader `,` consumes from.
func (c RuntimeConfig) WithStdin(r io.Reader) RuntimeConfig {
	c.stdin = r
	return c
}

// WithStdout sets the writer `.` emits to.
func (c RuntimeConfig) WithStdout(w io.Writer) RuntimeConfig {
	c.stdout = w
	return c
}

// CompiledProgram is source compiled to IR, reusable across runs.
type CompiledProgram struct {
	ops ir.Program
}

// NumOps returns the number of IR operations in the program.
func (p CompiledProgram) NumOps() int { return len(p.ops) }

// Runtime owns one execution session: the tape persists across Run calls
// until the Runtime is dropped, which is what lets the REPL accumulate
// state line by line.
type Runtime struct {
	config RuntimeConfig
	interp *interpreter.Interpreter
}

// NewRuntime returns a Runtime with the default configuration.
func NewRuntime() *Runtime {
	return NewRuntimeWithConfig(NewRuntimeConfig())
}

// NewRuntimeWithConfig returns a Runtime with the given configuration.
func NewRuntimeWithConfig(config RuntimeConfig) *Runtime {
	it := interpreter.New(config.memorySize)
	if config.jitEnabled {
		it.SetNativeBackend(jit.NewEngine(), config.jitThreshold)
	}
	return &Runtime{config: config, interp: it}
}

// Compile lexes and compiles source to IR without executing it.
func (r *Runtime) Compile(source []byte) (CompiledProgram, error) {
	ops, err := ir.Compile(token.Tokenize(source))
	if err != nil {
		return CompiledProgram{}, err
	}
	return CompiledProgram{ops: ops}, nil
}

// Run compiles and executes source.
func (r *Runtime) Run(ctx context.Context, source []byte) error {
	p, err := r.Compile(source)
	if err != nil {
		return err
	}
	return r.RunCompiled(ctx, p)
}

// RunCompiled executes an already-compiled program on the session's tape.
func (r *Runtime) RunCompiled(ctx context.Context, p CompiledProgram) error {
	return r.interp.Run(ctx, p.ops, r.config.stdin, r.config.stdout)
}
