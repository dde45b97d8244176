// Package interpreter executes IR programs over a fixed-size tape with a
// flat decode-and-execute loop.
package interpreter

import (
	"context"
	"io"

	"github.com/bfvm/bfvm/internal/engine"
	"github.com/bfvm/bfvm/internal/ir"
)

// DefaultMemorySize is the number of cells on the tape.
const DefaultMemorySize = 100000

// NativeBackend executes the IR region [start, end] natively, starting from
// the given cursor, and returns the cursor afterwards. The tape is mutated in
// place. The jit engine implements this.
type NativeBackend interface {
	Call(p ir.Program, start, end int, tape []byte, cursor int, r io.Reader, w io.Writer) (int, error)
}

// Interpreter owns the tape and a program counter. The tape survives across
// Run calls so a session (for example the REPL) can accumulate state; the
// program counter is reset on each Run.
type Interpreter struct {
	tape   []byte
	cursor int
	pc     int

	native    NativeBackend
	threshold int

	ioBuf [1]byte
}

// New returns an interpreter with a zeroed tape of memSize cells and the
// cursor centered, so programs can move in either direction without
// immediately falling off the tape. A non-positive memSize selects
// DefaultMemorySize.
func New(memSize int) *Interpreter {
	if memSize <= 0 {
		memSize = DefaultMemorySize
	}
	return &Interpreter{
		tape:   make([]byte, memSize),
		cursor: memSize / 2,
	}
}

// SetNativeBackend arranges for execution to hand the remaining program over
// to backend once threshold ops have been interpreted (and the remaining
// region is loop-balanced). A nil backend disables hand-off.
func (it *Interpreter) SetNativeBackend(backend NativeBackend, threshold int) {
	it.native = backend
	it.threshold = threshold
}

// Tape exposes the underlying tape. Shared with the native backend during a
// hand-off; callers must not resize it.
func (it *Interpreter) Tape() []byte { return it.tape }

// Cursor returns the current tape index.
func (it *Interpreter) Cursor() int { return it.cursor }

// Run executes the program, reading input bytes from r and writing output
// bytes to w. Writer errors are dropped per the source language's lenient
// output contract; read errors and end-of-input store the EOF sentinel 0.
func (it *Interpreter) Run(ctx context.Context, p ir.Program, r io.Reader, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	it.pc = 0
	executed := 0
	memSize := len(it.tape)

	for it.pc < len(p) {
		if it.native != nil && executed >= it.threshold && suffixBalanced(p, it.pc) {
			cursor, err := it.native.Call(p, it.pc, len(p)-1, it.tape, it.cursor, r, w)
			if err != nil {
				return err
			}
			it.cursor = cursor
			it.pc = len(p)
			return nil
		}

		op := p[it.pc]
		switch op.Kind {
		case ir.OpMovePtr:
			it.cursor += op.Arg
			if it.cursor < 0 || it.cursor >= memSize {
				return engine.ErrMemoryOutOfRange
			}

		case ir.OpAdd:
			it.tape[it.cursor] += byte(op.Arg)

		case ir.OpSetZero:
			it.tape[it.cursor] = 0

		case ir.OpMulInto:
			target := it.cursor + op.Off
			if target < 0 || target >= memSize {
				return engine.ErrMemoryOutOfRange
			}
			it.tape[target] += byte(op.Arg * int(it.tape[it.cursor]))
			it.tape[it.cursor] = 0

		case ir.OpFindZero:
			for it.tape[it.cursor] != 0 {
				it.cursor += op.Arg
				if it.cursor < 0 || it.cursor >= memSize {
					return engine.ErrMemoryOutOfRange
				}
			}

		case ir.OpPut:
			it.ioBuf[0] = it.tape[it.cursor]
			_, _ = w.Write(it.ioBuf[:])

		case ir.OpGet:
			if _, err := io.ReadFull(r, it.ioBuf[:]); err != nil {
				it.ioBuf[0] = 0
			}
			it.tape[it.cursor] = it.ioBuf[0]

		case ir.OpJz:
			if it.tape[it.cursor] == 0 {
				it.pc = op.Arg
				executed++
				continue
			}

		case ir.OpJnz:
			if it.tape[it.cursor] != 0 {
				it.pc = op.Arg
				executed++
				continue
			}
		}

		it.pc++
		executed++
	}

	return nil
}

// suffixBalanced reports whether every JNZ in p[from:] has its JZ inside the
// region. The emitter resolves loops with a pending-open stack, so a hand-off
// region must not close a loop it did not open.
func suffixBalanced(p ir.Program, from int) bool {
	depth := 0
	for _, op := range p[from:] {
		switch op.Kind {
		case ir.OpJz:
			depth++
		case ir.OpJnz:
			if depth == 0 {
				return false
			}
			depth--
		}
	}
	return depth == 0
}
