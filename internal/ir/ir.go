// Package ir defines the intermediate representation shared by the
// interpreter and the JIT backend, and the compiler that produces it from a
// token stream.
//
// The opcode set is a closed sum: a discriminant kind plus a packed payload.
// Both backends dispatch on the kind with a flat switch.
//
//	MOVEPTR d        ; advance the cursor by d
//	ADD d            ; add d to the current cell, mod 256
//	SETZERO          ; store 0 into the current cell
//	MULINTO c, off   ; cell[cursor+off] += c * cell[cursor]; cell[cursor] = 0
//	FINDZERO s       ; advance the cursor by s until the cell is 0
//	PUT              ; write the current cell
//	GET              ; read one byte into the current cell (EOF reads 0)
//	JZ t             ; jump to t if the cell is 0
//	JNZ t            ; jump to t if the cell is non-zero
package ir

import (
	"fmt"
	"strings"
)

// OpKind identifies the kind of IR operation.
type OpKind int

const (
	OpMovePtr OpKind = iota
	OpAdd
	OpSetZero
	OpMulInto
	OpFindZero
	OpPut
	OpGet
	OpJz
	OpJnz
)

var opNames = [...]string{
	OpMovePtr:  "MOVEPTR",
	OpAdd:      "ADD",
	OpSetZero:  "SETZERO",
	OpMulInto:  "MULINTO",
	OpFindZero: "FINDZERO",
	OpPut:      "PUT",
	OpGet:      "GET",
	OpJz:       "JZ",
	OpJnz:      "JNZ",
}

// String returns the mnemonic of the OpKind.
func (k OpKind) String() string { return opNames[k] }

// Op is one IR operation. Arg holds the move delta, add delta, scan step, or
// jump target depending on the kind; Off is only used by MULINTO.
type Op struct {
	Kind OpKind
	Arg  int
	Off  int
}

func MovePtr(delta int) Op        { return Op{Kind: OpMovePtr, Arg: delta} }
func Add(delta int) Op            { return Op{Kind: OpAdd, Arg: delta} }
func SetZero() Op                 { return Op{Kind: OpSetZero} }
func MulInto(coef, offset int) Op { return Op{Kind: OpMulInto, Arg: coef, Off: offset} }
func FindZero(step int) Op        { return Op{Kind: OpFindZero, Arg: step} }
func Put() Op                     { return Op{Kind: OpPut} }
func Get() Op                     { return Op{Kind: OpGet} }
func Jz(target int) Op            { return Op{Kind: OpJz, Arg: target} }
func Jnz(target int) Op           { return Op{Kind: OpJnz, Arg: target} }

// Program is an ordered, immutable-once-built opcode sequence. Every JZ/JNZ
// target is a valid index: the JZ of a loop targets one past its matching
// JNZ, and the JNZ targets one past its matching JZ.
type Program []Op

// Dump renders the program one op per line, for the `bfvm ir` subcommand and
// for debugging.
func Dump(p Program) string {
	var out strings.Builder
	for i, op := range p {
		switch op.Kind {
		case OpMovePtr, OpAdd, OpFindZero:
			fmt.Fprintf(&out, "%04d: %-8s %+d\n", i, op.Kind, op.Arg)
		case OpMulInto:
			fmt.Fprintf(&out, "%04d: %-8s %+d, %+d\n", i, op.Kind, op.Arg, op.Off)
		case OpJz, OpJnz:
			fmt.Fprintf(&out, "%04d: %-8s %d\n", i, op.Kind, op.Arg)
		default:
			fmt.Fprintf(&out, "%04d: %s\n", i, op.Kind)
		}
	}
	return out.String()
}
