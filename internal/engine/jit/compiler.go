// Package jit renders IR as x86-64 machine code, installs it into an
// executable mapping, and calls into it from the host.
//
// Generated code operates under fixed register bindings shared with the host
// stub, so no per-op save/restore is needed:
//
//	r12  absolute address of the current tape cell
//	r13  memory size - 1, the unsigned bound for cursor checks
//	r14  tape base address
//	r15  absolute address of the abort trampoline
//	rdi  I/O context pointer (callee-saved by generated code around calls)
//	rcx  absolute address of the I/O trampoline
package jit

import (
	"github.com/bfvm/bfvm/internal/asm"
	"github.com/bfvm/bfvm/internal/ir"
)

// branchPlaceholder fills rel32 slots that are patched later. The value is
// recognizable in hex dumps of half-patched code.
const branchPlaceholder = 0xDEADBEAF

// compileMachineCode renders the IR region as position-independent x86-64.
// The IR is already well-formed, so emission cannot fail.
//
// Two patch lists are kept: one per open loop (resolved in closed form when
// the matching JNZ is emitted) and one for every bounds-check branch, all of
// which are pointed at the shared abort tail once the body is complete.
func compileMachineCode(p ir.Program) []byte {
	var buf asm.Buffer
	var openLoops []int  // offset just past each pending JZ rel32
	var abortSites []int // offset just past each bounds-check rel32

	// Call targets observe 16-byte stack alignment: the host's call pushed 8,
	// this adjustment adds the other 8.
	buf.Write(0x48, 0x83, 0xEC, 0x08) // subq $8, %rsp

	for _, op := range p {
		switch op.Kind {
		case ir.OpMovePtr:
			emitAddImm(&buf, regR12, op.Arg)
			abortSites = emitBoundsCheck(&buf, regR12, abortSites)

		case ir.OpAdd:
			// The immediate is one signed byte; truncation is exactly the
			// interpreter's mod-256 cell arithmetic.
			buf.Write(0x41, 0x80, 0x04, 0x24, byte(op.Arg)) // addb $d, (%r12)

		case ir.OpSetZero:
			buf.Write(0x41, 0xC6, 0x04, 0x24, 0x00) // movb $0, (%r12)

		case ir.OpMulInto:
			buf.Write(0x4D, 0x89, 0xE3) // movq %r12, %r11
			emitAddImm(&buf, regR11, op.Off)
			abortSites = emitBoundsCheck(&buf, regR11, abortSites)
			buf.Write(0x41, 0x0F, 0xB6, 0x04, 0x24) // movzbl (%r12), %eax
			buf.Write(0x69, 0xC0)                   // imull $coef, %eax, %eax
			buf.WriteUint32(uint32(int32(op.Arg)))  // 32 bits suffice: cells are 8-bit
			buf.Write(0x41, 0x00, 0x03)             // addb %al, (%r11)
			buf.Write(0x41, 0xC6, 0x04, 0x24, 0x00) // movb $0, (%r12)

		case ir.OpFindZero:
			abortSites = emitFindZero(&buf, op.Arg, abortSites)

		case ir.OpPut:
			buf.Write(0x57, 0x51)                               // pushq %rdi; pushq %rcx
			buf.Write(0x48, 0xC7, 0xC6, 0x01, 0x00, 0x00, 0x00) // movq $1, %rsi (write)
			buf.Write(0x4C, 0x89, 0xE2)                         // movq %r12, %rdx
			buf.Write(0xFF, 0xD1)                               // callq *%rcx
			buf.Write(0x59, 0x5F)                               // popq %rcx; popq %rdi

		case ir.OpGet:
			buf.Write(0x57, 0x51)
			buf.Write(0x48, 0xC7, 0xC6, 0x00, 0x00, 0x00, 0x00) // movq $0, %rsi (read)
			buf.Write(0x4C, 0x89, 0xE2)
			buf.Write(0xFF, 0xD1)
			buf.Write(0x41, 0x88, 0x04, 0x24) // movb %al, (%r12)
			buf.Write(0x59, 0x5F)

		case ir.OpJz:
			buf.Write(0x41, 0x80, 0x3C, 0x24, 0x00) // cmpb $0, (%r12)
			buf.Write(0x0F, 0x84)                   // je <placeholder>
			buf.WriteUint32(branchPlaceholder)
			openLoops = append(openLoops, buf.Len())

		case ir.OpJnz:
			buf.Write(0x41, 0x80, 0x3C, 0x24, 0x00) // cmpb $0, (%r12)
			opener := openLoops[len(openLoops)-1]
			openLoops = openLoops[:len(openLoops)-1]
			buf.Write(0x0F, 0x85) // jne <back to just past the opener>
			end := buf.Len() + 4
			buf.WriteUint32(uint32(int32(opener - end)))
			buf.PatchUint32(opener, uint32(int32(end-opener)))
		}
	}

	buf.Write(0x48, 0x83, 0xC4, 0x08) // addq $8, %rsp
	buf.WriteByte(0xC3)               // retq

	// Shared abort tail: error code 0 (memory out of range), then the
	// host-resident abort routine, which never returns.
	abortOff := buf.Len()
	buf.Write(0x31, 0xFF)       // xorl %edi, %edi
	buf.Write(0x41, 0xFF, 0xD7) // callq *%r15
	for _, site := range abortSites {
		buf.PatchUint32(site, uint32(int32(abortOff-site)))
	}

	return buf.Bytes()
}

// Registers the immediate-add and bounds-check helpers can target. Only the
// cursor register and the multiply scratch register are ever used.
type reg byte

const (
	regR12 reg = iota // current cell address
	regR11            // multiply target address
)

// emitAddImm adds a constant to r12 or r11, using the 8-bit immediate form
// when the constant fits and materializing it through rax otherwise.
func emitAddImm(buf *asm.Buffer, r reg, v int) {
	modrm := byte(0xC4) // addq ..., %r12
	if r == regR11 {
		modrm = 0xC3
	}
	if v >= -128 && v <= 127 {
		buf.Write(0x49, 0x83, modrm, byte(v)) // addq $v8, %r
		return
	}
	buf.Write(0x48, 0xB8) // movabsq $v, %rax
	buf.WriteUint64(uint64(int64(v)))
	buf.Write(0x49, 0x01, 0xC0|byte(modrm&0x07)) // addq %rax, %r
}

// emitBoundsCheck emits the cursor range check on r12 or r11: the register
// minus the tape base must not exceed memsize-1 as an unsigned compare, which
// catches both underflow (negative wraps huge) and overflow in one branch.
// The branch's rel32 is recorded for abort patching.
func emitBoundsCheck(buf *asm.Buffer, r reg, abortSites []int) []int {
	if r == regR11 {
		buf.Write(0x4C, 0x89, 0xD8) // movq %r11, %rax
	} else {
		buf.Write(0x4C, 0x89, 0xE0) // movq %r12, %rax
	}
	buf.Write(0x4C, 0x29, 0xF0) // subq %r14, %rax
	buf.Write(0x4C, 0x39, 0xE8) // cmpq %r13, %rax
	buf.Write(0x0F, 0x87)       // ja <abort>
	buf.WriteUint32(branchPlaceholder)
	return append(abortSites, buf.Len())
}

// emitFindZero emits the scanlet: test the cell, step the cursor, bounds
// check, loop. The back edge is an 8-bit displacement; the whole scanlet is
// short enough for one.
func emitFindZero(buf *asm.Buffer, step int, abortSites []int) []int {
	short := step >= -128 && step <= 127

	buf.Write(0x41, 0x80, 0x3C, 0x24, 0x00) // top: cmpb $0, (%r12)
	if short {
		buf.Write(0x74, 0x15) // je done (over 21 bytes)
		buf.Write(0x49, 0x83, 0xC4, byte(step))
	} else {
		buf.Write(0x74, 0x1E) // je done (over 30 bytes)
		buf.Write(0x48, 0xB8)
		buf.WriteUint64(uint64(int64(step)))
		buf.Write(0x49, 0x01, 0xC4)
	}
	abortSites = emitBoundsCheck(buf, regR12, abortSites)
	if short {
		buf.Write(0xEB, 0xE4) // jmp top (-28)
	} else {
		buf.Write(0xEB, 0xDB) // jmp top (-37)
	}
	return abortSites
}
