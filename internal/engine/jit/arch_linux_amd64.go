package jit

import "unsafe"

// nativecall transfers control to the emitted code at code's entry byte with
// the fixed register file installed: r12 = cell address, r13 = memMax,
// r14 = tape base, r15 = abort trampoline, rdi = I/O context, rcx = I/O
// trampoline. On return it computes r12 - r14 and returns it: the new cursor.
//
// The call declares no special clobbers: Go assembly may clobber every
// register, which covers the full C ABI clobber set the generated code
// assumes; the engine relies only on r12..r15 being live across the call.
func nativecall(code, cell, base, memMax, abort uintptr, ctx unsafe.Pointer, iofn uintptr) uintptr

// ioTrampoline and abortTrampoline are the host routines generated code
// calls through rcx and r15. They take their arguments in the System V
// registers, not on the Go stack, so they are never called from Go; only
// their addresses are taken.
func ioTrampoline()

func abortTrampoline()

// ioTrampolineAddr returns the address of the host I/O routine generated
// code calls through rcx: (ctx, direction, buffer) -> byte, direction 0 for
// read and 1 for write.
func ioTrampolineAddr() uintptr

// abortTrampolineAddr returns the address of the host abort routine
// generated code calls through r15. It prints a diagnostic and terminates
// the process with a non-zero status; it never returns.
func abortTrampolineAddr() uintptr
