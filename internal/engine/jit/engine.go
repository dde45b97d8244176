package jit

import (
	"errors"
	"io"
	"runtime"
	"unsafe"

	"github.com/bfvm/bfvm/internal/ir"
	"github.com/bfvm/bfvm/internal/platform"
)

var (
	// ErrUnsupportedArchitecture is returned when the host CPU is not x86-64.
	ErrUnsupportedArchitecture = errors.New("jit: unsupported architecture")
	// ErrUnsupportedPlatform is returned when the OS lacks the anonymous
	// executable mapping facility or the syscall ABI the trampolines use.
	ErrUnsupportedPlatform = errors.New("jit: unsupported platform")
)

// Engine turns IR regions into native code and runs them. It implements the
// interpreter's NativeBackend.
type Engine struct{}

// NewEngine returns a JIT engine. Support is probed per call, so constructing
// one on an unsupported host is fine.
func NewEngine() *Engine { return &Engine{} }

// Call compiles the IR region [start, end], installs it into an executable
// page, and transfers control with the register file prepared per the fixed
// ABI. It returns the cursor recovered from r12 on return.
//
// The abort trampoline does not return: a bounds failure inside generated
// code terminates the process after a diagnostic.
func (e *Engine) Call(p ir.Program, start, end int, tape []byte, cursor int, r io.Reader, w io.Writer) (int, error) {
	if !platform.ArchSupported() {
		return 0, ErrUnsupportedArchitecture
	}
	if !platform.OSSupported() {
		return 0, ErrUnsupportedPlatform
	}

	page, err := newCodePage(compileMachineCode(p[start : end+1]))
	if err != nil {
		return 0, err
	}
	defer page.Close()

	ioc, err := newIOContext(r, w)
	if err != nil {
		return 0, err
	}
	defer ioc.Close()

	if err := page.beforeExec(); err != nil {
		return 0, err
	}

	base := uintptr(unsafe.Pointer(&tape[0]))
	newCell := nativecall(
		page.Addr(),
		base+uintptr(cursor),
		base,
		uintptr(len(tape)-1),
		abortTrampolineAddr(),
		unsafe.Pointer(&ioc.fds),
		ioTrampolineAddr(),
	)
	runtime.KeepAlive(tape)
	runtime.KeepAlive(ioc)

	if err := page.afterExec(); err != nil {
		return 0, err
	}
	return int(newCell), nil
}
