package jit

import (
	"unsafe"

	"github.com/bfvm/bfvm/internal/platform"
)

// codePage owns one private anonymous mapping holding emitted code.
//
// The protection walk is strict: the page is writable only while the bytes
// are copied in, read-only at rest, and executable only for the duration of
// a call. Writable and executable never overlap.
type codePage struct {
	code []byte
}

// newCodePage maps a region sized to the machine code, copies it in, and
// lowers the protection to read-only.
func newCodePage(machineCode []byte) (*codePage, error) {
	code, err := platform.MmapCodeSegment(len(machineCode))
	if err != nil {
		return nil, err
	}
	copy(code, machineCode)
	if err := platform.MprotectRead(code); err != nil {
		_ = platform.MunmapCodeSegment(code)
		return nil, err
	}
	return &codePage{code: code}, nil
}

// Addr returns the entry address of the page.
func (p *codePage) Addr() uintptr {
	return uintptr(unsafe.Pointer(&p.code[0]))
}

// beforeExec raises the protection to read+execute.
func (p *codePage) beforeExec() error {
	return platform.MprotectExecute(p.code)
}

// afterExec lowers the protection back to read-only.
func (p *codePage) afterExec() error {
	return platform.MprotectRead(p.code)
}

// Close lowers the protection and releases the mapping. Safe to call more
// than once; the deferred call in the engine guarantees release on every
// exit path.
func (p *codePage) Close() error {
	if p.code == nil {
		return nil
	}
	code := p.code
	p.code = nil
	_ = platform.MprotectRead(code)
	return platform.MunmapCodeSegment(code)
}
