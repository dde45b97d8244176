package jit

import (
	"io"
	"os"
)

// ioFDs is the part of the I/O context read by generated code's trampoline.
// Field order is ABI: the reader fd at offset 0, the writer fd at offset 8.
type ioFDs struct {
	rfd uintptr
	wfd uintptr
}

// ioContext binds a reader and a writer to file descriptors the I/O
// trampoline can issue one-byte syscalls against. Plain *os.File values are
// used directly; anything else is bridged through a pipe pumped by a
// goroutine, so buffers and strings work in JIT mode too.
type ioContext struct {
	fds ioFDs

	inPipe  *os.File // read end handed to the trampoline, nil for direct fds
	outPipe *os.File // write end handed to the trampoline, nil for direct fds
	done    chan struct{}

	files []*os.File // everything to close on teardown
}

func newIOContext(r io.Reader, w io.Writer) (*ioContext, error) {
	ioc := &ioContext{}

	if f, ok := r.(*os.File); ok {
		ioc.fds.rfd = f.Fd()
	} else {
		pr, pw, err := os.Pipe()
		if err != nil {
			return nil, err
		}
		go func() {
			_, _ = io.Copy(pw, r)
			_ = pw.Close()
		}()
		ioc.inPipe = pr
		ioc.fds.rfd = pr.Fd()
		ioc.files = append(ioc.files, pr)
	}

	if f, ok := w.(*os.File); ok {
		ioc.fds.wfd = f.Fd()
	} else {
		pr, pw, err := os.Pipe()
		if err != nil {
			ioc.Close()
			return nil, err
		}
		ioc.done = make(chan struct{})
		go func() {
			defer close(ioc.done)
			_, _ = io.Copy(w, pr)
			_ = pr.Close()
		}()
		ioc.outPipe = pw
		ioc.fds.wfd = pw.Fd()
		ioc.files = append(ioc.files, pw)
	}

	return ioc, nil
}

// Close tears the plumbing down: closing the output pipe's write end flushes
// the pump into the caller's writer before Close returns, so output ordering
// is preserved across the native call boundary.
func (ioc *ioContext) Close() error {
	for _, f := range ioc.files {
		_ = f.Close()
	}
	ioc.files = nil
	if ioc.done != nil {
		<-ioc.done
		ioc.done = nil
	}
	return nil
}
