package platform

import (
	"fmt"
	"syscall"
)

// MmapCodeSegment allocates a private anonymous read/write mapping of the
// given size, ready to receive emitted machine code.
func MmapCodeSegment(size int) ([]byte, error) {
	if size == 0 {
		panic("BUG: MmapCodeSegment with zero length")
	}
	b, err := syscall.Mmap(-1, 0, size,
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_PRIVATE|syscall.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap code segment: %w", err)
	}
	return b, nil
}

// MunmapCodeSegment releases a mapping returned by MmapCodeSegment.
func MunmapCodeSegment(code []byte) error {
	if len(code) == 0 {
		panic("BUG: MunmapCodeSegment with zero length")
	}
	return syscall.Munmap(code)
}

// MprotectRead lowers the mapping to read-only. Used after the code bytes
// are copied in and again after every execution, so writable and executable
// protections never coexist.
func MprotectRead(code []byte) error {
	return syscall.Mprotect(code, syscall.PROT_READ)
}

// MprotectExecute raises the mapping to read+execute for the duration of a
// native call.
func MprotectExecute(code []byte) error {
	return syscall.Mprotect(code, syscall.PROT_READ|syscall.PROT_EXEC)
}
