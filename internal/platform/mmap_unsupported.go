//go:build !linux

package platform

import (
	"fmt"
	"runtime"
)

var errUnsupported = fmt.Errorf("%s does not support anonymous executable mappings", runtime.GOOS)

func MmapCodeSegment(size int) ([]byte, error) {
	if size == 0 {
		panic("BUG: MmapCodeSegment with zero length")
	}
	return nil, errUnsupported
}

func MunmapCodeSegment(code []byte) error {
	if len(code) == 0 {
		panic("BUG: MunmapCodeSegment with zero length")
	}
	return errUnsupported
}

func MprotectRead(code []byte) error { return errUnsupported }

func MprotectExecute(code []byte) error { return errUnsupported }
