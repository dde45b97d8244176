//go:build !(linux && amd64)

package jit

import "unsafe"

// Stubs so the package builds everywhere; Engine.Call fails its platform
// probes long before reaching these.

func nativecall(code, cell, base, memMax, abort uintptr, ctx unsafe.Pointer, iofn uintptr) uintptr {
	panic("BUG: nativecall on unsupported platform")
}

func ioTrampolineAddr() uintptr { return 0 }

func abortTrampolineAddr() uintptr { return 0 }
