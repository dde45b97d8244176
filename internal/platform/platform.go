// Package platform isolates the operating-system and architecture probes the
// JIT backend needs, along with the anonymous executable memory mappings it
// runs from.
package platform

import "runtime"

// ArchSupported reports whether the JIT can emit code for this CPU. The
// emitter only renders x86-64 templates.
func ArchSupported() bool {
	return runtime.GOARCH == "amd64"
}

// OSSupported reports whether this OS provides the anonymous mapping facility
// and the syscall ABI the generated code's trampolines rely on.
func OSSupported() bool {
	return runtime.GOOS == "linux"
}

// CompilerSupported reports whether native execution is available at all.
func CompilerSupported() bool {
	return ArchSupported() && OSSupported()
}
