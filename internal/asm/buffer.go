// Package asm provides the append-only buffer the JIT backend emits machine
// code into, with the little-endian immediate and displacement plumbing the
// emitter needs for two-pass branch patching.
package asm

import "encoding/binary"

// Buffer accumulates machine code. The zero value is ready to use.
//
// Emission appends; patching rewrites a 32-bit displacement in place once its
// target offset is known. Offsets returned by Len are stable because the
// buffer never shrinks.
type Buffer struct {
	code []byte
}

// Len returns the number of bytes emitted so far.
func (b *Buffer) Len() int { return len(b.code) }

// Bytes returns the emitted code. The slice aliases the buffer's storage and
// is only valid until the next write.
func (b *Buffer) Bytes() []byte { return b.code }

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(v byte) {
	b.code = append(b.code, v)
}

// Write appends raw bytes.
func (b *Buffer) Write(bs ...byte) {
	b.code = append(b.code, bs...)
}

// WriteUint32 appends a 32-bit little-endian value, typically an immediate or
// a rel32 displacement.
func (b *Buffer) WriteUint32(v uint32) {
	b.code = binary.LittleEndian.AppendUint32(b.code, v)
}

// WriteUint64 appends a 64-bit little-endian value, typically a movabs
// immediate.
func (b *Buffer) WriteUint64(v uint64) {
	b.code = binary.LittleEndian.AppendUint64(b.code, v)
}

// PatchUint32 overwrites the 4 bytes ending at offset end with a 32-bit
// little-endian value. The emitter records end offsets as it emits
// placeholder displacements and patches them once targets are known.
func (b *Buffer) PatchUint32(end int, v uint32) {
	binary.LittleEndian.PutUint32(b.code[end-4:end], v)
}
