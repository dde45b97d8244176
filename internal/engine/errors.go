// Package engine holds what the interpreter and JIT execution engines
// share: the runtime error sentinels.
package engine

import "errors"

// ErrMemoryOutOfRange is returned when a pointer move, a multiply target, or
// a scan step would take the cursor outside the tape. The cursor does not
// wrap; escaping the tape is always a failure so that the interpreter and the
// JIT agree.
var ErrMemoryOutOfRange = errors.New("memory access out of range")
