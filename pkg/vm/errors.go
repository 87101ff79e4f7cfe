package vm

import (
	"errors"
	"fmt"

	"clox/pkg/chunk"
)

var (
	ErrNoChunk    = errors.New("no chunk to interpret")
	ErrNotRunning = errors.New("interpreter is not running")
	ErrUnderflow  = errors.New("stack underflow")
)

// RuntimeError reports a failure inside the instruction loop.
type RuntimeError struct {
	Message string
	Line    int // -1 when the offset does not start a recorded instruction
	Offset  int
	Op      chunk.OpCode
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("[offset %04d] in script: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("[line %d] in script: %s", e.Line, e.Message)
}

// Unwrap exposes the original error, if any.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}
