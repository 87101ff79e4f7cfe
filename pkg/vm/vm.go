package vm

import (
	"fmt"
	"io"
	"os"

	"clox/pkg/chunk"
	"clox/pkg/object"
	"clox/pkg/stack"
	"clox/pkg/value"

	"github.com/charmbracelet/log"
)

// Result is the outcome of Interpret.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultCompileError:
		return "compile error"
	case ResultRuntimeError:
		return "runtime error"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// State tracks where the interpreter is in its lifecycle.
type State int

const (
	StateReady State = iota
	StateRunning
	StateOK
	StateCompileError
	StateRuntimeError
)

// VM executes one chunk at a time on a growable value stack.
type VM struct {
	chunk *chunk.Chunk // borrowed for the duration of Interpret
	ip    int          // byte offset of the next instruction
	stack *stack.Stack
	heap  *object.Heap

	ownsHeap bool
	state    State

	out   io.Writer // print and return output
	trace io.Writer // nil disables tracing

	returned    value.Value
	hasReturned bool
}

type Option func(*VM)

// WithWriter sets the output writer for print and return
func WithWriter(w io.Writer) Option {
	return func(vm *VM) { vm.out = w }
}

// WithTrace writes the stack and the disassembled instruction before every step
func WithTrace(w io.Writer) Option {
	return func(vm *VM) { vm.trace = w }
}

// WithHeap shares an existing heap. The VM does not free a shared heap.
func WithHeap(h *object.Heap) Option {
	return func(vm *VM) {
		vm.heap = h
		vm.ownsHeap = false
	}
}

// New creates an interpreter in the ready state
func New(opts ...Option) *VM {
	vm := &VM{
		stack:    stack.NewStack(),
		heap:     object.NewHeap(),
		ownsHeap: true,
		state:    StateReady,
	}

	for _, o := range opts {
		o(vm)
	}

	if vm.out == nil {
		vm.out = os.Stdout
	}

	return vm
}

// Interpret binds c, resets the instruction pointer and the stack, and runs until
// OP_RETURN or a runtime error.
func (vm *VM) Interpret(c *chunk.Chunk) (Result, error) {
	if c == nil {
		vm.state = StateCompileError
		return ResultCompileError, ErrNoChunk
	}

	vm.chunk = c
	vm.ip = 0
	vm.stack.Reset()
	vm.returned = value.Value{}
	vm.hasReturned = false
	vm.state = StateRunning

	log.Debug("Interpreting chunk", "bytes", c.Len(), "constants", len(c.Constants()))

	for {
		halted, err := vm.Step()
		if err != nil {
			vm.state = StateRuntimeError
			vm.stack.Reset()
			log.Debug("Runtime error", "error", err)
			return ResultRuntimeError, err
		}

		if halted {
			vm.state = StateOK
			log.Debug("Chunk finished", "objects", vm.heap.Count())
			return ResultOK, nil
		}
	}
}

// Step executes a single instruction, returning (halted, error)
func (vm *VM) Step() (bool, error) {
	if vm.state != StateRunning {
		return false, ErrNotRunning
	}

	if vm.ip >= vm.chunk.Len() {
		return false, vm.runtimeError(nil, "Reached end of chunk without OP_RETURN.")
	}

	in, err := vm.chunk.Decode(vm.ip)
	if err != nil {
		return false, vm.runtimeError(err, "Malformed instruction.")
	}

	if vm.trace != nil {
		vm.traceInstruction()
	}

	return vm.execute(in)
}

// State returns the lifecycle state.
func (vm *VM) State() State {
	return vm.state
}

// IP returns the byte offset of the next instruction.
func (vm *VM) IP() int {
	return vm.ip
}

// Stack returns the operand stack.
func (vm *VM) Stack() *stack.Stack {
	return vm.stack
}

// Heap returns the heap objects are allocated on.
func (vm *VM) Heap() *object.Heap {
	return vm.heap
}

// Returned reports the value popped by the last OP_RETURN, if there was one.
func (vm *VM) Returned() (value.Value, bool) {
	return vm.returned, vm.hasReturned
}

// Free tears the interpreter down, releasing the stack and, unless shared, the heap.
func (vm *VM) Free() {
	vm.stack.Free()
	if vm.ownsHeap {
		vm.heap.Free()
	}
	vm.chunk = nil
	vm.ip = 0
	vm.state = StateReady
}

func (vm *VM) runtimeError(cause error, format string, args ...any) *RuntimeError {
	e := &RuntimeError{
		Message: fmt.Sprintf(format, args...),
		Line:    vm.chunk.LineForOffset(vm.ip),
		Offset:  vm.ip,
		Cause:   cause,
	}
	if vm.ip < vm.chunk.Len() {
		e.Op = chunk.OpCode(vm.chunk.Code()[vm.ip])
	}
	return e
}

func (vm *VM) traceInstruction() {
	fmt.Fprint(vm.trace, "          ")
	for _, v := range vm.stack.Array() {
		fmt.Fprintf(vm.trace, "[ %s ]", v)
	}
	fmt.Fprintln(vm.trace)
	chunk.DisassembleInstruction(vm.trace, vm.chunk, vm.ip)
}
