package stack

import (
	"clox/pkg/array"
	"clox/pkg/value"
)

// Stack is the VM's operand stack. It grows by doubling and never shrinks.
type Stack struct {
	a array.Array[value.Value]
}

// NewStack creates a new stack instance
func NewStack(elm ...value.Value) *Stack {
	stack := Stack{}
	for _, e := range elm {
		stack.a.Append(e)
	}

	return &stack
}

// Push adds an element to the top of the stack
func (s *Stack) Push(elm value.Value) {
	s.a.Append(elm)
}

// Pop removes and returns the top element of the stack.
// Popping an empty stack is a programming error and panics.
func (s *Stack) Pop() value.Value {
	n := s.a.Len()
	if n < 1 {
		panic("stack: pop on empty stack")
	}

	elm := s.a.At(n - 1)
	s.a.Truncate(n - 1)

	return elm
}

// Peek returns the element distance slots below the top without removing it.
// Peek(0) is the top. It panics when distance is out of range.
func (s *Stack) Peek(distance int) value.Value {
	n := s.a.Len()
	if distance < 0 || distance >= n {
		panic("stack: peek out of range")
	}

	return s.a.At(n - 1 - distance)
}

// Get the size of the stack
func (s *Stack) Size() int {
	return s.a.Len()
}

// Capacity returns the allocated slot count.
func (s *Stack) Capacity() int {
	return s.a.Cap()
}

// Reset empties the stack, keeping its capacity.
func (s *Stack) Reset() {
	s.a.Truncate(0)
}

// Free releases the stack's memory.
func (s *Stack) Free() {
	s.a.Free()
}

// Array returns the live slots, bottom first
func (s *Stack) Array() []value.Value {
	return s.a.Slice()
}
