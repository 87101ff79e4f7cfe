package vm

import (
	"fmt"

	"clox/pkg/chunk"
	"clox/pkg/value"
)

// execute runs one decoded instruction. ip still points at in when an error is raised,
// so the error carries the instruction's line.
func (vm *VM) execute(in chunk.Instruction) (bool, error) {
	switch in.Op {
	case chunk.OpConstant, chunk.OpConstantLong:
		constant, ok := vm.chunk.Constant(in.Operand)
		if !ok {
			return false, vm.runtimeError(nil, "Constant index %d out of range.", in.Operand)
		}
		vm.stack.Push(constant)

	case chunk.OpNil:
		vm.stack.Push(value.Nil())

	case chunk.OpTrue:
		vm.stack.Push(value.Bool(true))

	case chunk.OpFalse:
		vm.stack.Push(value.Bool(false))

	case chunk.OpPop:
		if err := vm.require(1); err != nil {
			return false, err
		}
		vm.stack.Pop()

	case chunk.OpEqual:
		if err := vm.require(2); err != nil {
			return false, err
		}
		b := vm.stack.Pop()
		a := vm.stack.Pop()
		vm.stack.Push(value.Bool(value.Equal(a, b)))

	case chunk.OpGreater, chunk.OpLess, chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
		if err := vm.binaryNumber(in.Op); err != nil {
			return false, err
		}

	case chunk.OpAdd:
		if err := vm.add(); err != nil {
			return false, err
		}

	case chunk.OpNot:
		if err := vm.require(1); err != nil {
			return false, err
		}
		vm.stack.Push(value.Bool(vm.stack.Pop().IsFalsey()))

	case chunk.OpNegate:
		if err := vm.require(1); err != nil {
			return false, err
		}
		if !vm.stack.Peek(0).IsNumber() {
			return false, vm.runtimeError(nil, "Operand must be a number.")
		}
		vm.stack.Push(value.Number(-vm.stack.Pop().AsNumber()))

	case chunk.OpPrint:
		if err := vm.require(1); err != nil {
			return false, err
		}
		fmt.Fprintln(vm.out, vm.stack.Pop())

	case chunk.OpReturn:
		if vm.stack.Size() > 0 {
			vm.returned = vm.stack.Pop()
			vm.hasReturned = true
			fmt.Fprintln(vm.out, vm.returned)
		}
		vm.ip = in.Offset + in.Size
		return true, nil

	default:
		return false, vm.runtimeError(nil, "Unhandled opcode %s.", in.Op)
	}

	vm.ip = in.Offset + in.Size
	return false, nil
}

// require checks that n operands are on the stack.
func (vm *VM) require(n int) error {
	if vm.stack.Size() < n {
		return vm.runtimeError(ErrUnderflow, "Expected %d operand(s), stack holds %d.", n, vm.stack.Size())
	}
	return nil
}

func (vm *VM) add() error {
	if err := vm.require(2); err != nil {
		return err
	}

	switch {
	case vm.stack.Peek(0).IsString() && vm.stack.Peek(1).IsString():
		b := vm.stack.Pop().AsString()
		a := vm.stack.Pop().AsString()
		chars := make([]byte, 0, a.Len()+b.Len())
		chars = append(chars, a.Bytes()...)
		chars = append(chars, b.Bytes()...)
		vm.stack.Push(value.Obj(vm.heap.AllocateString(chars)))

	case vm.stack.Peek(0).IsNumber() && vm.stack.Peek(1).IsNumber():
		b := vm.stack.Pop().AsNumber()
		a := vm.stack.Pop().AsNumber()
		vm.stack.Push(value.Number(a + b))

	default:
		return vm.runtimeError(nil, "Operands must be two numbers or two strings.")
	}

	return nil
}

func (vm *VM) binaryNumber(op chunk.OpCode) error {
	if err := vm.require(2); err != nil {
		return err
	}
	if !vm.stack.Peek(0).IsNumber() || !vm.stack.Peek(1).IsNumber() {
		return vm.runtimeError(nil, "Operands must be numbers.")
	}

	b := vm.stack.Pop().AsNumber()
	a := vm.stack.Pop().AsNumber()

	switch op {
	case chunk.OpGreater:
		vm.stack.Push(value.Bool(a > b))
	case chunk.OpLess:
		vm.stack.Push(value.Bool(a < b))
	case chunk.OpSubtract:
		vm.stack.Push(value.Number(a - b))
	case chunk.OpMultiply:
		vm.stack.Push(value.Number(a * b))
	case chunk.OpDivide:
		vm.stack.Push(value.Number(a / b))
	}

	return nil
}
