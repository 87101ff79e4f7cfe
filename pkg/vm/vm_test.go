package vm_test

import (
	"bytes"
	"clox/pkg/chunk"
	"clox/pkg/object"
	"clox/pkg/value"
	"clox/pkg/vm"
	"errors"
	"strings"
	"testing"
)

type step struct {
	op       chunk.OpCode
	constant *value.Value
	operands []byte
	line     int
}

func constant(v value.Value, line int) step {
	return step{op: chunk.OpConstant, constant: &v, line: line}
}

func op(o chunk.OpCode, line int) step {
	return step{op: o, line: line}
}

func build(t *testing.T, steps ...step) *chunk.Chunk {
	t.Helper()
	c := chunk.New()
	for i, s := range steps {
		var err error
		if s.constant != nil {
			_, err = c.EmitConstant(*s.constant, s.line)
		} else {
			err = c.Write(s.op, s.line, s.operands...)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	return c
}

func run(t *testing.T, c *chunk.Chunk, opts ...vm.Option) (*vm.VM, string, vm.Result, error) {
	t.Helper()
	var out bytes.Buffer
	machine := vm.New(append([]vm.Option{vm.WithWriter(&out)}, opts...)...)
	result, err := machine.Interpret(c)
	return machine, out.String(), result, err
}

func TestSumOfHundredOnes(t *testing.T) {
	var steps []step
	for i := 0; i < 100; i++ {
		steps = append(steps, constant(value.Number(1.0), 1))
	}
	for i := 0; i < 99; i++ {
		steps = append(steps, op(chunk.OpAdd, 2))
	}
	steps = append(steps, op(chunk.OpReturn, 3))

	machine, out, result, err := run(t, build(t, steps...))
	if err != nil || result != vm.ResultOK {
		t.Fatalf("expected ok, got %v (%v)", result, err)
	}
	if out != "100\n" {
		t.Errorf("expected output %q, got %q", "100\n", out)
	}
	v, ok := machine.Returned()
	if !ok || !v.IsNumber() || v.AsNumber() != 100.0 {
		t.Errorf("expected returned 100, got %v (ok=%v)", v, ok)
	}
	if machine.Stack().Size() != 0 {
		t.Errorf("expected empty stack, got %d", machine.Stack().Size())
	}
	if machine.State() != vm.StateOK {
		t.Errorf("expected StateOK, got %v", machine.State())
	}
}

func TestLoneReturn(t *testing.T) {
	machine, out, result, err := run(t, build(t, op(chunk.OpReturn, 1)))
	if err != nil || result != vm.ResultOK {
		t.Fatalf("expected ok, got %v (%v)", result, err)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
	if _, ok := machine.Returned(); ok {
		t.Error("nothing should have been returned")
	}
	if machine.Stack().Size() != 0 {
		t.Errorf("expected empty stack, got %d", machine.Stack().Size())
	}
}

func TestLongConstantLoads(t *testing.T) {
	var steps []step
	for i := 0; i < 260; i++ {
		steps = append(steps, constant(value.Number(float64(i)), i))
	}
	steps = append(steps, op(chunk.OpReturn, 260))
	c := build(t, steps...)

	var trace bytes.Buffer
	machine, out, result, err := run(t, c, vm.WithTrace(&trace))
	if err != nil || result != vm.ResultOK {
		t.Fatalf("expected ok, got %v (%v)", result, err)
	}
	if out != "259\n" {
		t.Errorf("expected the last constant to be returned, got %q", out)
	}
	if machine.Stack().Size() != 259 {
		t.Errorf("expected 259 values left, got %d", machine.Stack().Size())
	}
	for i, v := range machine.Stack().Array() {
		if v.AsNumber() != float64(i) {
			t.Fatalf("slot %d: expected %d, got %v", i, i, v)
		}
	}

	if n := strings.Count(trace.String(), "OP_CONSTANT_LONG"); n != 4 {
		t.Errorf("expected 4 long loads in trace, got %d", n)
	}
	if !strings.Contains(trace.String(), "0512  256 OP_CONSTANT_LONG  256 '256'") {
		t.Errorf("trace is missing the first long load:\n%s", trace.String())
	}
}

func TestArithmetic(t *testing.T) {
	n := func(f float64) value.Value { return value.Number(f) }
	tests := []struct {
		steps       []step
		expected    string
		description string
	}{
		{[]step{constant(n(7), 1), constant(n(2), 1), op(chunk.OpSubtract, 1)}, "5", "subtract"},
		{[]step{constant(n(3), 1), constant(n(4), 1), op(chunk.OpMultiply, 1)}, "12", "multiply"},
		{[]step{constant(n(1), 1), constant(n(4), 1), op(chunk.OpDivide, 1)}, "0.25", "divide"},
		{[]step{constant(n(3), 1), op(chunk.OpNegate, 1)}, "-3", "negate"},
		{[]step{constant(n(1.2), 1), constant(n(3.4), 1), op(chunk.OpAdd, 1), constant(n(5.6), 1), op(chunk.OpDivide, 1), op(chunk.OpNegate, 1)}, "-0.8214285714285714", "compound"},
		{[]step{constant(n(3), 1), constant(n(2), 1), op(chunk.OpGreater, 1)}, "true", "greater"},
		{[]step{constant(n(3), 1), constant(n(2), 1), op(chunk.OpLess, 1)}, "false", "less"},
		{[]step{constant(n(2), 1), constant(n(2), 1), op(chunk.OpEqual, 1)}, "true", "equal"},
		{[]step{op(chunk.OpNil, 1), op(chunk.OpNot, 1)}, "true", "not nil"},
		{[]step{op(chunk.OpTrue, 1), op(chunk.OpNot, 1)}, "false", "not true"},
		{[]step{op(chunk.OpFalse, 1)}, "false", "false literal"},
		{[]step{constant(n(1), 1), constant(n(2), 1), op(chunk.OpPop, 1)}, "1", "pop"},
	}

	for _, test := range tests {
		steps := append(test.steps, op(chunk.OpReturn, 2))
		_, out, result, err := run(t, build(t, steps...))
		if err != nil || result != vm.ResultOK {
			t.Errorf("%s: expected ok, got %v (%v)", test.description, result, err)
			continue
		}
		if out != test.expected+"\n" {
			t.Errorf("%s: expected %q, got %q", test.description, test.expected, strings.TrimSpace(out))
		}
	}
}

func TestPrint(t *testing.T) {
	c := build(t,
		constant(value.Number(1), 1), op(chunk.OpPrint, 1),
		constant(value.Number(2), 2), op(chunk.OpPrint, 2),
		op(chunk.OpReturn, 3),
	)
	_, out, result, err := run(t, c)
	if err != nil || result != vm.ResultOK {
		t.Fatalf("expected ok, got %v (%v)", result, err)
	}
	if out != "1\n2\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestStringConcatenationAllocates(t *testing.T) {
	heap := object.NewHeap()
	foo := value.Obj(heap.CopyString("foo"))
	bar := value.Obj(heap.CopyString("bar"))

	c := build(t, constant(foo, 1), constant(bar, 1), op(chunk.OpAdd, 1), op(chunk.OpReturn, 1))
	machine, out, result, err := run(t, c, vm.WithHeap(heap))
	if err != nil || result != vm.ResultOK {
		t.Fatalf("expected ok, got %v (%v)", result, err)
	}
	if out != "foobar\n" {
		t.Errorf("unexpected output %q", out)
	}
	if heap.Count() != 3 {
		t.Errorf("expected 3 objects on the heap, got %d", heap.Count())
	}
	if s, ok := heap.Head().(*object.String); !ok || s.String() != "foobar" {
		t.Errorf("newest object should be the concatenation, got %v", heap.Head())
	}

	machine.Free()
	if heap.Count() != 3 {
		t.Errorf("a shared heap must survive VM teardown")
	}
}

func TestRuntimeErrors(t *testing.T) {
	heap := object.NewHeap()
	str := value.Obj(heap.CopyString("s"))
	tests := []struct {
		makeChunk   func(t *testing.T) *chunk.Chunk
		line        int
		message     string
		underflow   bool
		description string
	}{
		{
			func(t *testing.T) *chunk.Chunk {
				return build(t, constant(value.Number(1), 1), constant(str, 2), op(chunk.OpAdd, 7), op(chunk.OpReturn, 8))
			},
			7, "Operands must be two numbers or two strings.", false, "mixed add",
		},
		{
			func(t *testing.T) *chunk.Chunk {
				return build(t, op(chunk.OpTrue, 1), constant(value.Number(1), 1), op(chunk.OpMultiply, 3), op(chunk.OpReturn, 4))
			},
			3, "Operands must be numbers.", false, "bool operand",
		},
		{
			func(t *testing.T) *chunk.Chunk {
				return build(t, op(chunk.OpNil, 5), op(chunk.OpNegate, 6), op(chunk.OpReturn, 6))
			},
			6, "Operand must be a number.", false, "negate nil",
		},
		{
			func(t *testing.T) *chunk.Chunk {
				return build(t, constant(value.Number(1), 1), op(chunk.OpAdd, 2), op(chunk.OpReturn, 3))
			},
			2, "Expected 2 operand(s), stack holds 1.", true, "underflow",
		},
		{
			func(t *testing.T) *chunk.Chunk {
				return build(t, op(chunk.OpPrint, 4))
			},
			4, "Expected 1 operand(s), stack holds 0.", true, "print on empty stack",
		},
		{
			func(t *testing.T) *chunk.Chunk {
				return build(t, step{op: chunk.OpConstant, operands: []byte{5}, line: 9}, op(chunk.OpReturn, 9))
			},
			9, "Constant index 5 out of range.", false, "constant past the pool",
		},
		{
			func(t *testing.T) *chunk.Chunk {
				return build(t, constant(value.Number(1), 1))
			},
			-1, "Reached end of chunk without OP_RETURN.", false, "missing return",
		},
	}

	for _, test := range tests {
		machine, _, result, err := run(t, test.makeChunk(t), vm.WithHeap(heap))
		if result != vm.ResultRuntimeError {
			t.Errorf("%s: expected runtime error, got %v", test.description, result)
			continue
		}

		var rerr *vm.RuntimeError
		if !errors.As(err, &rerr) {
			t.Errorf("%s: expected *RuntimeError, got %T", test.description, err)
			continue
		}
		if rerr.Line != test.line {
			t.Errorf("%s: expected line %d, got %d", test.description, test.line, rerr.Line)
		}
		if rerr.Message != test.message {
			t.Errorf("%s: expected %q, got %q", test.description, test.message, rerr.Message)
		}
		if errors.Is(err, vm.ErrUnderflow) != test.underflow {
			t.Errorf("%s: underflow mismatch: %v", test.description, err)
		}
		if machine.Stack().Size() != 0 {
			t.Errorf("%s: stack should be discarded after an error", test.description)
		}
		if machine.State() != vm.StateRuntimeError {
			t.Errorf("%s: expected StateRuntimeError, got %v", test.description, machine.State())
		}
	}
}

func TestLongConstantErrorLine(t *testing.T) {
	heap := object.NewHeap()
	var steps []step
	for i := 0; i < 299; i++ {
		steps = append(steps, constant(value.Number(1), 10))
	}
	steps = append(steps, constant(value.Obj(heap.CopyString("x")), 11), op(chunk.OpSubtract, 12), op(chunk.OpReturn, 13))

	_, _, result, err := run(t, build(t, steps...), vm.WithHeap(heap))
	var rerr *vm.RuntimeError
	if result != vm.ResultRuntimeError || !errors.As(err, &rerr) {
		t.Fatalf("expected runtime error, got %v (%v)", result, err)
	}
	if rerr.Line != 12 || rerr.Op != chunk.OpSubtract {
		t.Errorf("expected OP_SUBTRACT at line 12, got %v at line %d", rerr.Op, rerr.Line)
	}
	if got := rerr.Error(); got != "[line 12] in script: Operands must be numbers." {
		t.Errorf("unexpected message %q", got)
	}
}

func TestNilChunk(t *testing.T) {
	machine := vm.New()
	result, err := machine.Interpret(nil)
	if result != vm.ResultCompileError || !errors.Is(err, vm.ErrNoChunk) {
		t.Errorf("expected compile error, got %v (%v)", result, err)
	}
}

func TestReinterpretResetsState(t *testing.T) {
	var out bytes.Buffer
	machine := vm.New(vm.WithWriter(&out))

	failing := build(t, constant(value.Number(1), 1), op(chunk.OpNil, 1), op(chunk.OpAdd, 1))
	if result, _ := machine.Interpret(failing); result != vm.ResultRuntimeError {
		t.Fatalf("expected runtime error, got %v", result)
	}

	ok := build(t, constant(value.Number(42), 1), op(chunk.OpReturn, 1))
	result, err := machine.Interpret(ok)
	if err != nil || result != vm.ResultOK {
		t.Fatalf("expected ok, got %v (%v)", result, err)
	}
	if out.String() != "42\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	if machine.IP() != ok.Len() {
		t.Errorf("expected ip at end of chunk, got %d", machine.IP())
	}

	if _, err := machine.Step(); !errors.Is(err, vm.ErrNotRunning) {
		t.Errorf("stepping a finished VM should fail, got %v", err)
	}
}

func TestFreeReleasesOwnedHeap(t *testing.T) {
	machine := vm.New()
	machine.Heap().CopyString("a")
	machine.Heap().CopyString("b")

	machine.Free()
	if machine.Heap().Count() != 0 {
		t.Errorf("expected owned heap to be emptied, got %d", machine.Heap().Count())
	}
	if machine.State() != vm.StateReady {
		t.Errorf("expected StateReady after Free, got %v", machine.State())
	}
}

func TestTraceShowsStack(t *testing.T) {
	c := build(t, constant(value.Number(1), 1), constant(value.Number(2), 1), op(chunk.OpAdd, 1), op(chunk.OpReturn, 2))

	var trace bytes.Buffer
	if _, _, result, err := run(t, c, vm.WithTrace(&trace)); err != nil || result != vm.ResultOK {
		t.Fatalf("expected ok, got %v (%v)", result, err)
	}

	expected := strings.Join([]string{
		"          ",
		"0000    1 OP_CONSTANT         0 '1'",
		"          [ 1 ]",
		"0002    | OP_CONSTANT         1 '2'",
		"          [ 1 ][ 2 ]",
		"0004    | OP_ADD",
		"          [ 3 ]",
		"0005    2 OP_RETURN",
		"",
	}, "\n")
	if trace.String() != expected {
		t.Errorf("unexpected trace:\n%s\nexpected:\n%s", trace.String(), expected)
	}
}
