package chunk

import "fmt"

// Version identifies the opcode set below. Bump it whenever an opcode is added,
// removed or changes its operand layout.
const Version = 1

type OpCode byte

// List of opcodes
const (
	OpConstant     OpCode = iota // idx:u8
	OpConstantLong               // idx:u24 little endian
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpReturn

	opCount
)

// MaxShortConstant is the largest constant index OpConstant can address.
const MaxShortConstant = 0xFF

// MaxLongConstant is the largest constant index OpConstantLong can address.
const MaxLongConstant = 0xFFFFFF

var opNames = [opCount]string{
	OpConstant:     "OP_CONSTANT",
	OpConstantLong: "OP_CONSTANT_LONG",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpReturn:       "OP_RETURN",
}

var operandWidths = [opCount]int{
	OpConstant:     1,
	OpConstantLong: 3,
}

// Valid reports whether op belongs to the opcode set.
func (op OpCode) Valid() bool {
	return op < opCount
}

// OperandWidth returns the number of operand bytes that follow op.
func (op OpCode) OperandWidth() int {
	if !op.Valid() {
		return 0
	}
	return operandWidths[op]
}

func (op OpCode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
	}
	return opNames[op]
}

// Lookup maps an opcode name, as returned by String, to its opcode.
func Lookup(name string) (OpCode, bool) {
	for op, n := range opNames {
		if n == name {
			return OpCode(op), true
		}
	}
	return 0, false
}
