// Package chunk defines the bytecode container produced by lang/compiler and
// executed by lang/machine: a flat byte stream, its constant pool, and a
// parallel line table for diagnostics.
package chunk

import "github.com/mna/vela/lang/value"

// Opcode identifies a single bytecode instruction. The order here matches
// the original chunk.rs exactly so disassembly output and error tests stay
// grounded in that source.
type Opcode byte

const (
	OpConstant Opcode = iota
	OpNil
	OpTrue
	OpFalse
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpReturn
	OpPrint
	OpPop
	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal
	OpGetLocal
	OpSetLocal
	OpJumpIfFalse
	OpJump
	OpLoop
	OpCall
	OpClosure
)

var opcodeNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpReturn:       "OP_RETURN",
	OpPrint:        "OP_PRINT",
	OpPop:          "OP_POP",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpJump:         "OP_JUMP",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpClosure:      "OP_CLOSURE",
}

// String returns the opcode's disassembly mnemonic.
func (op Opcode) String() string {
	if int(op) < 0 || int(op) >= len(opcodeNames) {
		return "OP_UNKNOWN"
	}
	return opcodeNames[op]
}

// MaxConstants is the largest number of constants a single chunk can hold:
// constant indexes are encoded as a single byte operand.
const MaxConstants = 256

// Chunk is a unit of compiled bytecode: one per function body (including the
// implicit top-level script function).
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Lines     []int
}

// Write appends a raw byte to the code stream, recording the source line it
// came from.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index. The
// constant is always appended, even if the resulting index no longer fits in
// a single byte operand (callers that need the 256-entry limit enforced
// check the returned index against MaxConstants themselves, the way the
// original compiler keeps emitting a placeholder byte so that later jump
// offsets stay positioned correctly after an over-limit error).
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Line returns the source line recorded for the instruction at ip.
func (c *Chunk) Line(ip int) int {
	if ip < 0 || ip >= len(c.Lines) {
		return -1
	}
	return c.Lines[ip]
}
