package chunk_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/vela/lang/chunk"
	"github.com/mna/vela/lang/value"
)

func TestWriteAndLine(t *testing.T) {
	var c chunk.Chunk
	c.WriteOp(chunk.OpReturn, 1)
	c.Write(0xFF, 2)
	assert.Equal(t, []byte{byte(chunk.OpReturn), 0xFF}, c.Code)
	assert.Equal(t, 1, c.Line(0))
	assert.Equal(t, 2, c.Line(1))
	assert.Equal(t, -1, c.Line(99))
}

func TestAddConstant(t *testing.T) {
	var c chunk.Chunk
	idx := c.AddConstant(value.Number(42))
	assert.Equal(t, 0, idx)
	assert.Equal(t, value.Number(42), c.Constants[0])
}

func TestDisassembleSimpleChunk(t *testing.T) {
	var c chunk.Chunk
	idx := c.AddConstant(value.Number(1))
	c.WriteOp(chunk.OpConstant, 1)
	c.Write(byte(idx), 1)
	c.WriteOp(chunk.OpReturn, 1)

	var buf bytes.Buffer
	chunk.Disassemble(&buf, &c, "test")
	out := buf.String()
	assert.Contains(t, out, "== test ==")
	assert.Contains(t, out, "OP_CONSTANT")
	assert.Contains(t, out, "OP_RETURN")
}

func TestDisassembleJump(t *testing.T) {
	var c chunk.Chunk
	c.WriteOp(chunk.OpJump, 1)
	c.Write(0, 1)
	c.Write(2, 1)
	c.WriteOp(chunk.OpNil, 1)

	var buf bytes.Buffer
	chunk.Disassemble(&buf, &c, "jump")
	assert.Contains(t, buf.String(), "-> 5")
}

func TestOpcodeStringUnknown(t *testing.T) {
	assert.Equal(t, "OP_UNKNOWN", chunk.Opcode(250).String())
}
