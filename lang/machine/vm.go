package machine

import (
	"fmt"
	"io"

	"github.com/mna/vela/lang/chunk"
	"github.com/mna/vela/lang/intern"
	"github.com/mna/vela/lang/value"
)

// MaxFrames bounds call depth: exceeding it is reported as a stack overflow
// runtime error rather than growing forever, matching the original VM's
// fixed 64-frame call stack.
const MaxFrames = 64

// CallFrame is one activation record: which closure is running, where
// execution is within its chunk, and where its locals begin on the value
// stack.
type CallFrame struct {
	closure   value.ClosureID
	ip        int
	slotStart int
}

// RuntimeError reports a failure detected while executing bytecode, after
// the VM has already written a diagnostic (with stack trace) to its error
// sink and cleared its stack.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// Thread is a single VM execution context: its value stack, call frames,
// globals table, and output sinks. A Thread may run more than one top-level
// program in sequence (the REPL does this), with globals surviving across
// runs.
type Thread struct {
	mem     *Memory
	globals *Globals

	Stdout   io.Writer
	DebugOut io.Writer
	ErrOut   io.Writer

	stack  []value.Value
	frames []CallFrame
}

// NewThread creates a Thread backed by mem, registering every native
// function into its globals table before returning. Any of the writers may
// be nil, in which case that sink discards its output.
func NewThread(mem *Memory, stdout, debugOut, errOut io.Writer) *Thread {
	if stdout == nil {
		stdout = io.Discard
	}
	if debugOut == nil {
		debugOut = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	t := &Thread{
		mem:      mem,
		globals:  NewGlobals(),
		Stdout:   stdout,
		DebugOut: debugOut,
		ErrOut:   errOut,
	}
	t.registerNatives()
	return t
}

// Globals exposes the thread's global variable table. The table lives as
// long as the Thread, so bindings survive across separately-compiled
// programs run on the same Thread.
func (t *Thread) Globals() *Globals { return t.globals }

// Run executes the top-level script function fn (already wrapped in a
// closure by the caller) to completion.
func (t *Thread) Run(closureID value.ClosureID) error {
	t.frames = append(t.frames, CallFrame{closure: closureID, ip: 0, slotStart: 0})
	return t.run()
}

func (t *Thread) push(v value.Value) { t.stack = append(t.stack, v) }

func (t *Thread) pop() value.Value {
	v := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return v
}

func (t *Thread) peek(distance int) value.Value {
	return t.stack[len(t.stack)-1-distance]
}

func (t *Thread) closureFunction(id value.ClosureID) *Function {
	cl := t.mem.Closure(id)
	return t.mem.Function(cl.Function)
}

func (t *Thread) run() error {
	for {
		fr := &t.frames[len(t.frames)-1]
		fn := t.closureFunction(fr.closure)
		c := &fn.Chunk

		if t.DebugOut != io.Discard {
			t.traceInstruction(c, fr.ip)
		}

		op := chunk.Opcode(c.Code[fr.ip])
		fr.ip++

		switch op {
		case chunk.OpConstant:
			idx := c.Code[fr.ip]
			fr.ip++
			t.push(c.Constants[idx])

		case chunk.OpNil:
			t.push(value.NilValue)
		case chunk.OpTrue:
			t.push(value.True)
		case chunk.OpFalse:
			t.push(value.False)
		case chunk.OpPop:
			t.pop()

		case chunk.OpGetLocal:
			slot := c.Code[fr.ip]
			fr.ip++
			t.push(t.stack[fr.slotStart+int(slot)])
		case chunk.OpSetLocal:
			slot := c.Code[fr.ip]
			fr.ip++
			t.stack[fr.slotStart+int(slot)] = t.peek(0)

		case chunk.OpDefineGlobal:
			name := t.readName(c, fr)
			t.globals.Define(name, t.pop())
		case chunk.OpGetGlobal:
			name := t.readName(c, fr)
			v, ok := t.globals.Get(name)
			if !ok {
				return t.runtimeError("Undefined variable '%s'.", name.String())
			}
			t.push(v)
		case chunk.OpSetGlobal:
			name := t.readName(c, fr)
			if !t.globals.Has(name) {
				return t.runtimeError("Undefined variable '%s'.", name.String())
			}
			t.globals.Define(name, t.peek(0))

		case chunk.OpEqual:
			b, a := t.pop(), t.pop()
			t.push(value.Bool(value.Equal(a, b)))
		case chunk.OpGreater:
			if err := t.binaryCompare(op); err != nil {
				return err
			}
		case chunk.OpLess:
			if err := t.binaryCompare(op); err != nil {
				return err
			}
		case chunk.OpAdd:
			if err := t.add(); err != nil {
				return err
			}
		case chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
			if err := t.binaryArith(op); err != nil {
				return err
			}
		case chunk.OpNot:
			t.push(value.Bool(!value.Truthy(t.pop())))
		case chunk.OpNegate:
			n, ok := t.peek(0).(value.Number)
			if !ok {
				return t.runtimeError("Operand must be a number.")
			}
			t.pop()
			t.push(-n)

		case chunk.OpPrint:
			fmt.Fprintln(t.Stdout, t.pop().String())

		case chunk.OpJump:
			offset := t.readShort(c, fr)
			fr.ip += offset
		case chunk.OpJumpIfFalse:
			offset := t.readShort(c, fr)
			if !value.Truthy(t.peek(0)) {
				fr.ip += offset
			}
		case chunk.OpLoop:
			offset := t.readShort(c, fr)
			fr.ip -= offset

		case chunk.OpCall:
			argCount := int(c.Code[fr.ip])
			fr.ip++
			if err := t.callValue(t.peek(argCount), argCount); err != nil {
				return err
			}
		case chunk.OpClosure:
			idx := c.Code[fr.ip]
			fr.ip++
			fnID := c.Constants[idx].(value.FunctionID)
			t.push(t.mem.NewClosure(fnID))

		case chunk.OpReturn:
			result := t.pop()
			closed := t.frames[len(t.frames)-1]
			t.frames = t.frames[:len(t.frames)-1]
			// slotStart-1 also discards the callee value itself, pushed just
			// below its arguments by the caller; the top-level frame has no
			// such callee slot (its slotStart is 0), so the target is clamped
			// to zero there.
			truncateTo := closed.slotStart - 1
			if truncateTo < 0 {
				truncateTo = 0
			}
			t.stack = t.stack[:truncateTo]
			if len(t.frames) == 0 {
				return nil
			}
			t.push(result)

		default:
			return t.runtimeError("Unknown opcode %d.", op)
		}
	}
}

func (t *Thread) readName(c *chunk.Chunk, fr *CallFrame) *intern.Entry {
	idx := c.Code[fr.ip]
	fr.ip++
	n := c.Constants[idx].(value.StrID)
	return n.E
}

func (t *Thread) readShort(c *chunk.Chunk, fr *CallFrame) int {
	hi, lo := c.Code[fr.ip], c.Code[fr.ip+1]
	fr.ip += 2
	return int(hi)<<8 | int(lo)
}

func (t *Thread) binaryCompare(op chunk.Opcode) error {
	bn, bok := t.peek(0).(value.Number)
	an, aok := t.peek(1).(value.Number)
	if !aok || !bok {
		return t.runtimeError("Operands must be numbers.")
	}
	t.pop()
	t.pop()
	switch op {
	case chunk.OpGreater:
		t.push(value.Bool(an > bn))
	case chunk.OpLess:
		t.push(value.Bool(an < bn))
	}
	return nil
}

func (t *Thread) binaryArith(op chunk.Opcode) error {
	bn, bok := t.peek(0).(value.Number)
	an, aok := t.peek(1).(value.Number)
	if !aok || !bok {
		return t.runtimeError("Operands must be numbers.")
	}
	t.pop()
	t.pop()
	switch op {
	case chunk.OpSubtract:
		t.push(an - bn)
	case chunk.OpMultiply:
		t.push(an * bn)
	case chunk.OpDivide:
		t.push(an / bn)
	}
	return nil
}

// add implements OP_ADD's dual behavior: number+number or string+string,
// falling back to a runtime error for any other combination, matching the
// original VM's binary_op special case for Add.
func (t *Thread) add() error {
	b, a := t.peek(0), t.peek(1)
	if an, ok := a.(value.Number); ok {
		if bn, ok := b.(value.Number); ok {
			t.pop()
			t.pop()
			t.push(an + bn)
			return nil
		}
	}
	if as, ok := a.(value.Str); ok {
		if bs, ok := b.(value.Str); ok {
			t.pop()
			t.pop()
			entry := t.mem.Interner.Intern(as.E.String() + bs.E.String())
			t.push(value.NewStr(entry))
			return nil
		}
	}
	return t.runtimeError("Operands must be two numbers or two strings.")
}

func (t *Thread) callValue(callee value.Value, argCount int) error {
	switch c := callee.(type) {
	case value.ClosureID:
		return t.call(c, argCount)
	case value.NativeID:
		return t.callNative(c, argCount)
	default:
		return t.runtimeError("Can only call functions and classes.")
	}
}

func (t *Thread) call(closureID value.ClosureID, argCount int) error {
	fn := t.closureFunction(closureID)
	if argCount != fn.Arity {
		return t.runtimeError("Expected %d arguments but got %d.", fn.Arity, argCount)
	}
	if len(t.frames) == MaxFrames {
		return t.runtimeError("Stack overflow.")
	}
	t.frames = append(t.frames, CallFrame{
		closure:   closureID,
		ip:        0,
		slotStart: len(t.stack) - argCount,
	})
	return nil
}

func (t *Thread) callNative(id value.NativeID, argCount int) error {
	native := t.mem.Native(id)
	if argCount != native.Arity {
		return t.runtimeError("Expected %d arguments but got %d.", native.Arity, argCount)
	}
	args := make([]value.Value, argCount)
	copy(args, t.stack[len(t.stack)-argCount:])
	result, err := native.Fn(args)
	if err != nil {
		return t.runtimeError("%s", err.Error())
	}
	t.stack = t.stack[:len(t.stack)-argCount-1]
	t.push(result)
	return nil
}

// runtimeError writes msg and a frame-by-frame stack trace to the error
// sink, clears the stack and call frames (execution aborts, it never
// resumes), and returns the error to propagate to the caller.
func (t *Thread) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(t.ErrOut, msg)
	for i := len(t.frames) - 1; i >= 0; i-- {
		fr := t.frames[i]
		fn := t.closureFunction(fr.closure)
		line := fn.Chunk.Line(fr.ip - 1)
		name := "script"
		if fn.Name != nil {
			name = fn.Name.String() + "()"
		}
		fmt.Fprintf(t.ErrOut, "[line %d] in %s\n", line, name)
	}
	t.stack = nil
	t.frames = nil
	return &RuntimeError{Message: msg}
}

func (t *Thread) traceInstruction(c *chunk.Chunk, ip int) {
	fmt.Fprint(t.DebugOut, "          ")
	for _, v := range t.stack {
		fmt.Fprintf(t.DebugOut, "[ %s ]", v.String())
	}
	fmt.Fprintln(t.DebugOut)
	chunk.DisassembleInstruction(t.DebugOut, c, ip)
}
