// Package machine implements the runtime: the object arena, the globals
// table, and the stack-based VM that executes compiled chunks.
package machine

import (
	"github.com/mna/vela/lang/chunk"
	"github.com/mna/vela/lang/intern"
	"github.com/mna/vela/lang/value"
)

// Function is a compiled function body: its arity and bytecode chunk. The
// top-level script is itself a Function with arity 0 and an empty name.
type Function struct {
	Name  *intern.Entry
	Arity int
	Chunk chunk.Chunk
}

// NativeFn is the signature every native function implements.
type NativeFn func(args []value.Value) (value.Value, error)

// NativeFunction wraps a Go function exposed to vela programs as a callable
// value, such as clock.
type NativeFunction struct {
	Name  string
	Arity int
	Fn    NativeFn
}

// Closure wraps a compiled Function for calling at runtime. vela closures
// capture no free variables (lang/compiler's resolveLocal compiles any name
// that is not one of the current function's own locals as a global): a
// Closure is only ever a thin handle to its Function, never an upvalue list.
type Closure struct {
	Function value.FunctionID
}

// Memory is the arena that owns every Function, Closure, and NativeFunction
// allocated while compiling and running a program, plus the string
// interner they all share. Handles (FunctionID, ClosureID, NativeID) are
// dense, append-only indexes into this arena and are never reused or freed:
// vela has no garbage collector.
type Memory struct {
	Interner *intern.Interner

	functions []*Function
	closures  []*Closure
	natives   []*NativeFunction
}

// NewMemory creates an empty arena with its own string interner.
func NewMemory() *Memory {
	return &Memory{Interner: intern.New()}
}

// NewFunction allocates a new, empty Function and returns its handle.
func (m *Memory) NewFunction(name *intern.Entry) value.FunctionID {
	m.functions = append(m.functions, &Function{Name: name})
	return value.FunctionID(len(m.functions) - 1)
}

// Function dereferences a FunctionID. The handle is always valid: handles
// are only ever produced by NewFunction and never invalidated.
func (m *Memory) Function(id value.FunctionID) *Function {
	return m.functions[id]
}

// NumFunctions returns how many functions have been allocated so far,
// including the implicit top-level script.
func (m *Memory) NumFunctions() int { return len(m.functions) }

// FunctionAt returns the i'th allocated function, in allocation order.
// Used by tooling (the disasm CLI command) to walk every compiled
// function, not just ones reachable from a particular handle.
func (m *Memory) FunctionAt(i int) *Function { return m.functions[i] }

// NewClosure allocates a Closure wrapping fn and returns its handle.
func (m *Memory) NewClosure(fn value.FunctionID) value.ClosureID {
	m.closures = append(m.closures, &Closure{Function: fn})
	return value.ClosureID(len(m.closures) - 1)
}

// Closure dereferences a ClosureID.
func (m *Memory) Closure(id value.ClosureID) *Closure {
	return m.closures[id]
}

// NewNative registers a native function and returns its handle.
func (m *Memory) NewNative(name string, arity int, fn NativeFn) value.NativeID {
	m.natives = append(m.natives, &NativeFunction{Name: name, Arity: arity, Fn: fn})
	return value.NativeID(len(m.natives) - 1)
}

// Native dereferences a NativeID.
func (m *Memory) Native(id value.NativeID) *NativeFunction {
	return m.natives[id]
}
