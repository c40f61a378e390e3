// Package interp wires the scanner, compiler, and machine packages together
// behind a single Interpret entry point, the way the original interpreter's
// top-level interpret(source, config) function does.
package interp

import (
	"io"

	"github.com/mna/vela/lang/compiler"
	"github.com/mna/vela/lang/machine"
)

// Config holds the five output sinks a run can be configured with. A nil
// writer discards whatever would have been written to it, the idiomatic Go
// rendition of the original Config's PrintOutput::Null variant.
type Config struct {
	// VMDebug receives a per-instruction execution trace.
	VMDebug io.Writer
	// VMError receives runtime error messages and stack traces.
	VMError io.Writer
	// CompilerDebug receives a disassembly listing of every compiled function.
	CompilerDebug io.Writer
	// CompilerError receives compile-time diagnostics.
	CompilerError io.Writer
	// PrintOutput receives the output of the print statement.
	PrintOutput io.Writer
}

// Result classifies how a run finished.
type Result int

const (
	// OK means the program compiled and ran to completion.
	OK Result = iota
	// CompileErr means compilation failed; no code ran.
	CompileErr
	// RuntimeErr means compilation succeeded but execution aborted.
	RuntimeErr
)

// Interpret compiles and runs source as a brand-new program: a fresh memory
// arena, a fresh globals table, nothing carried over from any previous call.
// Use Session for a REPL-style sequence of inputs that should share globals.
func Interpret(source string, cfg Config) (Result, error) {
	mem := machine.NewMemory()
	fnID, err := compiler.Compile(source, mem, cfg.CompilerError, cfg.CompilerDebug)
	if err != nil {
		return CompileErr, err
	}

	th := machine.NewThread(mem, cfg.PrintOutput, cfg.VMDebug, cfg.VMError)
	closure := mem.NewClosure(fnID)
	if err := th.Run(closure); err != nil {
		return RuntimeErr, err
	}
	return OK, nil
}

// Session compiles and runs one source snippet at a time against a single,
// persistent Thread, so that top-level variable bindings declared in one
// call are still visible to the next. This is what the REPL command uses.
type Session struct {
	mem *machine.Memory
	th  *machine.Thread
	cfg Config
}

// NewSession creates a Session with its own memory arena and thread.
func NewSession(cfg Config) *Session {
	mem := machine.NewMemory()
	th := machine.NewThread(mem, cfg.PrintOutput, cfg.VMDebug, cfg.VMError)
	return &Session{mem: mem, th: th, cfg: cfg}
}

// Interpret compiles and runs source in this session.
func (s *Session) Interpret(source string) (Result, error) {
	fnID, err := compiler.Compile(source, s.mem, s.cfg.CompilerError, s.cfg.CompilerDebug)
	if err != nil {
		return CompileErr, err
	}
	closure := s.mem.NewClosure(fnID)
	if err := s.th.Run(closure); err != nil {
		return RuntimeErr, err
	}
	return OK, nil
}
