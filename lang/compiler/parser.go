// Package compiler implements a single-pass Pratt parser that emits
// bytecode directly as it parses: there is no intermediate AST. Expressions
// are compiled by precedence-climbing over a table of parse rules (rules.go)
// and statements are compiled by direct recursive descent (statements.go),
// both emitting straight into the chunk of the function currently being
// compiled.
package compiler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mna/vela/lang/chunk"
	"github.com/mna/vela/lang/intern"
	"github.com/mna/vela/lang/machine"
	"github.com/mna/vela/lang/scanner"
	"github.com/mna/vela/lang/token"
	"github.com/mna/vela/lang/value"
)

// fnType distinguishes the implicit top-level script from a user-declared
// function: a return statement is only legal inside the latter.
type fnType int

const (
	typeScript fnType = iota
	typeFunction
)

// local is a block-scoped local variable binding. depth of -1 marks a local
// whose initializer is still being compiled: reading it in that state (e.g.
// `var a = a;`) is an error, mirroring the original Uninitialized/
// Initialized(depth) pair as a sentinel rather than a two-case enum.
type local struct {
	name  string
	depth int
}

// fnState is the compile-time context for one function body: its own
// locals and scope depth, plus a pointer to the enclosing function's state
// so compilation can unwind to it once the nested function body is done.
// vela closures do not capture enclosing locals (see the Closure doc comment
// in lang/machine), so
// unlike a upvalue-capturing compiler, fnState never needs to walk the
// enclosing chain while resolving a name; it only ever looks at its own
// locals before falling back to the globals path.
type fnState struct {
	enclosing *fnState
	fn        value.FunctionID
	fnType    fnType
	locals    []local
	scopeDepth int
}

// parser drives the scan-and-emit loop. Its fields mirror the original
// compiler's Parser: current/previous tokens, sticky error-reporting state,
// and the shared memory arena that both the compiler and the runtime use to
// allocate function/closure records.
type parser struct {
	scanner *scanner.Scanner
	mem     *machine.Memory

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
	errs      []error

	errOut   io.Writer
	debugOut io.Writer

	fs *fnState
}

// Compile compiles source into a top-level script Function allocated in
// mem, returning its handle. debugOut, if non-nil, receives a disassembly
// listing of every function compiled without error (including the script
// itself), the way the original compiler calls disassemble_chunk whenever
// its debug sink is configured.
func Compile(source string, mem *machine.Memory, errOut, debugOut io.Writer) (value.FunctionID, error) {
	if errOut == nil {
		errOut = io.Discard
	}
	if debugOut == nil {
		debugOut = io.Discard
	}

	p := &parser{
		scanner:  scanner.New(source),
		mem:      mem,
		errOut:   errOut,
		debugOut: debugOut,
	}

	scriptID := mem.NewFunction(nil)
	p.fs = newFnState(nil, scriptID, typeScript)

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	fnID := p.endCompiler()

	if p.hadError {
		return 0, &CompileError{Errs: p.errs}
	}
	return fnID, nil
}

func newFnState(enclosing *fnState, fn value.FunctionID, ft fnType) *fnState {
	return &fnState{
		enclosing: enclosing,
		fn:        fn,
		fnType:    ft,
	}
}

func (p *parser) currentChunk() *chunk.Chunk {
	return &p.mem.Function(p.fs.fn).Chunk
}

// --- token stream -----------------------------------------------------

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.Next()
		if p.current.Type != token.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(t token.Type) bool { return p.current.Type == t }

func (p *parser) match(t token.Type) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(t token.Type, msg string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

// --- error reporting ----------------------------------------------------

func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *parser) error(msg string)          { p.errorAt(p.previous, msg) }

func (p *parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	var sb strings.Builder
	fmt.Fprintf(&sb, "[line %d] Error", tok.Line)
	switch {
	case tok.Type == token.EOF:
		sb.WriteString(" at end")
	case tok.Type == token.Error:
		// the lexeme IS the message, nothing more to point at
	default:
		fmt.Fprintf(&sb, " at '%s'", tok.Lexeme)
	}
	fmt.Fprintf(&sb, ": %s", msg)

	fmt.Fprintln(p.errOut, sb.String())
	p.errs = append(p.errs, fmt.Errorf("%s", sb.String()))
}

// synchronize discards tokens until it reaches what looks like the start of
// the next declaration, so one malformed statement doesn't cascade into
// spurious follow-on errors.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Type != token.EOF {
		if p.previous.Type == token.Semicolon {
			return
		}
		switch p.current.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// --- bytecode emission ----------------------------------------------------

func (p *parser) emitByte(b byte) {
	p.currentChunk().Write(b, p.previous.Line)
}

func (p *parser) emitOp(op chunk.Opcode) {
	p.currentChunk().WriteOp(op, p.previous.Line)
}

func (p *parser) emitBytes(op chunk.Opcode, b byte) {
	p.emitOp(op)
	p.emitByte(b)
}

func (p *parser) emitReturn() {
	p.emitOp(chunk.OpNil)
	p.emitOp(chunk.OpReturn)
}

// emitJump emits a jump instruction with a placeholder 16-bit offset and
// returns the offset of that placeholder, to be patched once the jump
// target is known.
func (p *parser) emitJump(op chunk.Opcode) int {
	p.emitOp(op)
	p.emitByte(0xFF)
	p.emitByte(0xFF)
	return len(p.currentChunk().Code) - 2
}

func (p *parser) patchJump(offset int) {
	jump := len(p.currentChunk().Code) - offset - 2
	if jump > 0xFFFF {
		p.error("Too much code to jump over.")
	}
	c := p.currentChunk()
	c.Code[offset] = byte((jump >> 8) & 0xFF)
	c.Code[offset+1] = byte(jump & 0xFF)
}

func (p *parser) emitLoop(loopStart int) {
	p.emitOp(chunk.OpLoop)
	offset := len(p.currentChunk().Code) - loopStart + 2
	if offset > 0xFFFF {
		p.error("Loop body too large.")
	}
	p.emitByte(byte((offset >> 8) & 0xFF))
	p.emitByte(byte(offset & 0xFF))
}

func (p *parser) makeConstant(v value.Value) byte {
	idx := p.currentChunk().AddConstant(v)
	if idx >= chunk.MaxConstants {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (p *parser) emitConstant(v value.Value) {
	p.emitBytes(chunk.OpConstant, p.makeConstant(v))
}

func (p *parser) endCompiler() value.FunctionID {
	p.emitReturn()
	fn := p.mem.Function(p.fs.fn)
	if p.debugOut != io.Discard && !p.hadError {
		name := "<script>"
		if fn.Name != nil {
			name = fn.Name.String()
		}
		chunk.Disassemble(p.debugOut, &fn.Chunk, name)
	}
	fnID := p.fs.fn
	p.fs = p.fs.enclosing
	return fnID
}

func (p *parser) beginScope() { p.fs.scopeDepth++ }

func (p *parser) endScope() {
	p.fs.scopeDepth--
	for len(p.fs.locals) > 0 && p.fs.locals[len(p.fs.locals)-1].depth > p.fs.scopeDepth {
		p.emitOp(chunk.OpPop)
		p.fs.locals = p.fs.locals[:len(p.fs.locals)-1]
	}
}

// --- variables ----------------------------------------------------------

func (p *parser) identifierConstant(name string) byte {
	entry := p.mem.Interner.Intern(name)
	return p.makeConstant(value.StrID{E: entry})
}

func (p *parser) internEntry(name string) *intern.Entry {
	return p.mem.Interner.Intern(name)
}

func (p *parser) addLocal(name string) {
	if len(p.fs.locals) >= 256 {
		p.error("Too many local variables in function.")
		return
	}
	p.fs.locals = append(p.fs.locals, local{name: name, depth: -1})
}

func (p *parser) declareVariable() {
	if p.fs.scopeDepth == 0 {
		return
	}
	name := p.previous.Lexeme
	for i := len(p.fs.locals) - 1; i >= 0; i-- {
		l := p.fs.locals[i]
		if l.depth != -1 && l.depth < p.fs.scopeDepth {
			break
		}
		if l.name == name {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) parseVariable(errMsg string) byte {
	p.consume(token.Identifier, errMsg)
	p.declareVariable()
	if p.fs.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous.Lexeme)
}

func (p *parser) markInitialized() {
	if p.fs.scopeDepth == 0 {
		return
	}
	p.fs.locals[len(p.fs.locals)-1].depth = p.fs.scopeDepth
}

func (p *parser) defineVariable(global byte) {
	if p.fs.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitBytes(chunk.OpDefineGlobal, global)
}

// resolveLocal searches only the current function's own locals: vela
// closures never capture an enclosing function's locals (see the Closure
// doc comment in lang/machine), so there is no enclosing chain to walk here.
// A name not found locally falls through to the global variable path.
func (p *parser) resolveLocal(fs *fnState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (p *parser) namedVariable(name string, canAssign bool) {
	var getOp, setOp chunk.Opcode
	arg := p.resolveLocal(p.fs, name)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		arg = int(p.identifierConstant(name))
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && p.match(token.Equal) {
		p.expression()
		p.emitBytes(setOp, byte(arg))
	} else {
		p.emitBytes(getOp, byte(arg))
	}
}

// --- expressions ----------------------------------------------------------

func (p *parser) expression() { p.parsePrecedence(precAssignment) }

func (p *parser) parsePrecedence(prec Precedence) {
	p.advance()
	prefix := getRule(p.previous.Type).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefix(p, canAssign)

	for prec <= getRule(p.current.Type).precedence {
		p.advance()
		infix := getRule(p.previous.Type).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.Equal) {
		p.error("Invalid assignment target.")
	}
}

func (p *parser) number(canAssign bool) {
	f, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.error("Invalid number literal.")
		return
	}
	p.emitConstant(value.Number(f))
}

func (p *parser) stringLiteral(canAssign bool) {
	raw := p.previous.Lexeme
	content := raw[1 : len(raw)-1]
	p.emitConstant(value.NewStr(p.internEntry(content)))
}

func (p *parser) literal(canAssign bool) {
	switch p.previous.Type {
	case token.False:
		p.emitOp(chunk.OpFalse)
	case token.True:
		p.emitOp(chunk.OpTrue)
	case token.Nil:
		p.emitOp(chunk.OpNil)
	}
}

func (p *parser) grouping(canAssign bool) {
	p.expression()
	p.consume(token.RightParen, "Expect ')' after expression.")
}

func (p *parser) unary(canAssign bool) {
	opType := p.previous.Type
	p.parsePrecedence(precUnary)
	switch opType {
	case token.Minus:
		p.emitOp(chunk.OpNegate)
	case token.Bang:
		p.emitOp(chunk.OpNot)
	}
}

func (p *parser) binary(canAssign bool) {
	opType := p.previous.Type
	rule := getRule(opType)
	p.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.BangEqual:
		p.emitOp(chunk.OpEqual)
		p.emitOp(chunk.OpNot)
	case token.EqualEqual:
		p.emitOp(chunk.OpEqual)
	case token.Greater:
		p.emitOp(chunk.OpGreater)
	case token.GreaterEqual:
		p.emitOp(chunk.OpLess)
		p.emitOp(chunk.OpNot)
	case token.Less:
		p.emitOp(chunk.OpLess)
	case token.LessEqual:
		p.emitOp(chunk.OpGreater)
		p.emitOp(chunk.OpNot)
	case token.Plus:
		p.emitOp(chunk.OpAdd)
	case token.Minus:
		p.emitOp(chunk.OpSubtract)
	case token.Star:
		p.emitOp(chunk.OpMultiply)
	case token.Slash:
		p.emitOp(chunk.OpDivide)
	}
}

func (p *parser) and_(canAssign bool) {
	endJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitOp(chunk.OpPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func (p *parser) or_(canAssign bool) {
	elseJump := p.emitJump(chunk.OpJumpIfFalse)
	endJump := p.emitJump(chunk.OpJump)
	p.patchJump(elseJump)
	p.emitOp(chunk.OpPop)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func (p *parser) variable(canAssign bool) {
	p.namedVariable(p.previous.Lexeme, canAssign)
}

func (p *parser) call(canAssign bool) {
	argCount := p.argumentList()
	p.emitBytes(chunk.OpCall, argCount)
}

func (p *parser) argumentList() byte {
	argCount := 0
	if !p.check(token.RightParen) {
		for {
			p.expression()
			if argCount == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(argCount)
}
