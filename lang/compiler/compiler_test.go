package compiler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/vela/lang/chunk"
	"github.com/mna/vela/lang/compiler"
	"github.com/mna/vela/lang/machine"
)

func compileOK(t *testing.T, src string) {
	t.Helper()
	mem := machine.NewMemory()
	var errOut bytes.Buffer
	_, err := compiler.Compile(src, mem, &errOut, nil)
	require.NoError(t, err, "stderr: %s", errOut.String())
}

func TestCompileArithmeticExpression(t *testing.T) {
	compileOK(t, `print 1 + 2 * 3;`)
}

func TestCompileVariablesAndScopes(t *testing.T) {
	compileOK(t, `
		var a = 1;
		{
			var b = 2;
			print a + b;
		}
	`)
}

func TestCompileControlFlow(t *testing.T) {
	compileOK(t, `
		var i = 0;
		while (i < 3) {
			print i;
			i = i + 1;
		}
		for (var j = 0; j < 3; j = j + 1) print j;
		if (i == 3) { print "done"; } else { print "nope"; }
	`)
}

func TestCompileFunctionAndRecursion(t *testing.T) {
	compileOK(t, `
		fun fib(n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`)
}

func TestCompileErrorAccumulatesMultiple(t *testing.T) {
	mem := machine.NewMemory()
	var errOut bytes.Buffer
	_, err := compiler.Compile(`
		var = 1;
		print ;
	`, mem, &errOut, nil)
	require.Error(t, err)
	var cErr *compiler.CompileError
	require.ErrorAs(t, err, &cErr)
	assert.GreaterOrEqual(t, len(cErr.Errs), 2)
}

func TestReturnAtTopLevelIsError(t *testing.T) {
	mem := machine.NewMemory()
	var errOut bytes.Buffer
	_, err := compiler.Compile(`return 1;`, mem, &errOut, nil)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "Can't return from top-level code.")
}

func TestUndeclaredLocalSelfReferenceIsError(t *testing.T) {
	mem := machine.NewMemory()
	var errOut bytes.Buffer
	_, err := compiler.Compile(`{ var a = a; }`, mem, &errOut, nil)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "Can't read local variable in its own initializer.")
}

func TestDuplicateLocalInSameScopeIsError(t *testing.T) {
	mem := machine.NewMemory()
	var errOut bytes.Buffer
	_, err := compiler.Compile(`{ var a = 1; var a = 2; }`, mem, &errOut, nil)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "Already a variable with this name in this scope.")
}

func TestDebugOutputDisassemblesFunctions(t *testing.T) {
	mem := machine.NewMemory()
	var debugOut bytes.Buffer
	_, err := compiler.Compile(`print 1;`, mem, nil, &debugOut)
	require.NoError(t, err)
	assert.Contains(t, debugOut.String(), "== <script> ==")
	assert.Contains(t, debugOut.String(), "OP_PRINT")
}

// TestScopeExitEmitsExactlyNPops checks the scope-pop invariant at the
// bytecode level: exiting a block with n locally-declared variables emits
// exactly n OP_POP instructions and leaves no trace of those locals behind.
func TestScopeExitEmitsExactlyNPops(t *testing.T) {
	mem := machine.NewMemory()
	var errOut bytes.Buffer
	fnID, err := compiler.Compile(`{ var a = 1; var b = 2; var c = 3; }`, mem, &errOut, nil)
	require.NoError(t, err, "stderr: %s", errOut.String())

	code := mem.Function(fnID).Chunk.Code
	require.GreaterOrEqual(t, len(code), 5)

	// the block's three locals are declared as OP_CONSTANT pairs, then the
	// scope exit pops them, then endCompiler's implicit return follows.
	trailer := code[len(code)-5:]
	assert.Equal(t, []byte{
		byte(chunk.OpPop), byte(chunk.OpPop), byte(chunk.OpPop),
		byte(chunk.OpNil), byte(chunk.OpReturn),
	}, trailer)

	popCount := 0
	for _, b := range code {
		if chunk.Opcode(b) == chunk.OpPop {
			popCount++
		}
	}
	assert.Equal(t, 3, popCount, "expected exactly one OP_POP per local dropped at scope exit")
}

// TestIfBodyExceedingJumpLimitIsError drives an if-branch body past the
// 0xFFFF byte limit a forward jump's 16-bit operand can encode, per the
// "Too much code to jump over." testable property.
func TestIfBodyExceedingJumpLimitIsError(t *testing.T) {
	body := strings.Repeat("x = x;\n", 14000)
	src := "if (true) {\n var x = 0;\n" + body + "}\n"

	mem := machine.NewMemory()
	var errOut bytes.Buffer
	_, err := compiler.Compile(src, mem, &errOut, nil)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "Too much code to jump over.")
}

// TestWhileBodyExceedingLoopLimitIsError is the OP_LOOP analogue of
// TestIfBodyExceedingJumpLimitIsError, per the "Loop body too large."
// testable property.
func TestWhileBodyExceedingLoopLimitIsError(t *testing.T) {
	body := strings.Repeat("x = x;\n", 14000)
	src := "while (true) {\n var x = 0;\n" + body + "}\n"

	mem := machine.NewMemory()
	var errOut bytes.Buffer
	_, err := compiler.Compile(src, mem, &errOut, nil)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "Loop body too large.")
}
