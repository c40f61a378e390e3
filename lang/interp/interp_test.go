package interp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/vela/lang/interp"
)

func run(t *testing.T, src string) (stdout, stderr string, result interp.Result) {
	t.Helper()
	var out, errOut bytes.Buffer
	res, err := interp.Interpret(src, interp.Config{PrintOutput: &out, VMError: &errOut, CompilerError: &errOut})
	if err != nil && res == interp.CompileErr {
		t.Fatalf("unexpected compile error: %v", errOut.String())
	}
	return out.String(), errOut.String(), res
}

// The six scenarios from the end-to-end test table: exact program, exact
// captured print output.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"add", `print 1 + 2;`, "3\n"},
		{"string concat", `print "st" + "ri" + "ng";`, "string\n"},
		{"nested scopes shadow", `var a = 1; { var a = 2; { var a = 3; print a; } print a; } print a;`, "3\n2\n1\n"},
		{"for loop accumulate", `var x = 0; for (var i = 0; i < 3; i = i + 1) { x = x + i; } print x;`, "3\n"},
		{"recursive fib", `fun fib(n){ if (n < 2) return n; return fib(n-2)+fib(n-1); } print fib(10);`, "55\n"},
		{"higher order call", `fun call(f,a){return f(a);} fun dup(s){return s+s;} print call(dup,"blah");`, "blahblah\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, res := run(t, tc.src)
			require.Equal(t, interp.OK, res, "stderr: %s", stderr)
			assert.Equal(t, tc.want, stdout)
		})
	}
}

func TestShortCircuitAnd(t *testing.T) {
	stdout, _, res := run(t, `fun side(){ print "evaluated"; return true; } print false and side();`)
	require.Equal(t, interp.OK, res)
	assert.Equal(t, "false\n", stdout)
}

func TestShortCircuitOr(t *testing.T) {
	stdout, _, res := run(t, `fun side(){ print "evaluated"; return true; } print true or side();`)
	require.Equal(t, interp.OK, res)
	assert.Equal(t, "true\n", stdout)
}

func TestStringInterningEquality(t *testing.T) {
	stdout, _, res := run(t, `print ("foo" + "") == "foo";`)
	require.Equal(t, interp.OK, res)
	assert.Equal(t, "true\n", stdout)
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	_, stderr, res := run(t, `fun one(a){ return a; } print one(1, 2);`)
	assert.Equal(t, interp.RuntimeErr, res)
	assert.Contains(t, stderr, "Expected 1 arguments but got 2.")
}

func TestFrameCapExceeded(t *testing.T) {
	_, stderr, res := run(t, `fun rec(n){ return 1 + rec(n+1); } print rec(0);`)
	assert.Equal(t, interp.RuntimeErr, res)
	assert.Contains(t, stderr, "Stack overflow.")
}

func TestLocalsLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("fun f(){")
	for i := 0; i < 256; i++ {
		b.WriteString("var v")
		b.WriteString(itoa(i))
		b.WriteString("=0;")
	}
	b.WriteString("}")
	_, stderr, res := run(t, b.String())
	require.Equal(t, interp.OK, res, "256 locals must succeed: %s", stderr)

	b.Reset()
	b.WriteString("fun f(){")
	for i := 0; i < 257; i++ {
		b.WriteString("var v")
		b.WriteString(itoa(i))
		b.WriteString("=0;")
	}
	b.WriteString("}")
	var out, errOut bytes.Buffer
	res2, err := interp.Interpret(b.String(), interp.Config{PrintOutput: &out, CompilerError: &errOut})
	require.Error(t, err)
	assert.Equal(t, interp.CompileErr, res2)
	assert.Contains(t, errOut.String(), "Too many local variables in function.")
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// TestMakeClosureXFail documents the closures/upvalues open question: the
// source this interpreter was distilled from has a make_closure test that
// only passes because the inner function's reference to the enclosing
// local resolves to a same-named global left over from an unrelated
// binding, not because of real upvalue capture. This implementation takes
// the spec at its word (closures capture nothing) and does not attempt to
// replicate that accidental behavior.
func TestMakeClosureXFail(t *testing.T) {
	t.Skip("upvalues are an explicit non-goal; vela closures wrap only a function reference")
}
