package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/vela/lang/interp"
)

// Run compiles and executes each file in order, sharing nothing between
// files: every file gets its own fresh memory arena and globals table.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(stdio, args...)
}

// RunFiles runs each named source file against a fresh interp.Interpret
// call, stopping at (and reporting) the first failure.
func RunFiles(stdio mainer.Stdio, files ...string) error {
	cfg := interp.Config{
		PrintOutput:   stdio.Stdout,
		VMError:       stdio.Stderr,
		CompilerError: stdio.Stderr,
	}
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		if res, err := interp.Interpret(string(src), cfg); err != nil {
			return fmt.Errorf("%s: %s: %w", f, resultLabel(res), err)
		}
	}
	return nil
}

func resultLabel(r interp.Result) string {
	switch r {
	case interp.CompileErr:
		return "compile error"
	case interp.RuntimeErr:
		return "runtime error"
	default:
		return "ok"
	}
}
