package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/vela/lang/interp"
)

// Repl starts an interactive read-compile-run loop. Each line is compiled
// and run against the same Session, so a global declared on one line is
// still visible on the next, the same contract the original repl() loop
// gives its users.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg := interp.Config{
		PrintOutput:   stdio.Stdout,
		VMError:       stdio.Stderr,
		CompilerError: stdio.Stderr,
	}
	sess := interp.NewSession(cfg)

	scan := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scan.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return scan.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scan.Text()
		if line == "" {
			continue
		}
		// Errors are already reported to stdio.Stderr by the session's
		// configured sinks; the loop keeps going regardless.
		sess.Interpret(line)
	}
}
