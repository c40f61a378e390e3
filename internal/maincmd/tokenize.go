package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/vela/lang/scanner"
	"github.com/mna/vela/lang/token"
)

// Tokenize scans each file and prints its token stream.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

// TokenizeFiles prints, one token per line, "<line> <type> <lexeme>" for
// every token scanned from each file in turn.
func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		s := scanner.New(string(src))
		for {
			tok := s.Next()
			fmt.Fprintf(stdio.Stdout, "%4d %-14s %q\n", tok.Line, tok.Type, tok.Lexeme)
			if tok.Type == token.EOF {
				break
			}
		}
	}
	return nil
}
