package grammar_test

import (
	"go/token"
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

func TestEBNF(t *testing.T) {
	src, err := os.ReadFile("grammar.ebnf")
	if err != nil {
		t.Fatal(err)
	}

	fset := token.NewFileSet()
	grammar, err := ebnf.Parse(fset, "grammar.ebnf", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := ebnf.Verify(grammar, "Chunk"); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
