package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/vela/lang/token"
)

func TestTypeString(t *testing.T) {
	assert.Equal(t, "+", token.Plus.String())
	assert.Equal(t, "and", token.And.String())
	assert.Equal(t, "eof", token.EOF.String())
	assert.Equal(t, "unknown", token.Type(-1).String())
}

func TestKeywords(t *testing.T) {
	for word, typ := range token.Keywords {
		tok := token.Token{Type: typ, Lexeme: word, Line: 1}
		assert.Equal(t, word, tok.Lexeme)
	}
	_, ok := token.Keywords["notakeyword"]
	assert.False(t, ok)
}

func TestIsError(t *testing.T) {
	assert.True(t, token.Token{Type: token.Error}.IsError())
	assert.False(t, token.Token{Type: token.Identifier}.IsError())
}
