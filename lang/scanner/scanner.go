// Package scanner turns vela source text into a stream of tokens. It scans
// lazily: each call to Next produces exactly one token, with at most a
// two-character lookahead, so it never materializes the full token stream
// unless the caller asks it to.
package scanner

import (
	"github.com/mna/vela/lang/token"
)

// Scanner scans a single source buffer.
type Scanner struct {
	src     string
	start   int
	current int
	line    int
}

// New creates a Scanner over src, ready to produce tokens starting at line 1.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// Next scans and returns the next token. Once the end of the source is
// reached it returns an EOF token forever.
func (s *Scanner) Next() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LeftParen)
	case ')':
		return s.make(token.RightParen)
	case '{':
		return s.make(token.LeftBrace)
	case '}':
		return s.make(token.RightBrace)
	case ';':
		return s.make(token.Semicolon)
	case ',':
		return s.make(token.Comma)
	case '.':
		return s.make(token.Dot)
	case '-':
		return s.make(token.Minus)
	case '+':
		return s.make(token.Plus)
	case '/':
		return s.make(token.Slash)
	case '*':
		return s.make(token.Star)
	case '!':
		return s.make(s.matchMake('=', token.BangEqual, token.Bang))
	case '=':
		return s.make(s.matchMake('=', token.EqualEqual, token.Equal))
	case '<':
		return s.make(s.matchMake('=', token.LessEqual, token.Less))
	case '>':
		return s.make(s.matchMake('=', token.GreaterEqual, token.Greater))
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

// matchMake returns matched if the next character equals expected (consuming
// it), otherwise notMatched.
func (s *Scanner) matchMake(expected byte, matched, notMatched token.Type) token.Type {
	if s.match(expected) {
		return matched
	}
	return notMatched
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) string() token.Token {
	// a string may span lines; its token carries the line it starts on
	startLine := s.line
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote
	tok := s.make(token.String)
	tok.Line = startLine
	return tok
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume the '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.Number)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.make(s.identifierType())
}

// identifierType looks the whole lexeme up in the keyword table; there is no
// per-character dispatch. A lexeme that only shares a keyword's prefix (such
// as "orchid") is not in the table and scans as an Identifier.
func (s *Scanner) identifierType() token.Type {
	lexeme := s.src[s.start:s.current]
	if typ, ok := token.Keywords[lexeme]; ok {
		return typ
	}
	return token.Identifier
}

func (s *Scanner) make(typ token.Type) token.Token {
	return token.Token{Type: typ, Lexeme: s.src[s.start:s.current], Line: s.line}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{Type: token.Error, Lexeme: msg, Line: s.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
