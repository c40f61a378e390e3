package compiler

import "github.com/mna/vela/lang/token"

// Precedence orders binary operators from loosest- to tightest-binding, used
// by parsePrecedence to decide how far an expression should extend.
type Precedence int

const (
	precNone       Precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type (
	prefixFn func(p *parser, canAssign bool)
	infixFn  func(p *parser, canAssign bool)
)

// parseRule binds a token type to the function that compiles an expression
// starting with it (prefix position), the function that continues a larger
// expression with it as an infix/postfix operator, and the precedence of
// that infix use.
type parseRule struct {
	prefix     prefixFn
	infix      infixFn
	precedence Precedence
}

var rules = [...]parseRule{
	token.LeftParen:  {prefix: (*parser).grouping, infix: (*parser).call, precedence: precCall},
	token.Minus:      {prefix: (*parser).unary, infix: (*parser).binary, precedence: precTerm},
	token.Plus:       {infix: (*parser).binary, precedence: precTerm},
	token.Slash:      {infix: (*parser).binary, precedence: precFactor},
	token.Star:       {infix: (*parser).binary, precedence: precFactor},
	token.Bang:       {prefix: (*parser).unary},
	token.BangEqual:  {infix: (*parser).binary, precedence: precEquality},
	token.EqualEqual: {infix: (*parser).binary, precedence: precEquality},
	token.Greater:        {infix: (*parser).binary, precedence: precComparison},
	token.GreaterEqual:   {infix: (*parser).binary, precedence: precComparison},
	token.Less:           {infix: (*parser).binary, precedence: precComparison},
	token.LessEqual:      {infix: (*parser).binary, precedence: precComparison},
	token.Identifier: {prefix: (*parser).variable},
	token.String:     {prefix: (*parser).stringLiteral},
	token.Number:     {prefix: (*parser).number},
	token.And:        {infix: (*parser).and_, precedence: precAnd},
	token.Or:         {infix: (*parser).or_, precedence: precOr},
	token.False:      {prefix: (*parser).literal},
	token.Nil:        {prefix: (*parser).literal},
	token.True:       {prefix: (*parser).literal},
}

func getRule(t token.Type) parseRule {
	if int(t) < 0 || int(t) >= len(rules) {
		return parseRule{}
	}
	return rules[t]
}
