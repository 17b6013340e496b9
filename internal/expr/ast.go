// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package expr parses the math expressions authored in expression events and
// renders them as C expressions over generated variable identifiers.
package expr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// exprLexer tokenizes expressions. Variables are written $name$ or $name.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Var", Pattern: `\$[A-Za-z0-9_]+\$?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[A-Za-z_]\w*`},
	{Name: "Op", Pattern: `==|!=|<=|>=|&&|\|\||[-+*/%<>!(),]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Expression is the root of a parsed expression.
type Expression struct {
	Pos lexer.Position `parser:""`
	Or  *Or            `parser:"@@"`
}

// Or is a chain of "||" operands.
type Or struct {
	Left  *And   `parser:"@@"`
	Right []*And `parser:"( '||' @@ )*"`
}

// And is a chain of "&&" operands.
type And struct {
	Left  *Cmp   `parser:"@@"`
	Right []*Cmp `parser:"( '&&' @@ )*"`
}

// Cmp is an optional single comparison.
type Cmp struct {
	Left  *Add   `parser:"@@"`
	Op    string `parser:"( @( '==' | '!=' | '<=' | '>=' | '<' | '>' )"`
	Right *Add   `parser:"  @@ )?"`
}

// Add is a chain of "+" and "-" terms.
type Add struct {
	Left *Mul     `parser:"@@"`
	Rest []*AddOp `parser:"@@*"`
}

// AddOp is one "+" or "-" step.
type AddOp struct {
	Op    string `parser:"@( '+' | '-' )"`
	Right *Mul   `parser:"@@"`
}

// Mul is a chain of "*", "/" and "%" factors.
type Mul struct {
	Left *Unary   `parser:"@@"`
	Rest []*MulOp `parser:"@@*"`
}

// MulOp is one "*", "/" or "%" step.
type MulOp struct {
	Op    string `parser:"@( '*' | '/' | '%' )"`
	Right *Unary `parser:"@@"`
}

// Unary is a negated or inverted operand, or a primary.
type Unary struct {
	Op      string   `parser:"  ( @( '-' | '!' )"`
	Operand *Unary   `parser:"    @@ )"`
	Primary *Primary `parser:"| @@"`
}

// Primary is a literal, variable, call or parenthesized expression.
type Primary struct {
	Number *int   `parser:"  @Number"`
	Var    string `parser:"| @Var"`
	Name   *Name  `parser:"| @@"`
	Sub    *Or    `parser:"| '(' @@ ')'"`
}

// Name is a bare identifier, optionally called with arguments.
type Name struct {
	Ident string `parser:"@Ident"`
	Call  bool   `parser:"( @'('"`
	Args  []*Or  `parser:"  ( @@ ( ',' @@ )* )? ')' )?"`
}

// NewParser builds a parser for the expression grammar.
func NewParser() (*participle.Parser[Expression], error) {
	return participle.Build[Expression](
		participle.Lexer(exprLexer),
	)
}
