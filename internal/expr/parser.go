// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package expr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/samber/oops"
)

// Error codes for expression failures.
const (
	CodeSyntax          = "EXPRESSION_SYNTAX"
	CodeUnknownFunction = "UNKNOWN_FUNCTION"
)

// parser is the singleton participle parser instance.
var parser *participle.Parser[Expression]

func init() {
	var err error
	parser, err = NewParser()
	if err != nil {
		panic(fmt.Sprintf("failed to build expression parser: %v", err))
	}
}

// functions maps built-in function names to their arity.
var functions = map[string]int{
	"min": 2,
	"max": 2,
	"abs": 1,
	"rnd": 1,
}

// Resolver maps a variable name to its C identifier.
type Resolver func(name string) string

// Parse parses an expression.
func Parse(src string) (*Expression, error) {
	if strings.TrimSpace(src) == "" {
		return nil, oops.Code(CodeSyntax).Errorf("expression is empty")
	}
	e, err := parser.ParseString("", src)
	if err != nil {
		return nil, oops.Code(CodeSyntax).With("expression", src).Wrapf(err, "parsing expression")
	}
	if err := checkCalls(e.Or); err != nil {
		return nil, err
	}
	return e, nil
}

// Compile parses src and renders it as a parenthesized C expression.
func Compile(src string, resolve Resolver) (string, error) {
	e, err := Parse(src)
	if err != nil {
		return "", err
	}
	return Render(e, resolve), nil
}

// Render prints e as a parenthesized C expression.
func Render(e *Expression, resolve Resolver) string {
	r := renderer{resolve: resolve}
	return "(" + r.or(e.Or) + ")"
}

// Variables returns the distinct variable names referenced by e, sorted.
func Variables(e *Expression) []string {
	seen := map[string]bool{}
	r := renderer{resolve: func(name string) string {
		seen[name] = true
		return name
	}}
	r.or(e.Or)

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type renderer struct {
	resolve Resolver
}

func (r renderer) or(o *Or) string {
	parts := []string{r.and(o.Left)}
	for _, a := range o.Right {
		parts = append(parts, r.and(a))
	}
	return strings.Join(parts, " || ")
}

func (r renderer) and(a *And) string {
	parts := []string{r.cmp(a.Left)}
	for _, c := range a.Right {
		parts = append(parts, r.cmp(c))
	}
	return strings.Join(parts, " && ")
}

func (r renderer) cmp(c *Cmp) string {
	s := r.add(c.Left)
	if c.Op != "" {
		s += " " + c.Op + " " + r.add(c.Right)
	}
	return s
}

func (r renderer) add(a *Add) string {
	s := r.mul(a.Left)
	for _, op := range a.Rest {
		s += " " + op.Op + " " + r.mul(op.Right)
	}
	return s
}

// mul renders division and modulo through the runtime helpers, which yield
// 0 for a zero divisor.
func (r renderer) mul(m *Mul) string {
	s := r.unary(m.Left)
	for _, op := range m.Rest {
		switch op.Op {
		case "/":
			s = "md_div(" + s + ", " + r.unary(op.Right) + ")"
		case "%":
			s = "md_mod(" + s + ", " + r.unary(op.Right) + ")"
		default:
			s += " " + op.Op + " " + r.unary(op.Right)
		}
	}
	return s
}

// unary parenthesizes nested operators so "- -a" never prints as "--a".
func (r renderer) unary(u *Unary) string {
	if u.Primary != nil {
		return r.primary(u.Primary)
	}
	if u.Operand.Primary == nil {
		return u.Op + "(" + r.unary(u.Operand) + ")"
	}
	return u.Op + r.unary(u.Operand)
}

func (r renderer) primary(p *Primary) string {
	switch {
	case p.Number != nil:
		return strconv.Itoa(*p.Number)
	case p.Var != "":
		return r.resolve(strings.Trim(p.Var, "$"))
	case p.Name != nil:
		return r.name(p.Name)
	default:
		return "(" + r.or(p.Sub) + ")"
	}
}

func (r renderer) name(n *Name) string {
	if !n.Call {
		return r.resolve(n.Ident)
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = "(" + r.or(a) + ")"
	}
	switch n.Ident {
	case "min":
		return fmt.Sprintf("(%s < %s ? %s : %s)", args[0], args[1], args[0], args[1])
	case "max":
		return fmt.Sprintf("(%s > %s ? %s : %s)", args[0], args[1], args[0], args[1])
	case "abs":
		return fmt.Sprintf("(%s < 0 ? -%s : %s)", args[0], args[0], args[0])
	default: // rnd
		return fmt.Sprintf("md_rnd(%s)", args[0])
	}
}

// visitor receives the calls and divisions found while walking an expression.
type visitor struct {
	name func(*Name)
	div  func(op string, divisor *Unary)
}

// checkCalls rejects unknown functions, wrong arities and literal zero divisors.
func checkCalls(o *Or) error {
	var err error
	v := visitor{
		name: func(n *Name) {
			if err != nil || !n.Call {
				return
			}
			arity, ok := functions[n.Ident]
			if !ok {
				err = oops.Code(CodeUnknownFunction).With("function", n.Ident).Errorf("unknown function %s", n.Ident)
				return
			}
			if len(n.Args) != arity {
				err = oops.Code(CodeSyntax).With("function", n.Ident).
					Errorf("%s takes %d argument(s), got %d", n.Ident, arity, len(n.Args))
				return
			}
			if n.Ident == "rnd" && isZero(n.Args[0]) {
				err = oops.Code(CodeSyntax).With("function", n.Ident).Errorf("rnd range must not be zero")
			}
		},
		div: func(op string, divisor *Unary) {
			if err == nil && isZeroUnary(divisor) {
				err = oops.Code(CodeSyntax).With("operator", op).Errorf("%s by literal zero", op)
			}
		},
	}
	v.or(o)
	return err
}

// isZero reports whether o is the literal 0, possibly negated or parenthesized.
func isZero(o *Or) bool {
	if len(o.Right) > 0 || len(o.Left.Right) > 0 {
		return false
	}
	c := o.Left.Left
	if c.Op != "" || len(c.Left.Rest) > 0 || len(c.Left.Left.Rest) > 0 {
		return false
	}
	return isZeroUnary(c.Left.Left.Left)
}

func isZeroUnary(u *Unary) bool {
	switch {
	case u.Primary == nil:
		return u.Op == "-" && isZeroUnary(u.Operand)
	case u.Primary.Number != nil:
		return *u.Primary.Number == 0
	case u.Primary.Sub != nil:
		return isZero(u.Primary.Sub)
	default:
		return false
	}
}

func (v visitor) or(o *Or) {
	v.and(o.Left)
	for _, a := range o.Right {
		v.and(a)
	}
}

func (v visitor) and(a *And) {
	v.cmp(a.Left)
	for _, c := range a.Right {
		v.cmp(c)
	}
}

func (v visitor) cmp(c *Cmp) {
	v.add(c.Left)
	if c.Right != nil {
		v.add(c.Right)
	}
}

func (v visitor) add(a *Add) {
	v.mul(a.Left)
	for _, op := range a.Rest {
		v.mul(op.Right)
	}
}

func (v visitor) mul(m *Mul) {
	v.unary(m.Left)
	for _, op := range m.Rest {
		if op.Op != "*" && v.div != nil {
			v.div(op.Op, op.Right)
		}
		v.unary(op.Right)
	}
}

func (v visitor) unary(u *Unary) {
	if u.Primary == nil {
		v.unary(u.Operand)
		return
	}
	p := u.Primary
	switch {
	case p.Name != nil:
		if v.name != nil {
			v.name(p.Name)
		}
		for _, a := range p.Name.Args {
			v.or(a)
		}
	case p.Sub != nil:
		v.or(p.Sub)
	}
}
