// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package directive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/EngFlow/ccpp/internal/ccpp/diag"
	"github.com/EngFlow/ccpp/internal/ccpp/intern"
	"github.com/EngFlow/ccpp/internal/ccpp/lexer"
	"github.com/EngFlow/ccpp/internal/ccpp/token"
)

// CondExpr is a #if/#elif controlling expression, parsed but not evaluated
// anywhere in this package -- see EventProcessor.
type CondExpr interface {
	fmt.Stringer
}

// Defined is the defined(NAME) / defined NAME operator.
type Defined struct{ Name intern.Symbol }

// Not is logical negation: !X.
type Not struct{ X CondExpr }

// And is logical AND: L && R.
type And struct{ L, R CondExpr }

// Or is logical OR: L || R.
type Or struct{ L, R CondExpr }

// Compare is a relational/equality comparison: Left Op Right.
type Compare struct {
	Left  CondExpr
	Op    string
	Right CondExpr
}

// Apply is an identifier immediately followed by a parenthesized argument
// list that is not `defined(...)` -- most commonly a function-like macro
// use inside a condition.
type Apply struct {
	Name intern.Symbol
	Args []CondExpr
}

// Ident is a bare identifier operand.
type Ident intern.Symbol

// ConstantInt is an integer constant operand.
type ConstantInt int64

func (e Defined) String() string { return fmt.Sprintf("defined(%d)", e.Name) }
func (e Not) String() string     { return "!(" + e.X.String() + ")" }
func (e And) String() string     { return e.L.String() + " && " + e.R.String() }
func (e Or) String() string      { return e.L.String() + " || " + e.R.String() }
func (e Compare) String() string { return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right) }
func (e Ident) String() string   { return fmt.Sprintf("ident(%d)", intern.Symbol(e)) }
func (e ConstantInt) String() string { return strconv.FormatInt(int64(e), 10) }
func (e Apply) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("ident(%d)(%s)", e.Name, strings.Join(args, ", "))
}

// CondExprParser parses one #if/#elif controlling expression by precedence
// climbing (|| binds loosest, then &&, then ==/!=, then the relationals,
// then unary !, then primaries), reading tokens from next until a KindEOF
// token (the synthetic end-of-directive marker Processor.NextDirectiveToken
// produces). It is grounded on the shape of the teacher's Expr AST, adapted
// from a pre-built parse tree to a small recursive-descent parser running
// directly over the directive's token stream.
type CondExprParser struct {
	next     func() token.Token
	interner intern.Interner
	sink     *diag.Sink
	tok      token.Token
}

// NewCondExprParser returns a parser pulling tokens from next (typically
// Processor.NextDirectiveToken), resolving identifier text through in, and
// reporting malformed expressions to sink.
func NewCondExprParser(next func() token.Token, in intern.Interner, sink *diag.Sink) *CondExprParser {
	p := &CondExprParser{next: next, interner: in, sink: sink}
	p.advance()
	return p
}

func (p *CondExprParser) advance() {
	p.tok = p.next()
}

func (p *CondExprParser) atEnd() bool { return p.tok.Kind == token.KindEOF }

func (p *CondExprParser) isPunct(k lexer.Punct) bool {
	return p.tok.Kind == token.KindPunctuator && p.tok.Punct == k
}

// Parse parses the full expression, reporting an error and returning nil if
// the token stream is exhausted before a complete expression is formed or
// trailing tokens remain afterward.
func (p *CondExprParser) Parse() CondExpr {
	e := p.parseOr()
	if e != nil && !p.atEnd() {
		p.sink.Errorf(p.tok.Range, "unexpected token in #if expression")
		return nil
	}
	return e
}

func (p *CondExprParser) parseOr() CondExpr {
	l := p.parseAnd()
	for l != nil && p.isPunct(lexer.PunctPipePipe) {
		p.advance()
		r := p.parseAnd()
		if r == nil {
			return nil
		}
		l = Or{L: l, R: r}
	}
	return l
}

func (p *CondExprParser) parseAnd() CondExpr {
	l := p.parseEquality()
	for l != nil && p.isPunct(lexer.PunctAmpAmp) {
		p.advance()
		r := p.parseEquality()
		if r == nil {
			return nil
		}
		l = And{L: l, R: r}
	}
	return l
}

func (p *CondExprParser) parseEquality() CondExpr {
	l := p.parseRelational()
	for l != nil && (p.isPunct(lexer.PunctEqEq) || p.isPunct(lexer.PunctBangEq)) {
		op := p.tok.Punct
		p.advance()
		r := p.parseRelational()
		if r == nil {
			return nil
		}
		l = Compare{Left: l, Op: punctOpSpelling(op), Right: r}
	}
	return l
}

func (p *CondExprParser) parseRelational() CondExpr {
	l := p.parseUnary()
	for l != nil && (p.isPunct(lexer.PunctLt) || p.isPunct(lexer.PunctLtEq) ||
		p.isPunct(lexer.PunctGt) || p.isPunct(lexer.PunctGtEq)) {
		op := p.tok.Punct
		p.advance()
		r := p.parseUnary()
		if r == nil {
			return nil
		}
		l = Compare{Left: l, Op: punctOpSpelling(op), Right: r}
	}
	return l
}

func punctOpSpelling(k lexer.Punct) string {
	switch k {
	case lexer.PunctEqEq:
		return "=="
	case lexer.PunctBangEq:
		return "!="
	case lexer.PunctLt:
		return "<"
	case lexer.PunctLtEq:
		return "<="
	case lexer.PunctGt:
		return ">"
	case lexer.PunctGtEq:
		return ">="
	default:
		return k.Spelling()
	}
}

func (p *CondExprParser) parseUnary() CondExpr {
	if p.isPunct(lexer.PunctBang) {
		p.advance()
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return Not{X: x}
	}
	return p.parsePrimary()
}

func (p *CondExprParser) parsePrimary() CondExpr {
	switch {
	case p.isPunct(lexer.PunctLParen):
		p.advance()
		e := p.parseOr()
		if e == nil {
			return nil
		}
		if !p.isPunct(lexer.PunctRParen) {
			p.sink.Errorf(p.tok.Range, "expected ')' in #if expression")
			return nil
		}
		p.advance()
		return e

	case p.tok.Kind == token.KindNumber:
		v, err := strconv.ParseInt(strings.TrimRight(p.resolve(p.tok.Symbol), "uUlL"), 0, 64)
		if err != nil {
			v = 0
		}
		p.advance()
		return ConstantInt(v)

	case p.tok.Kind == token.KindIdentifier && p.resolve(p.tok.Symbol) == "defined":
		p.advance()
		paren := p.isPunct(lexer.PunctLParen)
		if paren {
			p.advance()
		}
		if p.tok.Kind != token.KindIdentifier {
			p.sink.Errorf(p.tok.Range, "expected macro name after 'defined'")
			return nil
		}
		name := p.tok.Symbol
		p.advance()
		if paren {
			if !p.isPunct(lexer.PunctRParen) {
				p.sink.Errorf(p.tok.Range, "expected ')' after defined(%s", p.resolve(name))
				return nil
			}
			p.advance()
		}
		return Defined{Name: name}

	case p.tok.Kind == token.KindIdentifier:
		name := p.tok.Symbol
		p.advance()
		if p.isPunct(lexer.PunctLParen) {
			p.advance()
			var args []CondExpr
			if !p.isPunct(lexer.PunctRParen) {
				for {
					a := p.parseOr()
					if a == nil {
						return nil
					}
					args = append(args, a)
					if p.isPunct(lexer.PunctComma) {
						p.advance()
						continue
					}
					break
				}
			}
			if !p.isPunct(lexer.PunctRParen) {
				p.sink.Errorf(p.tok.Range, "expected ')' in macro invocation")
				return nil
			}
			p.advance()
			return Apply{Name: name, Args: args}
		}
		return Ident(name)

	default:
		p.sink.Errorf(p.tok.Range, "expected expression in #if condition")
		return nil
	}
}

func (p *CondExprParser) resolve(sym intern.Symbol) string {
	if p.interner == nil {
		return ""
	}
	return p.interner.Resolve(sym)
}
