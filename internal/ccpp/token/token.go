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

// Package token implements the token converter (phase 3->4 boundary): it
// turns the lexer's lossless raw tokens into the three kinds the rest of the
// preprocessor cares about -- real tokens, newlines (directive terminators),
// and trivia (whitespace/comments, folded into the next real token's
// leading-trivia bit).
package token

import (
	"fmt"

	"github.com/EngFlow/ccpp/internal/ccpp/diag"
	"github.com/EngFlow/ccpp/internal/ccpp/intern"
	"github.com/EngFlow/ccpp/internal/ccpp/lexer"
	"github.com/EngFlow/ccpp/internal/ccpp/source"
)

// Kind classifies a converted Token.
type Kind int

const (
	KindEOF Kind = iota
	KindNewline
	KindTrivia
	KindIdentifier
	KindNumber
	KindString
	KindChar
	KindPunctuator
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindNewline:
		return "Newline"
	case KindTrivia:
		return "Trivia"
	case KindIdentifier:
		return "Identifier"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindChar:
		return "Char"
	case KindPunctuator:
		return "Punctuator"
	case KindUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a preprocessing token: a semantic kind, its range in the source
// map, and the bits the rest of the preprocessor needs to reproduce the
// original layout (LineStart, LeadingTrivia) and to drive macro expansion's
// self-reference guard (AllowExpansion).
type Token struct {
	Kind  Kind
	Range source.Range

	// Symbol is valid for Identifier, Number, String and Char: the interned,
	// escaped-newline-cleaned text of the token.
	Symbol intern.Symbol
	// Punct is valid for Punctuator.
	Punct lexer.Punct

	// LineStart is true for the first real or newline token following a
	// newline token (P10); false otherwise.
	LineStart bool
	// LeadingTrivia is true if one or more trivia tokens (whitespace or
	// comments) immediately preceded this token on the same logical line.
	LeadingTrivia bool
	// AllowExpansion is the macro expander's self-reference guard bit
	// (§4.8p1-p3): cleared on the one token that triggered a self-reference,
	// never globally on the macro name.
	AllowExpansion bool
}

// IsReal reports whether t is neither trivia nor a newline -- the filtering
// next_real_token applies.
func (t Token) IsReal() bool { return t.Kind != KindTrivia && t.Kind != KindNewline }

// Converter drives a lexer.Tokenizer and produces Token values positioned
// within one source-map file, interning identifier/number/string/char text
// and reporting unterminated literals/comments as diagnostics.
type Converter struct {
	tok  *lexer.Tokenizer
	base source.Position
	in   intern.Interner
	sink *diag.Sink
}

// NewConverter builds a Converter reading from tok, whose raw offsets are
// relative to base (the position reserved for this file by the source map).
func NewConverter(tok *lexer.Tokenizer, base source.Position, in intern.Interner, sink *diag.Sink) *Converter {
	return &Converter{tok: tok, base: base, in: in, sink: sink}
}

// Tokenizer exposes the underlying raw tokenizer, for callers (the directive
// processor's include-name scanner) that must bypass token conversion for
// one line -- only permitted while no token has been buffered ahead of it.
func (c *Converter) Tokenizer() *lexer.Tokenizer { return c.tok }

func (c *Converter) rangeOf(raw lexer.RawToken) source.Range {
	start := c.base.Advance(source.LocalOffset(raw.Off))
	return source.Range{Start: start, Length: source.LocalOffset(len(raw.Content))}
}

// Next converts exactly one raw token (which may be trivia) into a Token.
func (c *Converter) Next() Token {
	raw := c.tok.Next()
	rng := c.rangeOf(raw)

	switch raw.Kind {
	case lexer.RawEOF:
		return Token{Kind: KindEOF, Range: source.Range{Start: rng.Start}}
	case lexer.RawNewline:
		// Empty range at the newline's position, so diagnostics anchored
		// here never visually spill onto the next line (§4.5).
		return Token{Kind: KindNewline, Range: source.Range{Start: rng.Start}}
	case lexer.RawWhitespace, lexer.RawLineComment:
		return Token{Kind: KindTrivia, Range: rng}
	case lexer.RawBlockComment:
		if !raw.Terminated {
			c.sink.Errorf(rng, "unterminated block comment")
		}
		return Token{Kind: KindTrivia, Range: rng}
	case lexer.RawIdentifier:
		return Token{
			Kind:           KindIdentifier,
			Range:          rng,
			Symbol:         c.intern(raw),
			AllowExpansion: true,
		}
	case lexer.RawNumber:
		return Token{Kind: KindNumber, Range: rng, Symbol: c.intern(raw)}
	case lexer.RawString:
		if !raw.Terminated {
			c.sink.Errorf(rng, "unterminated string literal")
		}
		return Token{Kind: KindString, Range: rng, Symbol: c.intern(raw)}
	case lexer.RawChar:
		if !raw.Terminated {
			c.sink.Errorf(rng, "unterminated character literal")
		}
		return Token{Kind: KindChar, Range: rng, Symbol: c.intern(raw)}
	case lexer.RawPunctuator:
		return Token{Kind: KindPunctuator, Range: rng, Punct: raw.Punct}
	default:
		return Token{Kind: KindUnknown, Range: rng, Symbol: c.intern(raw)}
	}
}

func (c *Converter) intern(raw lexer.RawToken) intern.Symbol {
	if !raw.Tainted {
		return c.in.Intern(raw.Content)
	}
	return c.in.InternCow(lexer.Cleaned(raw.Content))
}

// DisplayForm renders t's display form: the interned (cleaned) text for
// identifier/number/string/char/unknown tokens, the canonical spelling for a
// punctuator, and empty for EOF/Newline/Trivia.
func DisplayForm(t Token, in intern.Interner) string {
	switch t.Kind {
	case KindIdentifier, KindNumber, KindString, KindChar, KindUnknown:
		return in.Resolve(t.Symbol)
	case KindPunctuator:
		return t.Punct.Spelling()
	default:
		return ""
	}
}
