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

// Package directive implements the file-level token processor and the
// directive recognizer built on top of it (§4.6/§4.7): turning a single
// file's converted tokens into a stream of real tokens and directive
// events, with newline/trivia coalescing and the line-start bit directive
// recognition depends on.
package directive

import (
	"github.com/EngFlow/ccpp/internal/ccpp/lexer"
	"github.com/EngFlow/ccpp/internal/ccpp/token"
)

// Processor wraps one file's token.Converter, folding trivia tokens into
// the LeadingTrivia bit of the next real-or-newline token and maintaining
// the LineStart bit across the folded newlines, with a single-slot
// lookahead.
type Processor struct {
	conv        *token.Converter
	peeked      *token.Token
	atLineStart bool
}

// NewProcessor returns a Processor reading converted tokens from conv. The
// first token of a file is always treated as if it started a new line.
func NewProcessor(conv *token.Converter) *Processor {
	return &Processor{conv: conv, atLineStart: true}
}

// fetch pulls raw converted tokens until it has a real-or-newline token,
// accumulating whether any trivia preceded it and stamping LineStart from
// the processor's running line-start state.
func (p *Processor) fetch() token.Token {
	leading := false
	for {
		t := p.conv.Next()
		if t.Kind == token.KindTrivia {
			leading = true
			continue
		}
		t.LeadingTrivia = leading
		t.LineStart = p.atLineStart
		p.atLineStart = t.Kind == token.KindNewline
		return t
	}
}

// Next returns the next token (real or newline; never trivia).
func (p *Processor) Next() token.Token {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t
	}
	return p.fetch()
}

// Peek returns the next token without consuming it.
func (p *Processor) Peek() token.Token {
	if p.peeked == nil {
		t := p.fetch()
		p.peeked = &t
	}
	return *p.peeked
}

// NextReal returns the next non-newline token, silently skipping over any
// number of newline tokens first.
func (p *Processor) NextReal() token.Token {
	for {
		t := p.Next()
		if t.Kind != token.KindNewline {
			return t
		}
	}
}

// NextDirectiveToken returns the next token of the directive currently
// being parsed, except that a Newline (or a real EOF) is reported as a
// KindEOF token at the newline's position: directive grammar productions
// can then treat "end of directive" uniformly as EOF without special-casing
// the newline that ends it.
func (p *Processor) NextDirectiveToken() token.Token {
	t := p.Next()
	if t.Kind == token.KindNewline {
		return token.Token{Kind: token.KindEOF, Range: t.Range, LineStart: true}
	}
	return t
}

// AdvanceToEOD consumes and discards tokens up to (and including) the
// newline that ends the current directive, or up to EOF. Used after a
// directive's grammar has been parsed, to resynchronize on the next line
// regardless of what (if anything) follows the recognized part of the
// directive.
func (p *Processor) AdvanceToEOD() {
	for {
		t := p.Next()
		if t.Kind == token.KindNewline || t.Kind == token.KindEOF {
			return
		}
	}
}

// RawTokenizer exposes the underlying raw tokenizer for include-name
// scanning (§4.7), which bypasses token conversion for the remainder of one
// line. It panics if a token is currently buffered in the lookahead slot:
// callers must only reach for raw access immediately after consuming
// whatever they last peeked, never past it.
func (p *Processor) RawTokenizer() *lexer.Tokenizer {
	if p.peeked != nil {
		panic("directive: raw tokenizer access attempted with a buffered lookahead token")
	}
	return p.conv.Tokenizer()
}
