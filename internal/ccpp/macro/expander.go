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

package macro

import (
	"github.com/EngFlow/ccpp/internal/ccpp/diag"
	"github.com/EngFlow/ccpp/internal/ccpp/intern"
	"github.com/EngFlow/ccpp/internal/ccpp/lexer"
	"github.com/EngFlow/ccpp/internal/ccpp/source"
	"github.com/EngFlow/ccpp/internal/ccpp/token"
)

// frame is one active replacement: the tokens of a single macro body (or
// macro argument), relocated into an expansion source, plus a read cursor.
type frame struct {
	name   intern.Symbol
	tokens []token.Token
	pos    int
}

func (f *frame) next() (token.Token, bool) {
	if f.pos >= len(f.tokens) {
		return token.Token{}, false
	}
	tok := f.tokens[f.pos]
	f.pos++
	return tok, true
}

func (f *frame) peek() (token.Token, bool) {
	if f.pos >= len(f.tokens) {
		return token.Token{}, false
	}
	return f.tokens[f.pos], true
}

// Expander drives macro expansion over an underlying token source,
// implementing §4.8's begin_expansion rule and the active-name self
// reference guard. It does not implement function-like macro body
// substitution (see beginExpansion).
type Expander struct {
	table *Table
	sm    *source.Map
	in    intern.Interner
	sink  *diag.Sink

	// underlying supplies tokens once every replacement frame is drained.
	underlying func() token.Token

	stack  []*frame
	active map[intern.Symbol]int

	pending    *token.Token
	pendingSet bool
}

// NewExpander returns an Expander that substitutes macros from table,
// relocating replacement text into sm and reporting diagnostics (naming
// macros via in) to sink. underlying is called for each token once no
// replacement frame has one buffered.
func NewExpander(table *Table, sm *source.Map, in intern.Interner, sink *diag.Sink, underlying func() token.Token) *Expander {
	return &Expander{
		table:      table,
		sm:         sm,
		in:         in,
		sink:       sink,
		underlying: underlying,
		active:     make(map[intern.Symbol]int),
	}
}

func (e *Expander) pushFrame(f *frame) {
	e.stack = append(e.stack, f)
	e.active[f.name]++
}

func (e *Expander) popFrame() {
	n := len(e.stack)
	f := e.stack[n-1]
	e.stack = e.stack[:n-1]
	e.active[f.name]--
	if e.active[f.name] == 0 {
		delete(e.active, f.name)
	}
}

// fetch pops any drained frames, then returns the next token from the
// topmost non-empty frame, or ok==false if every frame is drained (the
// caller must then read from e.underlying).
func (e *Expander) fetch() (token.Token, bool) {
	for len(e.stack) > 0 {
		top := e.stack[len(e.stack)-1]
		if tok, ok := top.next(); ok {
			return tok, true
		}
		e.popFrame()
	}
	return token.Token{}, false
}

// rawNext returns the next token without attempting expansion: from the
// pending lookahead slot if set, else a drained replacement frame, else
// e.underlying.
func (e *Expander) rawNext() token.Token {
	if e.pendingSet {
		e.pendingSet = false
		tok := *e.pending
		e.pending = nil
		return tok
	}
	if tok, ok := e.fetch(); ok {
		return tok
	}
	return e.underlying()
}

// rawPeek looks at the next token (across the frame-stack/underlying
// boundary) without consuming it, buffering it in the pending slot.
func (e *Expander) rawPeek() token.Token {
	if !e.pendingSet {
		tok := e.rawNext()
		e.pending = &tok
		e.pendingSet = true
	}
	return *e.pending
}

// NextExpandedToken returns the next token of the fully macro-expanded
// stream: repeatedly pulls a raw token and, while it can begin an
// expansion, replaces it with its expansion's first token instead of
// emitting it directly.
func (e *Expander) NextExpandedToken() token.Token {
	for {
		tok := e.rawNext()
		if !e.beginExpansion(&tok) {
			return tok
		}
		// beginExpansion either pushed a replacement frame (object-like) or
		// consumed an invocation without producing one (function-like, see
		// beginExpansion); either way, loop to pull the next token instead
		// of emitting tok itself.
	}
}

// beginExpansion implements §4.8's six-step rule. It returns true if tok
// was consumed as (the start of) a macro invocation -- in which case the
// caller must not emit tok and must instead loop for a replacement -- and
// false if tok should be emitted as-is.
func (e *Expander) beginExpansion(tok *token.Token) bool {
	// Step 1: the self-reference guard bit, cleared only on the specific
	// token that was refused expansion (never on the macro name globally).
	if !tok.AllowExpansion {
		return false
	}
	// Step 2: only identifiers can name a macro.
	if tok.Kind != token.KindIdentifier {
		return false
	}
	name := tok.Symbol
	// Step 3: an occurrence of a macro's own name within its own expansion
	// (directly or through nested expansions) is never re-expanded -- the
	// occurrence becomes permanently non-expandable (P9, §6.10.3.4p2).
	if e.active[name] > 0 {
		tok.AllowExpansion = false
		return false
	}
	// Step 4: no definition, nothing to do.
	def, ok := e.table.Lookup(name)
	if !ok {
		return false
	}
	if !def.FunctionLike {
		// Step 5: object-like substitution.
		e.expandObjectLike(*tok, def)
		return true
	}
	// Step 6: function-like. A macro name not followed by '(' is left
	// alone, per §6.10.3p10.
	next := e.rawPeek()
	if next.Kind != token.KindPunctuator || next.Punct != lexer.PunctLParen {
		return false
	}
	e.pendingSet = false // consume the '(' we just peeked
	e.pending = nil
	args, ok := e.parseArguments(*tok, def)
	if !ok {
		// parseArguments already reported the unterminated-invocation
		// diagnostic; the invocation is simply dropped from the stream.
		return true
	}
	_ = args
	// Body substitution is not implemented: the preprocessing-token
	// substitution, stringification and token-pasting rules of §6.10.3.1-3
	// are out of scope here (§9). The invocation's tokens (name, arguments,
	// parentheses) have already been consumed; nothing is emitted for it.
	return true
}

func (e *Expander) expandObjectLike(nameTok token.Token, def Definition) {
	if len(def.Body) == 0 {
		return
	}
	first := def.Body[0].Range
	last := def.Body[len(def.Body)-1].Range
	spellingRange := source.Range{Start: first.Start, Length: last.End().Sub(first.Start)}
	expID, err := e.sm.CreateExpansion(spellingRange, nameTok.Range, source.ExpansionMacro)
	if err != nil {
		e.sink.Fatalf(nameTok.Range, "source map exhausted expanding macro %q", e.in.Resolve(def.Name))
		return
	}
	relocated := relocate(def.Body, e.sm.Span(expID).Start)
	relocated[0].LineStart = nameTok.LineStart
	relocated[0].LeadingTrivia = nameTok.LeadingTrivia
	e.pushFrame(&frame{name: def.Name, tokens: relocated})
}

// relocate returns a copy of toks with each Range's Start shifted so the
// first token begins at newBase, preserving the original inter-token
// spacing (so relative positions -- and therefore GetSpelling -- still
// agree with how the definition was written).
func relocate(toks []token.Token, newBase source.Position) []token.Token {
	out := make([]token.Token, len(toks))
	base := toks[0].Range.Start
	for i, t := range toks {
		off := t.Range.Start.Sub(base)
		t.Range = source.Range{Start: newBase.Advance(off), Length: t.Range.Length}
		out[i] = t
	}
	return out
}

// parseArguments parses the arguments of a function-like macro invocation
// whose name is nameTok and whose opening '(' has already been consumed,
// following the same paren-depth/comma-splitting/EOF-handling rule as
// nmraz/mrcc's parse_macro_args: a top-level ',' (depth 1) delimits
// arguments, the matching ')' (depth reaching 0) ends the invocation, and
// running out of tokens reports "unterminated invocation of macro" with a
// note at the macro's definition. A macro declared with zero parameters
// and no ellipsis still receives exactly one (possibly empty) argument, per
// §6.10.3p4's "If there are no parameters ... (an empty argument)."
func (e *Expander) parseArguments(nameTok token.Token, def Definition) ([][]token.Token, bool) {
	var args [][]token.Token
	var cur []token.Token
	depth := 1
	for {
		tok := e.rawNext()
		if tok.Kind == token.KindEOF {
			name := e.in.Resolve(def.Name)
			e.sink.Notef(diag.Error,
				diag.At(nameTok.Range, "unterminated invocation of macro %q", name),
				diag.At(def.NameRange, "macro %q defined here", name))
			return nil, false
		}
		if tok.Kind == token.KindPunctuator {
			switch tok.Punct {
			case lexer.PunctLParen:
				depth++
			case lexer.PunctRParen:
				depth--
				if depth == 0 {
					args = append(args, cur)
					return args, true
				}
			case lexer.PunctComma:
				if depth == 1 {
					args = append(args, cur)
					cur = nil
					continue
				}
			}
		}
		cur = append(cur, tok)
	}
}
