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
	"github.com/EngFlow/ccpp/internal/ccpp/diag"
	"github.com/EngFlow/ccpp/internal/ccpp/fileprovider"
	"github.com/EngFlow/ccpp/internal/ccpp/intern"
	"github.com/EngFlow/ccpp/internal/ccpp/lexer"
	"github.com/EngFlow/ccpp/internal/ccpp/macro"
	"github.com/EngFlow/ccpp/internal/ccpp/source"
	"github.com/EngFlow/ccpp/internal/ccpp/token"
)

// EventKind classifies an Event produced by an EventProcessor.
type EventKind int

const (
	EventEOF EventKind = iota
	// EventToken is a plain token, not part of any recognized directive.
	EventToken
	EventInclude
	EventDefine
	EventUndef
	EventError
	// EventConditional reports the lexical recognition of an #if family
	// directive -- not its evaluation or any skip/keep decision (§9).
	EventConditional
	// EventUnknown is a '#' at line start followed by an identifier this
	// processor does not recognize (or by no identifier at all).
	EventUnknown
)

// ConditionalKeyword distinguishes which #if-family directive an
// EventConditional reports.
type ConditionalKeyword int

const (
	CondIf ConditionalKeyword = iota
	CondIfdef
	CondIfndef
	CondElif
	CondElifdef
	CondElifndef
	CondElse
	CondEndif
)

// Event is one item of an EventProcessor's output stream.
type Event struct {
	Kind  EventKind
	Range source.Range

	Token token.Token // EventToken

	IncludePath   string            // EventInclude
	IncludeKind   fileprovider.Kind // EventInclude
	IncludeIsNext bool              // EventInclude (#include_next)

	Define macro.Definition // EventDefine
	Undef  intern.Symbol    // EventUndef

	Message string // EventError

	CondKeyword ConditionalKeyword // EventConditional
	CondName    intern.Symbol      // EventConditional: ifdef/ifndef/elifdef/elifndef
	CondExpr    CondExpr           // EventConditional: if/elif

	Unknown string // EventUnknown: the directive name, if any
}

// EventProcessor recognizes preprocessor directives over one file's
// Processor, producing a flat stream of Token and directive Events. It owns
// no skip/keep state: conditional directives are reported, not acted on
// (§9) -- a caller wanting conditional compilation evaluates CondExpr and
// drives inclusion itself.
type EventProcessor struct {
	proc  *Processor
	in    intern.Interner
	sink  *diag.Sink
	table *macro.Table
	base  source.Position
}

// NewEventProcessor returns an EventProcessor recognizing directives from
// proc, whose tokens are positioned relative to base (the file's reserved
// source-map span), resolving identifiers through in, recording macro
// definitions in table, and reporting diagnostics to sink.
func NewEventProcessor(proc *Processor, base source.Position, in intern.Interner, table *macro.Table, sink *diag.Sink) *EventProcessor {
	return &EventProcessor{proc: proc, in: in, sink: sink, table: table, base: base}
}

// Next returns the next Event, or EventEOF once the file is exhausted.
func (ep *EventProcessor) Next() Event {
	for {
		t := ep.proc.NextReal()
		if t.Kind == token.KindEOF {
			return Event{Kind: EventEOF, Range: t.Range}
		}
		if !(t.LineStart && ep.isHash(t)) {
			return Event{Kind: EventToken, Range: t.Range, Token: t}
		}
		if ev, ok := ep.parseDirective(t); ok {
			return ev
		}
		// A null directive ("#" alone on a line) produces no event.
	}
}

func (ep *EventProcessor) isHash(t token.Token) bool {
	return t.Kind == token.KindPunctuator && t.Punct == lexer.PunctHash
}

func (ep *EventProcessor) resolve(sym intern.Symbol) string { return ep.in.Resolve(sym) }

func (ep *EventProcessor) isPunct(t token.Token, k lexer.Punct) bool {
	return t.Kind == token.KindPunctuator && t.Punct == k
}

// parseDirective dispatches on the first directive token following '#'. ok
// is false only for a null directive.
func (ep *EventProcessor) parseDirective(hash token.Token) (Event, bool) {
	kw := ep.proc.NextDirectiveToken()
	if kw.Kind == token.KindEOF {
		return Event{}, false // "#" followed immediately by newline/EOF
	}
	if kw.Kind != token.KindIdentifier {
		ep.proc.AdvanceToEOD()
		return Event{Kind: EventUnknown, Range: hash.Range}, true
	}
	switch ep.resolve(kw.Symbol) {
	case "define":
		return ep.parseDefine(hash), true
	case "undef":
		return ep.parseUndef(hash), true
	case "include":
		return ep.parseInclude(hash, false), true
	case "include_next":
		return ep.parseInclude(hash, true), true
	case "error":
		return ep.parseError(hash), true
	case "if":
		return ep.parseCondExpr(hash, CondIf), true
	case "elif":
		return ep.parseCondExpr(hash, CondElif), true
	case "ifdef":
		return ep.parseCondName(hash, CondIfdef), true
	case "ifndef":
		return ep.parseCondName(hash, CondIfndef), true
	case "elifdef":
		return ep.parseCondName(hash, CondElifdef), true
	case "elifndef":
		return ep.parseCondName(hash, CondElifndef), true
	case "else":
		ep.finishDirective()
		return Event{Kind: EventConditional, Range: kw.Range, CondKeyword: CondElse}, true
	case "endif":
		ep.finishDirective()
		return Event{Kind: EventConditional, Range: kw.Range, CondKeyword: CondEndif}, true
	default:
		ep.proc.AdvanceToEOD()
		return Event{Kind: EventUnknown, Range: kw.Range, Unknown: ep.resolve(kw.Symbol)}, true
	}
}

// finishDirective checks for, and warns about, tokens trailing a directive
// whose grammar has already been fully recognized, suggesting they be
// commented out, then discards up to the end of the directive.
func (ep *EventProcessor) finishDirective() {
	t := ep.proc.Peek()
	if t.Kind == token.KindNewline || t.Kind == token.KindEOF {
		ep.proc.AdvanceToEOD()
		return
	}
	sub := diag.At(t.Range, "extra tokens at end of directive").
		WithSuggestion(source.Range{Start: t.Range.Start}, "// ")
	ep.sink.Emit(diag.Diagnostic{Level: diag.Warning, Main: sub})
	ep.proc.AdvanceToEOD()
}

func (ep *EventProcessor) parseUndef(hash token.Token) Event {
	nameTok := ep.proc.NextDirectiveToken()
	if nameTok.Kind != token.KindIdentifier {
		ep.sink.Errorf(nameTok.Range, "macro name must be an identifier")
		ep.proc.AdvanceToEOD()
		return Event{Kind: EventUnknown, Range: hash.Range}
	}
	ep.finishDirective()
	ep.table.Undef(nameTok.Symbol)
	return Event{Kind: EventUndef, Range: nameTok.Range, Undef: nameTok.Symbol}
}

func (ep *EventProcessor) parseError(hash token.Token) Event {
	var b []byte
	for {
		t := ep.proc.NextDirectiveToken()
		if t.Kind == token.KindEOF {
			break
		}
		if len(b) > 0 {
			b = append(b, ' ')
		}
		b = append(b, token.DisplayForm(t, ep.in)...)
	}
	msg := string(b)
	ep.sink.Errorf(hash.Range, "#error %s", msg)
	return Event{Kind: EventError, Range: hash.Range, Message: msg}
}

func (ep *EventProcessor) parseCondExpr(hash token.Token, kw ConditionalKeyword) Event {
	p := NewCondExprParser(ep.proc.NextDirectiveToken, ep.in, ep.sink)
	expr := p.Parse()
	return Event{Kind: EventConditional, Range: hash.Range, CondKeyword: kw, CondExpr: expr}
}

func (ep *EventProcessor) parseCondName(hash token.Token, kw ConditionalKeyword) Event {
	nameTok := ep.proc.NextDirectiveToken()
	if nameTok.Kind != token.KindIdentifier {
		ep.sink.Errorf(nameTok.Range, "macro name must be an identifier")
		ep.proc.AdvanceToEOD()
		return Event{Kind: EventUnknown, Range: hash.Range}
	}
	ep.finishDirective()
	return Event{Kind: EventConditional, Range: hash.Range, CondKeyword: kw, CondName: nameTok.Symbol}
}

// parseDefine parses a #define directive's name, optional parameter list
// (distinguishing function-like from object-like by whether '(' follows the
// name with no intervening whitespace) and replacement list, and diagnoses
// a mismatched redefinition (§6.10.3p2) before recording the definition.
func (ep *EventProcessor) parseDefine(hash token.Token) Event {
	nameTok := ep.proc.NextDirectiveToken()
	if nameTok.Kind != token.KindIdentifier {
		ep.sink.Errorf(nameTok.Range, "macro name must be an identifier")
		ep.proc.AdvanceToEOD()
		return Event{Kind: EventUnknown, Range: hash.Range}
	}

	def := macro.Definition{Name: nameTok.Symbol, NameRange: nameTok.Range}

	if peek := ep.proc.Peek(); ep.isPunct(peek, lexer.PunctLParen) && !peek.LeadingTrivia {
		ep.proc.Next() // consume '('
		def.FunctionLike = true
		if !ep.parseParamList(&def) {
			ep.proc.AdvanceToEOD()
			return Event{Kind: EventUnknown, Range: hash.Range}
		}
	} else if !peek.LeadingTrivia && peek.Kind != token.KindNewline && peek.Kind != token.KindEOF {
		sub := diag.At(peek.Range, "object-like macros require whitespace after the macro name").
			WithSuggestion(source.Range{Start: peek.Range.Start}, " ")
		ep.sink.Emit(diag.Diagnostic{Level: diag.Warning, Main: sub})
	}

	first := true
	for {
		t := ep.proc.NextDirectiveToken()
		if t.Kind == token.KindEOF {
			break
		}
		if first {
			t.LeadingTrivia = false
			first = false
		}
		def.Body = append(def.Body, t)
	}

	if prev, ok := ep.table.Lookup(def.Name); ok && !macro.Identical(prev, def) {
		name := ep.resolve(def.Name)
		ep.sink.Notef(diag.Error,
			diag.At(def.NameRange, "redefinition of macro %q", name),
			diag.At(prev.NameRange, "previous definition of %q is here", name))
	}
	ep.table.Define(def)

	return Event{Kind: EventDefine, Range: nameTok.Range, Define: def}
}

// parseParamList parses a function-like macro's parameter list, '('
// already consumed, appending to def and returning false (and leaving
// def.Params/Variadic possibly incomplete) if malformed.
func (ep *EventProcessor) parseParamList(def *macro.Definition) bool {
	if peek := ep.proc.Peek(); ep.isPunct(peek, lexer.PunctRParen) {
		ep.proc.Next()
		return true
	}
	for {
		t := ep.proc.NextDirectiveToken()
		if ep.isPunct(t, lexer.PunctEllipsis) {
			def.Variadic = true
			closeTok := ep.proc.NextDirectiveToken()
			if !ep.isPunct(closeTok, lexer.PunctRParen) {
				ep.sink.Errorf(closeTok.Range, "expected ')' after '...' in macro parameter list")
				return false
			}
			return true
		}
		if t.Kind != token.KindIdentifier {
			ep.sink.Errorf(t.Range, "expected parameter name in macro parameter list")
			return false
		}
		def.Params = append(def.Params, t.Symbol)
		sep := ep.proc.NextDirectiveToken()
		if ep.isPunct(sep, lexer.PunctComma) {
			continue
		}
		if ep.isPunct(sep, lexer.PunctRParen) {
			return true
		}
		ep.sink.Errorf(sep.Range, "expected ',' or ')' in macro parameter list")
		return false
	}
}

// parseInclude scans an #include (or #include_next) filename with a raw
// character scan rather than the token converter -- `<...>` and embedded
// `/` would otherwise tokenize as punctuators and a comment opener
// respectively (§4.7).
func (ep *EventProcessor) parseInclude(hash token.Token, isNext bool) Event {
	r := ep.proc.RawTokenizer().Reader()
	r.EatLineWS()
	r.BeginToken()
	// Peek (never Bump) across the newline/EOF boundary: the raw scan must
	// never itself consume the line terminator, so that Processor's
	// LineStart bookkeeping -- which only updates as tokens pass back
	// through the ordinary token converter -- stays in sync once control
	// returns to AdvanceToEOD/finishDirective below.
	open, ok := r.Peek()
	if !ok || open == '\n' || (open != '"' && open != '<') {
		rng := ep.rawRange(r.CurrentContent())
		ep.sink.Errorf(rng, "expected \"FILENAME\" or <FILENAME> after #include")
		if ok && open != '\n' {
			r.Bump()
		}
		ep.proc.AdvanceToEOD()
		return Event{Kind: EventUnknown, Range: hash.Range}
	}
	r.Bump()
	closeCh := byte('"')
	kind := fileprovider.Quoted
	if open == '<' {
		closeCh = '>'
		kind = fileprovider.Angled
	}
	for {
		c, ok := r.Peek()
		if !ok || c == '\n' {
			content := r.CurrentContent()
			insertAt := ep.base.Advance(source.LocalOffset(r.Off()))
			sub := diag.At(ep.rawRange(content), "missing terminating %c character", rune(closeCh)).
				WithSuggestion(source.Range{Start: insertAt}, string(closeCh))
			ep.sink.Emit(diag.Diagnostic{Level: diag.Error, Main: sub})
			ep.proc.AdvanceToEOD()
			return Event{Kind: EventUnknown, Range: hash.Range}
		}
		r.Bump()
		if c == rune(closeCh) {
			break
		}
	}
	content := r.CurrentContent()
	path := content.Str[1 : len(content.Str)-1]
	rng := ep.rawRange(content)
	ep.finishDirective()
	return Event{
		Kind:          EventInclude,
		Range:         rng,
		IncludePath:   path,
		IncludeKind:   kind,
		IncludeIsNext: isNext,
	}
}

func (ep *EventProcessor) rawRange(c lexer.Content) source.Range {
	return source.Range{Start: ep.base.Advance(source.LocalOffset(c.Off)), Length: source.LocalOffset(len(c.Str))}
}
