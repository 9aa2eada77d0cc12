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

// Package engine wires the directive processor, the macro expander and the
// include loader into the top-level driver (§4.10): given a main file
// already registered in a source.Map, it produces the fully
// directive-interpreted, macro-expanded token stream, transparently pushing
// and popping #include files on the way.
package engine

import (
	"errors"
	"fmt"
	"log"
	"path"

	"github.com/EngFlow/ccpp/internal/ccpp/diag"
	"github.com/EngFlow/ccpp/internal/ccpp/directive"
	"github.com/EngFlow/ccpp/internal/ccpp/fileprovider"
	"github.com/EngFlow/ccpp/internal/ccpp/intern"
	"github.com/EngFlow/ccpp/internal/ccpp/lexer"
	"github.com/EngFlow/ccpp/internal/ccpp/macro"
	"github.com/EngFlow/ccpp/internal/ccpp/source"
	"github.com/EngFlow/ccpp/internal/ccpp/token"
)

// Verbose gates ambient, non-diagnostic tracing of include-stack
// transitions via log.Printf (§7), in the style of the teacher's commented
// debug log.Printf calls. It is off by default; callers that want the
// trace (e.g. a -v flag on a driver) set it before driving the Engine.
var Verbose = false

func debugf(format string, args ...any) {
	if Verbose {
		log.Printf(format, args...)
	}
}

// activeFile is one entry of the include stack: a file's directive event
// stream, plus the directory further quoted #include directives in it
// resolve relative to.
type activeFile struct {
	events *directive.EventProcessor
	dir    string
}

// Engine drives translation phases 1-4 end to end. It owns the include
// stack, the macro table and expander (shared across every file in the
// translation unit, per §5's "single-owner mutable" discipline), and the
// include loader.
type Engine struct {
	sm     *source.Map
	in     intern.Interner
	sink   *diag.Sink
	loader *fileprovider.Loader

	table    *macro.Table
	expander *macro.Expander

	stack []*activeFile
}

// New returns an Engine over mainID, a file already registered in sm (the
// caller owns main-file registration, since the caller also chose its
// name/text). parentDir, if non-empty, overrides the directory quoted
// includes from the main file resolve against; an empty parentDir derives it
// from the main file's registered name.
func New(sm *source.Map, in intern.Interner, sink *diag.Sink, loader *fileprovider.Loader, mainID source.ID, parentDir string) *Engine {
	e := &Engine{sm: sm, in: in, sink: sink, loader: loader, table: macro.NewTable()}
	e.expander = macro.NewExpander(e.table, sm, in, sink, e.nextRawToken)
	dir := parentDir
	if dir == "" {
		dir = path.Dir(sm.File(mainID).Name)
	}
	e.stack = []*activeFile{e.newActiveFile(mainID, dir)}
	return e
}

func (e *Engine) newActiveFile(id source.ID, dir string) *activeFile {
	fs := e.sm.File(id)
	base := e.sm.Span(id).Start
	conv := token.NewConverter(lexer.NewTokenizerString(fs.Contents.Text), base, e.in, e.sink)
	proc := directive.NewProcessor(conv)
	events := directive.NewEventProcessor(proc, base, e.in, e.table, e.sink)
	return &activeFile{events: events, dir: dir}
}

// Table returns the macro table the engine mutates as #define/#undef
// directives are interpreted, for callers that want to inspect final state.
func (e *Engine) Table() *macro.Table { return e.table }

// Next returns the next fully macro-expanded token, or ok==false once a
// fatal diagnostic has been emitted (either before or while producing it):
// per §7's failure-propagation policy, the caller must stop driving the
// engine the moment ok is false, not just when the returned token is EOF.
func (e *Engine) Next() (token.Token, bool) {
	if e.sink.HasFatal() {
		return token.Token{}, false
	}
	tok := e.expander.NextExpandedToken()
	if e.sink.HasFatal() {
		return token.Token{}, false
	}
	return tok, true
}

// nextRawToken is the macro expander's underlying token source: it drains
// directive events from the top of the include stack, applying Include
// (push/pop the stack) and letting Define/Undef/Error/Conditional/Unknown
// events pass with no token of their own (the EventProcessor that produced
// them has already applied or diagnosed their effect), until a plain Token
// event surfaces or the main file itself is exhausted.
func (e *Engine) nextRawToken() token.Token {
	for {
		if e.sink.HasFatal() {
			return token.Token{Kind: token.KindEOF}
		}
		top := e.stack[len(e.stack)-1]
		ev := top.events.Next()
		switch ev.Kind {
		case directive.EventToken:
			return ev.Token
		case directive.EventEOF:
			if len(e.stack) > 1 {
				e.stack = e.stack[:len(e.stack)-1]
				debugf("popped frame, stack depth now %d", len(e.stack))
				continue
			}
			return token.Token{Kind: token.KindEOF, Range: ev.Range}
		case directive.EventInclude:
			e.handleInclude(ev)
			continue
		default:
			continue
		}
	}
}

// handleInclude resolves an Include event through the loader, registering
// the result as a new file source (whose IncludePos is the directive's
// start, I4) and pushing it onto the include stack. Resolution failure and
// source-map exhaustion are both reported as fatal diagnostics (§4.10/§7),
// leaving the stack unchanged.
func (e *Engine) handleInclude(ev directive.Event) {
	top := e.stack[len(e.stack)-1]
	resolvedPath, text, err := e.loader.Resolve(ev.IncludePath, ev.IncludeKind, top.dir)
	if err != nil {
		e.sink.Fatalf(ev.Range, "%s", includeErrorMessage(err))
		return
	}
	includePos := ev.Range.Start
	id, err := e.sm.CreateFile(resolvedPath, source.NewFileContents(text), &includePos)
	if err != nil {
		e.sink.Fatalf(ev.Range, "translation unit too large")
		return
	}
	e.stack = append(e.stack, e.newActiveFile(id, path.Dir(resolvedPath)))
	debugf("pushed include stack frame for %s", resolvedPath)
}

func includeErrorMessage(err error) string {
	var nf *fileprovider.NotFoundError
	if errors.As(err, &nf) {
		return fmt.Sprintf("'%s' file not found", nf.Path)
	}
	var ioErr *fileprovider.IOError
	if errors.As(err, &ioErr) {
		return fmt.Sprintf("failed to read '%s': %v", ioErr.Path, ioErr.Err)
	}
	return err.Error()
}
