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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/ccpp/internal/ccpp/diag"
	"github.com/EngFlow/ccpp/internal/ccpp/fileprovider"
	"github.com/EngFlow/ccpp/internal/ccpp/intern"
	"github.com/EngFlow/ccpp/internal/ccpp/lexer"
	"github.com/EngFlow/ccpp/internal/ccpp/macro"
	"github.com/EngFlow/ccpp/internal/ccpp/source"
	"github.com/EngFlow/ccpp/internal/ccpp/token"
)

func newEventProcessor(t *testing.T, src string) (*EventProcessor, *intern.StringInterner, *diag.Sink, *macro.Table) {
	t.Helper()
	sm := source.NewMap()
	fid, err := sm.CreateFile("t.c", source.NewFileContents(src), nil)
	require.NoError(t, err)
	in := intern.New()
	sink := diag.NewSink()
	base := sm.Span(fid).Start
	conv := token.NewConverter(lexer.NewTokenizerString(src), base, in, sink)
	tbl := macro.NewTable()
	return NewEventProcessor(NewProcessor(conv), base, in, tbl, sink), in, sink, tbl
}

func TestEventObjectLikeDefine(t *testing.T) {
	ep, in, sink, tbl := newEventProcessor(t, "#define FOO 1 + 2\n")
	ev := ep.Next()
	require.Equal(t, EventDefine, ev.Kind)
	assert.False(t, ev.Define.FunctionLike)
	require.Len(t, ev.Define.Body, 3)
	assert.Equal(t, "1", in.Resolve(ev.Define.Body[0].Symbol))
	assert.False(t, sink.HasError())

	_, ok := tbl.Lookup(in.Intern("FOO"))
	assert.True(t, ok)

	assert.Equal(t, EventEOF, ep.Next().Kind)
}

func TestEventFunctionLikeDefineWithParams(t *testing.T) {
	ep, in, sink, _ := newEventProcessor(t, "#define ADD(a, b) a + b\n")
	ev := ep.Next()
	require.Equal(t, EventDefine, ev.Kind)
	assert.True(t, ev.Define.FunctionLike)
	require.Len(t, ev.Define.Params, 2)
	assert.Equal(t, "a", in.Resolve(ev.Define.Params[0]))
	assert.Equal(t, "b", in.Resolve(ev.Define.Params[1]))
	assert.False(t, sink.HasError())
}

func TestEventVariadicDefine(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#define LOG(fmt, ...) fmt\n")
	ev := ep.Next()
	require.Equal(t, EventDefine, ev.Kind)
	assert.True(t, ev.Define.Variadic)
	require.Len(t, ev.Define.Params, 1)
	assert.False(t, sink.HasError())
}

func TestEventObjectLikeVersusFunctionLikeDisambiguation(t *testing.T) {
	// A space before '(' makes this object-like with a body that happens to
	// start with '(' -- §6.10.3p3's no-intervening-whitespace rule.
	ep, _, _, _ := newEventProcessor(t, "#define FOO (1)\n")
	ev := ep.Next()
	require.Equal(t, EventDefine, ev.Kind)
	assert.False(t, ev.Define.FunctionLike)
}

func TestEventObjectLikeMacroWithoutWhitespaceWarns(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#define FOO+1\n")
	ev := ep.Next()
	require.Equal(t, EventDefine, ev.Kind)
	assert.False(t, ev.Define.FunctionLike)

	require.Len(t, sink.Diagnostics(), 1)
	d := sink.Diagnostics()[0]
	assert.Equal(t, diag.Warning, d.Level)
	assert.Contains(t, d.Main.Message, "object-like macros require whitespace after the macro name")
	require.NotNil(t, d.Main.Suggestion)
	assert.Equal(t, " ", d.Main.Suggestion.Insert)
}

func TestEventRedefinitionMismatchReportsErrorWithNote(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#define X 1\n#define X 2\n")
	require.Equal(t, EventDefine, ep.Next().Kind)
	require.Equal(t, EventDefine, ep.Next().Kind)

	require.Len(t, sink.Diagnostics(), 1)
	d := sink.Diagnostics()[0]
	assert.Equal(t, diag.Error, d.Level)
	assert.Contains(t, d.Main.Message, "redefinition of macro")
	require.Len(t, d.Notes, 1)
	assert.Contains(t, d.Notes[0].Message, "previous definition")
}

func TestEventIdenticalRedefinitionIsNotDiagnosed(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#define X 1\n#define X 1\n")
	require.Equal(t, EventDefine, ep.Next().Kind)
	require.Equal(t, EventDefine, ep.Next().Kind)
	assert.Empty(t, sink.Diagnostics())
}

func TestEventUndef(t *testing.T) {
	ep, in, sink, tbl := newEventProcessor(t, "#define X 1\n#undef X\n")
	require.Equal(t, EventDefine, ep.Next().Kind)
	ev := ep.Next()
	require.Equal(t, EventUndef, ev.Kind)
	assert.Equal(t, in.Intern("X"), ev.Undef)
	_, ok := tbl.Lookup(in.Intern("X"))
	assert.False(t, ok)
	assert.False(t, sink.HasError())
}

func TestEventIncludeQuoted(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, `#include "foo.h"`+"\n")
	ev := ep.Next()
	require.Equal(t, EventInclude, ev.Kind)
	assert.Equal(t, "foo.h", ev.IncludePath)
	assert.Equal(t, fileprovider.Quoted, ev.IncludeKind)
	assert.False(t, ev.IncludeIsNext)
	assert.False(t, sink.HasError())
}

func TestEventIncludeAngled(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#include <foo/bar.h>\n")
	ev := ep.Next()
	require.Equal(t, EventInclude, ev.Kind)
	assert.Equal(t, "foo/bar.h", ev.IncludePath)
	assert.Equal(t, fileprovider.Angled, ev.IncludeKind)
	assert.False(t, sink.HasError())
}

func TestEventIncludeNext(t *testing.T) {
	ep, _, _, _ := newEventProcessor(t, `#include_next "foo.h"`+"\n")
	ev := ep.Next()
	require.Equal(t, EventInclude, ev.Kind)
	assert.True(t, ev.IncludeIsNext)
}

func TestEventIncludeMissingCloseQuoteReportsErrorWithSuggestion(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, `#include "foo.h`+"\n")
	ev := ep.Next()
	assert.Equal(t, EventUnknown, ev.Kind)
	require.Len(t, sink.Diagnostics(), 1)
	d := sink.Diagnostics()[0]
	assert.Equal(t, diag.Error, d.Level)
	assert.Contains(t, d.Main.Message, "missing terminating")
	require.NotNil(t, d.Main.Suggestion)
	assert.Equal(t, `"`, d.Main.Suggestion.Insert)
}

func TestEventError(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#error something went wrong\n")
	ev := ep.Next()
	require.Equal(t, EventError, ev.Kind)
	assert.Contains(t, ev.Message, "something")
	assert.True(t, sink.HasError())
}

func TestEventConditionalIfExpr(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#if A && B\n")
	ev := ep.Next()
	require.Equal(t, EventConditional, ev.Kind)
	assert.Equal(t, CondIf, ev.CondKeyword)
	require.NotNil(t, ev.CondExpr)
	_, isAnd := ev.CondExpr.(And)
	assert.True(t, isAnd)
	assert.False(t, sink.HasError())
}

func TestEventConditionalIfdefName(t *testing.T) {
	ep, in, sink, _ := newEventProcessor(t, "#ifdef FOO\n")
	ev := ep.Next()
	require.Equal(t, EventConditional, ev.Kind)
	assert.Equal(t, CondIfdef, ev.CondKeyword)
	assert.Equal(t, in.Intern("FOO"), ev.CondName)
	assert.False(t, sink.HasError())
}

func TestEventConditionalElseAndEndif(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#else\n#endif\n")
	e1 := ep.Next()
	assert.Equal(t, CondElse, e1.CondKeyword)
	e2 := ep.Next()
	assert.Equal(t, CondEndif, e2.CondKeyword)
	assert.False(t, sink.HasError())
}

func TestEventTrailingTokensAfterEndifWarns(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#endif garbage\n")
	ev := ep.Next()
	assert.Equal(t, EventConditional, ev.Kind)
	require.Len(t, sink.Diagnostics(), 1)
	d := sink.Diagnostics()[0]
	assert.Equal(t, diag.Warning, d.Level)
	assert.Contains(t, d.Main.Message, "extra tokens")
	require.NotNil(t, d.Main.Suggestion)
	assert.Equal(t, "// ", d.Main.Suggestion.Insert)
}

func TestEventNullDirectiveProducesNoEvent(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#\nx\n")
	ev := ep.Next()
	require.Equal(t, EventToken, ev.Kind)
	assert.False(t, sink.HasError())
}

func TestEventUnknownDirective(t *testing.T) {
	ep, _, sink, _ := newEventProcessor(t, "#pragma once\n")
	ev := ep.Next()
	require.Equal(t, EventUnknown, ev.Kind)
	assert.Equal(t, "pragma", ev.Unknown)
	assert.False(t, sink.HasError())
}

func TestEventPlainTokenBeforeDirective(t *testing.T) {
	ep, _, _, _ := newEventProcessor(t, "x\n#define Y 1\n")
	ev := ep.Next()
	require.Equal(t, EventToken, ev.Kind)
	ev2 := ep.Next()
	require.Equal(t, EventDefine, ev2.Kind)
}
