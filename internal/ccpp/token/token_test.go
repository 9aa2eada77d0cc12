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

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/ccpp/internal/ccpp/diag"
	"github.com/EngFlow/ccpp/internal/ccpp/intern"
	"github.com/EngFlow/ccpp/internal/ccpp/lexer"
	"github.com/EngFlow/ccpp/internal/ccpp/source"
)

func convertAll(t *testing.T, src string) ([]Token, *intern.StringInterner, *diag.Sink) {
	t.Helper()
	sm := source.NewMap()
	fid, err := sm.CreateFile("t.c", source.NewFileContents(src), nil)
	require.NoError(t, err)
	in := intern.New()
	sink := diag.NewSink()
	conv := NewConverter(lexer.NewTokenizerString(src), sm.Span(fid).Start, in, sink)
	var out []Token
	for {
		tok := conv.Next()
		out = append(out, tok)
		if tok.Kind == KindEOF {
			return out, in, sink
		}
	}
}

func TestIdentifierInternedAndCleaned(t *testing.T) {
	toks, in, _ := convertAll(t, "he\\\nllo")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, KindIdentifier, toks[0].Kind)
	assert.Equal(t, "hello", in.Resolve(toks[0].Symbol))
}

func TestUnterminatedStringEmitsError(t *testing.T) {
	toks, _, sink := convertAll(t, `"hello`)
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, KindString, toks[0].Kind)
	require.Len(t, sink.Diagnostics(), 1)
	assert.Equal(t, diag.Error, sink.Diagnostics()[0].Level)
	assert.Contains(t, sink.Diagnostics()[0].Main.Message, "unterminated string")
}

func TestNewlineTokenHasEmptyRange(t *testing.T) {
	toks, _, _ := convertAll(t, "x\ny")
	require.GreaterOrEqual(t, len(toks), 2)
	nl := toks[1]
	assert.Equal(t, KindNewline, nl.Kind)
	assert.True(t, nl.Range.IsEmpty())
}

func TestPunctuatorDisplayFormUsesCanonicalSpelling(t *testing.T) {
	toks, in, _ := convertAll(t, "<:")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, KindPunctuator, toks[0].Kind)
	assert.Equal(t, "[", DisplayForm(toks[0], in))
}
