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

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTokens(src string) []RawToken {
	tok := NewTokenizerString(src)
	var out []RawToken
	for {
		t := tok.Next()
		out = append(out, t)
		if t.Kind == RawEOF {
			return out
		}
	}
}

// Scenario 1: an escaped newline joins "he\<newline>llo" into one identifier
// whose cleaned text is "hello".
func TestEscapedNewlineJoinsIdentifier(t *testing.T) {
	toks := allTokens("he\\\nllo")
	require.GreaterOrEqual(t, len(toks), 2)
	ident := toks[0]
	assert.Equal(t, RawIdentifier, ident.Kind)
	assert.True(t, ident.Tainted)
	assert.Equal(t, "hello", Cleaned(ident.Content))
}

// Scenario 2: digraphs decode to their canonical punctuator kinds.
func TestDigraphsDecodeToCanonicalPunctuators(t *testing.T) {
	toks := allTokens("<: :> <% %> %: %:%:")
	var puncts []Punct
	for _, tk := range toks {
		if tk.Kind == RawPunctuator {
			puncts = append(puncts, tk.Punct)
		}
	}
	assert.Equal(t, []Punct{
		PunctLBracket,
		PunctRBracket,
		PunctLBrace,
		PunctRBrace,
		PunctHash,
		PunctHashHash,
	}, puncts)

	var spellings []string
	for _, p := range puncts {
		spellings = append(spellings, p.Spelling())
	}
	assert.Equal(t, []string{"[", "]", "{", "}", "#", "##"}, spellings)
}

func TestEllipsisVersusDotDot(t *testing.T) {
	toks := allTokens("...")
	require.Len(t, toks, 2) // ellipsis, EOF
	assert.Equal(t, PunctEllipsis, toks[0].Punct)

	// Regression: ".." alone is two separate '.' tokens, not an ellipsis.
	toks = allTokens("..")
	require.Len(t, toks, 3) // '.', '.', EOF
	assert.Equal(t, PunctDot, toks[0].Punct)
	assert.Equal(t, PunctDot, toks[1].Punct)
}

func TestDotNumberVersusDotPunctuator(t *testing.T) {
	toks := allTokens(".5")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, RawNumber, toks[0].Kind)
	assert.Equal(t, ".5", toks[0].Content)
}

func TestPPNumberConsumesExponentSign(t *testing.T) {
	toks := allTokens("1e+10")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, RawNumber, toks[0].Kind)
	assert.Equal(t, "1e+10", toks[0].Content)
}

func TestUnterminatedStringAtEOF(t *testing.T) {
	toks := allTokens(`"hello`)
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, RawString, toks[0].Kind)
	assert.False(t, toks[0].Terminated)
	assert.Equal(t, `"hello`, toks[0].Content)
}

func TestUnterminatedStringStopsAtNewline(t *testing.T) {
	toks := allTokens("\"hello\nworld")
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, RawString, toks[0].Kind)
	assert.False(t, toks[0].Terminated)
	assert.Equal(t, RawNewline, toks[1].Kind)
}

func TestStringEscapedQuoteDoesNotTerminate(t *testing.T) {
	toks := allTokens(`"a\"b"`)
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, RawString, toks[0].Kind)
	assert.True(t, toks[0].Terminated)
	assert.Equal(t, `"a\"b"`, toks[0].Content)
}

func TestEncodingPrefixedStringLiterals(t *testing.T) {
	for _, src := range []string{`u8"x"`, `u"x"`, `U"x"`, `L"x"`, `L'x'`} {
		toks := allTokens(src)
		require.GreaterOrEqual(t, len(toks), 1, src)
		assert.Contains(t, []RawKind{RawString, RawChar}, toks[0].Kind, src)
		assert.True(t, toks[0].Terminated, src)
		assert.Equal(t, src, toks[0].Content, src)
	}
}

func TestPlainIdentifierStartingWithPrefixLetter(t *testing.T) {
	toks := allTokens("und8")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, RawIdentifier, toks[0].Kind)
	assert.Equal(t, "und8", toks[0].Content)
}

func TestLineComment(t *testing.T) {
	toks := allTokens("// hi\nx")
	require.GreaterOrEqual(t, len(toks), 3)
	assert.Equal(t, RawLineComment, toks[0].Kind)
	assert.Equal(t, "// hi", toks[0].Content)
	assert.Equal(t, RawNewline, toks[1].Kind)
}

func TestBlockCommentTerminatedAndUnterminated(t *testing.T) {
	toks := allTokens("/* ok */x")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, RawBlockComment, toks[0].Kind)
	assert.True(t, toks[0].Terminated)

	toks = allTokens("/* oops")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, RawBlockComment, toks[0].Kind)
	assert.False(t, toks[0].Terminated)
}

// P1: concatenating every raw token's content reproduces the input exactly.
func TestLosslessConcatenation(t *testing.T) {
	srcs := []string{
		"#define A (2 + 3)\nint x = A + 1;\n",
		"he\\\nllo world /* c */ // d\n\"s\\\"t\\\\n\" 'c' 1.5e+3 <:%:%:",
		"..." + "." + "..",
	}
	for _, src := range srcs {
		toks := allTokens(src)
		var got string
		for _, tk := range toks {
			got += tk.Content
		}
		assert.Equal(t, src, got, src)
	}
}

// P2: Bump and EatIf agree on what counts as the next logical character
// (EatIf only commits when its predicate matches what Bump would return).
func TestBumpAndEatIfAgree(t *testing.T) {
	r := NewReader("ab\\\ncd")
	c, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, 'a', c)
	assert.False(t, r.EatIf(func(x rune) bool { return x == 'z' }))
	assert.True(t, r.EatIf(func(x rune) bool { return x == 'a' }))
	c2, ok := r.Bump()
	require.True(t, ok)
	assert.Equal(t, 'b', c2)
	// Crosses the escaped newline transparently.
	c3, ok := r.Bump()
	require.True(t, ok)
	assert.Equal(t, 'c', c3)
}

func TestWhitespaceAndNewlineTokens(t *testing.T) {
	toks := allTokens("  \t\nx")
	require.GreaterOrEqual(t, len(toks), 3)
	assert.Equal(t, RawWhitespace, toks[0].Kind)
	assert.Equal(t, "  \t", toks[0].Content)
	assert.Equal(t, RawNewline, toks[1].Kind)
}

func TestEOFTokenIsZeroLength(t *testing.T) {
	toks := allTokens("")
	require.Len(t, toks, 1)
	assert.Equal(t, RawEOF, toks[0].Kind)
	assert.Equal(t, "", toks[0].Content)
}

func TestMultiCharPunctuatorsMaximalMunch(t *testing.T) {
	toks := allTokens("<<= >>= -> ++ -- && || == != <= >=")
	var got []Punct
	for _, tk := range toks {
		if tk.Kind == RawPunctuator {
			got = append(got, tk.Punct)
		}
	}
	assert.Equal(t, []Punct{
		PunctShlEq, PunctShrEq, PunctArrow, PunctIncr, PunctDecr,
		PunctAmpAmp, PunctPipePipe, PunctEqEq, PunctBangEq, PunctLtEq, PunctGtEq,
	}, got)
}
