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

import "fmt"

// RawKind classifies a RawToken. Unlike a semantic token, a raw token
// preserves whitespace and comments so the tokenizer remains lossless
// (P1: concatenating every raw token's content reproduces the input
// exactly).
type RawKind int

const (
	RawUnknown RawKind = iota
	RawEOF
	RawNewline
	RawWhitespace
	RawLineComment
	RawBlockComment
	RawPunctuator
	RawIdentifier
	RawNumber
	RawString
	RawChar
)

func (k RawKind) String() string {
	switch k {
	case RawUnknown:
		return "Unknown"
	case RawEOF:
		return "EOF"
	case RawNewline:
		return "Newline"
	case RawWhitespace:
		return "Whitespace"
	case RawLineComment:
		return "LineComment"
	case RawBlockComment:
		return "BlockComment"
	case RawPunctuator:
		return "Punctuator"
	case RawIdentifier:
		return "Identifier"
	case RawNumber:
		return "Number"
	case RawString:
		return "String"
	case RawChar:
		return "Char"
	default:
		return fmt.Sprintf("RawKind(%d)", int(k))
	}
}

// Punct enumerates the punctuators recognized by the raw tokenizer,
// identified by canonical (non-digraph) spelling: a digraph like `<:` and
// its primary spelling `[` both decode to PunctLBracket.
type Punct int

const (
	PunctLParen Punct = iota
	PunctRParen
	PunctLBracket
	PunctRBracket
	PunctLBrace
	PunctRBrace
	PunctDot
	PunctEllipsis
	PunctArrow
	PunctIncr
	PunctDecr
	PunctAmp
	PunctAmpAmp
	PunctAmpEq
	PunctStar
	PunctStarEq
	PunctPlus
	PunctPlusEq
	PunctMinus
	PunctMinusEq
	PunctTilde
	PunctBang
	PunctBangEq
	PunctSlash
	PunctSlashEq
	PunctPercent
	PunctPercentEq
	PunctShl
	PunctShlEq
	PunctShr
	PunctShrEq
	PunctLt
	PunctLtEq
	PunctGt
	PunctGtEq
	PunctEqEq
	PunctEq
	PunctCaret
	PunctCaretEq
	PunctPipe
	PunctPipePipe
	PunctPipeEq
	PunctQuestion
	PunctColon
	PunctSemi
	PunctComma
	PunctHash
	PunctHashHash
)

// canonicalSpelling is the display form of each punctuator, used by the
// token converter (§4.5) and by diagnostic rendering; it is always the
// primary (non-digraph) spelling even when the token was written as a
// digraph, matching spec.md §6's "Punctuator: its canonical spelling".
var canonicalSpelling = map[Punct]string{
	PunctLParen:    "(",
	PunctRParen:    ")",
	PunctLBracket:  "[",
	PunctRBracket:  "]",
	PunctLBrace:    "{",
	PunctRBrace:    "}",
	PunctDot:       ".",
	PunctEllipsis:  "...",
	PunctArrow:     "->",
	PunctIncr:      "++",
	PunctDecr:      "--",
	PunctAmp:       "&",
	PunctAmpAmp:    "&&",
	PunctAmpEq:     "&=",
	PunctStar:      "*",
	PunctStarEq:    "*=",
	PunctPlus:      "+",
	PunctPlusEq:    "+=",
	PunctMinus:     "-",
	PunctMinusEq:   "-=",
	PunctTilde:     "~",
	PunctBang:      "!",
	PunctBangEq:    "!=",
	PunctSlash:     "/",
	PunctSlashEq:   "/=",
	PunctPercent:   "%",
	PunctPercentEq: "%=",
	PunctShl:       "<<",
	PunctShlEq:     "<<=",
	PunctShr:       ">>",
	PunctShrEq:     ">>=",
	PunctLt:        "<",
	PunctLtEq:      "<=",
	PunctGt:        ">",
	PunctGtEq:      ">=",
	PunctEqEq:      "==",
	PunctEq:        "=",
	PunctCaret:     "^",
	PunctCaretEq:   "^=",
	PunctPipe:      "|",
	PunctPipePipe:  "||",
	PunctPipeEq:    "|=",
	PunctQuestion:  "?",
	PunctColon:     ":",
	PunctSemi:      ";",
	PunctComma:     ",",
	PunctHash:      "#",
	PunctHashHash:  "##",
}

// Spelling returns the canonical display form of p.
func (p Punct) Spelling() string { return canonicalSpelling[p] }

func (p Punct) String() string { return p.Spelling() }

// RawToken is the output of the raw tokenizer: a classified span of the
// original source, still carrying whitespace/comments and tainted-content
// information so the reader's no-copy fast path can flow through it.
type RawToken struct {
	Kind    RawKind
	Off     int // local byte offset where the token begins
	Content string
	Tainted bool

	// Terminated is meaningful only for RawString, RawChar and
	// RawBlockComment: false means the literal/comment ran into a newline
	// or EOF without its closing delimiter.
	Terminated bool

	// Punct is meaningful only when Kind == RawPunctuator.
	Punct Punct
}

// End returns the local offset one past the last byte of the token.
func (t RawToken) End() int { return t.Off + len(t.Content) }
