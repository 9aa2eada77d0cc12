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

// Package lexer implements translation phases 2 and 3 of the C standard: a
// character reader that transparently elides escaped newlines, and a raw
// tokenizer built on top of it that classifies preprocessing tokens without
// losing a single byte of the original source.
package lexer

import (
	"strings"
	"unicode/utf8"
)

// Reader is a forward-only character iterator over a single file's (or
// macro-argument lexer's) source text, restartable via cheap struct-value
// cloning rather than an explicit save/restore stack. It transparently
// elides `\<newline>` sequences: callers see the logical character stream,
// while Content still reports the raw bytes (elisions included) so that
// diagnostics and macro stringification can recover the exact source text.
type Reader struct {
	src     string
	start   int  // offset marking the beginning of the token under construction
	off     int  // current read offset
	tainted bool // true if any \<newline> was elided since the last BeginToken
}

// NewReader returns a Reader positioned at the start of src.
func NewReader(src string) *Reader {
	return &Reader{src: src}
}

// Off returns the current byte offset.
func (r *Reader) Off() int { return r.off }

// Len returns the total length of the underlying source.
func (r *Reader) Len() int { return len(r.src) }

// AtEOF reports whether the reader has consumed the entire source.
func (r *Reader) AtEOF() bool { return r.off >= len(r.src) }

// Content is the raw text accumulated since the last BeginToken, including
// any escaped-newline bytes that were transparently elided while reading
// it.
type Content struct {
	Off     int
	Str     string
	Tainted bool
}

// CurrentContent returns the exact source slice between the last
// BeginToken mark and the current offset.
func (r *Reader) CurrentContent() Content {
	return Content{Off: r.start, Str: r.src[r.start:r.off], Tainted: r.tainted}
}

// BeginToken marks the current offset as the start of a new token and
// clears the tainted flag, so CurrentContent reports only what was
// consumed for this token.
func (r *Reader) BeginToken() {
	r.start = r.off
	r.tainted = false
}

// Bump consumes and returns the next logical character, silently skipping
// over any `\<newline>` sequence found at the cursor first (the tainted
// flag is set whenever this happens). It advances off by the elided bytes
// plus the UTF-8 length of the returned rune. Returns (0, false) at EOF.
func (r *Reader) Bump() (rune, bool) {
	for {
		if r.off >= len(r.src) {
			return 0, false
		}
		if r.src[r.off] == '\\' && r.off+1 < len(r.src) && r.src[r.off+1] == '\n' {
			r.off += 2
			r.tainted = true
			continue
		}
		c, size := utf8.DecodeRuneInString(r.src[r.off:])
		r.off += size
		return c, true
	}
}

// Peek returns the next logical character without consuming it.
func (r *Reader) Peek() (rune, bool) {
	clone := *r
	return clone.Bump()
}

// PeekAt returns the logical character n positions ahead (0 is the same as
// Peek), without consuming anything. Escaped newlines between the cursor
// and the requested character are transparently skipped, matching Bump.
func (r *Reader) PeekAt(n int) (rune, bool) {
	clone := *r
	var c rune
	var ok bool
	for i := 0; i <= n; i++ {
		c, ok = clone.Bump()
		if !ok {
			return 0, false
		}
	}
	return c, true
}

// BumpIf consumes and returns the next character if pred(char) holds;
// otherwise the reader is left untouched (the attempt uses a cloned cursor
// so a failed match never allocates or commits).
func (r *Reader) BumpIf(pred func(rune) bool) (rune, bool) {
	clone := *r
	c, ok := clone.Bump()
	if !ok || !pred(c) {
		return 0, false
	}
	*r = clone
	return c, true
}

// Eat consumes the next character if it equals c.
func (r *Reader) Eat(c rune) bool {
	_, ok := r.BumpIf(func(x rune) bool { return x == c })
	return ok
}

// EatIf consumes the next character if pred holds for it.
func (r *Reader) EatIf(pred func(rune) bool) bool {
	_, ok := r.BumpIf(pred)
	return ok
}

// EatWhile repeatedly consumes characters satisfying pred, returning how
// many were consumed.
func (r *Reader) EatWhile(pred func(rune) bool) int {
	n := 0
	for r.EatIf(pred) {
		n++
	}
	return n
}

// EatStr consumes exactly s, transparent to elided newlines within it;
// returns false (leaving the reader untouched) if s does not match.
func (r *Reader) EatStr(s string) bool {
	clone := *r
	for _, want := range s {
		c, ok := clone.Bump()
		if !ok || c != want {
			return false
		}
	}
	*r = clone
	return true
}

// EatToAfter consumes up to and including the next occurrence of c,
// returning whether it was found before EOF.
func (r *Reader) EatToAfter(c rune) bool {
	for {
		got, ok := r.Bump()
		if !ok {
			return false
		}
		if got == c {
			return true
		}
	}
}

func isLineWS(c rune) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

// EatLineWS consumes a run of space/tab/vertical-tab/form-feed characters
// (explicitly excluding newline), returning how many were consumed.
func (r *Reader) EatLineWS() int {
	return r.EatWhile(isLineWS)
}

// Cleaned strips any `\<newline>` sequences from s, recovering the logical
// text from a tainted Content.Str. The fast path (the overwhelmingly common
// untainted case) returns s unchanged without allocating.
func Cleaned(s string) string {
	if !strings.Contains(s, "\\\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '\n' {
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
