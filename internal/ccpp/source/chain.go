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

package source

import "fmt"

// SpellingPos follows the spelling chain of pos one step: if pos lies in an
// expansion source, returns the position in that expansion's spelling range
// corresponding to pos, and true. If pos lies in a file source, returns
// false (the chain terminates there).
func (m *Map) SpellingPos(pos Position) (Position, bool) {
	id, ok := m.LookupSource(pos)
	if !ok {
		panic(fmt.Sprintf("source: position %v does not resolve to any source", pos))
	}
	if m.entry(id).kind == kindFile {
		return 0, false
	}
	exp := m.Expansion(id)
	local := pos.Sub(m.entry(id).start)
	return exp.SpellingRange.Start.Advance(local), true
}

// SpellingChain walks pos up through zero or more expansion sources to the
// file source that ultimately spelled it (P4: terminates in a file; its
// length is one plus the expansion depth of pos's source).
func (m *Map) SpellingChain(pos Position) []Position {
	chain := []Position{pos}
	for {
		next, ok := m.SpellingPos(chain[len(chain)-1])
		if !ok {
			return chain
		}
		chain = append(chain, next)
	}
}

// replacementRange follows the replacement chain of a range one step. For a
// position in an expansion source, the whole expansion's replacement range
// is returned (coarsening from "a byte of the spelling" to "the replacement
// site as a whole" -- the teacher's "Caller" glossary entry: "for other
// expansions, the replacement"). argAware selects the caller-chain variant,
// where a macro-argument expansion source yields the *spelled* sub-range
// instead (arguments are spelled by the caller even though they are
// replaced into the macro body).
func (m *Map) replacementRange(r Range, argAware bool) (Range, bool) {
	id, ok := m.LookupSource(r.Start)
	if !ok {
		panic(fmt.Sprintf("source: range %v does not resolve to any source", r))
	}
	if m.entry(id).kind == kindFile {
		return Range{}, false
	}
	exp := m.Expansion(id)
	if argAware && exp.Kind == ExpansionMacroArgument {
		// This source's own coordinate space was reserved 1:1 with
		// SpellingRange (CreateExpansion: length == spellingRange.Length), so
		// r's offset from this entry's start is also its offset into
		// SpellingRange -- project r through that offset rather than
		// returning the whole argument span, or a caller-chain walk of a
		// sub-range of a multi-token argument would coarsen to the entire
		// argument instead of the token it actually points at.
		local := r.Start.Sub(m.entry(id).start)
		return exp.SpellingRange.Subrange(local, r.Length), true
	}
	return exp.ReplacementRange, true
}

// ReplacementChain returns the sequence of ranges obtained by repeatedly
// coarsening r to its enclosing expansion's replacement range, terminating
// at the range's ultimate home in a file source.
func (m *Map) ReplacementChain(r Range) []Range {
	chain := []Range{r}
	for {
		next, ok := m.replacementRange(chain[len(chain)-1], false)
		if !ok {
			return chain
		}
		chain = append(chain, next)
	}
}

// CallerChain is identical to ReplacementChain except that, at a
// macro-argument expansion source, it yields the spelled range (the
// argument as written at the call site) rather than the replaced-into
// range, matching the "Caller" glossary definition used to walk the stack
// "outwards" the way a user expects (argument expansions point back to
// where the caller wrote the argument, not to the parameter use inside the
// macro body).
func (m *Map) CallerChain(r Range) []Range {
	chain := []Range{r}
	for {
		next, ok := m.replacementRange(chain[len(chain)-1], true)
		if !ok {
			return chain
		}
		chain = append(chain, next)
	}
}

// IncluderChain walks a position's enclosing file's include_pos links,
// returning one position per enclosing #include, outermost-last (i.e.
// chain[0] is pos itself projected into its own file's coordinate, and
// chain[len-1] is the outermost file's entry -- callers typically only need
// HasIncludePos/IncludePos directly; this helper is for diagnostics that
// print "in file included from ...: included from ...:").
func (m *Map) IncluderChain(pos Position) []Position {
	chain := []Position{pos}
	for {
		id, ok := m.LookupSource(chain[len(chain)-1])
		if !ok {
			panic("source: position does not resolve to any source")
		}
		fs := m.File(id)
		if !fs.HasIncludePos {
			return chain
		}
		chain = append(chain, fs.IncludePos)
	}
}

// Unfragment lifts a FragmentedRange to a contiguous Range by walking both
// endpoints' replacement chains (matching edges: Start uses the start of
// each step's replacement range, End uses the end) until they share a
// source -- the lowest common ancestor in the expansion forest. It returns
// false if the endpoints never share a source (e.g. they live in different
// files).
func (m *Map) Unfragment(fr FragmentedRange) (Range, bool) {
	startIDs, startPositions := m.ancestry(fr.Start, false)
	// A zero-length range is resolved by its start alone: both ancestries
	// then begin in the same source and meet at once.
	endIDs, endPositions := m.ancestry(fr.End, fr.End > fr.Start)

	// Find the innermost (first-encountered) source id common to both
	// ancestries.
	endIndex := make(map[ID]int, len(endIDs))
	for i, id := range endIDs {
		if _, exists := endIndex[id]; !exists {
			endIndex[id] = i
		}
	}
	for si, sid := range startIDs {
		if ei, ok := endIndex[sid]; ok {
			start := startPositions[si]
			end := endPositions[ei]
			if end < start {
				panic(fmt.Sprintf("source: unfragmented range end %v precedes start %v", end, start))
			}
			return NewRange(start, end), true
		}
	}
	return Range{}, false
}

// ancestry returns, for a position, the list of source ids it (or its
// coarsened replacement range endpoint) passes through, outermost walk
// direction (innermost first), alongside the corresponding endpoint
// position at each step. useEnd selects whether the *end* or *start* edge
// of each step's replacement range is tracked, matching Unfragment's
// "matching edge" rule.
func (m *Map) ancestry(pos Position, useEnd bool) ([]ID, []Position) {
	var ids []ID
	var positions []Position

	cur := pos
	for {
		id, ok := m.LookupSource(cur)
		if useEnd && cur > 0 {
			// cur is an exclusive end. An expansion reserves no sentinel
			// byte, so an end that reaches its last byte equals its span's
			// end; attribute it to that expansion, not to whatever follows.
			if prev, pok := m.LookupSource(cur - 1); pok && !m.IsFile(prev) && m.Span(prev).End() == cur {
				id, ok = prev, true
			}
		}
		if !ok {
			panic("source: position does not resolve to any source")
		}
		ids = append(ids, id)
		positions = append(positions, cur)

		if m.entry(id).kind == kindFile {
			return ids, positions
		}
		exp := m.Expansion(id)
		if useEnd {
			cur = exp.ReplacementRange.End()
		} else {
			cur = exp.ReplacementRange.Start
		}
	}
}

// GetSpelling returns the raw, as-written text covered by r: it follows r's
// spelling chain to the file source that ultimately spelled it, then slices
// that file's contents. The returned slice may still contain escaped
// newlines (the "tainted" bytes); callers that need the logical text should
// post-process with a cleaner that strips `\\\n` (fast path: skip if the
// slice contains none).
func (m *Map) GetSpelling(r Range) (string, bool) {
	id, ok := m.LookupSource(r.Start)
	if !ok {
		return "", false
	}
	fileID, local, ok := m.spellingFile(id, r.Start)
	if !ok {
		return "", false
	}
	fs := m.File(fileID)
	end := int(local) + int(r.Length)
	if end > len(fs.Contents.Text) {
		return "", false
	}
	return fs.Contents.Text[local:end], true
}

// spellingFile walks from (id, pos) down the spelling chain to the file
// source that spells pos, returning that file's id and pos's local offset
// within it.
func (m *Map) spellingFile(id ID, pos Position) (ID, LocalOffset, bool) {
	for {
		e := m.entry(id)
		if e.kind == kindFile {
			return id, LocalOffset(pos.Sub(e.start)), true
		}
		next, ok := m.SpellingPos(pos)
		if !ok {
			return 0, 0, false
		}
		nid, ok := m.LookupSource(next)
		if !ok {
			return 0, 0, false
		}
		id, pos = nid, next
	}
}
