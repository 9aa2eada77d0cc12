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

// Package source implements the preprocessor's location-tracking engine: an
// opaque, append-only coordinate space ("positions") shared by every file and
// every macro expansion in a translation unit, plus the machinery to walk
// from any position back to where it was spelled, where it was substituted,
// and which file included it.
package source

import "fmt"

// Position is an opaque identifier into the coordinate space owned by a
// single Map. Two positions are only meaningfully comparable (ordered,
// subtracted) when they were produced by the same Map; Position carries no
// reference to its owning Map, so callers must not mix positions across
// maps.
type Position uint32

// LocalOffset is a byte offset (or length) relative to the start of a single
// Source.
type LocalOffset uint32

// NoPosition is the zero value, used as a sentinel for "no position" (e.g. a
// FileSource with no includer).
const NoPosition Position = 0

// Advance returns the position reached by moving forward off bytes from p.
// Unlike raw integer addition, this does not validate that the result still
// lies within the same source as p -- callers that need that guarantee
// should go through Range.Subrange or Map.LookupSource instead.
func (p Position) Advance(off LocalOffset) Position {
	return p + Position(off)
}

// Sub returns the local offset from q to p (p - q), valid only when the
// caller has already established both positions lie in the same source.
func (p Position) Sub(q Position) LocalOffset {
	return LocalOffset(p - q)
}

func (p Position) String() string {
	return fmt.Sprintf("pos(%d)", uint32(p))
}

// Range is a (start, length) pair whose bytes lie entirely within a single
// Source. A zero-length range is valid: it models end-of-file locations and
// pure-insertion diagnostic suggestions.
type Range struct {
	Start  Position
	Length LocalOffset
}

// NewRange constructs a Range from its endpoints, which must satisfy end >=
// start; it panics otherwise, mirroring the teacher's "mustConsume" style of
// crashing on internal invariant violations rather than returning an error.
func NewRange(start, end Position) Range {
	if end < start {
		panic(fmt.Sprintf("source: range end %v precedes start %v", end, start))
	}
	return Range{Start: start, Length: LocalOffset(end - start)}
}

// End returns the position one past the last byte covered by r.
func (r Range) End() Position { return r.Start.Advance(r.Length) }

// Len returns the number of bytes covered by r.
func (r Range) Len() LocalOffset { return r.Length }

// IsEmpty reports whether r covers zero bytes.
func (r Range) IsEmpty() bool { return r.Length == 0 }

// Contains reports whether p lies within [r.Start, r.End()). A zero-length
// range never contains any position, including its own Start -- "contains"
// models byte coverage, not insertion points; use Start directly for
// insertion-point comparisons.
func (r Range) Contains(p Position) bool {
	return p >= r.Start && p < r.End()
}

// ContainsRange reports whether other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return other.Start >= r.Start && other.End() <= r.End()
}

// Subrange returns the sub-range of r starting local bytes in and covering
// length bytes, panicking if that would run past the end of r.
func (r Range) Subrange(local LocalOffset, length LocalOffset) Range {
	if local+length > r.Length {
		panic(fmt.Sprintf("source: subrange [%d,%d) out of bounds for range of length %d", local, local+length, r.Length))
	}
	return Range{Start: r.Start.Advance(local), Length: length}
}

// LocalOff returns the offset of p relative to r.Start, if p falls within r.
func (r Range) LocalOff(p Position) (LocalOffset, bool) {
	if !r.Contains(p) && !(r.IsEmpty() && p == r.Start) {
		return 0, false
	}
	return p.Sub(r.Start), true
}

// LocalRange returns other expressed as an offset/length relative to
// r.Start, if other lies entirely within r.
func (r Range) LocalRange(other Range) (Range, bool) {
	if !r.ContainsRange(other) {
		return Range{}, false
	}
	return Range{Start: Position(other.Start.Sub(r.Start)), Length: other.Length}, true
}

// FragmentedRange is a pair of positions that need not lie in the same
// source -- e.g. a macro invocation's "call range" spans from a name spelled
// in one file to a closing parenthesis that might itself come from another
// expansion. Turning it into a contiguous Range requires Map.Unfragment.
type FragmentedRange struct {
	Start Position
	End   Position
}
