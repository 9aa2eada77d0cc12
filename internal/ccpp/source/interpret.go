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

// Interpreted is a human-facing view of a Range known to lie in a file: the
// filename, its local offset/length, and start/end line-column, suitable
// for rendering "file.c:12:5: ..." style diagnostics.
type Interpreted struct {
	Filename   string
	LocalStart int
	LocalEnd   int
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int

	contents *FileContents
}

// Interpret requires r to already lie in a file source (not an expansion);
// callers typically obtain such a range via the tail of a spelling or
// replacement chain. It returns false if r's source is not a file.
func (m *Map) Interpret(r Range) (Interpreted, bool) {
	id, ok := m.LookupSource(r.Start)
	if !ok || m.entry(id).kind != kindFile {
		return Interpreted{}, false
	}
	fs := m.File(id)
	start := int(r.Start.Sub(m.entry(id).start))
	end := start + int(r.Length)
	sl, sc := fs.Contents.Lines.LineCol(start)
	el, ec := fs.Contents.Lines.LineCol(end)
	return Interpreted{
		Filename:   fs.Name,
		LocalStart: start,
		LocalEnd:   end,
		StartLine:  sl,
		StartCol:   sc,
		EndLine:    el,
		EndCol:     ec,
		contents:   fs.Contents,
	}, true
}

// LineSnippet is one physical line covered by an Interpreted range, with the
// portion of that line covered by the range identified as [HighlightStart,
// HighlightEnd) column offsets (0-based, byte-counted) into Text.
type LineSnippet struct {
	Line           int
	Text           string
	HighlightStart int
	HighlightEnd   int
}

// Snippets returns one LineSnippet per physical line spanned by the
// interpreted range, each carrying the sub-range of that line's text the
// original range covers.
func (in Interpreted) Snippets() []LineSnippet {
	if in.contents == nil {
		return nil
	}
	lt := in.contents.Lines
	text := in.contents.Text
	var out []LineSnippet
	for line := in.StartLine; line <= in.EndLine; line++ {
		lineStart := lt.LineStart(line)
		lineEnd := lt.LineEnd(line)
		hiStart := 0
		hiEnd := lineEnd - lineStart
		if line == in.StartLine {
			hiStart = in.LocalStart - lineStart
		}
		if line == in.EndLine {
			hiEnd = in.LocalEnd - lineStart
		}
		out = append(out, LineSnippet{
			Line:           line,
			Text:           text[lineStart:lineEnd],
			HighlightStart: hiStart,
			HighlightEnd:   hiEnd,
		})
	}
	return out
}
