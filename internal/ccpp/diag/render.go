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

package diag

import (
	"fmt"
	"strings"

	"github.com/EngFlow/ccpp/internal/ccpp/source"
)

// RenderText renders d as clang/gcc-style "file:line:col: level: message"
// text, one line per subdiagnostic, with a one-line source snippet and a
// caret under the primary range when it resolves to a single file position.
// Suggestions that cross source boundaries or land inside an expansion are
// silently dropped, per §9's "Suggestion ranges that cross sources" note.
func RenderText(sm *source.Map, d Diagnostic) string {
	var b strings.Builder
	renderSub(&b, sm, d.Level.String(), d.Main)
	for _, n := range d.Notes {
		renderSub(&b, sm, Note.String(), n)
	}
	return b.String()
}

func renderSub(b *strings.Builder, sm *source.Map, label string, sd Subdiagnostic) {
	loc := ""
	var snippet *source.LineSnippet
	if sd.Primary != nil {
		if rng, ok := sm.Unfragment(*sd.Primary); ok {
			interp, ok := sm.Interpret(rng)
			if !ok {
				// rng is anchored entirely inside an expansion (e.g. a
				// diagnostic on a token that only exists post-substitution);
				// Interpret requires a file source, so walk the replacement
				// chain out to the file it was ultimately expanded into.
				if chain := sm.ReplacementChain(rng); len(chain) > 0 {
					interp, ok = sm.Interpret(chain[len(chain)-1])
				}
			}
			if ok {
				loc = fmt.Sprintf("%s:%d:%d: ", interp.Filename, interp.StartLine, interp.StartCol)
				if snips := interp.Snippets(); len(snips) > 0 {
					snippet = &snips[0]
				}
			}
		}
	}
	fmt.Fprintf(b, "%s%s: %s\n", loc, label, sd.Message)
	if snippet != nil {
		fmt.Fprintf(b, "%s\n", snippet.Text)
		fmt.Fprintf(b, "%s%s\n", strings.Repeat(" ", snippet.HighlightStart), strings.Repeat("^", max(1, snippet.HighlightEnd-snippet.HighlightStart)))
	}
	if sd.Suggestion != nil {
		if rng, ok := sm.Unfragment(sd.Suggestion.Replacement); ok {
			if interp, ok := sm.Interpret(rng); ok {
				fmt.Fprintf(b, "%s:%d:%d: suggestion: insert %q\n", interp.Filename, interp.StartLine, interp.StartCol, sd.Suggestion.Insert)
			}
		}
		// If Unfragment fails (suggestion crosses sources) or Interpret fails
		// (it lands in an expansion), the suggestion is conservatively
		// dropped rather than rendered against the wrong coordinates.
	}
}
