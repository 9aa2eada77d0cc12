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

// Package macro holds macro definitions and drives their expansion (§4.8).
package macro

import (
	"github.com/EngFlow/ccpp/internal/ccpp/intern"
	"github.com/EngFlow/ccpp/internal/ccpp/source"
	"github.com/EngFlow/ccpp/internal/ccpp/token"
)

// Definition is one #define: either an object-like macro (FunctionLike ==
// false, Params empty) or a function-like macro with a parameter list.
type Definition struct {
	Name         intern.Symbol
	NameRange    source.Range
	FunctionLike bool
	Variadic     bool
	Params       []intern.Symbol
	// Body is the replacement list, already relocated to nowhere in
	// particular -- tokens are relocated into an expansion source only when
	// the definition is actually substituted (§4.8 step 5). The first
	// token's LeadingTrivia is always false (the directive processor clears
	// it when it parses the definition).
	Body []token.Token
}

// Identical reports whether a and b would produce the same replacement
// under §6.10.3p2's "identical except for whitespace" redefinition rule, as
// the directive processor's token-identical comparison over: same kind,
// same FunctionLike/Variadic, same parameter symbols, and Body tokens that
// agree on kind, leading-trivia, and spelling (Punct or Symbol).
func Identical(a, b Definition) bool {
	if a.FunctionLike != b.FunctionLike || a.Variadic != b.Variadic {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	if len(a.Body) != len(b.Body) {
		return false
	}
	for i := range a.Body {
		x, y := a.Body[i], b.Body[i]
		if x.Kind != y.Kind || x.LeadingTrivia != y.LeadingTrivia {
			return false
		}
		switch x.Kind {
		case token.KindPunctuator:
			if x.Punct != y.Punct {
				return false
			}
		default:
			if x.Symbol != y.Symbol {
				return false
			}
		}
	}
	return true
}

// Table is the current #define/#undef state for one translation unit.
type Table struct {
	defs map[intern.Symbol]Definition
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{defs: make(map[intern.Symbol]Definition)}
}

// Lookup returns the current definition of name, if any.
func (t *Table) Lookup(name intern.Symbol) (Definition, bool) {
	d, ok := t.defs[name]
	return d, ok
}

// Define records def, replacing any previous definition of the same name.
// Callers that must diagnose a mismatched redefinition do so with Identical
// before calling Define, the same way the directive processor compares
// against the previous entry from Lookup.
func (t *Table) Define(def Definition) {
	t.defs[def.Name] = def
}

// Undef removes name's definition, if any (#undef on a name with no
// definition is not an error, per §6.10.3.5).
func (t *Table) Undef(name intern.Symbol) {
	delete(t.defs, name)
}
