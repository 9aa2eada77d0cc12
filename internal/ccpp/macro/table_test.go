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

package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EngFlow/ccpp/internal/ccpp/intern"
	"github.com/EngFlow/ccpp/internal/ccpp/token"
)

func TestTableDefineLookupUndef(t *testing.T) {
	in := intern.New()
	tbl := NewTable()
	name := in.Intern("FOO")

	_, ok := tbl.Lookup(name)
	assert.False(t, ok)

	tbl.Define(Definition{Name: name, Body: []token.Token{{Kind: token.KindNumber, Symbol: in.Intern("1")}}})
	def, ok := tbl.Lookup(name)
	assert.True(t, ok)
	assert.Len(t, def.Body, 1)

	tbl.Undef(name)
	_, ok = tbl.Lookup(name)
	assert.False(t, ok)

	// Undef of an already-undefined name is not an error.
	tbl.Undef(name)
}

func TestIdenticalComparesKindLeadingTriviaAndSpelling(t *testing.T) {
	in := intern.New()
	one := in.Intern("1")
	a := Definition{Body: []token.Token{{Kind: token.KindNumber, Symbol: one}}}
	b := Definition{Body: []token.Token{{Kind: token.KindNumber, Symbol: one}}}
	assert.True(t, Identical(a, b))

	c := Definition{Body: []token.Token{{Kind: token.KindNumber, Symbol: one, LeadingTrivia: true}}}
	assert.False(t, Identical(a, c))

	d := Definition{Body: []token.Token{{Kind: token.KindNumber, Symbol: in.Intern("2")}}}
	assert.False(t, Identical(a, d))
}

func TestIdenticalComparesFunctionLikeAndParams(t *testing.T) {
	in := intern.New()
	x := in.Intern("x")
	a := Definition{FunctionLike: true, Params: []intern.Symbol{x}}
	b := Definition{FunctionLike: true, Params: []intern.Symbol{x}}
	assert.True(t, Identical(a, b))

	c := Definition{FunctionLike: false}
	assert.False(t, Identical(a, c))

	d := Definition{FunctionLike: true, Variadic: true, Params: []intern.Symbol{x}}
	assert.False(t, Identical(a, d))
}
