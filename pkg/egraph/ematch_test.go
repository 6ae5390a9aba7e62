// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package egraph

import (
	"testing"

	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Match_01(t *testing.T) {
	g := NewEGraph()
	g.AddTerm(term.MustParse("(+ a 2)"))
	//
	matches := g.Match(term.MustParse("(+ x y)"))
	require.Len(t, matches, 1)
	assert.Equal(t, ClassId(2), matches[0].Class)
	assert.Equal(t, Bindings{"x": 0, "y": 1}, matches[0].Bindings)
	assert.Equal(t, "{x: #0, y: #1}", matches[0].Bindings.String())
}

func Test_Match_02(t *testing.T) {
	g := NewEGraph()
	aa := g.AddTerm(term.MustParse("(+ a a)"))
	g.AddTerm(term.MustParse("(+ a b)"))
	// Repeated variables must bind the same class
	pattern := term.MustParse("(+ x x)")
	matches := g.Match(pattern)
	require.Len(t, matches, 1)
	assert.Equal(t, aa, matches[0].Class)
	// Once a and b are equal, both sums are too
	_, err := g.Merge(0, 2)
	require.NoError(t, err)
	g.Rebuild()
	//
	matches = g.Match(pattern)
	require.Len(t, matches, 1)
	assert.Equal(t, aa, matches[0].Class)
}

func Test_Match_03(t *testing.T) {
	g := NewEGraph()
	a2 := g.AddTerm(term.MustParse("(* a 2)"))
	g.AddTerm(term.MustParse("(* a 3)"))
	// Numerals are literals
	matches := g.Match(term.MustParse("(* x 2)"))
	require.Len(t, matches, 1)
	assert.Equal(t, a2, matches[0].Class)
	//
	assert.Empty(t, g.Match(term.MustParse("(* x 4)")))
	assert.Empty(t, g.Match(term.MustParse("(<< x y)")))
}

func Test_Match_04(t *testing.T) {
	g := NewEGraph()
	sum := g.AddTerm(term.MustParse("(+ (* b c) a)"))
	x := g.AddTerm(term.MustParse("(* b c)"))
	y := g.AddTerm(term.MustParse("(* a d)"))
	//
	_, err := g.Merge(x, y)
	require.NoError(t, err)
	g.Rebuild()
	// First alternative of (* x y) binds x to b, which then fails.
	matches := g.Match(term.MustParse("(+ (* x y) x)"))
	require.Len(t, matches, 1)
	assert.Equal(t, sum, matches[0].Class)
	assert.Equal(t, Bindings{"x": 3, "y": 5}, matches[0].Bindings)
}

func Test_Match_05(t *testing.T) {
	g := NewEGraph()
	g.AddTerm(term.MustParse("(+ a 2)"))
	// A lone variable matches everything
	matches := g.Match(term.MustParse("(x)"))
	require.Len(t, matches, 3)
	//
	for _, m := range matches {
		assert.Equal(t, Bindings{"x": m.Class}, m.Bindings)
	}
	// A lone numeral matches only itself
	matches = g.Match(term.MustParse("(2)"))
	require.Len(t, matches, 1)
	assert.Equal(t, ClassId(1), matches[0].Class)
	assert.Empty(t, matches[0].Bindings)
}

func Test_Substitute_01(t *testing.T) {
	g := NewEGraph()
	g.AddTerm(term.MustParse("(+ a 2)"))
	//
	env := Bindings{"x": 0}
	// Existing structure is reused
	assert.Equal(t, ClassId(2), g.Substitute(term.MustParse("(+ x 2)"), env))
	// New structure is added
	assert.Equal(t, ClassId(4), g.Substitute(term.MustParse("(<< x 1)"), env))
	assert.Equal(t, uint(5), g.NumClasses())
	// Unbound leaves are added as leaves
	id := g.Substitute(term.MustParse("(- x y)"), env)
	assert.Equal(t, ClassId(6), id)
	assert.Equal(t, []Node{NewNode("y")}, g.Classes().Nodes(5))
}
