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
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Extract_01(t *testing.T) {
	g := NewEGraph()
	id := g.AddTerm(term.MustParse("(/ (* a 2) 2)"))
	//
	ext, err := g.Extract(id)
	require.NoError(t, err)
	assert.Equal(t, "(/ (* a 2) 2)", ext.Term.String())
	assert.Equal(t, float64(5), ext.Cost)
	assert.Equal(t, Costs{0: 0, 1: 0, 2: 2, 3: 5}, ext.Costs)
	assert.Equal(t, ext.Costs, g.ExtractAll())
}

func Test_Extract_02(t *testing.T) {
	g := NewEGraph()
	x := g.AddTerm(term.MustParse("(* a 2)"))
	y := g.AddTerm(term.MustParse("(<< a 1)"))
	//
	_, err := g.Merge(x, y)
	require.NoError(t, err)
	g.Rebuild()
	//
	for _, id := range []ClassId{x, y} {
		ext, err := g.Extract(id)
		require.NoError(t, err)
		assert.Equal(t, "(<< a 1)", ext.Term.String())
		assert.Equal(t, float64(1), ext.Cost)
	}
}

func Test_Extract_03(t *testing.T) {
	// Ties go to the earliest constructed node
	checkTieBreak(t, "(+ a b)", "(- a b)")
	checkTieBreak(t, "(- a b)", "(+ a b)")
	checkTieBreak(t, "(>> a b)", "(<< a b)")
}

func Test_Extract_04(t *testing.T) {
	snap := &Snapshot{[]ClassId{0}, map[ClassId][]Node{0: {NewNode("f", 0)}}}
	//
	_, err := snap.Extract(0)
	assert.True(t, errors.Is(err, ErrUnextractable))
	assert.Equal(t, Costs{0: INFINITY}, snap.Costs())
}

func Test_Extract_05(t *testing.T) {
	// Zero cost nodes with unknown keys can produce cyclic witnesses
	snap := &Snapshot{[]ClassId{0, 1}, map[ClassId][]Node{
		0: {NewNode("f", 1), NewNode("a")},
		1: {NewNode("f", 0)},
	}}
	//
	_, err := snap.Extract(0)
	assert.True(t, errors.Is(err, ErrUnextractable))
}

func Test_Extract_06(t *testing.T) {
	g := NewEGraph()
	g.AddTerm(term.MustParse("(+ a b)"))
	//
	_, err := g.Classes().Extract(7)
	assert.True(t, errors.Is(err, ErrUnknownClass))
}

func Test_Extract_07(t *testing.T) {
	g := NewEGraph()
	x := g.AddTerm(term.MustParse("(* (+ a b) (+ a b))"))
	y := g.AddTerm(term.MustParse("(+ a b)"))
	// Shared subterms are rebuilt for each occurrence
	ext, err := g.Extract(x)
	require.NoError(t, err)
	assert.Equal(t, "(* (+ a b) (+ a b))", ext.Term.String())
	assert.Equal(t, float64(4), ext.Cost)
	// Merge class with one of its own descendants
	_, err = g.Merge(x, y)
	require.NoError(t, err)
	g.Rebuild()
	//
	ext, err = g.Extract(x)
	require.NoError(t, err)
	assert.Equal(t, "(+ a b)", ext.Term.String())
}

func checkTieBreak(t *testing.T, first string, second string) {
	g := NewEGraph()
	x := g.AddTerm(term.MustParse(first))
	y := g.AddTerm(term.MustParse(second))
	//
	_, err := g.Merge(y, x)
	require.NoError(t, err)
	g.Rebuild()
	//
	ext, err := g.Extract(y)
	require.NoError(t, err)
	assert.Equal(t, first, ext.Term.String())
}
