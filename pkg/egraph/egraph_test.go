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
	"github.com/consensys/go-eqsat/pkg/util"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_EGraph_01(t *testing.T) {
	g := NewEGraph()
	a1 := g.AddTerm(term.MustParse("(a)"))
	a2 := g.AddTerm(term.MustParse("(a)"))
	a3, err := g.Add(NewNode("a"))
	// Leaves are interned by name
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Equal(t, a1, a3)
	assert.Equal(t, uint(1), g.NumClasses())
}

func Test_EGraph_02(t *testing.T) {
	g := NewEGraph()
	id1 := g.AddTerm(term.MustParse("(+ a 2)"))
	id2 := g.AddTerm(term.MustParse("(+ a 2)"))
	id3 := g.AddTerm(term.MustParse("(+ 2 a)"))
	//
	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
	assert.Equal(t, uint(4), g.NumClasses())
	assert.Equal(t, uint(4), g.HashConsSize())
	assert.NoError(t, g.Check())
}

func Test_EGraph_03(t *testing.T) {
	g := NewEGraph()
	a := g.AddTerm(term.MustParse("(a)"))
	b := g.AddTerm(term.MustParse("(b)"))
	//
	root, err := g.Merge(a, b)
	require.NoError(t, err)
	assert.Equal(t, a, root)
	assert.Equal(t, uint(2), g.Pending())
	assert.Error(t, g.Check())
	//
	g.Rebuild()
	assert.Equal(t, uint(0), g.Pending())
	assert.NoError(t, g.Check())
	//
	eq, err := g.Equivalent(a, b)
	require.NoError(t, err)
	assert.True(t, eq)
	assert.Equal(t, uint(1), g.NumClasses())
}

func Test_EGraph_04(t *testing.T) {
	g := NewEGraph()
	ac := g.AddTerm(term.MustParse("(+ a c)"))
	bc := g.AddTerm(term.MustParse("(+ b c)"))
	a := g.AddTerm(term.MustParse("(a)"))
	b := g.AddTerm(term.MustParse("(b)"))
	//
	_, err := g.Merge(a, b)
	require.NoError(t, err)
	// Congruence only discovered by rebuild
	eq, _ := g.Equivalent(ac, bc)
	assert.False(t, eq)
	//
	g.Rebuild()
	//
	eq, _ = g.Equivalent(ac, bc)
	assert.True(t, eq)
	assert.NoError(t, g.Check())
}

func Test_EGraph_05(t *testing.T) {
	g := NewEGraph()
	x := g.AddTerm(term.MustParse("(* (+ a c) (- a 2))"))
	y := g.AddTerm(term.MustParse("(* (+ b c) (- b 2))"))
	a := g.AddTerm(term.MustParse("(a)"))
	b := g.AddTerm(term.MustParse("(b)"))
	//
	_, err := g.Merge(b, a)
	require.NoError(t, err)
	g.Rebuild()
	// Congruence propagates through multiple levels in one rebuild
	eq, _ := g.Equivalent(x, y)
	assert.True(t, eq)
	assert.NoError(t, g.Check())
	assert.Equal(t, uint(6), g.NumClasses())
}

func Test_EGraph_06(t *testing.T) {
	g := NewEGraph()
	g.AddTerm(term.MustParse("(a)"))
	//
	_, err := g.Find(99)
	assert.True(t, errors.Is(err, ErrUnknownClass))
	_, err = g.Merge(0, 99)
	assert.True(t, errors.Is(err, ErrUnknownClass))
	_, err = g.Add(NewNode("+", 0, 99))
	assert.True(t, errors.Is(err, ErrUnknownClass))
	_, err = g.Equivalent(99, 0)
	assert.True(t, errors.Is(err, ErrUnknownClass))
	_, err = g.Extract(99)
	assert.True(t, errors.Is(err, ErrUnknownClass))
}

func Test_EGraph_07(t *testing.T) {
	g := NewEGraph()
	a := g.AddTerm(term.MustParse("(a)"))
	// Merging a class with itself is a no-op
	root, err := g.Merge(a, a)
	require.NoError(t, err)
	assert.Equal(t, a, root)
	assert.Equal(t, uint(0), g.Pending())
}

func Test_EGraph_08(t *testing.T) {
	g := NewEGraph()
	ac := g.AddTerm(term.MustParse("(+ a c)"))
	a := g.AddTerm(term.MustParse("(a)"))
	b := g.AddTerm(term.MustParse("(b)"))
	//
	_, err := g.Merge(a, b)
	require.NoError(t, err)
	g.Rebuild()
	// Adding a congruent shape finds the existing class
	bc := g.AddTerm(term.MustParse("(+ b c)"))
	eq, _ := g.Equivalent(ac, bc)
	assert.True(t, eq)
	assert.Equal(t, uint(3), g.NumClasses())
}

func Test_EGraph_09(t *testing.T) {
	g := NewEGraph()
	x := g.AddTerm(term.MustParse("(+ a b)"))
	a := g.AddTerm(term.MustParse("(a)"))
	// Merge a class with one of its own children
	_, err := g.Merge(x, a)
	require.NoError(t, err)
	g.Rebuild()
	//
	assert.NoError(t, g.Check())
	assert.Equal(t, uint(2), g.NumClasses())
	// Snapshot holds canonical self-reference
	snap := g.Classes()
	root, _ := g.Find(a)
	assert.Len(t, snap.Nodes(root), 2)
}

func Test_EGraph_10(t *testing.T) {
	g := NewEGraph()
	g.AddTerm(term.MustParse("(+ a b)"))
	g.AddTerm(term.MustParse("(+ c d)"))
	// Snapshot taken with merges pending still groups nodes by canonical class
	_, err := g.Merge(0, 3)
	require.NoError(t, err)
	//
	snap := g.Classes()
	assert.Equal(t, []ClassId{0, 1, 2, 4, 5}, snap.Ids())
	assert.Len(t, snap.Nodes(0), 2)
	assert.False(t, snap.Contains(3))
	assert.Equal(t, []ClassId{0}, g.PendingClasses())
}

// Randomly merge classes of random terms, checking invariants after each
// rebuild and that congruent nodes always end up in the same class.
func TestSlow_EGraph_11(t *testing.T) {
	for i := 0; i < 100; i++ {
		g := NewEGraph()
		//
		for j := 0; j < 5; j++ {
			g.AddTerm(randomTerm(3))
		}
		//
		for j := 0; j < 5; j++ {
			inputs := util.GenerateRandomInputs(2, g.Size())
			_, err := g.Merge(ClassId(inputs[0]), ClassId(inputs[1]))
			require.NoError(t, err)
			g.Rebuild()
			require.NoError(t, g.Check())
			checkCongruenceClosed(t, g)
		}
	}
}

// Every pair of nodes with identical canonical shapes must belong to the same
// class.
func checkCongruenceClosed(t *testing.T, g *EGraph) {
	snap := g.Classes()
	owners := make(map[string]ClassId)
	//
	for _, id := range snap.Ids() {
		for _, node := range snap.Nodes(id) {
			if owner, ok := owners[node.String()]; ok {
				require.Equal(t, owner, id, "node %s", node.String())
			}
			//
			owners[node.String()] = id
		}
	}
}

var (
	randomOperators = []string{"+", "-", "*", "/", "<<", ">>"}
	randomLeaves    = []string{"a", "b", "c", "0", "1", "2"}
)

// Generate a random term of at most a given depth.
func randomTerm(depth uint) *term.Term {
	if depth == 0 || util.GenerateRandomInputs(1, 3)[0] == 0 {
		return term.NewLeaf(util.GenerateRandomElement(randomLeaves))
	}
	//
	op := util.GenerateRandomElement(randomOperators)
	//
	return term.NewBinary(op, randomTerm(depth-1), randomTerm(depth-1))
}
