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

var (
	reassociate = "reassociate: (/ (* x y) z) => (* x (/ y z))"
	shift       = "shift: (* x 2) => (<< x 1)"
	simplify    = "simplify: (/ x x) => (1)"
	simp        = "simp: (* x 1) => (x)"
	zero        = "zero: (* 0 x) => (0)"
	addZero     = "add_zero: (+ x 0) => (x)"
)

func Test_Saturate_01(t *testing.T) {
	g, res := checkSaturate(t, "(/ (* a 2) 2)", "a", reassociate, shift, simplify, simp)
	//
	expected := []string{"(/ (* a 2) 2)", "(/ (<< a 1) 2)", "(* a 1)", "a"}
	assert.Equal(t, expected, res.Terms)
	assert.Len(t, res.Rounds, 4)
	assert.Equal(t, uint(4), g.NumClasses())
	assert.Equal(t, uint(8), g.HashConsSize())
}

func Test_Saturate_02(t *testing.T) {
	checkSaturate(t, "(* a 1)", "a", simp)
}

func Test_Saturate_03(t *testing.T) {
	_, res := checkSaturate(t, "(* a 2)", "(<< a 1)", shift)
	assert.Equal(t, float64(1), res.Cost)
}

func Test_Saturate_04(t *testing.T) {
	checkSaturate(t, "(* 0 (* (+ a (* a 2)) 1))", "0", zero, shift, simp, addZero)
}

func Test_Saturate_05(t *testing.T) {
	// Only the two default rules
	checkSaturate(t, "(/ (* a 2) 2)", "(/ (<< a 1) 2)", shift, simplify)
}

func Test_Saturate_06(t *testing.T) {
	g := NewEGraph()
	root := g.AddTerm(term.MustParse("(/ (* a 2) 2)"))
	rules := parseRules(t, reassociate, shift, simplify, simp)
	//
	res, err := g.Saturate(rules, root)
	require.NoError(t, err)
	assert.True(t, g.IsSaturated())
	// Second run is a no-op
	again, err := g.Saturate(rules, root)
	require.NoError(t, err)
	assert.Equal(t, res.Term.String(), again.Term.String())
	assert.Empty(t, again.Rounds)
	assert.True(t, again.Fixpoint)
	// Applying a round resets saturation
	g.ApplyRound(rules)
	assert.False(t, g.IsSaturated())
	//
	again, err = g.Saturate(rules, root)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Term.String())
	assert.Len(t, again.Rounds, 1)
	// As does resetting
	g.ResetSaturation()
	assert.False(t, g.IsSaturated())
}

func Test_Saturate_07(t *testing.T) {
	g := NewEGraph()
	root := g.AddTerm(term.MustParse("(/ (* a 2) 2)"))
	rules := parseRules(t, reassociate, shift, simplify, simp)
	//
	res, err := g.SaturateWith(rules, root, SaturationConfig{MaxRounds: 2}, nil)
	require.NoError(t, err)
	assert.False(t, res.Fixpoint)
	assert.False(t, g.IsSaturated())
	assert.Len(t, res.Rounds, 2)
	assert.Equal(t, "(* a 1)", res.Term.String())
	// Continue where we left off
	res, err = g.Saturate(rules, root)
	require.NoError(t, err)
	assert.Equal(t, "a", res.Term.String())
}

func Test_Saturate_08(t *testing.T) {
	g := NewEGraph()
	root := g.AddTerm(term.MustParse("(* a 2)"))
	observer := &recorder{}
	//
	_, err := g.SaturateWith(parseRules(t, shift, simp), root, SaturationConfig{}, observer)
	require.NoError(t, err)
	//
	expected := []EventKind{
		EXTRACTED, NO_MATCH, MATCHED, MERGING, MERGED, REBUILDING, REBUILT, DONE,
		EXTRACTED, NO_MATCH, MERGING, MERGED, DONE,
	}
	assert.Equal(t, expected, observer.kinds)
	assert.Equal(t, []float64{2, 1}, observer.costs)
}

func Test_Saturate_09(t *testing.T) {
	g := NewEGraph()
	root := g.AddTerm(term.MustParse("(* a 2)"))
	//
	report := g.ApplyRound(parseRules(t, shift, simp))
	require.Len(t, report.Rewrites, 1)
	//
	rw := report.Rewrites[0]
	assert.Equal(t, "shift", rw.Rule)
	assert.Equal(t, root, rw.Matched)
	assert.Equal(t, ClassId(4), rw.Result)
	assert.Equal(t, Bindings{"x": 0}, rw.Bindings)
	assert.True(t, rw.Merged)
	assert.Equal(t, uint(1), report.Merges())
	assert.Equal(t, []string{"simp"}, report.Unmatched)
	assert.Equal(t, uint(4), report.Classes)
}

func Test_Saturate_10(t *testing.T) {
	g := NewEGraph()
	root := g.AddTerm(term.MustParse("(+ 1 2)"))
	// Rules are matched against a single snapshot, hence the second rule cannot
	// see the result of the first within the same round.
	rules := parseRules(t, "comm: (+ x y) => (+ y x)", "swapped: (+ 2 1) => (<< 1 1)")
	//
	report := g.ApplyRound(rules)
	assert.Equal(t, []string{"swapped"}, report.Unmatched)
	//
	report = g.ApplyRound(rules)
	assert.Empty(t, report.Unmatched)
	//
	ext, err := g.Extract(root)
	require.NoError(t, err)
	assert.Equal(t, "(+ 1 2)", ext.Term.String())
	assert.NoError(t, g.Check())
}

// Saturate random terms, checking the best term never gets worse and never
// costs more than the original.
func TestSlow_Saturate_11(t *testing.T) {
	rules := parseRules(t, reassociate, shift, simplify, simp, zero, addZero)
	//
	for i := 0; i < 200; i++ {
		g := NewEGraph()
		input := randomTerm(4)
		root := g.AddTerm(input)
		observer := &recorder{}
		//
		res, err := g.SaturateWith(rules, root, SaturationConfig{MaxRounds: 20}, observer)
		require.NoError(t, err)
		require.NoError(t, g.Check())
		assert.LessOrEqual(t, res.Cost, float64(input.Cost()))
		//
		for j := 1; j < len(observer.costs); j++ {
			assert.LessOrEqual(t, observer.costs[j], observer.costs[j-1], "input %s", input.String())
		}
		// Minimality
		costs := g.ExtractAll()
		snap := g.Classes()
		//
		for _, id := range snap.Ids() {
			for _, node := range snap.Nodes(id) {
				cost := float64(term.OperatorCost(node.Key))
				for _, c := range node.Children {
					cost += costs[c]
				}
				//
				assert.LessOrEqual(t, costs[id], cost)
			}
		}
	}
}

type recorder struct {
	kinds []EventKind
	costs []float64
}

func (p *recorder) Notify(g *EGraph, event Event) {
	p.kinds = append(p.kinds, event.Kind)
	//
	if event.Kind == EXTRACTED {
		p.costs = append(p.costs, event.Cost)
	}
}

func Test_Saturate_12(t *testing.T) {
	g := NewEGraph()
	root1 := g.AddTerm(term.MustParse("(a)"))
	root2 := g.AddTerm(term.MustParse("(/ (* b 2) 2)"))
	rules := parseRules(t, reassociate, shift, simplify, simp)
	// Saturating the first class stops before the second is simplified
	res, err := g.Saturate(rules, root1)
	require.NoError(t, err)
	assert.Equal(t, "a", res.Term.String())
	assert.True(t, g.IsSaturated())
	//
	ext, err := g.Extract(root2)
	require.NoError(t, err)
	assert.NotEqual(t, "b", ext.Term.String())
	// A fixpoint for one class is not a fixpoint for another
	res, err = g.Saturate(rules, root2)
	require.NoError(t, err)
	assert.Equal(t, "b", res.Term.String())
	assert.NotEmpty(t, res.Rounds)
	assert.True(t, res.Fixpoint)
}

func Test_Saturate_13(t *testing.T) {
	g := NewEGraph()
	root := g.AddTerm(term.MustParse("(+ a b)"))
	a := g.AddTerm(term.MustParse("(a)"))
	b := g.AddTerm(term.MustParse("(b)"))
	//
	_, err := g.Saturate(parseRules(t, simp), root)
	require.NoError(t, err)
	assert.True(t, g.IsSaturated())
	// Merging distinct classes invalidates the fixpoint
	_, err = g.Merge(a, b)
	require.NoError(t, err)
	assert.False(t, g.IsSaturated())
	g.Rebuild()
	assert.NoError(t, g.Check())
}

func checkSaturate(t *testing.T, input string, expected string, rules ...string) (*EGraph, Saturation) {
	g := NewEGraph()
	root := g.AddTerm(term.MustParse(input))
	//
	res, err := g.Saturate(parseRules(t, rules...), root)
	require.NoError(t, err)
	assert.Equal(t, expected, res.Term.String())
	assert.True(t, res.Fixpoint)
	assert.NoError(t, g.Check())
	//
	return g, res
}

func parseRules(t *testing.T, lines ...string) []term.Rule {
	rules := make([]term.Rule, len(lines))
	//
	for i, line := range lines {
		rule, err := term.ParseRule(line, "")
		require.NoError(t, err)
		//
		rules[i] = rule
	}
	//
	return rules
}
