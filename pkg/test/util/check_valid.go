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
package util

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/consensys/go-eqsat/pkg/egraph"
	"github.com/consensys/go-eqsat/pkg/term"
)

// SAMPLES determines how many random points each accepted case is evaluated at
// to check its output agrees with its input.
const SAMPLES = 8

// Check that saturating the input of every accepted case with the rules of a
// given test yields its output as the cheapest term, and that the terms of
// every rejected case are not shown equivalent.
func Check(t *testing.T, test string) {
	var (
		filename = fmt.Sprintf("%s/%s.rules", TestDir, test)
		rules    = ReadRulesFile(t, filename)
		nTests   = 0
	)
	// Enable testing each file in parallel
	t.Parallel()
	//
	for _, ext := range ACCEPTS_EXTENSIONS {
		casesFile := fmt.Sprintf("%s/%s.%s", TestDir, test, ext)
		//
		for _, c := range ReadCasesFile(t, casesFile) {
			checkAccepts(t, casesFile, rules, c)
			nTests++
		}
	}
	//
	for _, ext := range REJECTS_EXTENSIONS {
		casesFile := fmt.Sprintf("%s/%s.%s", TestDir, test, ext)
		//
		for _, c := range ReadCasesFile(t, casesFile) {
			checkRejects(t, casesFile, rules, c)
			nTests++
		}
	}
	// Sanity check at least one case found.
	if nTests == 0 {
		panic(fmt.Sprintf("missing any tests for %s", test))
	}
}

// ReadRulesFile reads the rules of a given test, failing the test if they
// cannot be read.
func ReadRulesFile(t *testing.T, filename string) []term.Rule {
	rules, err := term.ParseRules(readSourceFile(t, filename))
	if err != nil {
		t.Fatalf("%s: %s", filename, errorToString(*err))
	}
	//
	return rules
}

func checkAccepts(t *testing.T, filename string, rules []term.Rule, c Case) {
	g, root, input := saturate(t, filename, rules, c)
	expected := parse(t, filename, c, c.Output)
	//
	best, err := g.Extract(root)
	if err != nil {
		t.Errorf("%s:%s (%s)", filename, c, err)
		return
	}
	//
	if !best.Term.Equals(expected) {
		t.Errorf("%s:%s (found %s)", filename, c, best.Term)
	} else if best.Cost > float64(input.Cost()) {
		t.Errorf("%s:%s (cost increased from %d to %g)", filename, c, input.Cost(), best.Cost)
	} else if eq, err := g.Equivalent(root, g.AddTerm(expected)); err != nil || !eq {
		t.Errorf("%s:%s (output not equivalent to input)", filename, c)
	} else if !agrees(input, expected, int64(c.Line)) {
		t.Errorf("%s:%s (output disagrees with input)", filename, c)
	}
}

// Check two terms agree at a number of random points.
func agrees(input *term.Term, output *term.Term, seed int64) bool {
	rng := rand.New(rand.NewSource(seed))
	//
	for i := 0; i < SAMPLES; i++ {
		if !input.AgreesWith(output, term.RandomEnv(rng, input, output)) {
			return false
		}
	}
	//
	return true
}

func checkRejects(t *testing.T, filename string, rules []term.Rule, c Case) {
	g, root, _ := saturate(t, filename, rules, c)
	other := parse(t, filename, c, c.Output)
	//
	if eq, err := g.Equivalent(root, g.AddTerm(other)); err != nil || eq {
		t.Errorf("%s:%s (should not be equivalent)", filename, c)
	}
}

// Saturate the input of a given case, checking the e-graph is left in a
// consistent state.
func saturate(t *testing.T, filename string, rules []term.Rule, c Case) (*egraph.EGraph, egraph.ClassId, *term.Term) {
	input := parse(t, filename, c, c.Input)
	g := egraph.NewEGraph()
	root := g.AddTerm(input)
	//
	if _, err := g.Saturate(rules, root); err != nil {
		t.Fatalf("%s:%s (%s)", filename, c, err)
	} else if err := g.Check(); err != nil {
		t.Fatalf("%s:%s (%s)", filename, c, err)
	}
	//
	return g, root, input
}

func parse(t *testing.T, filename string, c Case, text string) *term.Term {
	e, err := term.Parse(text)
	if err != nil {
		t.Fatalf("%s:%s (%s)", filename, c, err)
	}
	//
	return e
}
