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
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/consensys/go-eqsat/pkg/term"
)

// Bindings maps pattern variables to the (canonical) classes they are bound to.
type Bindings map[string]ClassId

func (b Bindings) String() string {
	var builder strings.Builder
	//
	builder.WriteString("{")
	//
	for i, v := range slices.Sorted(maps.Keys(b)) {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(fmt.Sprintf("%s: #%d", v, b[v]))
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}

// Match records that a pattern matched a given class under some bindings.
type Match struct {
	Class    ClassId
	Bindings Bindings
}

// Match a pattern against every class of this snapshot, in ascending order of
// class identifier.  At most one match is reported for each class.  Leaves of
// the pattern which are not numerals are variables, and every occurrence of a
// variable must bind to the same class.
func (s *Snapshot) Match(pattern *term.Term) []Match {
	var matches []Match
	//
	for _, id := range s.ids {
		var found Bindings
		//
		s.match(pattern, id, Bindings{}, func(env Bindings) bool {
			found = env
			return true
		})
		//
		if found != nil {
			matches = append(matches, Match{id, found})
		}
	}
	//
	return matches
}

// Match a pattern against a given class, invoking a continuation for each
// consistent extension of the given bindings until it accepts.  Bindings are
// never mutated, hence alternatives can be explored freely.
func (s *Snapshot) match(pattern *term.Term, id ClassId, env Bindings, k func(Bindings) bool) bool {
	if pattern.IsVariable() {
		if bound, ok := env[pattern.Key]; ok {
			return bound == id && k(env)
		}
		//
		extended := maps.Clone(env)
		extended[pattern.Key] = id
		//
		return k(extended)
	}
	// Explore alternative nodes
	for _, node := range s.nodes[id] {
		if node.Key == pattern.Key && len(node.Children) == len(pattern.Args) &&
			s.matchArgs(pattern.Args, node.Children, env, k) {
			return true
		}
	}
	//
	return false
}

func (s *Snapshot) matchArgs(patterns []*term.Term, ids []ClassId, env Bindings, k func(Bindings) bool) bool {
	if len(patterns) == 0 {
		return k(env)
	}
	//
	return s.match(patterns[0], ids[0], env, func(env Bindings) bool {
		return s.matchArgs(patterns[1:], ids[1:], env, k)
	})
}

// Match a pattern against the current classes of this e-graph.
func (g *EGraph) Match(pattern *term.Term) []Match {
	return g.Classes().Match(pattern)
}

// Substitute instantiates a pattern under some bindings, adding the result to
// this e-graph and returning its class.  Variables resolve directly to their
// bound class, whilst all other structure is added bottom-up.  Variables
// without a binding are added as leaves.
func (g *EGraph) Substitute(pattern *term.Term, env Bindings) ClassId {
	if id, ok := env[pattern.Key]; ok && pattern.IsVariable() {
		return g.uf.Find(id)
	}
	//
	children := make([]ClassId, len(pattern.Args))
	//
	for i, arg := range pattern.Args {
		children[i] = g.Substitute(arg, env)
	}
	//
	return g.add(Node{pattern.Key, children})
}
