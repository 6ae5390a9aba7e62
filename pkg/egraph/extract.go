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
	"math"

	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/consensys/go-eqsat/pkg/util/collection/stack"
	"github.com/pkg/errors"
)

// ErrUnextractable indicates a class for which no term of finite cost exists
// (e.g. because every node lies on a cycle).
var ErrUnextractable = errors.New("unextractable class")

// INFINITY is the cost of a class from which no finite term can be built.
var INFINITY = math.Inf(1)

// Costs maps each canonical class to the cost of its cheapest term.
type Costs map[ClassId]float64

// Extraction is the result of extracting the cheapest term from a class.
type Extraction struct {
	// Canonical class extracted from.
	Class ClassId
	// Cost of the extracted term.
	Cost float64
	// Cheapest term.
	Term *term.Term
	// Costs of all classes at the time of extraction.
	Costs Costs
}

// Cost of a node under the fixed cost model, given the costs of its children.
func nodeCost(node Node, table map[ClassId]witness) float64 {
	cost := float64(term.OperatorCost(node.Key))
	//
	for _, c := range node.Children {
		cost += table[c].cost
	}
	//
	return cost
}

// Best cost of a class, along with the index of the node achieving it.
type witness struct {
	cost float64
	node int
}

// Extract the cheapest term from a given class.
func (g *EGraph) Extract(id ClassId) (Extraction, error) {
	if err := g.checkClass(id); err != nil {
		return Extraction{}, err
	}
	//
	return g.Classes().Extract(g.uf.Find(id))
}

// ExtractAll determines the cost of the cheapest term for every class.
func (g *EGraph) ExtractAll() Costs {
	return g.Classes().Costs()
}

// Costs determines the cost of the cheapest term of every class.
func (s *Snapshot) Costs() Costs {
	costs := make(Costs, len(s.ids))
	//
	for id, w := range s.relax() {
		costs[id] = w.cost
	}
	//
	return costs
}

// Extract the cheapest term from a given canonical class.  Amongst nodes of
// equal cost, the earliest constructed is chosen.
func (s *Snapshot) Extract(id ClassId) (Extraction, error) {
	if !s.Contains(id) {
		return Extraction{}, errors.Wrapf(ErrUnknownClass, "#%d is not canonical", id)
	}
	//
	table := s.relax()
	costs := make(Costs, len(table))
	//
	for c, w := range table {
		costs[c] = w.cost
	}
	//
	if math.IsInf(table[id].cost, 1) {
		return Extraction{}, errors.Wrapf(ErrUnextractable, "#%d", id)
	}
	//
	t, err := s.build(id, table)
	//
	return Extraction{id, table[id].cost, t, costs}, err
}

// Compute the best (cost, node) pair of every class by repeated relaxation
// until nothing changes.  Infinite cost is a stable value, hence this always
// terminates.
func (s *Snapshot) relax() map[ClassId]witness {
	table := make(map[ClassId]witness, len(s.ids))
	//
	for _, id := range s.ids {
		table[id] = witness{INFINITY, -1}
	}
	//
	for changed := true; changed; {
		changed = false
		//
		for _, id := range s.ids {
			best := witness{INFINITY, -1}
			//
			for i, node := range s.nodes[id] {
				if cost := nodeCost(node, table); cost < best.cost {
					best = witness{cost, i}
				}
			}
			//
			if best != table[id] {
				table[id] = best
				changed = true
			}
		}
	}
	//
	return table
}

// Reconstruct the term rooted at a given class by following witnesses.  Since
// every operator has positive cost, the witness of a class strictly exceeds
// the cost of its children and, hence, witnesses cannot form a cycle.  Nodes
// added directly with unknown keys have zero cost, so cycles are still
// checked for.
func (s *Snapshot) build(id ClassId, table map[ClassId]witness) (*term.Term, error) {
	type frame struct {
		class    ClassId
		expanded bool
	}
	//
	var (
		worklist = stack.NewStack[frame]()
		terms    = stack.NewStack[*term.Term]()
		visiting = make(map[ClassId]bool)
	)
	//
	worklist.Push(frame{id, false})
	//
	for !worklist.IsEmpty() {
		f := worklist.Pop()
		node := s.nodes[f.class][table[f.class].node]
		//
		switch {
		case node.IsLeaf():
			terms.Push(term.NewLeaf(node.Key))
		case !f.expanded && visiting[f.class]:
			return nil, errors.Wrapf(ErrUnextractable, "#%d has a cyclic witness", f.class)
		case !f.expanded:
			visiting[f.class] = true
			worklist.Push(frame{f.class, true})
			// Push in reverse so children are completed in order
			for i := len(node.Children); i > 0; i-- {
				worklist.Push(frame{node.Children[i-1], false})
			}
		default:
			visiting[f.class] = false
			args := terms.PopN(uint(len(node.Children)))
			terms.Push(&term.Term{Key: node.Key, Args: args})
		}
	}
	//
	return terms.Pop(), nil
}
