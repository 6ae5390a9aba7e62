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
	"cmp"
	"slices"

	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/consensys/go-eqsat/pkg/util/collection/hash"
	"github.com/consensys/go-eqsat/pkg/util/collection/set"
	hset "github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

// Class represents the storage associated with a class identifier.  Once a
// class is absorbed into another, its storage is consolidated into the
// surviving class during the next rebuild and left empty thereafter.
type Class struct {
	// Nodes owned by this class.
	nodes []NodeId
	// Nodes elsewhere which refer to this class.
	parents *hset.Set[Parent]
}

func newClass(node NodeId) Class {
	return Class{[]NodeId{node}, hset.New[Parent](0)}
}

// EGraph maintains a set of terms partitioned into equivalence classes, such
// that structurally identical nodes are never held by distinct classes.  This
// is maintained in two phases: Merge only records that two classes are equal,
// whilst Rebuild restores the hash-cons table and congruence closure.  Hence,
// Rebuild must be called after a batch of merges before matching or extraction
// can be relied upon.  An e-graph is not safe for concurrent use.
type EGraph struct {
	// Equivalence relation over class identifiers.
	uf UnionFind
	// Class storage, indexed by class identifier.
	classes []Class
	// Node arena, indexed by node identifier.
	nodes []Node
	// Maps canonical node shapes to their owning class.
	hashcons *hash.Map[Node, ClassId]
	// Classes affected by merges since the last rebuild.
	pending []ClassId
	// Indicates a fixpoint was reached with no rewriting since.
	saturated bool
	// Canonical class whose best term reached the fixpoint.
	fixpoint ClassId
}

// NewEGraph constructs an empty e-graph.
func NewEGraph() *EGraph {
	return &EGraph{hashcons: hash.NewMap[Node, ClassId](64)}
}

// Size returns the number of class identifiers allocated so far, including
// those which are no longer canonical.
func (g *EGraph) Size() uint {
	return g.uf.Len()
}

// NumClasses returns the number of canonical classes.
func (g *EGraph) NumClasses() uint {
	count := uint(0)
	//
	for i := range g.uf.Len() {
		if g.uf.Find(ClassId(i)) == ClassId(i) {
			count++
		}
	}
	//
	return count
}

// NumNodes returns the number of nodes ever constructed.
func (g *EGraph) NumNodes() uint {
	return uint(len(g.nodes))
}

// HashConsSize returns the number of entries in the hash-cons table.
func (g *EGraph) HashConsSize() uint {
	return g.hashcons.Size()
}

// Pending returns the number of (not necessarily distinct) classes awaiting
// repair by the next rebuild.
func (g *EGraph) Pending() uint {
	return uint(len(g.pending))
}

// PendingClasses returns the distinct canonical classes awaiting repair by the
// next rebuild, in ascending order.
func (g *EGraph) PendingClasses() []ClassId {
	roots := set.NewSortedSet[ClassId]()
	//
	for _, id := range g.pending {
		roots.Insert(g.uf.Find(id))
	}
	//
	return roots.ToArray()
}

// IsSaturated indicates whether a saturation fixpoint was reached, with no
// further rewriting, merging or additions since.  The fixpoint holds only for
// the class and rule set it was reached with.
func (g *EGraph) IsSaturated() bool {
	return g.saturated
}

// ResetSaturation clears the saturation flag, such that the next call to
// Saturate runs again.
func (g *EGraph) ResetSaturation() {
	g.saturated = false
}

// Find returns the canonical identifier of the class containing a given class.
func (g *EGraph) Find(id ClassId) (ClassId, error) {
	if err := g.checkClass(id); err != nil {
		return 0, err
	}
	//
	return g.uf.Find(id), nil
}

// Equivalent checks whether two classes are known to be equal.
func (g *EGraph) Equivalent(a ClassId, b ClassId) (bool, error) {
	if err := g.checkClass(a); err != nil {
		return false, err
	} else if err := g.checkClass(b); err != nil {
		return false, err
	}
	//
	return g.uf.Find(a) == g.uf.Find(b), nil
}

// Add a node whose children are (not necessarily canonical) class identifiers,
// returning the class which owns its canonical shape.  A new class is
// allocated only when this shape has not been seen before.
func (g *EGraph) Add(node Node) (ClassId, error) {
	for _, child := range node.Children {
		if err := g.checkClass(child); err != nil {
			return 0, err
		}
	}
	//
	return g.add(node), nil
}

// AddTerm adds every node of a given term bottom-up, returning the class of
// its root.
func (g *EGraph) AddTerm(t *term.Term) ClassId {
	children := make([]ClassId, len(t.Args))
	//
	for i, arg := range t.Args {
		children[i] = g.AddTerm(arg)
	}
	//
	return g.add(Node{t.Key, children})
}

// Merge two classes.  This unions them in the equivalence relation and marks
// both for repair, but does not update the hash-cons table.  The canonical
// identifier of the combined class is returned.
func (g *EGraph) Merge(a ClassId, b ClassId) (ClassId, error) {
	if err := g.checkClass(a); err != nil {
		return 0, err
	} else if err := g.checkClass(b); err != nil {
		return 0, err
	}
	//
	return g.merge(a, b), nil
}

// Rebuild restores the hash-cons table and congruence closure following one or
// more merges.  Repairing a class can uncover further congruences, which are
// merged and repaired in turn until none remain.
func (g *EGraph) Rebuild() {
	for len(g.pending) > 0 {
		todo := set.FromArray(g.pending)
		g.pending = nil
		roots := set.NewSortedSet[ClassId]()
		// Consolidate absorbed classes into their roots
		for _, id := range todo.ToArray() {
			root := g.uf.Find(id)
			//
			if id != root {
				g.absorb(root, id)
			}
			//
			roots.Insert(root)
		}
		// Repair roots
		for _, root := range roots.ToArray() {
			g.repair(root)
		}
	}
}

func (g *EGraph) add(node Node) ClassId {
	node = g.canonicalise(node)
	// Check whether shape already exists.  For leaves, this interns them by
	// name.
	if id, ok := g.hashcons.Get(node); ok {
		return g.uf.Find(id)
	}
	// Allocate new class
	nid := NodeId(len(g.nodes))
	id := g.uf.Make()
	g.nodes = append(g.nodes, node)
	g.classes = append(g.classes, newClass(nid))
	g.hashcons.Insert(node, id)
	// Register as parent of each child
	for _, child := range node.Children {
		g.classes[child].parents.Insert(Parent{nid, id})
	}
	// New structure invalidates any fixpoint
	g.saturated = false
	//
	return id
}

func (g *EGraph) merge(a ClassId, b ClassId) ClassId {
	a, b = g.uf.Find(a), g.uf.Find(b)
	//
	if a == b {
		return a
	}
	//
	root := g.uf.Union(a, b)
	g.pending = append(g.pending, a, b)
	g.saturated = false
	//
	return root
}

// Move the nodes and parents of an absorbed class into its root.
func (g *EGraph) absorb(root ClassId, id ClassId) {
	from, into := &g.classes[id], &g.classes[root]
	//
	into.nodes = append(into.nodes, from.nodes...)
	into.parents.InsertSet(from.parents)
	//
	from.nodes = nil
	from.parents = hset.New[Parent](0)
}

// Repair the parents of a given class by recanonicalising them in the hash-cons
// table, and merging any which now share the same shape.  Every parent is
// retained, such that all nodes remain canonical after each rebuild.
func (g *EGraph) repair(id ClassId) {
	class := &g.classes[id]
	parents := class.parents.Slice()
	// Sort for determinism
	slices.SortFunc(parents, func(l, r Parent) int { return cmp.Compare(l.Node, r.Node) })
	// Recanonicalise
	for _, p := range parents {
		g.hashcons.Remove(g.nodes[p.Node])
		g.nodes[p.Node] = g.canonicalise(g.nodes[p.Node])
		g.hashcons.Insert(g.nodes[p.Node], g.uf.Find(p.Class))
	}
	// Merge parents which now share the same shape
	shapes := hash.NewMap[Node, ClassId](uint(len(parents)))
	class.parents = hset.New[Parent](len(parents))
	//
	for _, p := range parents {
		node := g.nodes[p.Node]
		//
		if other, ok := shapes.Get(node); ok {
			g.merge(other, p.Class)
		} else {
			shapes.Insert(node, p.Class)
		}
		//
		class.parents.Insert(Parent{p.Node, g.uf.Find(p.Class)})
	}
}

// Resolve every child of a node to its canonical class.
func (g *EGraph) canonicalise(node Node) Node {
	if node.IsLeaf() {
		return Node{node.Key, nil}
	}
	//
	children := make([]ClassId, len(node.Children))
	//
	for i, c := range node.Children {
		children[i] = g.uf.Find(c)
	}
	//
	return Node{node.Key, children}
}

func (g *EGraph) checkClass(id ClassId) error {
	if uint(id) >= g.uf.Len() {
		return errors.Wrapf(ErrUnknownClass, "#%d (only %d classes)", id, g.uf.Len())
	}
	//
	return nil
}
