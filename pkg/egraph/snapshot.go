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

	"github.com/consensys/go-eqsat/pkg/util/collection/hash"
)

// Snapshot captures the classes of an e-graph at a given moment.  Each
// canonical class is mapped to the distinct canonical nodes of every class
// which unions to it, listed in order of construction.  Snapshots are
// unaffected by subsequent changes to the e-graph.
type Snapshot struct {
	// Canonical class identifiers in ascending order.
	ids []ClassId
	// Nodes of each canonical class.
	nodes map[ClassId][]Node
}

// Classes takes a snapshot of the current classes.  If merges are pending, the
// snapshot still reflects them (i.e. nodes are grouped by their canonical
// class), though congruences not yet uncovered by a rebuild are missing.
func (g *EGraph) Classes() *Snapshot {
	var (
		owned = make(map[ClassId][]NodeId)
		snap  = &Snapshot{nodes: make(map[ClassId][]Node)}
	)
	//
	for i, class := range g.classes {
		if len(class.nodes) > 0 {
			root := g.uf.Find(ClassId(i))
			owned[root] = append(owned[root], class.nodes...)
		}
	}
	//
	for root, nodes := range owned {
		slices.Sort(nodes)
		//
		seen := hash.NewMap[Node, struct{}](uint(len(nodes)))
		//
		for _, nid := range nodes {
			node := g.canonicalise(g.nodes[nid])
			//
			if !seen.Insert(node, struct{}{}) {
				snap.nodes[root] = append(snap.nodes[root], node)
			}
		}
		//
		snap.ids = append(snap.ids, root)
	}
	//
	slices.SortFunc(snap.ids, cmp.Compare[ClassId])
	//
	return snap
}

// Ids returns the canonical class identifiers of this snapshot in ascending
// order.
func (s *Snapshot) Ids() []ClassId {
	return s.ids
}

// Len returns the number of classes in this snapshot.
func (s *Snapshot) Len() uint {
	return uint(len(s.ids))
}

// Nodes returns the nodes of a given canonical class, or nil if it is not a
// canonical class of this snapshot.
func (s *Snapshot) Nodes(id ClassId) []Node {
	return s.nodes[id]
}

// Contains checks whether a given identifier is a canonical class of this
// snapshot.
func (s *Snapshot) Contains(id ClassId) bool {
	_, ok := s.nodes[id]
	return ok
}
