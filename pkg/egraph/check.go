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
	"github.com/pkg/errors"
)

// Check the invariants which hold following a rebuild.  Specifically, that
// every node is canonical and owned by a canonical class, that the hash-cons
// table holds only canonical shapes, and that it maps every node to the class
// owning it (i.e. the e-graph is congruence closed).  This is intended for
// testing and debugging.
func (g *EGraph) Check() error {
	if len(g.pending) > 0 {
		return errors.Errorf("%d classes pending rebuild", len(g.pending))
	}
	//
	for i, class := range g.classes {
		id := ClassId(i)
		root := g.uf.Find(id)
		//
		if root != id && len(class.nodes) > 0 {
			return errors.Errorf("absorbed class #%d (into #%d) still owns nodes", id, root)
		}
		//
		for _, nid := range class.nodes {
			node := g.nodes[nid]
			//
			if !node.Equals(g.canonicalise(node)) {
				return errors.Errorf("node %s (in #%d) is not canonical", node.String(), id)
			} else if owner, ok := g.hashcons.Get(node); !ok {
				return errors.Errorf("node %s (in #%d) missing from hash-cons table", node.String(), id)
			} else if g.uf.Find(owner) != root {
				return errors.Errorf("node %s held by both #%d and #%d", node.String(), root, g.uf.Find(owner))
			}
		}
	}
	//
	for _, kv := range g.hashcons.KeyValues() {
		if !kv.Left.Equals(g.canonicalise(kv.Left)) {
			return errors.Errorf("hash-cons entry %s is not canonical", kv.Left.String())
		}
	}
	//
	return nil
}
