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

// UnionFind is a disjoint-set forest over densely allocated class identifiers.
// Roots are chosen by size, with ties broken in favour of the lower
// identifier.  Paths are compressed on every find.
type UnionFind struct {
	parent []ClassId
	size   []uint
}

// Len returns the number of identifiers allocated so far.
func (p *UnionFind) Len() uint {
	return uint(len(p.parent))
}

// Make allocates a fresh singleton set, returning its identifier.
func (p *UnionFind) Make() ClassId {
	id := ClassId(len(p.parent))
	p.parent = append(p.parent, id)
	p.size = append(p.size, 1)
	//
	return id
}

// Find returns the root of the set containing a given identifier.
func (p *UnionFind) Find(id ClassId) ClassId {
	root := id
	//
	for p.parent[root] != root {
		root = p.parent[root]
	}
	// Compress path
	for p.parent[id] != root {
		next := p.parent[id]
		p.parent[id] = root
		id = next
	}
	//
	return root
}

// Union the sets containing two identifiers, returning the root of the
// combined set.
func (p *UnionFind) Union(a ClassId, b ClassId) ClassId {
	a, b = p.Find(a), p.Find(b)
	//
	if a == b {
		return a
	} else if p.size[a] < p.size[b] || (p.size[a] == p.size[b] && b < a) {
		a, b = b, a
	}
	//
	p.parent[b] = a
	p.size[a] += p.size[b]
	//
	return a
}
