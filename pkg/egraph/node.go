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
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/consensys/go-eqsat/pkg/util/collection/hash"
	"github.com/pkg/errors"
)

// ErrUnknownClass indicates a class identifier which was never allocated by
// the e-graph in question.
var ErrUnknownClass = errors.New("unknown class")

// ClassId identifies an equivalence class.  Identifiers are allocated densely
// from zero and never reused, though a class may later be absorbed into
// another (in which case its identifier is no longer canonical).
type ClassId uint

// NodeId identifies a node within the node arena of an e-graph.  Nodes are
// numbered in order of construction.
type NodeId uint

// Parent records that a given node (belonging to a given class) refers to the
// class holding this reference.  The class component may be stale and should
// be resolved through find before use.
type Parent struct {
	Node  NodeId
	Class ClassId
}

var _ hash.Hasher[Node] = Node{}

// Node represents one way to construct a value: a key (operator, variable or
// numeral) applied to zero or more classes.
type Node struct {
	// Key of this node
	Key string
	// Children of this node, given as class identifiers.
	Children []ClassId
}

// NewNode constructs a new node with the given key and children.
func NewNode(key string, children ...ClassId) Node {
	return Node{key, children}
}

// IsLeaf checks whether this node has no children.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Equals implementation for the hash.Hasher interface.  Two nodes are equal if
// they have the same key and the same children (in the same order).
func (n Node) Equals(other Node) bool {
	if n.Key != other.Key || len(n.Children) != len(other.Children) {
		return false
	}
	//
	for i, c := range n.Children {
		if c != other.Children[i] {
			return false
		}
	}
	//
	return true
}

// Hash implementation for the hash.Hasher interface.
func (n Node) Hash() uint64 {
	var (
		digest = xxhash.New()
		buf    [8]byte
	)
	//
	_, _ = digest.WriteString(n.Key)
	//
	for _, c := range n.Children {
		binary.LittleEndian.PutUint64(buf[:], uint64(c))
		_, _ = digest.Write(buf[:])
	}
	//
	return digest.Sum64()
}

func (n Node) String() string {
	if n.IsLeaf() {
		return n.Key
	}
	//
	var builder strings.Builder
	//
	builder.WriteString("(")
	builder.WriteString(n.Key)
	//
	for _, c := range n.Children {
		builder.WriteString(fmt.Sprintf(" #%d", c))
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
