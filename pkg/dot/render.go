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
package dot

import (
	"fmt"
	"strings"

	"github.com/consensys/go-eqsat/pkg/egraph"
	"github.com/google/uuid"
)

// Options control the layout of a rendered e-graph.
type Options struct {
	// Minimum space between adjacent nodes (in inches).
	NodeSep float64
	// Minimum space between ranks (in inches).
	RankSep float64
	// Classes to highlight.
	Marked []egraph.ClassId
}

// DefaultOptions returns the default layout options, with nothing marked.
func DefaultOptions() Options {
	return Options{NodeSep: 0.5, RankSep: 0.5}
}

// WithMarked returns a copy of these options with the given classes marked.
func (o Options) WithMarked(marked ...egraph.ClassId) Options {
	o.Marked = marked
	return o
}

// Render an e-graph as a Graphviz digraph.  Each canonical class becomes a
// cluster holding one record per node, with an edge from each operand port of
// a node to the cluster of the corresponding child.
func Render(g *egraph.EGraph, options Options) string {
	return RenderSnapshot(g.Classes(), options)
}

// RenderSnapshot renders a snapshot of an e-graph.  See Render.
func RenderSnapshot(snap *egraph.Snapshot, options Options) string {
	var builder strings.Builder
	// Name of the first node in each class, used as the target for edges into
	// that class.
	heads := make(map[egraph.ClassId]string)
	marked := make(map[egraph.ClassId]bool)
	//
	for _, id := range options.Marked {
		marked[id] = true
	}
	//
	fmt.Fprintf(&builder, "digraph egraph {\n")
	fmt.Fprintf(&builder, "  graph [compound=true, nodesep=%g, ranksep=%g]\n", options.NodeSep, options.RankSep)
	fmt.Fprintf(&builder, "  node [fillcolor=white, fontname=\"Times-Bold\", fontsize=20, shape=record, style=\"rounded, filled\"]\n")
	// Clusters
	for _, id := range snap.Ids() {
		fill := "navajowhite"
		//
		if marked[id] {
			fill = "crimson"
		}
		//
		fmt.Fprintf(&builder, "  subgraph \"cluster-%d\" {\n", id)
		fmt.Fprintf(&builder, "    graph [fillcolor=%q, style=\"dashed, rounded, filled\"]\n", fill)
		//
		for i, node := range snap.Nodes(id) {
			name := nodeName(id, i)
			//
			if i == 0 {
				heads[id] = name
			}
			//
			fmt.Fprintf(&builder, "    %q [label=\"%s\"]\n", name, label(node))
		}
		//
		fmt.Fprintf(&builder, "  }\n")
	}
	// Edges
	for _, id := range snap.Ids() {
		for i, node := range snap.Nodes(id) {
			for j, child := range node.Children {
				port := fmt.Sprintf("%q:p%d", nodeName(id, i), j)
				//
				if child == id {
					// Edges cannot target the cluster they start in, so route
					// through an invisible point.
					point := uuid.NewString()
					fmt.Fprintf(&builder, "  %q [height=0, width=0, shape=point]\n", point)
					fmt.Fprintf(&builder, "  %s -> %q [dir=none]\n", port, point)
					port = fmt.Sprintf("%q", point)
				}
				//
				fmt.Fprintf(&builder, "  %s -> %q [lhead=\"cluster-%d\"]\n", port, heads[child], child)
			}
		}
	}
	//
	builder.WriteString("}\n")
	//
	return builder.String()
}

func nodeName(id egraph.ClassId, index int) string {
	return fmt.Sprintf("c%d_%d", id, index)
}

// Construct the record label for a node, where binary nodes expose one port per
// operand.
func label(node egraph.Node) string {
	if len(node.Children) != 2 {
		return escape(node.Key)
	}
	//
	return fmt.Sprintf("<p0> | %s | <p1>", escape(node.Key))
}

// Escape characters with special meaning in record labels.
func escape(text string) string {
	var builder strings.Builder
	//
	for _, r := range text {
		if strings.ContainsRune("<>{}|\\", r) {
			builder.WriteRune('\\')
		}
		//
		builder.WriteRune(r)
	}
	//
	return builder.String()
}
