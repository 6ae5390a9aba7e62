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
package session

import (
	"fmt"

	"github.com/consensys/go-eqsat/pkg/dot"
	"github.com/consensys/go-eqsat/pkg/egraph"
)

// Step is one entry in the history of a session: a message describing what
// happened, and the e-graph at that point rendered in DOT format.
type Step struct {
	Message string
	Dot     string
}

// recorder renders a step for each event of rule application.
type recorder struct {
	options dot.Options
	steps   []Step
	// Suppress best term steps
	quiet bool
}

func (p *recorder) Notify(g *egraph.EGraph, e egraph.Event) {
	var (
		msg    string
		marked []egraph.ClassId
	)
	//
	switch e.Kind {
	case egraph.EXTRACTED:
		if p.quiet {
			return
		}
		//
		msg = "Best Term: " + e.Term.String()
	case egraph.NO_MATCH:
		msg = fmt.Sprintf("No MATCH for rule: %s", e.Rule.String())
	case egraph.MATCHED:
		msg = fmt.Sprintf("Rule %s: MATCHED EClass with %s.", e.Rule.Name, e.Bindings.String())
		marked = []egraph.ClassId{e.Matched}
	case egraph.MERGING:
		msg = fmt.Sprintf("Rule %s: MERGE colored eclasses.", e.Rule.Name)
		marked = []egraph.ClassId{e.Matched, e.Result}
	case egraph.MERGED:
		msg = fmt.Sprintf("Rule %s: MERGED.", e.Rule.Name)
	case egraph.REBUILDING:
		msg = "REBUILD colored eclasses."
		marked = e.Pending
	case egraph.REBUILT:
		msg = "EGraph was rebuilt."
	case egraph.DONE:
		msg = "Done."
	}
	// Clusters are named after canonical classes
	for i, id := range marked {
		if root, err := g.Find(id); err == nil {
			marked[i] = root
		}
	}
	//
	p.steps = append(p.steps, Step{msg, dot.Render(g, p.options.WithMarked(marked...))})
}
