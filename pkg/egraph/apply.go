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
	"github.com/consensys/go-eqsat/pkg/term"
)

// EventKind identifies the step of rule application or saturation which an
// event describes.
type EventKind uint8

const (
	// EXTRACTED signals the best term at the start of a saturation round.
	EXTRACTED EventKind = iota
	// NO_MATCH signals a rule which matched nothing in this round.
	NO_MATCH
	// MATCHED signals a match whose instantiated right-hand side lies in a
	// different class from the match.
	MATCHED
	// MERGING signals two classes are about to be merged.
	MERGING
	// MERGED signals two classes were merged.
	MERGED
	// REBUILDING signals a rebuild is about to repair the pending classes.
	REBUILDING
	// REBUILT signals a rebuild completed.
	REBUILT
	// DONE signals the end of a round.
	DONE
)

// Event describes one step of rule application.  Not all fields are
// meaningful for every kind of event.
type Event struct {
	Kind EventKind
	// Rule responsible (if applicable).
	Rule *term.Rule
	// Class matched by rule (if applicable).
	Matched ClassId
	// Class resulting from instantiating the rule (if applicable).
	Result ClassId
	// Bindings of the match (if applicable).
	Bindings Bindings
	// Classes pending repair (REBUILDING only).
	Pending []ClassId
	// Best term (EXTRACTED only).
	Term *term.Term
	// Cost of best term (EXTRACTED only).
	Cost float64
}

// Observer is notified of each step taken whilst applying rules, and is given
// access to the e-graph at that point.  An observer must not modify the
// e-graph.
type Observer interface {
	Notify(g *EGraph, event Event)
}

// Rewrite records one firing of a rule within a round.
type Rewrite struct {
	// Name of rule which fired.
	Rule string
	// Class matched by the rule's left-hand side.
	Matched ClassId
	// Class of the instantiated right-hand side.
	Result ClassId
	// Bindings of the match.
	Bindings Bindings
	// Indicates the matched and resulting classes were not already equal.
	Merged bool
}

// RoundReport records what happened during one round of rule application.
type RoundReport struct {
	// Rewrites performed, in order.
	Rewrites []Rewrite
	// Names of rules which matched nothing.
	Unmatched []string
	// Number of canonical classes after the round.
	Classes uint
}

// Merges returns the number of rewrites which merged distinct classes.
func (r *RoundReport) Merges() uint {
	count := uint(0)
	//
	for _, rw := range r.Rewrites {
		if rw.Merged {
			count++
		}
	}
	//
	return count
}

// ApplyRound applies one round of rules.  All rules are first matched against
// a single snapshot, such that no rule observes the effects of another within
// the same round.  Then, each match is instantiated and merged with the class
// it matched.  Finally, the e-graph is rebuilt.
func (g *EGraph) ApplyRound(rules []term.Rule) RoundReport {
	return g.ApplyRoundObserved(rules, nil)
}

// ApplyRoundObserved is as for ApplyRound, but notifies an observer (if
// non-nil) of each step.
func (g *EGraph) ApplyRoundObserved(rules []term.Rule, observer Observer) RoundReport {
	var (
		report  RoundReport
		snap    = g.Classes()
		matches = make([][]Match, len(rules))
	)
	//
	notify := func(e Event) {
		if observer != nil {
			observer.Notify(g, e)
		}
	}
	// Match all rules against the same snapshot
	for i := range rules {
		matches[i] = snap.Match(rules[i].Lhs)
		//
		if len(matches[i]) == 0 {
			report.Unmatched = append(report.Unmatched, rules[i].Name)
			notify(Event{Kind: NO_MATCH, Rule: &rules[i]})
		}
	}
	// Instantiate and merge
	for i, ms := range matches {
		rule := &rules[i]
		//
		for _, m := range ms {
			result := g.Substitute(rule.Rhs, m.Bindings)
			e := Event{Rule: rule, Matched: m.Class, Result: result, Bindings: m.Bindings}
			merged := g.uf.Find(m.Class) != g.uf.Find(result)
			//
			if merged {
				notify(e.as(MATCHED))
			}
			//
			notify(e.as(MERGING))
			g.merge(m.Class, result)
			notify(e.as(MERGED))
			//
			report.Rewrites = append(report.Rewrites, Rewrite{rule.Name, m.Class, result, m.Bindings, merged})
		}
	}
	//
	if len(g.pending) > 0 {
		notify(Event{Kind: REBUILDING, Pending: g.PendingClasses()})
		g.Rebuild()
		notify(Event{Kind: REBUILT})
	}
	//
	notify(Event{Kind: DONE})
	//
	g.saturated = false
	report.Classes = g.NumClasses()
	//
	return report
}

func (e Event) as(kind EventKind) Event {
	e.Kind = kind
	return e
}
