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
	"github.com/consensys/go-eqsat/pkg/util"
	log "github.com/sirupsen/logrus"
)

// SaturationConfig bounds equality saturation.
type SaturationConfig struct {
	// Maximum number of rounds to apply, where 0 means no limit.
	MaxRounds uint
}

// Saturation is the outcome of equality saturation.
type Saturation struct {
	// Best term once saturation stopped.
	Term *term.Term
	// Cost of best term.
	Cost float64
	// Best term at the start of each round.
	Terms []string
	// Reports of each round applied.
	Rounds []RoundReport
	// Indicates saturation stopped at a fixpoint, rather than being cut short.
	Fixpoint bool
}

// Saturate repeatedly applies a set of rules until the best term of a given
// class no longer changes.  If the e-graph is already saturated for that class,
// no rules are applied and the current best term is returned.  The saturation
// flag does not record the rules used, hence callers which change the rule set
// must call ResetSaturation first.
func (g *EGraph) Saturate(rules []term.Rule, root ClassId) (Saturation, error) {
	return g.SaturateWith(rules, root, SaturationConfig{}, nil)
}

// SaturateWith is as for Saturate, but with an explicit configuration and an
// optional observer.  The observer is notified of the best term at the start
// of each round, and of each step within each round.
func (g *EGraph) SaturateWith(rules []term.Rule, root ClassId, config SaturationConfig,
	observer Observer) (Saturation, error) {
	var (
		result Saturation
		stats  = util.NewPerfStats()
		prev   string
	)
	//
	defer stats.Log("Equality saturation")
	//
	for round := uint(0); ; round++ {
		best, err := g.Extract(root)
		if err != nil {
			return result, err
		}
		//
		result.Term, result.Cost = best.Term, best.Cost
		//
		if (g.saturated && g.uf.Find(root) == g.fixpoint) || (round > 0 && best.Term.String() == prev) {
			g.saturated = true
			g.fixpoint = g.uf.Find(root)
			result.Fixpoint = true
			//
			return result, nil
		} else if config.MaxRounds != 0 && round == config.MaxRounds {
			return result, nil
		}
		//
		prev = best.Term.String()
		result.Terms = append(result.Terms, prev)
		//
		if observer != nil {
			observer.Notify(g, Event{Kind: EXTRACTED, Term: best.Term, Cost: best.Cost})
		}
		//
		report := g.ApplyRoundObserved(rules, observer)
		result.Rounds = append(result.Rounds, report)
		//
		log.Debugf("round %d: best %s (cost %g), %d rewrites, %d merges, %d classes", round, prev,
			best.Cost, len(report.Rewrites), report.Merges(), report.Classes)
	}
}
