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
	"maps"
	"slices"
	"strconv"

	"github.com/consensys/go-eqsat/pkg/dot"
	"github.com/consensys/go-eqsat/pkg/egraph"
	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/google/uuid"
	hset "github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNoEGraph indicates an operation requiring an e-graph was attempted
	// before one was created.
	ErrNoEGraph = errors.New("no e-graph")
	// ErrNoRules indicates an operation requiring rules found none.
	ErrNoRules = errors.New("no rules")
	// ErrDuplicateRule indicates a rule which already exists.
	ErrDuplicateRule = errors.New("rule exists already")
	// ErrHistoryStart indicates an attempt to move before the first step.
	ErrHistoryStart = errors.New("start of history")
	// ErrHistoryEnd indicates an attempt to move beyond the last step.
	ErrHistoryEnd = errors.New("end of history")
	// ErrMalformedFile indicates a rules or session file which cannot be read.
	ErrMalformedFile = errors.New("malformed file")
)

// DEFAULT_RULES are added by AddDefaultRules.
var DEFAULT_RULES = [][2]string{
	{"(* x 2)", "(<< x 1)"},
	{"(/ x x)", "(1)"},
}

// COST_MODEL_BANNER is the first step recorded when extracting.
const COST_MODEL_BANNER = "Cost model: ['+'|'-'|'<<'|'>>']: 1, ['*']: 2, ['/']: 3, [other]: 0"

// Numbered pairs a rule with its number in the rule book.
type Numbered struct {
	Number uint
	Rule   term.Rule
}

// Service manages an interactive equality saturation session.  This comprises
// an e-graph built from a single expression, a numbered book of rules, and a
// history of steps taken (each rendered as a graph).  Steps are grouped into
// "majors", one per operation performed, and a cursor identifies the step
// currently being viewed.  A Service is not safe for concurrent use.
type Service struct {
	id uuid.UUID
	// Rules indexed by number.
	rules map[uint]term.Rule
	// Next rule number to allocate.
	next uint
	// Names of rules applied so far.
	applied *hset.Set[string]
	// Current e-graph (if any), and the class of its expression.
	graph *egraph.EGraph
	root  egraph.ClassId
	expr  string
	// Steps taken so far, grouped by operation.
	history [][]Step
	// Cursor into history.
	major, minor int
	// Layout used for rendering.
	options dot.Options
}

// NewService constructs a fresh session with no e-graph and no rules.
func NewService() *Service {
	return &Service{
		id:      uuid.New(),
		rules:   make(map[uint]term.Rule),
		applied: hset.New[string](0),
		options: dot.DefaultOptions(),
	}
}

// SessionID returns the unique identifier of this session.
func (s *Service) SessionID() string {
	return s.id.String()
}

// Expression returns the expression from which the current e-graph was
// created, or the empty string if there is none.
func (s *Service) Expression() string {
	return s.expr
}

// EGraph returns the current e-graph, and the class of its expression.
func (s *Service) EGraph() (*egraph.EGraph, egraph.ClassId, error) {
	if s.graph == nil {
		return nil, 0, ErrNoEGraph
	}
	//
	return s.graph, s.root, nil
}

// CreateEGraph creates a new e-graph from a given expression.  This resets the
// history and clears the rule book.
func (s *Service) CreateEGraph(expr string) error {
	if err := term.Validate(expr); err != nil {
		return err
	}
	//
	s.expr = term.MustParse(expr).Expr()
	s.graph = egraph.NewEGraph()
	s.root = s.graph.AddTerm(term.MustParse(expr))
	s.rules = make(map[uint]term.Rule)
	s.next = 0
	s.applied = hset.New[string](0)
	s.history = [][]Step{{s.step("EGraph created.")}}
	s.major, s.minor = 0, 0
	//
	log.Debugf("created e-graph for %s", s.expr)
	//
	return nil
}

// AddDefaultRules adds the default rules (and their reversals) to the rule
// book.  Defaults already present are skipped.
func (s *Service) AddDefaultRules() {
	for _, r := range DEFAULT_RULES {
		if _, err := s.AddRule(r[0], r[1]); err != nil {
			log.Debugf("skipping default rule %s => %s (%s)", r[0], r[1], err.Error())
		}
	}
}

// AddRule adds the rule "lhs => rhs" to the rule book, returning its number.
// The reversed rule "rhs => lhs" is also added, provided it is not present
// already and all of its variables are bound.
func (s *Service) AddRule(lhs string, rhs string) (uint, error) {
	rule, err := term.NewRule(strconv.FormatUint(uint64(s.next), 10), lhs, rhs)
	//
	if err != nil {
		return 0, err
	} else if s.contains(rule) {
		return 0, errors.Wrap(ErrDuplicateRule, rule.Equation())
	}
	//
	number := s.insert(rule)
	// Add reversal (if applicable)
	if rev, err := rule.Reverse(strconv.FormatUint(uint64(s.next), 10)); err != nil {
		log.Debugf("not reversing rule %s (%s)", rule.String(), err.Error())
	} else if !s.contains(rev) {
		s.insert(rev)
	}
	//
	return number, nil
}

// Rules returns the rule book in order of number.
func (s *Service) Rules() []Numbered {
	var rules []Numbered
	//
	for _, n := range slices.Sorted(maps.Keys(s.rules)) {
		rules = append(rules, Numbered{n, s.rules[n]})
	}
	//
	return rules
}

// Rule returns the rule with a given number (if it exists).
func (s *Service) Rule(number uint) (term.Rule, bool) {
	rule, ok := s.rules[number]
	return rule, ok
}

// Applied returns the names of all rules applied so far, in sorted order.
func (s *Service) Applied() []string {
	applied := slices.AppendSeq(make([]string, 0, s.applied.Size()), s.applied.Items())
	slices.Sort(applied)
	//
	return applied
}

// Apply one round of the rules with the given numbers, returning the numbers of
// those actually applied.  Unknown numbers are ignored, but at least one rule
// must be applied.
func (s *Service) Apply(numbers []uint) ([]uint, error) {
	var (
		rules   []term.Rule
		applied []uint
	)
	//
	if s.graph == nil {
		return nil, ErrNoEGraph
	}
	//
	for _, n := range numbers {
		if rule, ok := s.rules[n]; ok {
			rules = append(rules, rule)
			applied = append(applied, n)
		}
	}
	//
	if len(rules) == 0 {
		return nil, errors.Wrap(ErrNoRules, "no rules applied")
	}
	//
	obs := s.observer()
	s.graph.ApplyRoundObserved(rules, obs)
	//
	for _, rule := range rules {
		s.applied.Insert(rule.Name)
	}
	//
	s.record(obs.steps)
	//
	return applied, nil
}

// ApplyAll saturates the e-graph using every rule in the rule book.
func (s *Service) ApplyAll() error {
	if s.graph == nil {
		return ErrNoEGraph
	}
	//
	obs := s.observer()
	obs.quiet = true
	//
	if _, err := s.graph.SaturateWith(s.ruleList(), s.root, egraph.SaturationConfig{}, obs); err != nil {
		return err
	}
	//
	s.record(obs.steps)
	//
	return nil
}

// Extract saturates the e-graph using every rule in the rule book, then
// returns the best term.  The best term at the start of each round is
// recorded in the history.
func (s *Service) Extract() (string, error) {
	if s.graph == nil {
		return "", ErrNoEGraph
	}
	//
	obs := s.observer()
	//
	if !s.graph.IsSaturated() {
		obs.steps = append(obs.steps, s.step(COST_MODEL_BANNER))
	}
	//
	res, err := s.graph.SaturateWith(s.ruleList(), s.root, egraph.SaturationConfig{}, obs)
	if err != nil {
		return "", err
	}
	//
	s.record(obs.steps)
	//
	return res.Term.String(), nil
}

// BestTerm returns the best term of the current e-graph without applying any
// rules.
func (s *Service) BestTerm() (string, float64, error) {
	if s.graph == nil {
		return "", 0, ErrNoEGraph
	}
	//
	ext, err := s.graph.Extract(s.root)
	if err != nil {
		return "", 0, err
	}
	//
	return ext.Term.String(), ext.Cost, nil
}

func (s *Service) contains(rule term.Rule) bool {
	for _, r := range s.rules {
		if r.Equation() == rule.Equation() {
			return true
		}
	}
	//
	return false
}

func (s *Service) insert(rule term.Rule) uint {
	number := s.next
	s.rules[number] = rule
	s.next++
	// A fixpoint under the old rule book says nothing about the new one
	if s.graph != nil {
		s.graph.ResetSaturation()
	}
	//
	return number
}

func (s *Service) ruleList() []term.Rule {
	var rules []term.Rule
	//
	for _, n := range s.Rules() {
		rules = append(rules, n.Rule)
	}
	//
	return rules
}

func (s *Service) step(msg string, marked ...egraph.ClassId) Step {
	return Step{msg, dot.Render(s.graph, s.options.WithMarked(marked...))}
}

func (s *Service) observer() *recorder {
	return &recorder{options: s.options}
}

// Record the steps of an operation as a new major (if there were any).
func (s *Service) record(steps []Step) {
	if len(steps) > 0 {
		s.history = append(s.history, steps)
	}
	//
	log.Debugf("recorded %d steps (%d operations)", len(steps), len(s.history))
}

func (n Numbered) String() string {
	return fmt.Sprintf("%d: %s", n.Number, n.Rule.Equation())
}
