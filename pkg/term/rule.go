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
package term

import (
	"fmt"
	"slices"
	"strings"

	"github.com/consensys/go-eqsat/pkg/util/source"
	"github.com/pkg/errors"
)

// ErrInvalidRule indicates a rewrite rule which is malformed.
var ErrInvalidRule = errors.New("invalid rule")

// ErrUnboundVariable indicates a rewrite rule whose right-hand side uses a
// variable not bound by its left-hand side.
var ErrUnboundVariable = errors.New("unbound variable")

// Rule represents a named rewrite rule "lhs => rhs".  Leaves of either side
// which are not numerals are pattern variables.  Every variable used on the
// right-hand side must occur on the left-hand side.
type Rule struct {
	// Name of this rule
	Name string
	// Pattern to match
	Lhs *Term
	// Template to instantiate for each match
	Rhs *Term
}

// NewRule constructs a rule from two expression strings, each of which must be
// a valid expression in canonical form (see IsValidExpression).
func NewRule(name string, lhs string, rhs string) (Rule, error) {
	if err := Validate(lhs); err != nil {
		return Rule{}, errors.Wrapf(ErrInvalidRule, "lhs of %s (%s)", name, err.Error())
	} else if err := Validate(rhs); err != nil {
		return Rule{}, errors.Wrapf(ErrInvalidRule, "rhs of %s (%s)", name, err.Error())
	}
	//
	return NewRuleFromTerms(name, MustParse(strings.TrimSpace(lhs)), MustParse(strings.TrimSpace(rhs)))
}

// NewRuleFromTerms constructs a rule from two terms, checking that every
// variable of the right-hand side is bound by the left-hand side.
func NewRuleFromTerms(name string, lhs *Term, rhs *Term) (Rule, error) {
	bound := lhs.Variables()
	//
	for _, v := range rhs.Variables() {
		if !slices.Contains(bound, v) {
			return Rule{}, errors.Wrapf(ErrUnboundVariable, "%s in rule %s", v, name)
		}
	}
	//
	return Rule{name, lhs, rhs}, nil
}

// Reverse returns the rule "rhs => lhs" under a given name.  This fails if the
// left-hand side uses variables not bound by the right-hand side.
func (r Rule) Reverse(name string) (Rule, error) {
	return NewRuleFromTerms(name, r.Rhs, r.Lhs)
}

// Equation returns the body of this rule (i.e. without its name), such as
// "(* x 2) => (<< x 1)".  Two rules with the same equation are duplicates.
func (r Rule) Equation() string {
	return fmt.Sprintf("%s => %s", r.Lhs.Expr(), r.Rhs.Expr())
}

func (r Rule) String() string {
	return fmt.Sprintf("%s: %s", r.Name, r.Equation())
}

// ParseRule parses a rule written as "name: lhs => rhs".  The name is optional
// and, when omitted, the given default name is used instead.
func ParseRule(line string, defaultName string) (Rule, error) {
	name := defaultName
	//
	split := strings.Split(line, "=>")
	//
	if len(split) != 2 {
		return Rule{}, errors.Wrapf(ErrInvalidRule, "expected \"lhs => rhs\" (found %q)", line)
	}
	//
	lhs := strings.TrimSpace(split[0])
	rhs := strings.TrimSpace(split[1])
	// Check for rule name
	if i := strings.Index(lhs, ":"); i >= 0 {
		name = strings.TrimSpace(lhs[:i])
		lhs = strings.TrimSpace(lhs[i+1:])
		//
		if name == "" || !atomRegex.MatchString(name) {
			return Rule{}, errors.Wrapf(ErrInvalidRule, "invalid rule name %q", name)
		}
	}
	//
	return NewRule(name, lhs, rhs)
}

// ParseRules parses a rules file, where each non-blank line holds one rule in
// the form accepted by ParseRule.  Lines starting with ';' are comments.
// Unnamed rules are named after their line number.  Errors are reported as
// syntax errors against the offending line.
func ParseRules(srcfile *source.File) ([]Rule, *source.SyntaxError) {
	var rules []Rule
	//
	for _, line := range srcfile.Lines() {
		contents := strings.TrimSpace(line.String())
		//
		if contents == "" || strings.HasPrefix(contents, ";") {
			continue
		}
		//
		rule, err := ParseRule(contents, fmt.Sprintf("r%d", line.Number()))
		if err != nil {
			return nil, srcfile.SyntaxError(source.NewSpan(line.Start(), line.Start()+line.Length()), err.Error())
		}
		//
		rules = append(rules, rule)
	}
	//
	return rules, nil
}
