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
	"slices"
	"strings"
)

// OPERATORS identifies the set of binary operators recognised in expressions.
// All other keys are leaves (i.e. variables or numerals).
var OPERATORS = []string{"+", "-", "*", "/", "<<", ">>"}

// COST_MODEL gives the cost of each operator.  Any key not listed here (i.e.
// variables and numerals) costs nothing.
var COST_MODEL = map[string]uint{
	"+":  1,
	"-":  1,
	"<<": 1,
	">>": 1,
	"*":  2,
	"/":  3,
}

// Term represents an immutable expression tree.  Every term has a key, which is
// either an operator symbol, a variable name or a numeral.  Operators always
// have exactly two arguments, whilst leaves have none.
type Term struct {
	// Key of this term.
	Key string
	// Arguments of this term (if any).
	Args []*Term
}

// NewLeaf constructs a term with no arguments, such as a variable or numeral.
func NewLeaf(key string) *Term {
	return &Term{key, nil}
}

// NewBinary constructs a term applying a binary operator to two arguments.
func NewBinary(op string, lhs *Term, rhs *Term) *Term {
	return &Term{op, []*Term{lhs, rhs}}
}

// IsOperator determines whether a given key is a binary operator.
func IsOperator(key string) bool {
	return slices.Contains(OPERATORS, key)
}

// IsNumeral determines whether a given key represents a numeral.  Numerals are
// literals in patterns, whilst any other leaf in a pattern is a variable.
func IsNumeral(key string) bool {
	return len(key) > 0 && key[0] >= '0' && key[0] <= '9'
}

// OperatorCost returns the cost of a given key under the fixed cost model.
func OperatorCost(key string) uint {
	return COST_MODEL[key]
}

// IsLeaf checks whether this term has no arguments.
func (t *Term) IsLeaf() bool {
	return len(t.Args) == 0
}

// IsVariable checks whether this term, when used as a pattern, denotes a
// pattern variable.
func (t *Term) IsVariable() bool {
	return t.IsLeaf() && !IsNumeral(t.Key) && !IsOperator(t.Key)
}

// Equals checks whether two terms are structurally identical.
func (t *Term) Equals(other *Term) bool {
	if t.Key != other.Key || len(t.Args) != len(other.Args) {
		return false
	}
	//
	for i, arg := range t.Args {
		if !arg.Equals(other.Args[i]) {
			return false
		}
	}
	//
	return true
}

// Size returns the number of nodes in this term.
func (t *Term) Size() uint {
	size := uint(1)
	//
	for _, arg := range t.Args {
		size += arg.Size()
	}
	//
	return size
}

// Cost determines the cost of this term under the fixed cost model.
func (t *Term) Cost() uint {
	cost := OperatorCost(t.Key)
	//
	for _, arg := range t.Args {
		cost += arg.Cost()
	}
	//
	return cost
}

// Variables returns the distinct pattern variables of this term, in order of
// their first occurrence.
func (t *Term) Variables() []string {
	var vars []string
	//
	t.walk(func(n *Term) {
		if n.IsVariable() && !slices.Contains(vars, n.Key) {
			vars = append(vars, n.Key)
		}
	})
	//
	return vars
}

// String returns the textual form of this term, where leaves are written
// without enclosing braces (e.g. "a" or "(+ a 2)").
func (t *Term) String() string {
	var builder strings.Builder
	//
	t.write(&builder)
	//
	return builder.String()
}

// Expr returns the textual form of this term as a complete expression, which is
// always parenthesised at the outermost level (e.g. "(a)" or "(+ a 2)").
func (t *Term) Expr() string {
	if t.IsLeaf() {
		return "(" + t.Key + ")"
	}
	//
	return t.String()
}

func (t *Term) write(builder *strings.Builder) {
	if t.IsLeaf() {
		builder.WriteString(t.Key)
		return
	}
	//
	builder.WriteString("(")
	builder.WriteString(t.Key)
	//
	for _, arg := range t.Args {
		builder.WriteString(" ")
		arg.write(builder)
	}
	//
	builder.WriteString(")")
}

// Visit every node of this term in pre-order.
func (t *Term) walk(fn func(*Term)) {
	fn(t)
	//
	for _, arg := range t.Args {
		arg.walk(fn)
	}
}
