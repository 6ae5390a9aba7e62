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
	"math/big"
	"math/rand"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// MAX_SHIFT bounds the shift amounts for which evaluation is defined.
const MAX_SHIFT = 256

// Env assigns values to the variables of a term.
type Env map[string]fr.Element

// RandomEnv assigns a random value to each variable of the given terms.
func RandomEnv(rng *rand.Rand, terms ...*Term) Env {
	env := make(Env)
	//
	for _, t := range terms {
		for _, v := range t.Variables() {
			if _, ok := env[v]; !ok {
				env[v] = fr.NewElement(rng.Uint64())
			}
		}
	}
	//
	return env
}

// Evaluate a term over the scalar field of BLS12-377, where shifting left (or
// right) by n multiplies (or divides) by 2^n.  Evaluation is undefined (i.e.
// returns false) for an unassigned variable, a division by zero, or a shift
// amount which is not a small constant.
func (t *Term) Evaluate(env Env) (fr.Element, bool) {
	var result fr.Element
	//
	if t.IsLeaf() && IsNumeral(t.Key) {
		_, err := result.SetString(t.Key)
		return result, err == nil
	} else if t.IsLeaf() {
		val, ok := env[t.Key]
		return val, ok
	}
	//
	lhs, ok := t.Args[0].Evaluate(env)
	if !ok {
		return result, false
	}
	//
	rhs, ok := t.Args[1].Evaluate(env)
	if !ok {
		return result, false
	}
	//
	switch t.Key {
	case "+":
		result.Add(&lhs, &rhs)
	case "-":
		result.Sub(&lhs, &rhs)
	case "*":
		result.Mul(&lhs, &rhs)
	case "/":
		if rhs.IsZero() {
			return result, false
		}
		//
		result.Div(&lhs, &rhs)
	case "<<", ">>":
		if !rhs.IsUint64() || rhs.Uint64() >= MAX_SHIFT {
			return result, false
		}
		//
		var pow fr.Element
		//
		pow.Exp(fr.NewElement(2), new(big.Int).SetUint64(rhs.Uint64()))
		//
		if t.Key == "<<" {
			result.Mul(&lhs, &pow)
		} else {
			result.Div(&lhs, &pow)
		}
	default:
		return result, false
	}
	//
	return result, true
}

// AgreesWith determines whether another term has the same value as this term
// under a given environment.  This holds trivially when this term is undefined
// there.
func (t *Term) AgreesWith(other *Term, env Env) bool {
	lhs, ok := t.Evaluate(env)
	if !ok {
		return true
	}
	//
	rhs, ok := other.Evaluate(env)
	//
	return ok && lhs.Equal(&rhs)
}
