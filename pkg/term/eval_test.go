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
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Eval_01(t *testing.T) {
	env := Env{"a": fr.NewElement(5), "b": fr.NewElement(3)}
	//
	checkEval(t, "(+ a b)", env, 8)
	checkEval(t, "(- a b)", env, 2)
	checkEval(t, "(* a 2)", env, 10)
	checkEval(t, "(<< a 2)", env, 20)
	checkEval(t, "(>> (<< b 3) 1)", env, 12)
	checkEval(t, "(/ (* a b) b)", env, 5)
	checkEval(t, "(7)", env, 7)
}

func Test_Eval_02(t *testing.T) {
	env := Env{"a": fr.NewElement(0)}
	// Undefined
	checkUndefined(t, "(/ 1 a)", env)
	checkUndefined(t, "(+ a b)", env)
	checkUndefined(t, "(<< 1 300)", env)
	checkUndefined(t, "(* (/ 2 0) a)", env)
}

func Test_Eval_03(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	lhs := MustParse("(/ (* a 2) 2)")
	//
	for i := 0; i < 10; i++ {
		env := RandomEnv(rng, lhs)
		assert.Len(t, env, 1)
		assert.True(t, lhs.AgreesWith(MustParse("(a)"), env))
		assert.True(t, lhs.AgreesWith(MustParse("(* a 1)"), env))
		assert.False(t, lhs.AgreesWith(MustParse("(+ a 1)"), env))
	}
	// Undefined on the left holds trivially
	zero := Env{"x": fr.NewElement(0)}
	assert.True(t, MustParse("(/ x x)").AgreesWith(MustParse("(1)"), zero))
	assert.False(t, MustParse("(1)").AgreesWith(MustParse("(/ x x)"), zero))
}

func checkEval(t *testing.T, input string, env Env, expected uint64) {
	val, ok := MustParse(input).Evaluate(env)
	require.True(t, ok, input)
	//
	want := fr.NewElement(expected)
	assert.True(t, val.Equal(&want), "%s = %s (expected %d)", input, val.String(), expected)
}

func checkUndefined(t *testing.T, input string, env Env) {
	_, ok := MustParse(input).Evaluate(env)
	assert.False(t, ok, input)
}
