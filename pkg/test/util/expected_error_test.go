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
package util

import (
	"testing"

	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/consensys/go-eqsat/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ExpectedError_01(t *testing.T) {
	srcfile := source.NewSourceString(";;error:2:1-19:y in rule r2: unbound variable\n(* x 2) => (+ y 1)\n")
	items, errs := ReadExpectedErrors(srcfile)
	require.Empty(t, errs)
	require.Len(t, items, 1)
	//
	assert.Equal(t, 2, items[0].Rule.Number())
	assert.Equal(t, term.ErrUnboundVariable, items[0].Cause)
	assert.Equal(t, "y in rule r2: unbound variable", items[0].Error.Message())
	assert.Equal(t, source.NewSpan(46, 64), items[0].Error.Span())
	assert.NoError(t, checkRejectedRule(items[0]))
}

func Test_ExpectedError_02(t *testing.T) {
	// Must follow the expected error
	checkMalformedExpectation(t, "(a) => (b) => (c)\n;;error:1:1-18:bad: invalid rule")
}

func Test_ExpectedError_03(t *testing.T) {
	// Must refer to a rule
	checkMalformedExpectation(t, ";;error:2:1-5:bad: invalid rule\n; no\n(a) => (b)")
	checkMalformedExpectation(t, ";;error:3:1-5:bad: invalid rule\n(a) => (b)")
}

func Test_ExpectedError_04(t *testing.T) {
	// Must cover the whole rule
	checkMalformedExpectation(t, ";;error:2:1-5:bad: invalid rule\n(a) => (b) => (c)")
	checkMalformedExpectation(t, ";;error:2:2-18:bad: invalid rule\n(a) => (b) => (c)")
}

func Test_ExpectedError_05(t *testing.T) {
	// Must end with a known cause
	checkMalformedExpectation(t, ";;error:2:1-18:bad arrow\n(a) => (b) => (c)")
	checkMalformedExpectation(t, ";;error:2:1-18\n(a) => (b) => (c)")
}

func Test_ExpectedError_06(t *testing.T) {
	// Rejected, but not for the expected cause
	items, errs := ReadExpectedErrors(source.NewSourceString(";;error:2:1-18:bad: unbound variable\n(a) => (b) => (c)"))
	require.Empty(t, errs)
	require.Len(t, items, 1)
	assert.Error(t, checkRejectedRule(items[0]))
	// Not rejected at all
	items, errs = ReadExpectedErrors(source.NewSourceString(";;error:2:1-15:bad: invalid rule\n(* x 2) => (x)"))
	require.Empty(t, errs)
	require.Len(t, items, 1)
	assert.Error(t, checkRejectedRule(items[0]))
}

func checkMalformedExpectation(t *testing.T, text string) {
	items, errs := ReadExpectedErrors(source.NewSourceString(text))
	assert.Empty(t, items)
	assert.Len(t, errs, 1)
}
