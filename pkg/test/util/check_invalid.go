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
	"errors"
	"fmt"
	"testing"

	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/consensys/go-eqsat/pkg/util/source"
)

// CheckInvalid checks that a given rules file is rejected with exactly the
// errors described by the ";;error" attributes at the start of the file.
func CheckInvalid(t *testing.T, test string) {
	var filename = fmt.Sprintf("%s/invalid/%s.rules", TestDir, test)
	// Enable testing each file in parallel
	t.Parallel()
	//
	srcfile := readSourceFile(t, filename)
	// Extract expected errors for comparison
	items, errs := ReadExpectedErrors(srcfile)
	//
	if len(errs) > 0 {
		// Report any errors encountered parsing the expectations themselves.
		t.Fatal(errors.Join(errs...))
	} else if len(items) == 0 {
		t.Fatalf("%s expects no errors", filename)
	}
	// Each rejected rule must fail on its own, and for the expected cause
	for _, item := range items {
		if err := checkRejectedRule(item); err != nil {
			t.Error(err)
		}
	}
	// Parse rules to produce errors
	var actual []source.SyntaxError
	//
	if _, err := term.ParseRules(srcfile); err != nil {
		actual = append(actual, *err)
	}
	//
	expected := make([]source.SyntaxError, len(items))
	for i, item := range items {
		expected[i] = item.Error
	}
	//
	checkExpectedErrors(t, srcfile, actual, expected)
}

func checkExpectedErrors(t *testing.T, srcfile *source.File, actual, expected []source.SyntaxError) {
	if len(actual) == 0 {
		t.Fatalf("Error %s should have been rejected\n", srcfile.Filename())
	}
	//
	failed := false
	// Construct initial message
	msg := fmt.Sprintf("Error %s\n", srcfile.Filename())
	//
	for i := 0; i < max(len(actual), len(expected)); i++ {
		if i < len(actual) && i < len(expected) {
			if expected[i].Message() == actual[i].Message() && expected[i].Span() == actual[i].Span() {
				continue
			}
		}
		//
		failed = true
		//
		if i < len(actual) {
			msg = fmt.Sprintf("%s unexpected error %s\n", msg, errorToString(actual[i]))
		}
		//
		if i < len(expected) {
			msg = fmt.Sprintf("%s   expected error %s\n", msg, errorToString(expected[i]))
		}
	}
	//
	if failed {
		t.Fatal(msg)
	}
}

// Convert a span into a useful human readable string.
func errorToString(err source.SyntaxError) string {
	span := err.Span()
	line := err.FirstEnclosingLine()
	lineOffset := span.Start() - line.Start()
	// Calculate length (ensures don't overflow line)
	length := min(line.Length()-lineOffset, span.Length())
	//
	return fmt.Sprintf("%s:%d:%d-%d %s", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, err.Message())
}
