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
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/consensys/go-eqsat/pkg/util/source"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the rule files and the corresponding cases (accepts/rejects) are
// found.
const TestDir = "../../testdata"

// ACCEPTS_EXTENSIONS lists the extensions of files holding cases whose
// expected output is the cheapest term found.  Those ending in "auto.accepts"
// are generated by testgen.
var ACCEPTS_EXTENSIONS = []string{"accepts", "auto.accepts"}

// REJECTS_EXTENSIONS lists the extensions of files holding cases whose
// terms must not be shown equivalent.
var REJECTS_EXTENSIONS = []string{"rejects"}

// Case is a single line of a cases file, of the form "input => output".
type Case struct {
	// Line on which this case was found.
	Line int
	// Input expression
	Input string
	// Output expression
	Output string
}

func (c Case) String() string {
	return fmt.Sprintf("%d: %s => %s", c.Line, c.Input, c.Output)
}

// ReadCasesFile reads the cases of a given file.  Blank lines and lines
// starting with ';' are ignored.  A missing file holds no cases.
func ReadCasesFile(t *testing.T, filename string) []Case {
	bytes, err := os.ReadFile(filename)
	//
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		t.Fatal(err)
	}
	//
	var cases []Case
	//
	for _, line := range source.NewSourceFile(filename, bytes).Lines() {
		contents := strings.TrimSpace(line.String())
		//
		if contents == "" || strings.HasPrefix(contents, ";") {
			continue
		}
		//
		input, output, ok := strings.Cut(contents, "=>")
		if !ok {
			t.Fatalf("%s:%d: malformed case %q", filename, line.Number(), contents)
		}
		//
		cases = append(cases, Case{line.Number(), strings.TrimSpace(input), strings.TrimSpace(output)})
	}
	//
	return cases
}

func readSourceFile(t *testing.T, filename string) *source.File {
	// Read rules file
	bytes, err := os.ReadFile(filename)
	// Check test file read ok
	if err != nil {
		t.Fatal(err)
	}
	// Package up as source file
	return source.NewSourceFile(filename, bytes)
}
