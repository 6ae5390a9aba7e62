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
package cmd

import (
	"fmt"
	"os"

	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/consensys/go-eqsat/pkg/util/source"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] expression(s)",
	Short: "Check one or more expressions are well-formed.",
	Long: `Check one or more expressions are well-formed.
	Expressions are either a parenthesised atom, such as "(a)", or a binary
	operator application, such as "(+ a (* b 2))".  An expression is valid
	only when written in its canonical form.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		failed := false
		//
		for _, arg := range args {
			if !checkExpression(arg, GetFlag(cmd, "quiet")) {
				failed = true
			}
		}
		//
		if failed {
			os.Exit(2)
		}
	},
}

// Check a single expression, reporting any syntax error with highlighting.
func checkExpression(text string, quiet bool) bool {
	t, serr := term.ParseSource(source.NewSourceFile("<expr>", []byte(text)))
	//
	if serr != nil {
		printSyntaxError(serr)
		return false
	} else if err := term.Validate(text); err != nil {
		fmt.Println(err)
		return false
	} else if !quiet {
		fmt.Printf("%s: ok (cost %d, size %d)\n", t.Expr(), t.Cost(), t.Size())
	}
	//
	return true
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolP("quiet", "q", false, "report errors only")
}
