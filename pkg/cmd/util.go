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
	"path"
	"strings"

	"github.com/consensys/go-eqsat/pkg/session"
	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/consensys/go-eqsat/pkg/util/source"
	"github.com/consensys/go-eqsat/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned integer flag, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetStringArray gets an expected string array flag, or exits if an error
// arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Add the flags used by commands which read rewrite rules.
func addRuleFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("rules", nil, "read rules from a file (.json, .yaml or .rules)")
	cmd.Flags().StringArray("rule", nil, "add a rule of the form \"[name:] lhs => rhs\"")
	cmd.Flags().Bool("defaults", false, "include the default rules")
}

// Read the expression given on the command line, or exit with a highlighted
// syntax error.
func readExpression(text string) *term.Term {
	srcfile := source.NewSourceFile("<expr>", []byte(text))
	//
	t, err := term.ParseSource(srcfile)
	if err != nil {
		printSyntaxError(err)
		os.Exit(2)
	}
	//
	return t
}

// Read the rules specified by the --rules, --rule and --defaults flags of a
// command, or exit if any cannot be read.
func readRules(cmd *cobra.Command) []term.Rule {
	var rules []term.Rule
	//
	if GetFlag(cmd, "defaults") {
		for i, r := range session.DEFAULT_RULES {
			rules = append(rules, mustRule(term.NewRule(fmt.Sprintf("d%d", i), r[0], r[1])))
		}
	}
	//
	for _, filename := range GetStringArray(cmd, "rules") {
		rules = append(rules, readRulesFile(filename)...)
	}
	//
	for i, line := range GetStringArray(cmd, "rule") {
		rules = append(rules, mustRule(term.ParseRule(line, fmt.Sprintf("r%d", i))))
	}
	//
	if len(rules) == 0 {
		log.Warn("no rules given (see --rules, --rule or --defaults)")
	}
	//
	log.Debugf("read %d rules", len(rules))
	//
	return rules
}

// Read a rules file using a parser based on the extension of the filename.
func readRulesFile(filename string) []term.Rule {
	if path.Ext(filename) != ".rules" {
		rules, err := session.ReadRulesFile(filename)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		return rules
	}
	//
	bytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	rules, serr := term.ParseRules(source.NewSourceFile(filename, bytes))
	if serr != nil {
		printSyntaxError(serr)
		os.Exit(2)
	}
	//
	return rules
}

func mustRule(rule term.Rule, err error) term.Rule {
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return rule
}

// Determine whether output should use ANSI escapes.
func useAnsiEscapes(cmd *cobra.Command) bool {
	return GetFlag(cmd, "ansi") || termio.IsTerminal(os.Stdout)
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	span := err.Span()
	line := err.FirstEnclosingLine()
	lineOffset := span.Start() - line.Start()
	// Calculate length (ensures don't overflow line)
	length := max(1, min(line.Length()-lineOffset, span.Length()))
	// Print error + line number
	fmt.Printf("%s:%d:%d-%d %s\n", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, err.Message())
	// Print separator line
	fmt.Println()
	// Print line
	fmt.Println(line.String())
	// Print indent (todo: account for tabs)
	fmt.Print(strings.Repeat(" ", lineOffset))
	// Print highlight
	fmt.Println(strings.Repeat("^", length))
}
