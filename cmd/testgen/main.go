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
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/consensys/go-eqsat/pkg/cmd"
	"github.com/consensys/go-eqsat/pkg/egraph"
	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/consensys/go-eqsat/pkg/util/source"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Uint("max-depth", 2, "Maximum depth of generated expressions")
	rootCmd.Flags().Uint("max-terms", 5000, "Maximum number of expressions to generate")
	rootCmd.Flags().StringArray("leaf", []string{"a", "b", "1", "2"}, "Leaf to use in generated expressions")
	rootCmd.Flags().Uint("samples", 16, "Number of random points at which to compare terms")
	rootCmd.Flags().BoolP("verbose", "v", false, "increase logging verbosity")
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "testgen [flags] model",
	Short: "Test generation utility for go-eqsat.",
	Run: func(c *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(c.UsageString())
			os.Exit(1)
		}
		//
		if cmd.GetFlag(c, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		var cfg TestGenConfig
		// Lookup model
		cfg.model = findModel(args[0])
		cfg.maxDepth = cmd.GetUint(c, "max-depth")
		cfg.maxTerms = cmd.GetUint(c, "max-terms")
		cfg.leaves = cmd.GetStringArray(c, "leaf")
		cfg.samples = cmd.GetUint(c, "samples")
		// Read rules
		filename := fmt.Sprintf("%s.rules", cfg.model.Name)
		rules := readRulesFile(path.Join("testdata", filename))
		// Generate & split cases
		valid, invalid := generateTestCases(cfg, rules)
		// Write out
		writeTestCases(cfg.model, "auto.accepts", valid)
		//
		for _, c := range invalid {
			log.Errorf("%s rejected by oracle", c)
		}
		//
		if len(invalid) > 0 {
			os.Exit(2)
		}
	},
}

// TestGenConfig encapsulates configuration related to test generation.
type TestGenConfig struct {
	model    Model
	maxDepth uint
	maxTerms uint
	leaves   []string
	samples  uint
}

// OracleFn defines a function which determines whether or not the output of
// saturation for a given input is acceptable.
type OracleFn = func(cfg TestGenConfig, input *term.Term, output *term.Term) bool

// Model represents a hard-coded oracle for a given rule set.
type Model struct {
	// Name of the model in question
	Name string
	// Operators used in generated expressions
	Operators []string
	// Predicate for determining which outputs to accept
	Oracle OracleFn
}

// Case is a generated test case.
type Case struct {
	input  *term.Term
	output *term.Term
}

func (c Case) String() string {
	return fmt.Sprintf("%s => %s", c.input.Expr(), c.output.Expr())
}

var models []Model = []Model{
	{"strength", []string{"*", "/"}, soundModel},
	{"identity", []string{"+", "*"}, soundModel},
	{"defaults", []string{"*", "/"}, soundModel},
	{"commute", []string{"+", "-"}, soundModel},
}

func findModel(name string) Model {
	for _, m := range models {
		if m.Name == name {
			return m
		}
	}
	//
	panic(fmt.Sprintf("unknown model \"%s\"", name))
}

// Generate test cases by saturating every expression up to a given depth.
func generateTestCases(cfg TestGenConfig, rules []term.Rule) ([]Case, []Case) {
	valid := make([]Case, 0)
	invalid := make([]Case, 0)
	//
	for _, input := range enumerateTerms(cfg) {
		g := egraph.NewEGraph()
		root := g.AddTerm(input)
		//
		res, err := g.Saturate(rules, root)
		if err != nil {
			panic(err)
		}
		//
		c := Case{input, res.Term}
		// Check whether output is valid or not (according to the oracle)
		if cfg.model.Oracle(cfg, input, res.Term) {
			valid = append(valid, c)
		} else {
			invalid = append(invalid, c)
		}
	}
	// Done
	return valid, invalid
}

// Enumerate all terms up to the maximum depth, built from the configured
// leaves and the model's operators.
func enumerateTerms(cfg TestGenConfig) []*term.Term {
	var terms []*term.Term
	//
	for _, leaf := range cfg.leaves {
		terms = append(terms, term.NewLeaf(leaf))
	}
	//
	for depth := uint(1); depth <= cfg.maxDepth; depth++ {
		var next []*term.Term
		//
		for _, op := range cfg.model.Operators {
			for _, lhs := range terms {
				for _, rhs := range terms {
					next = append(next, term.NewBinary(op, lhs, rhs))
					//
					if uint(len(terms)+len(next)) >= cfg.maxTerms {
						log.Warnf("stopping at %d terms", cfg.maxTerms)
						return append(terms, next...)
					}
				}
			}
		}
		// Keep only terms of exactly this depth
		next = slices.DeleteFunc(next, func(t *term.Term) bool { return depthOf(t) != depth })
		terms = append(terms, next...)
	}
	//
	return terms
}

func depthOf(t *term.Term) uint {
	if t.IsLeaf() {
		return 0
	}
	//
	return 1 + max(depthOf(t.Args[0]), depthOf(t.Args[1]))
}

func writeTestCases(model Model, ext string, cases []Case) {
	var sb strings.Builder
	// Construct filename
	filename := fmt.Sprintf("testdata/%s.%s", model.Name, ext)
	// Generate lines
	for _, c := range cases {
		sb.WriteString(c.String())
		sb.WriteString("\n")
	}
	// Write the file
	if err := os.WriteFile(filename, []byte(sb.String()), 0644); err != nil {
		panic(err)
	}
	// Log what happened
	log.Infof("Wrote %s (%d cases)\n", filename, len(cases))
}

func readRulesFile(filename string) []term.Rule {
	// Read rules file
	bytes, err := os.ReadFile(filename)
	// Handle errors
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	// Attempt to parse rules
	rules, serr := term.ParseRules(source.NewSourceFile(filename, bytes))
	// Check whether parsed successfully or not
	if serr == nil {
		return rules
	}
	// Errors
	fmt.Println(serr)
	os.Exit(1)
	// unreachable
	return nil
}

// ============================================================================
// Models
// ============================================================================

// Output must cost no more than the input, and agree with it at random points.
func soundModel(cfg TestGenConfig, input *term.Term, output *term.Term) bool {
	if output.Cost() > input.Cost() {
		return false
	}
	//
	rng := rand.New(rand.NewSource(int64(input.Size())))
	//
	for i := uint(0); i < cfg.samples; i++ {
		if !input.AgreesWith(output, term.RandomEnv(rng, input, output)) {
			return false
		}
	}
	//
	return true
}
