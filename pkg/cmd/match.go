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
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/go-eqsat/pkg/dot"
	"github.com/consensys/go-eqsat/pkg/egraph"
	"github.com/consensys/go-eqsat/pkg/session"
	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [flags] expression pattern",
	Short: "Match a pattern against the e-graph of an expression.",
	Long: `Match a pattern against the e-graph of an expression.
	Reports each matching e-class, along with the cheapest term bound to each
	pattern variable.  When rules are given, the expression is saturated
	first.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		g, _ := buildEGraph(cmd, args[0])
		pattern := readExpression(args[1])
		matches := g.Match(pattern)
		//
		for _, m := range matches {
			fmt.Printf("#%d %s %s\n", m.Class, bestTerm(g, m.Class), m.Bindings.String())
			//
			for _, v := range pattern.Variables() {
				fmt.Printf("\t%s = %s\n", v, bestTerm(g, m.Bindings[v]))
			}
		}
		//
		fmt.Printf("%d match(es)\n", len(matches))
	},
}

var dotCmd = &cobra.Command{
	Use:   "dot [flags] expression",
	Short: "Render the e-graph of an expression using Graphviz.",
	Long: `Render the e-graph of an expression using Graphviz.
	The DOT text is printed unless an output directory is given, in which case
	it is exported in the given format (which requires the "dot" executable for
	formats other than "dot").`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		g, root := buildEGraph(cmd, args[0])
		options := dot.DefaultOptions()
		//
		if GetFlag(cmd, "mark-root") {
			options = options.WithMarked(root)
		}
		//
		text := dot.Render(g, options)
		output := GetString(cmd, "output")
		//
		if output == "" {
			fmt.Print(text)
			return
		}
		//
		path, err := dot.Export(context.Background(), text, output, "egraph", GetString(cmd, "format"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		fmt.Printf("wrote %s\n", path)
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules [flags] file(s)",
	Short: "List the rules of one or more rule files.",
	Long: `List the rules of one or more rule files.
	Rule files are either JSON or YAML rule libraries, or text files with one
	rule per line.  With --output, the rules are written as a rule library
	(including reversals, as when added interactively).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var rules []term.Rule
		//
		for _, filename := range args {
			rules = append(rules, readRulesFile(filename)...)
		}
		//
		for _, r := range rules {
			fmt.Println(r.String())
		}
		//
		if output := GetString(cmd, "output"); output != "" {
			writeRulesLibrary(rules, output)
		}
	},
}

// Construct the e-graph of an expression, saturating it with any rules given.
func buildEGraph(cmd *cobra.Command, text string) (*egraph.EGraph, egraph.ClassId) {
	g := egraph.NewEGraph()
	root := g.AddTerm(readExpression(text))
	//
	if rules := readRules(cmd); len(rules) > 0 {
		config := egraph.SaturationConfig{MaxRounds: GetUint(cmd, "max-rounds")}
		//
		if _, err := g.SaturateWith(rules, root, config, nil); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	}
	//
	return g, root
}

func bestTerm(g *egraph.EGraph, id egraph.ClassId) string {
	ext, err := g.Extract(id)
	if err != nil {
		return err.Error()
	}
	//
	return ext.Term.String()
}

// Write a set of rules as a rule library, whose format is determined by the
// file extension.
func writeRulesLibrary(rules []term.Rule, filename string) {
	svc := session.NewService()
	//
	for _, r := range rules {
		if _, err := svc.AddRule(r.Lhs.Expr(), r.Rhs.Expr()); err != nil {
			fmt.Printf("skipping %s (%s)\n", r.String(), err)
		}
	}
	//
	format, err := session.FormatOf(filename)
	if err == nil {
		var file *os.File
		//
		if file, err = os.Create(filepath.Clean(filename)); err == nil {
			err = svc.SaveRules(file, format)
			//
			if cerr := file.Close(); err == nil {
				err = cerr
			}
		}
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	fmt.Printf("wrote %d rules to %s\n", len(svc.Rules()), filename)
}

func init() {
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(dotCmd)
	rootCmd.AddCommand(rulesCmd)
	//
	for _, cmd := range []*cobra.Command{matchCmd, dotCmd} {
		addRuleFlags(cmd)
		cmd.Flags().Uint("max-rounds", 0, "maximum number of rounds to apply (0 means no limit)")
	}
	//
	dotCmd.Flags().String("format", "dot", "export format (dot, pdf, svg or png)")
	dotCmd.Flags().StringP("output", "o", "", "export to a given directory")
	dotCmd.Flags().Bool("mark-root", false, "highlight the class of the expression")
	rulesCmd.Flags().StringP("output", "o", "", "write rules to a rule library (.json or .yaml)")
}
