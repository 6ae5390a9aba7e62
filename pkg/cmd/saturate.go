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
	"strconv"

	"github.com/consensys/go-eqsat/pkg/egraph"
	"github.com/consensys/go-eqsat/pkg/util/termio"
	"github.com/spf13/cobra"
)

var saturateCmd = &cobra.Command{
	Use:   "saturate [flags] expression",
	Short: "Rewrite an expression into its cheapest equivalent form.",
	Long: `Rewrite an expression into its cheapest equivalent form.
	Rules are applied in rounds until the cheapest term no longer changes (or
	the maximum number of rounds is reached).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		expr := readExpression(args[0])
		rules := readRules(cmd)
		config := egraph.SaturationConfig{MaxRounds: GetUint(cmd, "max-rounds")}
		//
		g := egraph.NewEGraph()
		root := g.AddTerm(expr)
		//
		res, err := g.SaturateWith(rules, root, config, nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		if GetFlag(cmd, "report") {
			printRounds(res, g, useAnsiEscapes(cmd))
		}
		//
		fmt.Printf("%s (cost %g)\n", res.Term.String(), res.Cost)
		//
		if !res.Fixpoint {
			fmt.Printf("stopped after %d rounds without reaching a fixpoint\n", len(res.Rounds))
		}
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [flags] expression",
	Short: "Extract the cheapest term of an expression without rewriting.",
	Long: `Extract the cheapest term of an expression without rewriting.
	With --costs, the cost of every e-class is also reported.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		g := egraph.NewEGraph()
		root := g.AddTerm(readExpression(args[0]))
		//
		ext, err := g.Extract(root)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		if GetFlag(cmd, "costs") {
			tbl := termio.NewTable(3)
			tbl.AddRow("class", "nodes", "cost")
			//
			snap := g.Classes()
			//
			for _, id := range snap.Ids() {
				tbl.AddRow(fmt.Sprintf("#%d", id), strconv.Itoa(len(snap.Nodes(id))),
					strconv.FormatFloat(ext.Costs[id], 'g', -1, 64))
			}
			//
			writeTable(tbl, useAnsiEscapes(cmd))
		}
		//
		fmt.Printf("%s (cost %g)\n", ext.Term.String(), ext.Cost)
	},
}

// Print a table summarising each round of saturation.
func printRounds(res egraph.Saturation, g *egraph.EGraph, ansi bool) {
	tbl := termio.NewTable(6)
	title := tbl.AddRow("round", "best term", "rewrites", "merges", "unmatched", "classes")
	tbl.SetRowEscape(title, termio.BoldAnsiEscape())
	//
	for i, r := range res.Rounds {
		row := tbl.AddRow(strconv.Itoa(i), res.Terms[i], strconv.Itoa(len(r.Rewrites)),
			strconv.FormatUint(uint64(r.Merges()), 10), strconv.Itoa(len(r.Unmatched)),
			strconv.FormatUint(uint64(r.Classes), 10))
		// Highlight rounds which improved the best term
		if i+1 < len(res.Terms) && res.Terms[i+1] != res.Terms[i] {
			tbl.SetEscape(1, row, termio.NewAnsiEscape().FgColour(termio.TERM_GREEN))
		}
	}
	//
	tbl.SetMaxWidths(termio.TerminalWidth(os.Stdout, 120) / 2)
	writeTable(tbl, ansi)
	fmt.Printf("%d classes, %d nodes, %d hash-cons entries\n", g.NumClasses(), g.NumNodes(), g.HashConsSize())
}

func writeTable(tbl *termio.Table, ansi bool) {
	tbl.AnsiEscapes(ansi)
	//
	if err := tbl.Write(os.Stdout); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.AddCommand(saturateCmd)
	rootCmd.AddCommand(extractCmd)
	addRuleFlags(saturateCmd)
	saturateCmd.Flags().Uint("max-rounds", 0, "maximum number of rounds to apply (0 means no limit)")
	saturateCmd.Flags().Bool("report", false, "report details of each round")
	saturateCmd.Flags().Bool("ansi", false, "force use of ANSI escapes")
	extractCmd.Flags().Bool("costs", false, "report the cost of every e-class")
	extractCmd.Flags().Bool("ansi", false, "force use of ANSI escapes")
}
