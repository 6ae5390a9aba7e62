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
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/consensys/go-eqsat/pkg/dot"
	"github.com/consensys/go-eqsat/pkg/session"
	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/consensys/go-eqsat/pkg/util/termio"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl [flags] [expression]",
	Short: "Explore equality saturation interactively.",
	Long: `Explore equality saturation interactively.
	Rules are added and applied step by step, and each step taken can be
	revisited or exported as a picture.  Type :help for a list of commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		} else if !termio.IsTerminal(os.Stdin) {
			log.Warn("input is not a terminal")
		}
		//
		r := newRepl(session.NewService(), os.Stdout, GetString(cmd, "dir"))
		r.ansi = termio.IsTerminal(os.Stdout)
		//
		if len(args) == 1 {
			r.exec(":new " + args[0])
		}
		//
		r.run(historyFile(GetString(cmd, "history")))
	},
}

// REPL_HELP lists the commands understood by the REPL.
var REPL_HELP = [][2]string{
	{":new EXPR", "create an e-graph for an expression (also EXPR on its own)"},
	{":defaults", "add the default rules"},
	{":rule LHS => RHS", "add a rule (and its reversal)"},
	{":rules", "list the rules"},
	{":apply N...", "apply one round of the given rules"},
	{":applyall", "apply all rules until saturation"},
	{":extract", "saturate and report the cheapest term"},
	{":step", "show the current step"},
	{":dot", "show the current step as DOT"},
	{":back / :fwd", "move to the previous / next step"},
	{":fb / :ff", "move to the previous / next operation"},
	{":save-rules [json|yaml]", "save the rules"},
	{":load-rules FILE", "load rules from a file"},
	{":save [json|yaml]", "save the session"},
	{":load FILE", "load a session from a file"},
	{":export [dot|pdf|svg|png]", "export the current step"},
	{":quit", "leave"},
}

type repl struct {
	svc *session.Service
	out io.Writer
	// Directory for saved and exported files.
	dir string
	// Enables ANSI escapes.
	ansi bool
}

func newRepl(svc *session.Service, out io.Writer, dir string) *repl {
	return &repl{svc, out, dir, false}
}

// Run the read-eval-print loop until the input ends or :quit is entered.
func (r *repl) run(history string) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	//
	if f, err := os.Open(history); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	//
	defer func() {
		if f, err := os.Create(history); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()
	//
	fmt.Fprintln(r.out, "eqsat repl (type :help for commands)")
	//
	for {
		line, ok := readInput(ln)
		if !ok {
			return
		} else if strings.TrimSpace(line) == "" {
			continue
		}
		//
		ln.AppendHistory(strings.ReplaceAll(line, "\n", " "))
		//
		if r.exec(line) {
			return
		}
	}
}

// Read a line of input, continuing over further lines whilst an expression is
// incomplete.
func readInput(ln *liner.State) (string, bool) {
	var builder strings.Builder
	//
	for {
		prompt := "eqsat> "
		if builder.Len() > 0 {
			prompt = "...    "
		}
		//
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		} else if err != nil {
			return "", false
		}
		//
		if builder.Len() > 0 {
			builder.WriteByte('\n')
		}
		//
		builder.WriteString(line)
		//
		input := strings.TrimSpace(builder.String())
		input = strings.TrimSpace(strings.TrimPrefix(input, ":new"))
		//
		if _, err := term.Parse(input); !strings.HasPrefix(input, "(") || !term.IsIncomplete(err) {
			return builder.String(), true
		}
	}
}

// Execute a single command, reporting the outcome.  Returns true when the REPL
// should stop.
func (r *repl) exec(line string) bool {
	line = strings.TrimSpace(line)
	//
	if !strings.HasPrefix(line, ":") {
		line = ":new " + line
	}
	//
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	//
	var err error
	//
	switch cmd {
	case ":quit", ":q":
		return true
	case ":help":
		r.help()
	case ":new":
		if err = r.svc.CreateEGraph(rest); err == nil {
			r.printStep()
		}
	case ":defaults":
		r.svc.AddDefaultRules()
		r.printRules()
	case ":rule":
		err = r.addRule(rest)
	case ":rules":
		r.printRules()
	case ":apply":
		err = r.apply(rest)
	case ":applyall":
		if err = r.svc.ApplyAll(); err == nil {
			r.printOperation()
		}
	case ":extract":
		var best string
		//
		if best, err = r.svc.Extract(); err == nil {
			r.printOperation()
			fmt.Fprintf(r.out, "Best Term: %s\n", best)
		}
	case ":step":
		r.printStep()
	case ":dot":
		var step session.Step
		//
		if step, err = r.svc.CurrentStep(); err == nil {
			fmt.Fprint(r.out, step.Dot)
		}
	case ":back":
		err = r.move(r.svc.MoveBackward)
	case ":fwd":
		err = r.move(r.svc.MoveForward)
	case ":fb":
		err = r.move(r.svc.MoveFastBackward)
	case ":ff":
		err = r.move(r.svc.MoveFastForward)
	case ":save-rules":
		err = r.save(rest, r.svc.SaveRulesFile)
	case ":save":
		err = r.save(rest, r.svc.SaveSessionFile)
	case ":load-rules":
		var n uint
		//
		if n, err = r.svc.LoadRulesFile(rest); err == nil {
			fmt.Fprintf(r.out, "Loaded %d rules.\n", n)
		}
	case ":load":
		var report session.LoadReport
		//
		if report, err = r.svc.LoadSessionFile(rest); err == nil {
			fmt.Fprintln(r.out, report.String())
		}
	case ":export":
		err = r.export(rest)
	default:
		err = errors.Errorf("unknown command %s (type :help for commands)", cmd)
	}
	//
	if err != nil {
		r.fail(err)
	}
	//
	return false
}

func (r *repl) addRule(text string) error {
	lhs, rhs, ok := strings.Cut(text, "=>")
	if !ok {
		return errors.Errorf("expected \"lhs => rhs\" (found %q)", text)
	}
	//
	n, err := r.svc.AddRule(strings.TrimSpace(lhs), strings.TrimSpace(rhs))
	if err != nil {
		return err
	}
	//
	fmt.Fprintf(r.out, "Added rule %d.\n", n)
	r.printRules()
	//
	return nil
}

func (r *repl) apply(text string) error {
	var numbers []uint
	//
	for _, field := range strings.Fields(strings.ReplaceAll(text, ",", " ")) {
		n, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return errors.Errorf("invalid rule number %q", field)
		}
		//
		numbers = append(numbers, uint(n))
	}
	//
	applied, err := r.svc.Apply(numbers)
	if err != nil {
		return err
	}
	//
	fmt.Fprintf(r.out, "Applied rules %v.\n", applied)
	r.printOperation()
	//
	return nil
}

func (r *repl) move(fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	//
	r.printStep()
	//
	return nil
}

func (r *repl) save(text string, fn func(string, session.Format) (string, error)) error {
	format := session.JSON
	//
	switch text {
	case "", "json":
	case "yaml", "yml":
		format = session.YAML
	default:
		return errors.Errorf("unknown format %q (expected json or yaml)", text)
	}
	//
	path, err := fn(r.dir, format)
	if err == nil {
		fmt.Fprintf(r.out, "Saved %s.\n", path)
	}
	//
	return err
}

func (r *repl) export(format string) error {
	if format == "" {
		format = "dot"
	}
	//
	path, err := r.svc.Export(context.Background(), r.dir, format)
	if err != nil {
		log.Warnf("export failed: %s", err)
		return err
	}
	//
	fmt.Fprintf(r.out, "Exported %s.\n", path)
	//
	return nil
}

func (r *repl) help() {
	tbl := termio.NewTable(2)
	//
	for _, h := range REPL_HELP {
		tbl.AddRow(h[0], h[1])
	}
	//
	tbl.AnsiEscapes(r.ansi)
	_ = tbl.Write(r.out)
	fmt.Fprintf(r.out, "Export formats: %s\n", strings.Join(dot.FORMATS, ", "))
}

func (r *repl) printRules() {
	for _, n := range r.svc.Rules() {
		fmt.Fprintln(r.out, n.String())
	}
}

// Print the current step, along with its position in history.
func (r *repl) printStep() {
	step, err := r.svc.CurrentStep()
	if err != nil {
		r.fail(err)
		return
	}
	//
	major, minor := r.svc.Position()
	fmt.Fprintf(r.out, "[%d.%d] %s\n", major, minor, step.Message)
}

// Print the number of operations recorded so far.
func (r *repl) printOperation() {
	fmt.Fprintf(r.out, "%d operations recorded (use :ff to step through).\n", r.svc.NumOperations())
}

func (r *repl) fail(err error) {
	msg := err.Error()
	//
	if r.ansi {
		msg = termio.NewAnsiEscape().FgColour(termio.TERM_RED).Apply(msg)
	}
	//
	fmt.Fprintln(r.out, msg)
}

// Determine the history file to use, defaulting to one in the home directory.
func historyFile(path string) string {
	if path != "" {
		return path
	} else if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".eqsat_history")
	}
	//
	return ".eqsat_history"
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().String("history", "", "history file (defaults to ~/.eqsat_history)")
	replCmd.Flags().String("dir", ".", "directory for saved and exported files")
}
