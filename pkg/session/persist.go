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
package session

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Format identifies an encoding for rules and session files.
type Format uint8

const (
	// JSON encoding
	JSON Format = iota
	// YAML encoding
	YAML
)

// FormatOf determines the format of a file from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return 0, errors.Errorf("unknown file format %q (expected .json, .yaml or .yml)", path)
	}
}

// Extension returns the canonical file extension for this format.
func (f Format) Extension() string {
	if f == YAML {
		return "yaml"
	}
	//
	return "json"
}

// RuleEntries maps rule numbers (as strings) to triples of name, left-hand
// side and right-hand side.
type RuleEntries map[string][]string

// RulesFile is the document written by SaveRules.
type RulesFile struct {
	RewriteRules RuleEntries `json:"RewriteRules" yaml:"RewriteRules"`
}

// SessionFile is the document written by SaveSession.
type SessionFile struct {
	RewriteRules RuleEntries `json:"RewriteRules" yaml:"RewriteRules"`
	Applied      []string    `json:"Applied" yaml:"Applied"`
	Graph        string      `json:"graph" yaml:"graph"`
	OptimalTerm  string      `json:"optimalTerm" yaml:"optimalTerm"`
}

// As for SessionFile, but distinguishing absent fields.
type sessionDocument struct {
	RewriteRules *RuleEntries `json:"RewriteRules" yaml:"RewriteRules"`
	Applied      *[]string    `json:"Applied" yaml:"Applied"`
	Graph        *string      `json:"graph" yaml:"graph"`
	OptimalTerm  *string      `json:"optimalTerm" yaml:"optimalTerm"`
}

// LoadReport summarises a session which was loaded.
type LoadReport struct {
	// Numbers of rules which had been applied in the loaded session.
	Applied []uint
	// Best term in the loaded session.
	OptimalTerm string
}

func (r LoadReport) String() string {
	return fmt.Sprintf("Applied rules in last session: %v | optimal term in last session: %s", r.Applied,
		r.OptimalTerm)
}

// SaveRules writes the rule book to a given writer.
func (s *Service) SaveRules(w io.Writer, format Format) error {
	if len(s.rules) == 0 {
		return errors.Wrap(ErrNoRules, "no rules to save")
	}
	//
	return encode(w, format, RulesFile{s.entries()})
}

// SaveRulesFile writes the rule book to a file named after this session in a
// given directory, returning its path.
func (s *Service) SaveRulesFile(dir string, format Format) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("rules-%s.%s", s.SessionID(), format.Extension()))
	//
	if err := writeFile(path, func(w io.Writer) error { return s.SaveRules(w, format) }); err != nil {
		return "", err
	}
	//
	log.Infof("wrote rules to %s", path)
	//
	return path, nil
}

// LoadRules adds every valid rule read from a given reader to the rule book,
// returning the number of rules added.  Invalid or duplicate rules are
// skipped.
func (s *Service) LoadRules(r io.Reader, format Format) (uint, error) {
	entries, err := decodeRules(r, format)
	if err != nil {
		return 0, err
	}
	//
	before := len(s.rules)
	//
	for _, e := range entries {
		if _, err := s.AddRule(e[1], e[2]); err != nil {
			log.Debugf("skipping rule %s (%s)", e[0], err.Error())
		}
	}
	//
	return uint(len(s.rules) - before), nil
}

func (s *Service) LoadRulesFile(path string) (uint, error) {
	var count uint
	//
	err := readFile(path, func(r io.Reader, format Format) (err error) {
		count, err = s.LoadRules(r, format)
		return err
	})
	//
	return count, err
}

// ReadRules reads the rules of a rules document as they are, named after their
// entries.  Unlike LoadRules, no reversals are added and an invalid rule is an
// error.
func ReadRules(r io.Reader, format Format) ([]term.Rule, error) {
	entries, err := decodeRules(r, format)
	if err != nil {
		return nil, err
	}
	//
	rules := make([]term.Rule, len(entries))
	//
	for i, e := range entries {
		if rules[i], err = term.NewRule(e[0], e[1], e[2]); err != nil {
			return nil, err
		}
	}
	//
	return rules, nil
}

// ReadRulesFile reads the rules of a rules document, whose format is determined
// by its extension.
func ReadRulesFile(path string) ([]term.Rule, error) {
	var rules []term.Rule
	//
	err := readFile(path, func(r io.Reader, format Format) (err error) {
		rules, err = ReadRules(r, format)
		return err
	})
	//
	return rules, err
}

// Snapshot summarises this session, including its best term.
func (s *Service) Snapshot() (SessionFile, error) {
	best, _, err := s.BestTerm()
	if err != nil {
		return SessionFile{}, err
	}
	//
	return SessionFile{s.entries(), s.Applied(), s.expr, best}, nil
}

// SaveSession writes a snapshot of this session to a given writer.
func (s *Service) SaveSession(w io.Writer, format Format) error {
	snapshot, err := s.Snapshot()
	if err != nil {
		return err
	}
	//
	return encode(w, format, snapshot)
}

// SaveSessionFile writes a snapshot of this session to a file named after it
// in a given directory, returning its path.
func (s *Service) SaveSessionFile(dir string, format Format) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("session-%s.%s", s.SessionID(), format.Extension()))
	//
	if err := writeFile(path, func(w io.Writer) error { return s.SaveSession(w, format) }); err != nil {
		return "", err
	}
	//
	log.Infof("wrote session to %s", path)
	//
	return path, nil
}

// LoadSession replaces this session with one read from a given reader.  The
// e-graph is recreated from the saved expression and the saved rules are added
// afresh, but no rules are applied.  Instead, the rules applied in the saved
// session are reported.
func (s *Service) LoadSession(r io.Reader, format Format) (LoadReport, error) {
	var doc sessionDocument
	//
	if err := decode(r, format, &doc); err != nil {
		return LoadReport{}, err
	} else if doc.RewriteRules == nil || doc.Applied == nil || doc.Graph == nil || doc.OptimalTerm == nil {
		return LoadReport{}, errors.Wrap(ErrMalformedFile, "expected RewriteRules, Applied, graph and optimalTerm")
	}
	//
	entries, err := doc.RewriteRules.sorted()
	if err != nil {
		return LoadReport{}, err
	} else if err := s.CreateEGraph(*doc.Graph); err != nil {
		return LoadReport{}, err
	}
	//
	report := LoadReport{OptimalTerm: *doc.OptimalTerm}
	//
	for _, e := range entries {
		number, err := s.AddRule(e[1], e[2])
		//
		if errors.Is(err, ErrDuplicateRule) {
			number, err = s.lookup(e[1], e[2])
		}
		//
		if err != nil {
			log.Debugf("skipping rule %s (%s)", e[0], err.Error())
		} else if slices.Contains(*doc.Applied, e[0]) {
			report.Applied = append(report.Applied, number)
			s.applied.Insert(s.rules[number].Name)
		}
	}
	//
	return report, nil
}

// LoadSessionFile loads a session from a given file, whose format is
// determined by its extension.
func (s *Service) LoadSessionFile(path string) (LoadReport, error) {
	var report LoadReport
	//
	err := readFile(path, func(r io.Reader, format Format) (err error) {
		report, err = s.LoadSession(r, format)
		return err
	})
	//
	return report, err
}

// Find the number of an existing rule "lhs => rhs".
func (s *Service) lookup(lhs string, rhs string) (uint, error) {
	rule, err := term.NewRule("", lhs, rhs)
	if err != nil {
		return 0, err
	}
	//
	for _, n := range s.Rules() {
		if n.Rule.Equation() == rule.Equation() {
			return n.Number, nil
		}
	}
	//
	return 0, errors.Errorf("rule %s not found", rule.Equation())
}

func (s *Service) entries() RuleEntries {
	entries := make(RuleEntries)
	//
	for n, rule := range s.rules {
		entries[strconv.FormatUint(uint64(n), 10)] = []string{rule.Name, rule.Lhs.Expr(), rule.Rhs.Expr()}
	}
	//
	return entries
}

// Return entries in order of their (numeric) keys.
func (p RuleEntries) sorted() ([][]string, error) {
	type entry struct {
		number uint64
		value  []string
	}
	//
	var entries []entry
	//
	for key, value := range p {
		number, err := strconv.ParseUint(key, 10, 64)
		//
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedFile, "invalid rule number %q", key)
		} else if len(value) != 3 {
			return nil, errors.Wrapf(ErrMalformedFile, "rule %s should be [name, lhs, rhs]", key)
		}
		//
		entries = append(entries, entry{number, value})
	}
	//
	slices.SortFunc(entries, func(l, r entry) int { return cmp.Compare(l.number, r.number) })
	//
	result := make([][]string, len(entries))
	//
	for i, e := range entries {
		result[i] = e.value
	}
	//
	return result, nil
}

func decodeRules(r io.Reader, format Format) ([][]string, error) {
	var doc struct {
		RewriteRules *RuleEntries `json:"RewriteRules" yaml:"RewriteRules"`
	}
	//
	if err := decode(r, format, &doc); err != nil {
		return nil, err
	} else if doc.RewriteRules == nil {
		return nil, errors.Wrap(ErrMalformedFile, "missing RewriteRules")
	} else if len(*doc.RewriteRules) == 0 {
		return nil, errors.Wrap(ErrNoRules, "no rewrite rules found")
	}
	//
	return doc.RewriteRules.sorted()
}

func writeFile(path string, fn func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	//
	if err := fn(file); err != nil {
		_ = file.Close()
		return err
	}
	//
	return file.Close()
}

func readFile(path string, fn func(io.Reader, Format) error) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	//
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", path)
	}
	//
	defer file.Close()
	//
	return fn(file, format)
}

func encode(w io.Writer, format Format, value any) error {
	if format == YAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		//
		if err := enc.Encode(value); err != nil {
			return errors.Wrap(err, "cannot encode yaml")
		}
		//
		return enc.Close()
	}
	//
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	//
	return errors.Wrap(enc.Encode(value), "cannot encode json")
}

func decode(r io.Reader, format Format, value any) error {
	var err error
	//
	if format == YAML {
		err = yaml.NewDecoder(r).Decode(value)
	} else {
		err = json.NewDecoder(r).Decode(value)
	}
	//
	if err != nil {
		return errors.Wrap(ErrMalformedFile, err.Error())
	}
	//
	return nil
}
