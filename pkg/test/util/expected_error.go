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
	"strconv"
	"strings"

	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/consensys/go-eqsat/pkg/util/source"
)

// RULE_ERRORS identifies the causes with which a rule can be rejected.
var RULE_ERRORS = []error{term.ErrInvalidRule, term.ErrUnboundVariable}

// ExpectedError describes a rule which should be rejected, as given by a line
// of the form ";;error:L:S-E:msg" in a rules file.  Here, L is the line of the
// offending rule, S-E are the columns it spans and msg ends with its cause.
type ExpectedError struct {
	// Line holding the rejected rule.
	Rule source.Line
	// Cause of rejection (one of RULE_ERRORS).
	Cause error
	// Expected syntax error, spanning the rejected rule.
	Error source.SyntaxError
}

// ReadExpectedErrors extracts the expected errors of a rules file.  Every
// expected error must refer to a later line holding a rule, must span the
// whole of that rule and must end with a known cause.
func ReadExpectedErrors(srcfile *source.File) ([]ExpectedError, []error) {
	var (
		lines    = srcfile.Lines()
		expected []ExpectedError
		errs     []error
	)
	//
	for _, line := range lines {
		if !strings.HasPrefix(line.String(), ";;error") {
			continue
		}
		//
		if item, err := parseExpectedError(line, lines, srcfile); err != nil {
			errs = append(errs, fmt.Errorf("%s:%d: %w", srcfile.Filename(), line.Number(), err))
		} else {
			expected = append(expected, item)
		}
	}
	//
	return expected, errs
}

func parseExpectedError(attr source.Line, lines []source.Line, srcfile *source.File) (ExpectedError, error) {
	var (
		contents = attr.String()
		splits   = strings.Split(contents, ":")
	)
	//
	if len(splits) < 4 {
		return ExpectedError{}, fmt.Errorf("malformed expected error %q, should be e.g. \";;error:L:S-E:msg\"", contents)
	}
	// Identify the rejected rule
	lineno, err := strconv.Atoi(splits[1])
	if err != nil {
		return ExpectedError{}, fmt.Errorf("invalid line %q (%s)", splits[1], err.Error())
	} else if lineno <= attr.Number() {
		return ExpectedError{}, fmt.Errorf("line %d does not follow the expected error", lineno)
	} else if lineno > len(lines) {
		return ExpectedError{}, fmt.Errorf("line %d does not exist", lineno)
	}
	//
	rule := lines[lineno-1]
	text := strings.TrimSpace(rule.String())
	//
	if text == "" || strings.HasPrefix(text, ";") {
		return ExpectedError{}, fmt.Errorf("line %d holds no rule", lineno)
	}
	// Rules are rejected as a whole
	start, end, err := parseExpectedErrorSpan(splits[2])
	if err != nil {
		return ExpectedError{}, err
	} else if start != 1 || end != rule.Length()+1 {
		return ExpectedError{}, fmt.Errorf("span %d-%d does not cover rule on line %d (should be 1-%d)", start, end,
			lineno, rule.Length()+1)
	}
	//
	msg := strings.Join(splits[3:], ":")
	cause := causeOf(msg)
	//
	if cause == nil {
		return ExpectedError{}, fmt.Errorf("unknown cause of rejection in %q", msg)
	}
	//
	span := source.NewSpan(rule.Start(), rule.Start()+rule.Length())
	//
	return ExpectedError{rule, cause, *srcfile.SyntaxError(span, msg)}, nil
}

func parseExpectedErrorSpan(span string) (start, end int, err error) {
	splits := strings.Split(span, "-")
	//
	if len(splits) != 2 {
		return 0, 0, fmt.Errorf("invalid span %q (malformed, should be S-E)", span)
	} else if start, err = strconv.Atoi(splits[0]); err != nil {
		return 0, 0, fmt.Errorf("invalid span %q (%s)", span, err.Error())
	} else if end, err = strconv.Atoi(splits[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid span %q (%s)", span, err.Error())
	}
	//
	return start, end, nil
}

// Determine the cause with which a message ends (if any).
func causeOf(msg string) error {
	for _, cause := range RULE_ERRORS {
		if msg == cause.Error() || strings.HasSuffix(msg, ": "+cause.Error()) {
			return cause
		}
	}
	//
	return nil
}

// Check a rule is rejected for the expected cause when parsed on its own.
func checkRejectedRule(expected ExpectedError) error {
	text := strings.TrimSpace(expected.Rule.String())
	//
	if _, err := term.ParseRule(text, fmt.Sprintf("r%d", expected.Rule.Number())); err == nil {
		return fmt.Errorf("rule %q on line %d accepted", text, expected.Rule.Number())
	} else if !errors.Is(err, expected.Cause) {
		return fmt.Errorf("rule %q on line %d rejected with %q, expected %q", text, expected.Rule.Number(),
			err.Error(), expected.Cause.Error())
	}
	//
	return nil
}
