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
package term

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/consensys/go-eqsat/pkg/util/source"
	"github.com/consensys/go-eqsat/pkg/util/source/sexp"
	"github.com/pkg/errors"
)

// ErrInvalidExpression indicates a string which is not a well-formed
// expression in canonical form.
var ErrInvalidExpression = errors.New("invalid expression")

var atomRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Parse a term from a given string.  The outermost level of the string must be
// parenthesised, such that "(a)" denotes the leaf "a" and "(+ a (* b 2))"
// denotes a binary operator application.  Errors returned are instances of
// *source.SyntaxError identifying the offending span.
func Parse(text string) (*Term, error) {
	t, err := ParseSource(source.NewSourceString(text))
	// NOTE: avoid returning a typed nil
	if err != nil {
		return nil, err
	}
	//
	return t, nil
}

// ParseSource parses a term from a given source file.
func ParseSource(srcfile *source.File) (*Term, *source.SyntaxError) {
	s, srcmap, err := sexp.Parse(srcfile)
	//
	if err != nil {
		return nil, err
	} else if s.AsList() == nil {
		return nil, srcmap.SyntaxError(s, "expression must be parenthesised")
	}
	//
	return (&translator{srcmap}).translateList(s.AsList())
}

// IsIncomplete determines whether a given parse error arose because the input
// ended prematurely (e.g. an unbalanced opening brace).  This is useful for
// reading multi-line input interactively.
func IsIncomplete(err error) bool {
	var serr *source.SyntaxError
	//
	if errors.As(err, &serr) {
		return sexp.IsEndOfFile(serr)
	}
	//
	return false
}

// IsValidExpression checks whether a string is a well-formed expression in
// canonical form.  Specifically, the (trimmed) string must parse, it must be
// parenthesised at the outermost level, and serialising the parsed term must
// reproduce it exactly.
func IsValidExpression(text string) bool {
	return Validate(text) == nil
}

// Validate a string as an expression in canonical form, returning an error
// describing the problem (if any).  See IsValidExpression.
func Validate(text string) error {
	text = strings.TrimSpace(text)
	//
	if !strings.HasPrefix(text, "(") {
		return errors.Wrapf(ErrInvalidExpression, "%q is not parenthesised", text)
	}
	//
	t, err := Parse(text)
	//
	if err != nil {
		return errors.Wrapf(ErrInvalidExpression, "%q: %s", text, err.Error())
	} else if t.Expr() != text {
		return errors.Wrapf(ErrInvalidExpression, "%q is not in canonical form (expected %q)", text, t.Expr())
	}
	//
	return nil
}

// MustParse parses a given string, panicking if it is malformed.  This is
// intended for constants and tests.
func MustParse(text string) *Term {
	t, err := Parse(text)
	if err != nil {
		panic(err.Error())
	}
	//
	return t
}

// translator converts S-expressions into terms, using the source map to report
// errors against the original text.
type translator struct {
	srcmap *source.Map[sexp.SExp]
}

func (p *translator) translate(s sexp.SExp) (*Term, *source.SyntaxError) {
	if l := s.AsList(); l != nil {
		return p.translateList(l)
	}
	//
	return p.translateAtom(s.AsSymbol())
}

func (p *translator) translateList(l *sexp.List) (*Term, *source.SyntaxError) {
	head := l.Head()
	//
	switch {
	case l.Len() == 0:
		return nil, p.srcmap.SyntaxError(l, "empty expression")
	case head == nil:
		return nil, p.srcmap.SyntaxError(l, "expected operator or atom")
	case IsOperator(head.Value):
		return p.translateBinary(head.Value, l)
	case l.Len() != 1:
		return nil, p.srcmap.SyntaxError(head, fmt.Sprintf("unknown operator %s", head.Value))
	default:
		return p.translateAtom(head)
	}
}

func (p *translator) translateBinary(op string, l *sexp.List) (*Term, *source.SyntaxError) {
	if l.Len() != 3 {
		msg := fmt.Sprintf("operator %s expects two operands (found %d)", op, l.Len()-1)
		return nil, p.srcmap.SyntaxError(l, msg)
	}
	//
	lhs, err := p.translate(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	rhs, err := p.translate(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	return NewBinary(op, lhs, rhs), nil
}

func (p *translator) translateAtom(s *sexp.Symbol) (*Term, *source.SyntaxError) {
	if IsOperator(s.Value) {
		return nil, p.srcmap.SyntaxError(s, fmt.Sprintf("operator %s used as operand", s.Value))
	} else if !atomRegex.MatchString(s.Value) {
		return nil, p.srcmap.SyntaxError(s, fmt.Sprintf("invalid atom %s", s.Value))
	}
	//
	return NewLeaf(s.Value), nil
}
