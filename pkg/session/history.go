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
	"context"
	"fmt"

	"github.com/consensys/go-eqsat/pkg/dot"
)

// CurrentStep returns the step under the cursor.
func (s *Service) CurrentStep() (Step, error) {
	if len(s.history) == 0 {
		return Step{}, ErrNoEGraph
	}
	//
	return s.history[s.major][s.minor], nil
}

// Position returns the cursor as a (major, minor) pair.
func (s *Service) Position() (int, int) {
	return s.major, s.minor
}

// NumOperations returns the number of operations (i.e. majors) in the
// history.
func (s *Service) NumOperations() int {
	return len(s.history)
}

// MoveBackward moves the cursor to the previous step, which may belong to the
// previous operation.
func (s *Service) MoveBackward() error {
	switch {
	case len(s.history) == 0:
		return ErrNoEGraph
	case s.minor > 0:
		s.minor--
	case s.major > 0:
		s.major--
		s.minor = len(s.history[s.major]) - 1
	default:
		return ErrHistoryStart
	}
	//
	return nil
}

// MoveForward moves the cursor to the next step, which may belong to the next
// operation.
func (s *Service) MoveForward() error {
	switch {
	case len(s.history) == 0:
		return ErrNoEGraph
	case s.minor < len(s.history[s.major])-1:
		s.minor++
	case s.major < len(s.history)-1:
		s.major++
		s.minor = 0
	default:
		return ErrHistoryEnd
	}
	//
	return nil
}

// MoveFastBackward moves the cursor to the last step of the previous
// operation.
func (s *Service) MoveFastBackward() error {
	switch {
	case len(s.history) == 0:
		return ErrNoEGraph
	case s.major == 0:
		return ErrHistoryStart
	}
	//
	s.major--
	s.minor = len(s.history[s.major]) - 1
	//
	return nil
}

// MoveFastForward moves the cursor to the last step of the next operation.
func (s *Service) MoveFastForward() error {
	switch {
	case len(s.history) == 0:
		return ErrNoEGraph
	case s.major == len(s.history)-1:
		return ErrHistoryEnd
	}
	//
	s.major++
	s.minor = len(s.history[s.major]) - 1
	//
	return nil
}

// Export the step under the cursor to a file in a given directory and format,
// returning the path written.
func (s *Service) Export(ctx context.Context, dir string, format string) (string, error) {
	step, err := s.CurrentStep()
	if err != nil {
		return "", err
	}
	//
	stem := fmt.Sprintf("egraph-%s-%d-%d", s.SessionID(), s.major, s.minor)
	//
	return dot.Export(ctx, step.Dot, dir, stem, format)
}
