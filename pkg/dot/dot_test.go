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
package dot

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/consensys/go-eqsat/pkg/egraph"
	"github.com/consensys/go-eqsat/pkg/term"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clusterRegex = regexp.MustCompile(`subgraph "cluster-([0-9]+)"`)

func Test_Render_01(t *testing.T) {
	g := egraph.NewEGraph()
	g.AddTerm(term.MustParse("(+ a 2)"))
	//
	dot := Render(g, DefaultOptions())
	//
	assert.Equal(t, []string{"0", "1", "2"}, clusters(dot))
	assert.Contains(t, dot, `"c2_0" [label="<p0> | + | <p1>"]`)
	assert.Contains(t, dot, `"c0_0" [label="a"]`)
	assert.Contains(t, dot, `"c2_0":p0 -> "c0_0" [lhead="cluster-0"]`)
	assert.Contains(t, dot, `"c2_0":p1 -> "c1_0" [lhead="cluster-1"]`)
	assert.NotContains(t, dot, "crimson")
	assert.True(t, strings.HasPrefix(dot, "digraph egraph {"))
}

func Test_Render_02(t *testing.T) {
	g := egraph.NewEGraph()
	g.AddTerm(term.MustParse("(<< a 1)"))
	//
	dot := Render(g, DefaultOptions().WithMarked(2))
	// Shift operators are escaped within records
	assert.Contains(t, dot, `[label="<p0> | \<\< | <p1>"]`)
	assert.Equal(t, 1, strings.Count(dot, "crimson"))
}

func Test_Render_03(t *testing.T) {
	g := egraph.NewEGraph()
	x := g.AddTerm(term.MustParse("(* a 1)"))
	a := g.AddTerm(term.MustParse("(a)"))
	// Class refers to itself
	_, err := g.Merge(x, a)
	require.NoError(t, err)
	g.Rebuild()
	//
	dot := Render(g, DefaultOptions())
	assert.Equal(t, []string{"0", "1"}, clusters(dot))
	assert.Equal(t, 1, strings.Count(dot, "shape=point"))
	assert.Contains(t, dot, `[lhead="cluster-0"]`)
}

func Test_Export_01(t *testing.T) {
	dir := t.TempDir()
	//
	path, err := Export(context.Background(), "digraph egraph {}\n", dir, "egraph", "dot")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "egraph.dot"), path)
	//
	bytes, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "digraph egraph {}\n", string(bytes))
}

func Test_Export_02(t *testing.T) {
	_, err := Export(context.Background(), "", t.TempDir(), "egraph", "jpeg")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	//
	_, err = Export(context.Background(), "", filepath.Join(t.TempDir(), "missing"), "egraph", "dot")
	assert.Error(t, err)
}

func clusters(dot string) []string {
	var ids []string
	//
	for _, m := range clusterRegex.FindAllStringSubmatch(dot, -1) {
		ids = append(ids, m[1])
	}
	//
	return ids
}
