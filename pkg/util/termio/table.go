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
package termio

import (
	"fmt"
	"io"
	"strings"
)

// Table is a fixed-width table of text cells, written one row per line with
// right-aligned columns.  Cells may carry an ANSI escape (e.g. a colour) which
// is emitted only when escapes are enabled.
type Table struct {
	widths        []uint
	rows          [][]string
	escapes       [][]string
	enableEscapes bool
}

// NewTable constructs an empty table with the given number of columns.
func NewTable(width uint) *Table {
	return &Table{widths: make([]uint, width), enableEscapes: true}
}

// Width returns the number of columns in this table.
func (p *Table) Width() uint {
	return uint(len(p.widths))
}

// Height returns the number of rows in this table.
func (p *Table) Height() uint {
	return uint(len(p.rows))
}

// AddRow appends a row to this table, returning its index.  The number of
// values must match the table width.
func (p *Table) AddRow(vals ...string) uint {
	if len(vals) != len(p.widths) {
		panic("incorrect number of columns")
	}
	//
	for i, v := range vals {
		p.widths[i] = max(p.widths[i], uint(len(v)))
	}
	//
	p.rows = append(p.rows, vals)
	p.escapes = append(p.escapes, make([]string, len(vals)))
	//
	return uint(len(p.rows) - 1)
}

// Get the contents of a given cell in this table
func (p *Table) Get(col uint, row uint) string {
	return p.rows[row][col]
}

// SetEscape sets the escape to use when writing a given cell.
func (p *Table) SetEscape(col uint, row uint, escape AnsiEscape) {
	p.escapes[row][col] = escape.Build()
}

// SetRowEscape sets the escape for every cell of a given row.
func (p *Table) SetRowEscape(row uint, escape AnsiEscape) {
	for col := range p.escapes[row] {
		p.escapes[row][col] = escape.Build()
	}
}

// AnsiEscapes enables or disables the use of ANSI escapes.  Disabling escapes
// is useful when output is not a terminal, as otherwise the escape characters
// are written verbatim.
func (p *Table) AnsiEscapes(enable bool) {
	p.enableEscapes = enable
}

// SetMaxWidths puts an upper bound on the width of every column.
func (p *Table) SetMaxWidths(width uint) {
	for i := range p.widths {
		p.widths[i] = min(p.widths[i], width)
	}
}

// Write the table to a given writer.  Cells wider than their column are
// truncated and end in "..".
func (p *Table) Write(w io.Writer) error {
	var builder strings.Builder
	//
	for i, row := range p.rows {
		for j, col := range row {
			width := p.widths[j]
			escape := p.escapes[i][j]
			// Start colour (if applicable)
			if p.enableEscapes && escape != "" {
				builder.WriteString(escape)
			}
			//
			if uint(len(col)) > width && width >= 2 {
				fmt.Fprintf(&builder, " %*s..", width-2, col[:width-2])
			} else {
				fmt.Fprintf(&builder, " %*s", width, col)
			}
			// Cancel colour (if applicable)
			if p.enableEscapes && escape != "" {
				builder.WriteString(ResetAnsiEscape().Build())
			}
			//
			builder.WriteString(" |")
		}
		//
		builder.WriteString("\n")
	}
	//
	_, err := io.WriteString(w, builder.String())
	//
	return err
}
