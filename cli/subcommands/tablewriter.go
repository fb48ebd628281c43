// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package subcommands

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const columnGap = 2

// TableWriter renders aligned plain-text columns. Cells may span
// multiple lines; sibling columns stay aligned line by line.
type TableWriter struct {
	headers []string
	rows    [][]string
	out     io.Writer
}

func NewTableWriter(headers []string) *TableWriter {
	return &TableWriter{
		headers: headers,
		rows:    make([][]string, 0),
		out:     os.Stdout,
	}
}

// SetOutput redirects rendering, used by tests and by anything piping
// the table somewhere other than the terminal.
func (t *TableWriter) SetOutput(w io.Writer) {
	t.out = w
}

func (t *TableWriter) AddRow(columns ...any) {
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = fmt.Sprintf("%v", col)
	}
	t.rows = append(t.rows, cells)
}

func (t *TableWriter) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := t.columnWidths()

	var b strings.Builder
	t.writeLine(&b, t.headers, widths)
	for _, row := range t.rows {
		// Explode multiline cells so every physical line aligns
		cellLines := make([][]string, len(row))
		height := 1
		for i, cell := range row {
			cellLines[i] = strings.Split(cell, "\n")
			if len(cellLines[i]) > height {
				height = len(cellLines[i])
			}
		}
		for line := 0; line < height; line++ {
			parts := make([]string, len(t.headers))
			for col := range t.headers {
				if col < len(cellLines) && line < len(cellLines[col]) {
					parts[col] = cellLines[col][line]
				}
			}
			t.writeLine(&b, parts, widths)
		}
	}
	fmt.Fprint(t.out, b.String())
}

func (t *TableWriter) columnWidths() []int {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			for line := range strings.SplitSeq(cell, "\n") {
				if len(line) > widths[i] {
					widths[i] = len(line)
				}
			}
		}
	}
	return widths
}

func (t *TableWriter) writeLine(b *strings.Builder, cells []string, widths []int) {
	last := len(cells) - 1
	for i, cell := range cells {
		b.WriteString(cell)
		if i < last {
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)+columnGap))
		}
	}
	b.WriteString("\n")
}
