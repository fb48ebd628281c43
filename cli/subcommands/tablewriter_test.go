// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package subcommands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableWriterAlignment(t *testing.T) {
	table := NewTableWriter([]string{"ID", "STATUS"})
	table.AddRow("op-1", "in-progress")
	table.AddRow("op-22", "failed")

	var buf bytes.Buffer
	table.SetOutput(&buf)
	table.Render()

	expected := "ID     STATUS\n" +
		"op-1   in-progress\n" +
		"op-22  failed\n"
	assert.Equal(t, expected, buf.String())
}

func TestTableWriterMultilineCell(t *testing.T) {
	table := NewTableWriter([]string{"DEVICE", "LOG"})
	table.AddRow("router-7", "Connection successful\nUpgrade completed successfully")

	var buf bytes.Buffer
	table.SetOutput(&buf)
	table.Render()

	expected := "DEVICE    LOG\n" +
		"router-7  Connection successful\n" +
		"          Upgrade completed successfully\n"
	assert.Equal(t, expected, buf.String())
}

func TestTableWriterNoHeaders(t *testing.T) {
	table := NewTableWriter(nil)
	table.AddRow("ignored")

	var buf bytes.Buffer
	table.SetOutput(&buf)
	table.Render()

	assert.Empty(t, buf.String())
}
