// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package operations

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netwisp/fwmon/cli/session"
	"github.com/netwisp/fwmon/cli/subcommands"
	"github.com/netwisp/fwmon/upgrade"
)

var allColumns = []string{
	"id",
	"device",
	"device-id",
	"image",
	"status",
	"progress",
	"modified",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List upgrade operations",
	Long:  `List upgrade operations known to the server`,
	RunE: func(cmd *cobra.Command, args []string) error {
		columns, _ := cmd.Flags().GetString("columns")
		device, _ := cmd.Flags().GetString("device")
		sess := session.FromCommand(cmd)

		ops, err := sess.Api.Operations(cmd.Context(), device)
		cobra.CheckErr(err)
		return listOperations(ops, columns)
	},
}

func init() {
	columnsStr := strings.Join(allColumns, ",")
	OperationsCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("columns", "", "id,device,status,progress,modified",
		"Comma-separated list of columns to display (available: "+columnsStr+")")
	listCmd.Flags().String("device", "", "Only show operations for this device id")
}

func listOperations(ops []upgrade.Operation, columnsStr string) error {
	columns := strings.Split(columnsStr, ",")
	for i, col := range columns {
		columns[i] = strings.TrimSpace(col)
		if slices.Index(allColumns, columns[i]) < 0 {
			return fmt.Errorf("invalid column: %s", columns[i])
		}
	}

	headers := make([]string, 0, len(columns))
	for _, col := range columns {
		headers = append(headers, strings.ToUpper(strings.ReplaceAll(col, "-", " ")))
	}
	table := subcommands.NewTableWriter(headers)

	for _, op := range ops {
		row := make([]any, 0, len(columns))
		for _, col := range columns {
			row = append(row, getColumnValue(&op, col))
		}
		table.AddRow(row...)
	}

	table.Render()
	return nil
}

func getColumnValue(op *upgrade.Operation, column string) string {
	switch column {
	case "id":
		return op.Id
	case "device":
		return op.DeviceName
	case "device-id":
		return op.DeviceId
	case "image":
		return op.ImageName
	case "status":
		return op.Status.Display()
	case "progress":
		bar := upgrade.RenderProgressWithLog(op.Status, op.Progress, op.Log)
		return fmt.Sprintf("%d%%", bar.Percent)
	case "modified":
		return op.Modified
	}
	return ""
}
