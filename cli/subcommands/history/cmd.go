// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package history

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/netwisp/fwmon/cli/config"
	"github.com/netwisp/fwmon/cli/subcommands"
	"github.com/netwisp/fwmon/history"
)

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previously watched upgrade operations",
	Long: `Show terminal upgrade operations recorded by 'fwmon watch --record'.
The history lives in a local database, no server connection is needed.`,
	Annotations: map[string]string{"standalone": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		dbFile, _ := cmd.Flags().GetString("db")
		if dbFile == "" {
			dataDir, err := config.DataDir()
			if err != nil {
				return err
			}
			dbFile = filepath.Join(dataDir, "history.db")
		}
		return listHistory(dbFile, limit)
	},
}

func init() {
	HistoryCmd.Flags().Int("limit", 50, "Maximum number of records to show")
	HistoryCmd.Flags().String("db", "", "Path to the history database (defaults to ~/.local/share/fwmon/history.db)")
}

func listHistory(dbFile string, limit int) error {
	store, err := history.NewStore(dbFile)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(limit)
	if err != nil {
		return err
	}

	table := subcommands.NewTableWriter([]string{"RECORDED", "DEVICE", "IMAGE", "STATUS", "OPERATION ID"})
	for _, r := range records {
		table.AddRow(
			r.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			r.Operation.DeviceName,
			r.Operation.ImageName,
			r.Operation.Status.Display(),
			r.Operation.Id,
		)
	}
	table.Render()
	return nil
}
