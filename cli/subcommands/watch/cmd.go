// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package watch

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/netwisp/fwmon/cli/config"
	"github.com/netwisp/fwmon/cli/session"
	"github.com/netwisp/fwmon/client"
	"github.com/netwisp/fwmon/history"
	"github.com/netwisp/fwmon/reconcile"
	"github.com/netwisp/fwmon/tui"
	"github.com/netwisp/fwmon/upgrade"
)

var pageTypes = map[string]client.PageType{
	"device":    client.PageDevice,
	"operation": client.PageOperation,
	"batch":     client.PageBatch,
}

var WatchCmd = &cobra.Command{
	Use:   "watch <device|operation|batch> <id>",
	Short: "Follow live firmware upgrade progress",
	Long: `Subscribe to the server's upgrade feed for a device, a single
operation, or a batch, and render progress as it happens.

By default an interactive view opens; --plain streams log lines and
status changes to stdout instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageType, ok := pageTypes[args[0]]
		if !ok {
			return fmt.Errorf("first argument must be 'device', 'operation' or 'batch', got '%s'", args[0])
		}

		plain, _ := cmd.Flags().GetBool("plain")
		record, _ := cmd.Flags().GetBool("record")
		dbFile, _ := cmd.Flags().GetString("db")

		if milestones, _ := cmd.Flags().GetString("milestones"); milestones != "" {
			if err := upgrade.LoadMilestones(milestones); err != nil {
				return err
			}
		}

		return watch(cmd, pageType, args[1], plain, record, dbFile)
	},
}

func init() {
	WatchCmd.Flags().Bool("plain", false, "Stream log lines to stdout instead of the interactive view")
	WatchCmd.Flags().Bool("record", false, "Record finished operations to the local history database")
	WatchCmd.Flags().String("db", "", "Path to the history database (defaults to ~/.local/share/fwmon/history.db)")
	WatchCmd.Flags().String("milestones", "", "TOML file mapping log markers to progress percentages for deployments with custom upgraders")
}

func watch(cmd *cobra.Command, pageType client.PageType, id string, plain, record bool, dbFile string) error {
	sess := session.FromCommand(cmd)

	// The interactive view owns the terminal, so the feed logger must
	// stay silent there.
	log := slog.New(slog.DiscardHandler)
	if plain {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	page := reconcile.NewMemPage()
	logs := reconcile.NewLogAccumulator()
	rec := reconcile.New(page, logs, log)

	if record {
		if dbFile == "" {
			dataDir, err := config.DataDir()
			if err != nil {
				return err
			}
			dbFile = filepath.Join(dataDir, "history.db")
		}
		store, err := history.NewStore(dbFile)
		if err != nil {
			return err
		}
		defer store.Close()
		rec.OnTerminal(func(op upgrade.Operation) {
			if err := store.Record(op); err != nil {
				log.Warn("failed to record operation", "id", op.Id, "error", err)
			}
		})
	}

	ctrl, err := client.NewController(sess.Context.URL, pageType, id, rec, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if plain {
		return runPlain(ctx, page, rec, ctrl)
	}

	return tui.Run(ctx, tui.Options{
		Page:       page,
		Reconciler: rec,
		Controller: ctrl,
		Api:        sess.Api,
		PageType:   pageType,
		Id:         id,
	})
}
