// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package watch

import (
	"context"
	"fmt"
	"strings"

	"github.com/netwisp/fwmon/client"
	"github.com/netwisp/fwmon/reconcile"
	"github.com/netwisp/fwmon/upgrade"
)

// rowProgress tracks how much of a row has already been printed.
type rowProgress struct {
	announced bool
	logLen    int
	status    upgrade.Status
}

// runPlain streams the feed to stdout: one line per new log line, plus
// a marker line on every status transition. Ctrl+C stops it.
func runPlain(ctx context.Context, page *reconcile.MemPage, rec *reconcile.Reconciler, ctrl *client.Controller) error {
	changes := make(chan struct{}, 1)
	rec.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	feedErr := make(chan error, 1)
	go func() { feedErr <- ctrl.Run(ctx) }()

	fmt.Println("Watching for upgrade progress. Press Ctrl+C to stop...")

	printed := make(map[string]*rowProgress)
	var lastAgg string

	for {
		select {
		case <-changes:
			printUpdates(page, printed, &lastAgg)
		case err := <-feedErr:
			// Drain whatever arrived before the feed closed
			printUpdates(page, printed, &lastAgg)
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func printUpdates(page *reconcile.MemPage, printed map[string]*rowProgress, lastAgg *string) {
	for _, row := range page.Snapshot() {
		p := printed[row.OperationId]
		if p == nil {
			p = &rowProgress{}
			printed[row.OperationId] = p
		}

		name := row.DeviceName
		if name == "" {
			name = row.OperationId
		}
		if !p.announced {
			fmt.Printf("== %s: upgrading to %s (operation %s)\n", name, row.ImageName, row.OperationId)
			p.announced = true
		}

		if len(row.Log) > p.logLen {
			fresh := strings.TrimPrefix(row.Log[p.logLen:], "\n")
			for line := range strings.SplitSeq(fresh, "\n") {
				fmt.Printf("   %s: %s\n", name, line)
			}
		}
		// Snapshots can replace the accumulated log with a shorter
		// authoritative one; never reprint in that case.
		if len(row.Log) != p.logLen {
			p.logLen = len(row.Log)
		}

		if row.Status != p.status {
			fmt.Printf("-- %s: %s\n", name, row.Status.Display())
			p.status = row.Status
		}
	}

	if status, _, percent, ok := page.Aggregate(); ok {
		line := fmt.Sprintf("## batch: %s (%d%%)", status, percent)
		if line != *lastAgg {
			fmt.Println(line)
			*lastAgg = line
		}
	}
}
