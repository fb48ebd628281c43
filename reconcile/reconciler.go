// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package reconcile

import (
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/netwisp/fwmon/upgrade"
)

// Reconciler applies upgrader events to one page. All Apply methods are
// called from a single goroutine (the connection's message loop) and
// leave the page consistent before returning; re-applying the same
// event is harmless.
type Reconciler struct {
	page Page
	logs *LogAccumulator
	log  *slog.Logger

	// onTerminal fires once per operation when it is observed to
	// transition into a terminal state, with the full accumulated log.
	onTerminal func(op upgrade.Operation)
	// onChange fires after every applied mutation so front-ends can
	// repaint.
	onChange func()
}

func New(page Page, logs *LogAccumulator, log *slog.Logger) *Reconciler {
	return &Reconciler{page: page, logs: logs, log: log}
}

func (r *Reconciler) OnTerminal(fn func(op upgrade.Operation)) { r.onTerminal = fn }

func (r *Reconciler) OnChange(fn func()) { r.onChange = fn }

func (r *Reconciler) notify() {
	if r.onChange != nil {
		r.onChange()
	}
}

// ApplySnapshot handles a whole-operation update: replace-semantics for
// the log, bar re-render, modified timestamp, cancel affordance, and
// new-row synthesis for operations the page has never shown.
func (r *Reconciler) ApplySnapshot(op upgrade.Operation) {
	if op.Id == "" {
		return
	}
	// The previous status must be read before the row exists: a freshly
	// synthesized row has no prior state, so its first snapshot counts
	// as a transition even when it is already terminal.
	var prev upgrade.Status
	row := r.page.FindRow(op.Id)
	if row == nil {
		// Synthesizing a row needs enough to display one.
		if op.DeviceName == "" || op.DeviceId == "" {
			r.log.Debug("dropping update for unknown operation", "operation_id", op.Id)
			return
		}
		r.page.RemovePlaceholder()
		row = r.page.AddRow(RowFields{
			OperationId: op.Id,
			Status:      op.Status,
			DeviceName:  op.DeviceName,
			DeviceId:    op.DeviceId,
			ImageName:   op.ImageName,
		})
	} else {
		prev, _ = upgrade.ParseStatus(row.StatusText())
	}

	full, hasLog := "", false
	if op.Log != "" {
		// The snapshot log is authoritative: replace, never append.
		full, hasLog = r.logs.Replace(op.Id, op.Log), true
	} else if acc, ok := r.logs.Get(op.Id); ok {
		full, hasLog = acc, true
	}

	row.SetStatus(op.Status)
	bar := upgrade.RenderProgressWithLog(op.Status, op.Progress, full)
	row.SetBar(bar)
	if hasLog {
		r.updateLog(row, full)
	}
	if op.Modified != "" {
		row.SetModified(formatTimestamp(op.Modified))
	}
	r.setCancel(row, op.Status, bar)

	if op.Status.IsCompleted() {
		r.logs.Evict(op.Id)
		if r.onTerminal != nil && !prev.IsCompleted() {
			op.Log = full
			r.onTerminal(op)
		}
	}
	r.notify()
}

// ApplyLogDelta appends an incremental fragment to every in-progress
// row. Delta delivery is assumed at-most-once; a redelivered fragment
// after a reconnect would duplicate content until the next snapshot
// replaces it.
func (r *Reconciler) ApplyLogDelta(content string) {
	if content == "" {
		return
	}
	for _, row := range r.inProgressRows() {
		full := r.logs.Append(row.OperationId(), content)
		r.updateLog(row, full)
		// No numeric progress on delta messages; the milestone estimate
		// may have advanced.
		bar := upgrade.RenderProgressWithLog(upgrade.StatusInProgress, nil, full)
		row.SetBar(bar)
		r.setCancel(row, upgrade.StatusInProgress, bar)
	}
	r.notify()
}

// ApplyStatus applies a status-only change to every in-progress row.
func (r *Reconciler) ApplyStatus(status upgrade.Status) {
	for _, row := range r.inProgressRows() {
		prev, _ := upgrade.ParseStatus(row.StatusText())
		row.SetStatus(status)
		full, _ := r.logs.Get(row.OperationId())
		bar := upgrade.RenderProgressWithLog(status, nil, full)
		row.SetBar(bar)
		r.setCancel(row, status, bar)
		if status.IsCompleted() {
			r.logs.Evict(row.OperationId())
			if r.onTerminal != nil && !prev.IsCompleted() {
				r.onTerminal(upgrade.Operation{Id: row.OperationId(), Status: status, Log: full})
			}
		}
	}
	r.notify()
}

// ApplyAggregate renders the batch roll-up. A "failed" aggregate is
// downgraded to partial success when any visible row actually
// succeeded. Scanning rendered rows duplicates server-side aggregation
// and can disagree with it when not all rows are loaded; the server
// counts stay authoritative for the percentage.
func (r *Reconciler) ApplyAggregate(agg upgrade.BatchAggregate) {
	status := agg.Status
	class := status.StyleClass()
	switch {
	case status == upgrade.StatusSuccess:
		class = "completed-successfully"
	case status == upgrade.StatusFailed:
		anySuccess := lo.SomeBy(r.page.Rows(), func(row Row) bool {
			s, _ := upgrade.ParseStatus(row.StatusText())
			return s.IsSuccess()
		})
		if anySuccess {
			status = upgrade.DisplayCompletedFailures
			class = "partial-success"
		}
	}
	r.page.SetAggregate(status, class, agg.Percent())
	r.notify()
}

// InitialScan reconciles rows the page already shows, seeding the
// accumulator from their rendered log content and painting bars for
// rows that have none yet. Returns the number of rows processed so the
// caller can schedule a bounded retry when the page was not ready.
func (r *Reconciler) InitialScan() int {
	processed := 0
	for _, row := range r.page.Rows() {
		if row.HasBar() {
			continue
		}
		status, ok := upgrade.ParseStatus(row.StatusText())
		if !ok && !status.IncludesProgress() {
			continue
		}
		full := ""
		if acc, present := r.logs.Get(row.OperationId()); present {
			// Accumulated content survives reconnects and tab switches;
			// it supersedes whatever truncated text the page shows.
			full = acc
			r.updateLog(row, full)
		} else {
			full = row.LogText()
			r.logs.Seed(row.OperationId(), full)
		}
		bar := upgrade.RenderProgressWithLog(status, nil, full)
		row.SetStatus(status)
		row.SetBar(bar)
		r.setCancel(row, status, bar)
		processed++
	}
	if processed > 0 {
		r.notify()
	}
	return processed
}

func (r *Reconciler) inProgressRows() []Row {
	return lo.Filter(r.page.Rows(), func(row Row, _ int) bool {
		s, _ := upgrade.ParseStatus(row.StatusText())
		return s.IsInProgress()
	})
}

func (r *Reconciler) updateLog(row Row, full string) {
	wasAtBottom := row.AtBottom()
	row.SetLog(full)
	if wasAtBottom {
		row.ScrollToBottom()
	}
}

func (r *Reconciler) setCancel(row Row, status upgrade.Status, bar upgrade.Bar) {
	switch {
	case !status.IsInProgress():
		row.SetCancel(CancelHidden)
	case bar.CanCancel:
		row.SetCancel(CancelEnabled)
	default:
		row.SetCancel(CancelDisabled)
	}
}

func formatTimestamp(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Local().Format("2006-01-02 15:04:05")
		}
	}
	return raw
}
