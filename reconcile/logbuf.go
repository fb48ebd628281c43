// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

// Package reconcile keeps a page's rendered rows eventually consistent
// with the upgrader's event stream: it owns the per-operation log
// accumulation, the view-adapter boundary, and the row reconciler that
// applies incoming updates idempotently.
package reconcile

import (
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
)

// Accumulator retention bounds. Eviction normally happens when an
// operation is observed to reach a terminal state; the TTL and key cap
// are a backstop for operations whose terminal transition is never
// delivered (page abandoned mid-stream, server gone).
const (
	logRetention = 2 * time.Hour
	logMaxKeys   = 1024
)

// LogAccumulator holds the full log text per non-terminal operation so
// reconnects and re-renders can restore content the page no longer
// shows. At most one entry exists per operation id.
type LogAccumulator struct {
	entries cache.Cache[string, string]
}

func NewLogAccumulator() *LogAccumulator {
	return &LogAccumulator{
		entries: cache.NewCache[string, string]().WithTTL(logRetention).WithMaxKeys(logMaxKeys),
	}
}

// Seed stores initial content read from a rendered page, but only when
// no entry exists yet: accumulated content is more complete than
// whatever the page happens to show.
func (a *LogAccumulator) Seed(operationId, initial string) {
	if operationId == "" || initial == "" {
		return
	}
	if _, ok := a.entries.Get(operationId); ok {
		return
	}
	a.entries.Set(operationId, initial, 0)
}

// Append merges an incremental log fragment and returns the full text.
// A fragment arriving for an evicted id re-seeds instead of merging into
// stale content.
func (a *LogAccumulator) Append(operationId, delta string) string {
	full, ok := a.entries.Get(operationId)
	if !ok || full == "" {
		full = delta
	} else {
		full = full + "\n" + delta
	}
	a.entries.Set(operationId, full, 0)
	return full
}

// Replace overwrites the entry with an authoritative snapshot. Snapshot
// messages carry the complete server-side log; appending one would
// duplicate everything already accumulated.
func (a *LogAccumulator) Replace(operationId, full string) string {
	a.entries.Set(operationId, full, 0)
	return full
}

func (a *LogAccumulator) Get(operationId string) (string, bool) {
	return a.entries.Get(operationId)
}

// Evict drops the entry once its operation is terminal. Terminal
// operations keep their rendered row but stop receiving accumulator
// backed updates.
func (a *LogAccumulator) Evict(operationId string) {
	a.entries.Invalidate(operationId)
}

func (a *LogAccumulator) Len() int {
	return a.entries.Len()
}
