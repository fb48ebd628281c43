// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package reconcile

import (
	"github.com/netwisp/fwmon/upgrade"
)

// RowFields is the displayable state an update can carry for one row.
// Zero values mean "not included in this update"; HasLog distinguishes
// an absent log from an intentionally empty one.
type RowFields struct {
	OperationId string
	Status      upgrade.Status
	Bar         upgrade.Bar
	Log         string
	HasLog      bool
	Modified    string

	DeviceName string
	DeviceId   string
	ImageName  string
}

// Row is one operation's rendered slot on a page. Implementations must
// make SetBar replace any previously rendered bar, never add a sibling.
type Row interface {
	OperationId() string

	// StatusText returns the currently rendered status text, which on a
	// server-rendered page may carry display-vocabulary spelling and
	// trailing percentage decorations.
	StatusText() string
	SetStatus(status upgrade.Status)

	HasBar() bool
	SetBar(bar upgrade.Bar)

	LogText() string
	SetLog(text string)
	// AtBottom reports whether the log viewport is scrolled to the end.
	// The reconciler samples it before a log update and calls
	// ScrollToBottom afterwards only if it was, so a user reading
	// upward is not yanked down.
	AtBottom() bool
	ScrollToBottom()

	SetModified(text string)

	// SetCancel renders the cancel affordance: enabled with a plain
	// tooltip, or disabled with an explanation, or hidden entirely for
	// rows with no bar rendered.
	SetCancel(state CancelState)
}

type CancelState int

const (
	CancelHidden CancelState = iota
	CancelEnabled
	CancelDisabled
)

// Page is the read/write boundary between the reconciler and whatever
// actually displays the rows. An in-memory implementation backs the
// tests and the terminal front-ends.
type Page interface {
	FindRow(operationId string) Row
	// AddRow appends a newly discovered operation; implementations keep
	// whatever alternating styling their rows use consistent.
	AddRow(fields RowFields) Row
	Rows() []Row
	// RemovePlaceholder drops any "no results yet" filler before the
	// first real row is added.
	RemovePlaceholder()

	// SetAggregate renders the batch-level roll-up bar and status text.
	SetAggregate(status upgrade.Status, styleClass string, percent int)
}
