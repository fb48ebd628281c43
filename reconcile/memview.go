// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package reconcile

import (
	"html"
	"sync"

	"github.com/netwisp/fwmon/upgrade"
)

// MemPage is the in-memory Page implementation. The reconciler mutates
// it from the connection goroutine while front-ends snapshot it for
// rendering, so all access goes through one mutex.
type MemPage struct {
	mu          sync.Mutex
	rows        []*MemRow
	placeholder bool

	aggStatus  upgrade.Status
	aggClass   string
	aggPercent int
	hasAgg     bool
}

func NewMemPage() *MemPage {
	return &MemPage{placeholder: true}
}

func (p *MemPage) FindRow(operationId string) Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.rows {
		if r.id == operationId {
			return r
		}
	}
	return nil
}

func (p *MemPage) AddRow(fields RowFields) Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	style := "row1"
	if len(p.rows)%2 == 1 {
		style = "row2"
	}
	r := &MemRow{
		page:  p,
		id:    fields.OperationId,
		style: style,
		// Device and image names originate from user-editable fields and
		// are escaped before they reach any markup-capable sink.
		deviceName: html.EscapeString(fields.DeviceName),
		deviceId:   fields.DeviceId,
		imageName:  html.EscapeString(fields.ImageName),
		status:     fields.Status,
		modified:   fields.Modified,
		atBottom:   true,
	}
	if fields.HasLog {
		r.log = fields.Log
	}
	p.rows = append(p.rows, r)
	return r
}

func (p *MemPage) Rows() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Row, len(p.rows))
	for i, r := range p.rows {
		out[i] = r
	}
	return out
}

func (p *MemPage) RemovePlaceholder() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placeholder = false
}

func (p *MemPage) HasPlaceholder() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.placeholder && len(p.rows) == 0
}

func (p *MemPage) SetAggregate(status upgrade.Status, styleClass string, percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aggStatus = status
	p.aggClass = styleClass
	p.aggPercent = percent
	p.hasAgg = true
}

// Aggregate returns the last rendered batch roll-up.
func (p *MemPage) Aggregate() (status upgrade.Status, styleClass string, percent int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aggStatus, p.aggClass, p.aggPercent, p.hasAgg
}

// RowView is an immutable copy of a row's rendered state for display.
type RowView struct {
	OperationId string
	Style       string
	DeviceName  string
	DeviceId    string
	ImageName   string
	Status      upgrade.Status
	Bar         upgrade.Bar
	HasBar      bool
	Log         string
	Modified    string
	Cancel      CancelState
}

// Snapshot copies every row for lock-free rendering.
func (p *MemPage) Snapshot() []RowView {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]RowView, len(p.rows))
	for i, r := range p.rows {
		out[i] = RowView{
			OperationId: r.id,
			Style:       r.style,
			DeviceName:  r.deviceName,
			DeviceId:    r.deviceId,
			ImageName:   r.imageName,
			Status:      r.status,
			Bar:         r.bar,
			HasBar:      r.hasBar,
			Log:         r.log,
			Modified:    r.modified,
			Cancel:      r.cancel,
		}
	}
	return out
}

// MemRow implements Row. Methods lock through the owning page.
type MemRow struct {
	page  *MemPage
	id    string
	style string

	deviceName string
	deviceId   string
	imageName  string

	status   upgrade.Status
	bar      upgrade.Bar
	hasBar   bool
	log      string
	modified string
	atBottom bool
	cancel   CancelState
}

func (r *MemRow) OperationId() string { return r.id }

func (r *MemRow) StatusText() string {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	return string(r.status)
}

func (r *MemRow) SetStatus(status upgrade.Status) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	r.status = status
}

func (r *MemRow) HasBar() bool {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	return r.hasBar
}

func (r *MemRow) SetBar(bar upgrade.Bar) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	// Replace-in-place: a row has exactly one bar container.
	r.bar = bar
	r.hasBar = true
}

func (r *MemRow) LogText() string {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	return r.log
}

func (r *MemRow) SetLog(text string) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	r.log = text
}

func (r *MemRow) AtBottom() bool {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	return r.atBottom
}

func (r *MemRow) ScrollToBottom() {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	r.atBottom = true
}

// SetScrolledUp marks the viewport as scrolled away from the end, which
// front-ends call when the user scrolls the log.
func (r *MemRow) SetScrolledUp() {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	r.atBottom = false
}

func (r *MemRow) SetModified(text string) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	r.modified = text
}

func (r *MemRow) SetCancel(state CancelState) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	r.cancel = state
}
