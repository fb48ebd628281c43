// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

// Package tui renders a live upgrade page in the terminal. The page
// model is reconciled on the feed goroutine; the TUI only reads
// immutable snapshots of it.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/netwisp/fwmon/client"
	"github.com/netwisp/fwmon/reconcile"
	"github.com/netwisp/fwmon/upgrade"
)

// Options wires the TUI to a running feed.
type Options struct {
	Page       *reconcile.MemPage
	Reconciler *reconcile.Reconciler
	Controller *client.Controller
	Api        *client.Api
	PageType   client.PageType
	Id         string
}

// pageChangedMsg is sent whenever the reconciler mutated the page
type pageChangedMsg struct{}

// feedClosedMsg is sent when the websocket feed gives up
type feedClosedMsg struct {
	err error
}

// cancelResultMsg is sent after a cancel request completes
type cancelResultMsg struct {
	operationId string
	err         error
}

type Model struct {
	opts    Options
	changes <-chan struct{}

	rows     []reconcile.RowView
	selected int
	follow   bool

	logView viewport.Model
	spin    spinner.Model

	width  int
	height int
	ready  bool

	confirming bool
	cancelling bool
	message    string
	isError    bool
	feedDone   bool
	feedErr    error
}

func newModel(opts Options, changes <-chan struct{}) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorYellow)

	return Model{
		opts:    opts,
		changes: changes,
		follow:  true,
		spin:    sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.changes),
		m.spin.Tick,
	)
}

// waitForChange blocks until the reconciler signals a page mutation
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return pageChangedMsg{}
	}
}

func (m Model) cancelSelected() tea.Cmd {
	row := m.rows[m.selected]
	api := m.opts.Api
	return func() tea.Msg {
		err := api.Cancel(context.Background(), row.OperationId)
		return cancelResultMsg{operationId: row.OperationId, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := m.height - m.chromeHeight()
		if logHeight < 3 {
			logHeight = 3
		}
		if !m.ready {
			m.logView = viewport.New(m.width-4, logHeight)
			m.ready = true
		} else {
			m.logView.Width = m.width - 4
			m.logView.Height = logHeight
		}
		m.refresh()
		return m, nil

	case pageChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case feedClosedMsg:
		m.feedDone = true
		m.feedErr = msg.err
		return m, nil

	case cancelResultMsg:
		m.cancelling = false
		if msg.err != nil {
			m.message = msg.err.Error()
			m.isError = true
		} else {
			m.message = fmt.Sprintf("cancel requested for %s", msg.operationId)
			m.isError = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.cancelling {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming {
		switch msg.String() {
		case "y", "Y":
			m.confirming = false
			m.cancelling = true
			m.message = ""
			return m, tea.Batch(m.cancelSelected(), m.spin.Tick)
		case "n", "N", "esc":
			m.confirming = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
			m.follow = true
			m.refresh()
		}

	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
			m.follow = true
			m.refresh()
		}

	case "pgup", "u":
		m.logView.HalfViewUp()
		m.syncFollow()

	case "pgdown", "d":
		m.logView.HalfViewDown()
		m.syncFollow()

	case "end", "G":
		m.logView.GotoBottom()
		m.syncFollow()

	case "c":
		if len(m.rows) > 0 && m.rows[m.selected].Cancel == reconcile.CancelEnabled && !m.cancelling {
			m.confirming = true
		}
	}

	return m, nil
}

// syncFollow propagates the user's scroll position to the page model,
// so the reconciler knows whether to keep the log pinned to its tail.
func (m *Model) syncFollow() {
	m.follow = m.logView.AtBottom()
	if len(m.rows) == 0 {
		return
	}
	row := m.opts.Page.FindRow(m.rows[m.selected].OperationId)
	if row == nil {
		return
	}
	if m.follow {
		row.ScrollToBottom()
	} else if mr, ok := row.(*reconcile.MemRow); ok {
		mr.SetScrolledUp()
	}
}

// refresh pulls a fresh snapshot of the page into the view.
func (m *Model) refresh() {
	m.rows = m.opts.Page.Snapshot()
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if !m.ready {
		return
	}
	var logText string
	if len(m.rows) > 0 {
		logText = m.rows[m.selected].Log
	}
	m.logView.SetContent(logText)
	if m.follow {
		m.logView.GotoBottom()
	}
}

func (m Model) chromeHeight() int {
	// header + aggregate + rows + log border + footer
	return 5 + len(m.rows)
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder

	title := fmt.Sprintf("firmware upgrades · %s %s", m.opts.PageType, m.opts.Id)
	b.WriteString(headerStyle.Width(m.width).Render(title))
	b.WriteString("\n")

	if line := m.aggregateLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.rows) == 0 {
		b.WriteString(mutedStyle.Render("waiting for upgrade operations..."))
		b.WriteString("\n")
	}
	for i, row := range m.rows {
		b.WriteString(m.renderRow(i, row))
		b.WriteString("\n")
	}

	b.WriteString(logPanelStyle.Width(m.width - 2).Render(m.logView.View()))
	b.WriteString("\n")
	b.WriteString(m.footer())

	if m.confirming {
		return m.overlayConfirm()
	}
	return b.String()
}

func (m Model) renderRow(i int, row reconcile.RowView) string {
	marker := "  "
	nameStyle := lipgloss.NewStyle()
	if i == m.selected {
		marker = "> "
		nameStyle = selectedRowStyle
	}

	name := row.DeviceName
	if name == "" {
		name = row.OperationId
	}
	status := classStyle(row.Bar.StyleClass).Render(row.Status.Display())

	bar := ""
	if row.HasBar {
		bar = renderBar(row.Bar, 24)
	}

	parts := []string{marker + nameStyle.Render(fmt.Sprintf("%-20s", name)), status, bar}
	if row.Modified != "" {
		parts = append(parts, mutedStyle.Render(row.Modified))
	}
	switch row.Cancel {
	case reconcile.CancelEnabled:
		parts = append(parts, mutedStyle.Render("[c]ancel"))
	case reconcile.CancelDisabled:
		parts = append(parts, mutedStyle.Render("(past cancel point)"))
	}
	return strings.Join(parts, "  ")
}

// renderBar draws a fixed-width block progress bar in the bar's style
// class color, with the percent label when the status shows one.
func renderBar(bar upgrade.Bar, width int) string {
	filled := width * bar.Percent / 100
	if filled > width {
		filled = width
	}
	body := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	out := classStyle(bar.StyleClass).Render(body)
	if bar.ShowText {
		out += fmt.Sprintf(" %3d%%", bar.Percent)
	}
	return out
}

func (m Model) aggregateLine() string {
	status, class, percent, ok := m.opts.Page.Aggregate()
	if !ok {
		return ""
	}
	return fmt.Sprintf("batch: %s  %s",
		classStyle(class).Render(string(status)),
		renderBar(upgrade.Bar{Percent: percent, StyleClass: class, ShowText: true}, 24))
}

func (m Model) footer() string {
	if m.cancelling {
		return m.spin.View() + " cancelling..."
	}
	if m.message != "" {
		if m.isError {
			return errorStyle.Render(m.message)
		}
		return m.message
	}
	if m.feedDone {
		text := "feed closed"
		if m.feedErr != nil {
			text = "feed closed: " + m.feedErr.Error()
		}
		return errorStyle.Render(text) + helpStyle.Render("  ·  q quit")
	}
	return helpStyle.Render("↑/↓ select · u/d scroll log · c cancel · q quit")
}

func (m Model) overlayConfirm() string {
	row := m.rows[m.selected]
	name := row.DeviceName
	if name == "" {
		name = row.OperationId
	}
	box := modalStyle.Render(fmt.Sprintf("Cancel the upgrade of %s?\n\n[y]es  [n]o", name))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))
}

// Run drives the TUI until the user quits. The websocket controller is
// started on its own goroutine and reports back through the program's
// message loop when the feed ends.
func Run(ctx context.Context, opts Options) error {
	changes := make(chan struct{}, 1)
	opts.Reconciler.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	p := tea.NewProgram(newModel(opts, changes), tea.WithAltScreen(), tea.WithContext(ctx))

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	go func() {
		err := opts.Controller.Run(feedCtx)
		p.Send(feedClosedMsg{err: err})
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
