// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package tui

import "github.com/charmbracelet/lipgloss"

// Terminal theme colors (ANSI 0-15) so the display adapts to the user's
// terminal color scheme.
var (
	colorBlack       = lipgloss.Color("0")
	colorRed         = lipgloss.Color("1")
	colorGreen       = lipgloss.Color("2")
	colorYellow      = lipgloss.Color("3")
	colorBlue        = lipgloss.Color("4")
	colorMagenta     = lipgloss.Color("5")
	colorWhite       = lipgloss.Color("7")
	colorBrightBlack = lipgloss.Color("8")

	headerStyle = lipgloss.NewStyle().
			Background(colorBlue).
			Foreground(colorBlack).
			Bold(true).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorBrightBlack)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	logPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBrightBlack).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorYellow).
			Padding(1, 3)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorBrightBlack)
)

// classColors maps a row's rendered style class to a terminal color.
var classColors = map[string]lipgloss.Color{
	"in-progress":            colorBlue,
	"success":                colorGreen,
	"completed-successfully": colorGreen,
	"partial-success":        colorYellow,
	"failed":                 colorRed,
	"aborted":                colorMagenta,
	"cancelled":              colorBrightBlack,
}

func classStyle(class string) lipgloss.Style {
	if c, ok := classColors[class]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle().Foreground(colorWhite)
}
