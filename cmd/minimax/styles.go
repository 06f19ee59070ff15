package main

import "github.com/charmbracelet/lipgloss"

// GitHub terminal palette.
var (
	colorMuted   = lipgloss.Color("#656d76")
	colorAccent  = lipgloss.Color("#0969da")
	colorError   = lipgloss.Color("#cf222e")
	colorSuccess = lipgloss.Color("#1a7f37")
	colorWarning = lipgloss.Color("#9a6700")
)

var (
	promptStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	toolNameStyle   = lipgloss.NewStyle().Bold(true)
	progressStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	cancelledStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	dimStyle        = lipgloss.NewStyle().Foreground(colorMuted)
	infoStyle       = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle    = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle      = lipgloss.NewStyle().Foreground(colorError)
	errorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(colorError)
)

const treeCorner = "└ "
