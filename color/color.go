// Package color names the terminal colors vidlink renders with.
package color

import "github.com/charmbracelet/lipgloss"

// ANSI indices, so output follows the terminal theme.
var (
	Red      = lipgloss.Color("1")
	Green    = lipgloss.Color("2")
	Yellow   = lipgloss.Color("3")
	Blue     = lipgloss.Color("4")
	Purple   = lipgloss.Color("5")
	Cyan     = lipgloss.Color("6")
	HiRed    = lipgloss.Color("9")
	HiBlue   = lipgloss.Color("12")
	HiPurple = lipgloss.Color("13")
)

// Roles shared by the CLI and the progress view.
var (
	Accent   = HiPurple
	Header   = HiBlue
	Provider = Cyan
	Quality  = Yellow
	Link     = Blue
	Failure  = Red
	Success  = Green
)
