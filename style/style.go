// Package style renders vidlink's terminal output with lipgloss.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/vidlink-cli/vidlink/color"
)

// New returns an empty style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer applying the foreground color c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders the banner on top of the progress view.
func Title(s string) string {
	return New().Foreground(lipgloss.Color("230")).Background(color.Accent).Padding(0, 1).Render(s)
}

// Header renders a section heading such as a format name or a config section.
func Header(s string) string {
	return New().Bold(true).Foreground(color.Header).Render(s)
}

// Provider renders a provider name.
func Provider(name string) string {
	return New().Bold(true).Foreground(color.Provider).Render(name)
}

// Tier renders a quality tag. The tier auto resolves to is underlined.
func Tier(quality string, auto bool) string {
	s := New().Foreground(color.Quality)
	if auto {
		s = s.Underline(true)
	}
	return s.Render(quality)
}

// Link renders a download link.
func Link(link string) string {
	return Fg(color.Link)(link)
}

// Failure renders an error message or reason.
func Failure(s string) string {
	return Fg(color.Failure)(s)
}
