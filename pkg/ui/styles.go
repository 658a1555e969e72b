// Package ui holds terminal presentation helpers shared by the commands.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	Red      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	Green    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	Yellow   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	Info     = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Success prints a green confirmation line.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Green.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Warn prints a yellow warning line.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Yellow.Render("! "+fmt.Sprintf(format, args...)))
}

// Failure prints a red error line.
func Failure(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Red.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Box renders content inside a rounded border with an optional title line.
func Box(title, content string) string {
	if title != "" {
		content = Info.Render(title) + "\n" + content
	}
	return BoxStyle.Render(content)
}
