// Package ui renders CLI output: the tri-state sync indicator and the
// accent/error styling shared by the driftpad commands.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	syncedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	syncingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// ColorEnabled reports whether the terminal supports colored output.
func ColorEnabled() bool {
	return termenv.DefaultOutput().Profile != termenv.Ascii
}

// render applies the style only when the terminal can show it; plain
// terminals and pipes get the bare text.
func render(style lipgloss.Style, s string) string {
	if !ColorEnabled() {
		return s
	}
	return style.Render(s)
}

// RenderAccent styles s as an accent (headings, highlights).
func RenderAccent(s string) string {
	return render(accentStyle, s)
}

// RenderError styles s as an error.
func RenderError(s string) string {
	return render(errorStyle, s)
}

// RenderDim styles s as secondary detail (ids, timestamps).
func RenderDim(s string) string {
	return render(dimStyle, s)
}

// RenderStatus styles the tri-state sync indicator. The state strings
// match scheduler.State values.
func RenderStatus(state string) string {
	switch state {
	case "idle":
		return render(syncedStyle, "✓ synced")
	case "syncing":
		return render(syncingStyle, "… syncing")
	case "offline":
		return render(offlineStyle, "✗ offline")
	default:
		return render(dimStyle, state)
	}
}

// ShortID returns the display form of a note id: the first 8 characters
// for UUID-length ids, or the whole id when it is already that short.
// Pulled and imported ids are caller-chosen and can be arbitrarily small.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
