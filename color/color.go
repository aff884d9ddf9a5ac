// Package color is the ANSI palette shared by the CLI and the playback view.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps a lipgloss color value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	White  = New("7")
	Black  = New("8")
)

var (
	HiRed    = New("9")
	HiPurple = New("13")
	HiCyan   = New("14")
)

// Accents used by the playback view.
var (
	Orange = New("#ffb703")
	Gray   = New("#808080")
)
