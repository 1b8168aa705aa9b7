// Package theme holds the lipgloss styles for both presentation
// modes. Apply swaps every package-level style between the light and
// dark palette; views read the styles at render time, so a swap takes
// effect on the next frame.
package theme

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// TransitionDuration is how long the transition marker stays set
// after a toggle. Purely cosmetic.
const TransitionDuration = 600 * time.Millisecond

// palette is one mode's color set.
type palette struct {
	Blue   lipgloss.Color
	Green  lipgloss.Color
	Yellow lipgloss.Color
	Red    lipgloss.Color
	Gray   lipgloss.Color
	Text   lipgloss.Color
	Subtle lipgloss.Color
	Border lipgloss.Color
}

var darkPalette = palette{
	Blue:   lipgloss.Color("#5B9BD5"),
	Green:  lipgloss.Color("#6BCB77"),
	Yellow: lipgloss.Color("#FFD93D"),
	Red:    lipgloss.Color("#FF6B6B"),
	Gray:   lipgloss.Color("#868E96"),
	Text:   lipgloss.Color("#F8F9FA"),
	Subtle: lipgloss.Color("#495057"),
	Border: lipgloss.Color("#495057"),
}

var lightPalette = palette{
	Blue:   lipgloss.Color("#2B6CB0"),
	Green:  lipgloss.Color("#2F855A"),
	Yellow: lipgloss.Color("#B7791F"),
	Red:    lipgloss.Color("#C53030"),
	Gray:   lipgloss.Color("#718096"),
	Text:   lipgloss.Color("#1A202C"),
	Subtle: lipgloss.Color("#CBD5E0"),
	Border: lipgloss.Color("#E2E8F0"),
}

// Styles rebuilt by Apply. Defaults are the light palette.
var (
	HeaderStyle       lipgloss.Style
	StatusBarStyle    lipgloss.Style
	PanelStyle        lipgloss.Style
	ListItemStyle     lipgloss.Style
	SelectedItemStyle lipgloss.Style
	DimmedStyle       lipgloss.Style
	ErrorStyle        lipgloss.Style
	BadgeStyle        lipgloss.Style
	ToastStyle        lipgloss.Style
	TitleStyle        lipgloss.Style
	UnreadStyle       lipgloss.Style
)

var dark bool

func init() {
	Apply(false)
}

// Dark reports the currently applied mode.
func Dark() bool {
	return dark
}

// Apply rebuilds every style from the selected palette. It is called
// at startup with the persisted flag, on every toggle, and when
// another running instance changes the flag.
func Apply(darkMode bool) {
	dark = darkMode

	p := lightPalette
	if darkMode {
		p = darkPalette
	}

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		Background(p.Blue).
		Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.Subtle).
		Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)

	ListItemStyle = lipgloss.NewStyle().
		PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Bold(true).
		Foreground(p.Blue).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(p.Blue)

	DimmedStyle = lipgloss.NewStyle().
		Foreground(p.Gray)

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Red)

	BadgeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		Background(p.Red).
		Padding(0, 1)

	ToastStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		Background(p.Yellow).
		Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text)

	UnreadStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Green)
}
