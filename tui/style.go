package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleCombatBar = styleStatusBar.
			Background(lipgloss.Color("52"))

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleWall    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleFloor   = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	styleWater   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	styleBrush   = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
	styleParty   = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	styleHostile = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleOther   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	styleActive  = lipgloss.NewStyle().Reverse(true)
)

// styledInput renders echoed player input in green with "> " prefix.
func styledInput(input string) string {
	return stylePlayerInput.Render("> " + input)
}

// styleMapRow colors one row of the map: terrain by tile glyph, entities
// by allegiance.
func styleMapRow(row string, party, hostile map[rune]bool) string {
	var b strings.Builder
	for _, r := range row {
		s := string(r)
		switch {
		case r == '#':
			b.WriteString(styleWall.Render(s))
		case r == '.':
			b.WriteString(styleFloor.Render(s))
		case r == '~':
			b.WriteString(styleWater.Render(s))
		case r == '%':
			b.WriteString(styleBrush.Render(s))
		case party[r]:
			b.WriteString(styleParty.Render(s))
		case hostile[r]:
			b.WriteString(styleHostile.Render(s))
		default:
			b.WriteString(styleOther.Render(s))
		}
	}
	return b.String()
}
