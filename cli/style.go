package cli

import "github.com/charmbracelet/lipgloss"

var (
	styleSystem = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleScript = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	styleDamage = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	styleHeal   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleMiss   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true)
	stylePrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
)

// Render styles a line for terminal output. System lines are bracketed.
func Render(l Line) string {
	switch l.Kind {
	case LineSystem:
		return styleSystem.Render("[" + l.Text + "]")
	case LineError:
		return styleError.Render(l.Text)
	case LineScript:
		return styleScript.Render(l.Text)
	case LineDamage:
		return styleDamage.Render(l.Text)
	case LineHeal:
		return styleHeal.Render(l.Text)
	case LineMiss:
		return styleMiss.Render(l.Text)
	}
	return l.Text
}

// Plain formats a line without color.
func Plain(l Line) string {
	if l.Kind == LineSystem {
		return "[" + l.Text + "]"
	}
	return l.Text
}
