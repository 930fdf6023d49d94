package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// areaDisplayName derives a human-readable name from an area ID.
// "great_hall" -> "Great Hall", "castle_gates" -> "Castle Gates".
func areaDisplayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing the
// area, party health and, in combat, the round and whose turn it is.
func (m Model) renderStatusBar() string {
	eng := m.session.Engine
	a := eng.Area()
	if a == nil {
		return styleStatusBar.Width(m.width).Render(" No game")
	}

	name := a.Def.Name
	if name == "" {
		name = areaDisplayName(a.ID())
	}
	left := " " + name

	var party []string
	for _, p := range eng.Party() {
		party = append(party, fmt.Sprintf("%s %d/%d", p.Name(), p.Actor.HP, p.Actor.Stats.MaxHP))
	}
	right := strings.Join(party, " | ") + " "

	style := styleStatusBar
	if eng.InCombat() {
		style = styleCombatBar
		turn := "-"
		if cur := eng.Current(); cur != nil {
			turn = cur.Name()
			if eng.IsPartyMember(cur) {
				turn = fmt.Sprintf("%s AP %d", turn, cur.Actor.AP)
			}
		}
		left = fmt.Sprintf("%s | Round %d | %s", left, a.Timer().Round(), styleActive.Render(turn))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return style.Width(m.width).Render(bar)
}
