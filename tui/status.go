package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/elysium/engine/energy"
)

// energyGlyphs renders the pool in order; tapped cards are dimmed.
func (m Model) energyGlyphs() string {
	var parts []string
	for _, en := range m.session.Engine.Energies() {
		g := energy.Glyph(en.Type)
		if en.IsTapped {
			parts = append(parts, styleEnergyTapped.Inherit(styleStatusBar).Render(g))
		} else {
			parts = append(parts, styleEnergyReady.Inherit(styleStatusBar).Render(g))
		}
	}
	return strings.Join(parts, styleStatusBar.Render(" "))
}

// renderStatusBar produces a full-width inverted status line showing zone
// counts on the left and the energy pool on the right. A pending warning
// replaces the zone counts until the next command.
func (m Model) renderStatusBar() string {
	eng := m.session.Engine

	left := fmt.Sprintf(" Stack %d | Hand %d | Battlefield %d | Elysium %d",
		len(eng.Stack()), len(eng.Hand()), len(eng.Battlefield()), len(eng.Elysium()))
	if m.status != "" {
		left = " " + m.status
	}

	right := m.energyGlyphs() + styleStatusBar.Render(" ")

	leftStyle := styleStatusBar
	if m.status != "" {
		leftStyle = styleStatusWarn
	}
	leftRendered := leftStyle.Render(left)

	gap := m.width - lipgloss.Width(leftRendered) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return leftRendered + styleStatusBar.Render(strings.Repeat(" ", gap)) + right
}
