package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/elysium/engine/energy"
)

// boardWidth is the outer width of the board panel, border included.
const boardWidth = 34

// barWidth is the number of cells in a criteria progress bar.
const barWidth = 10

// progressBar draws done/total as a fixed-width bar. Goals without criteria
// get an empty bar.
func progressBar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	return styleBarDone.Render(strings.Repeat("█", filled)) +
		styleBarTodo.Render(strings.Repeat("░", barWidth-filled))
}

// truncate shortens s to at most width cells, marking the cut with "…".
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// renderBoard draws the side panel: battlefield goals in layout order with
// their progress, then the hand with what each card costs and whether the
// pool can pay for it now.
func (m Model) renderBoard(height int) string {
	eng := m.session.Engine
	inner := boardWidth - 4

	var b strings.Builder
	b.WriteString(styleHeading.Render("Battlefield") + "\n")
	field := eng.OrderedBattlefield()
	if len(field) == 0 {
		b.WriteString(styleCounts.Render("  (empty)") + "\n")
	}
	for _, g := range field {
		done, total := eng.Progress(g.ID)
		b.WriteString(truncate(g.Title, inner) + "\n")
		b.WriteString(fmt.Sprintf("%s %d/%d\n", progressBar(done, total), done, total))
	}

	b.WriteString("\n" + styleHeading.Render("Hand") + "\n")
	hand := eng.Hand()
	if len(hand) == 0 {
		b.WriteString(styleCounts.Render("  (empty)") + "\n")
	}
	for _, g := range hand {
		cost := energy.CastingCost(g.EnergyCost)
		title := truncate(g.Title, inner-lipgloss.Width(cost)-1)
		line := title + " " + cost
		if len(eng.Shortfall(g.ID)) > 0 {
			b.WriteString(styleCounts.Render(line) + "\n")
		} else {
			b.WriteString(styleCastable.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + styleCounts.Render(fmt.Sprintf("Elysium %d", len(eng.Elysium()))))

	return styleBoard.
		Width(boardWidth - 2).
		Height(max(height-2, 1)).
		Render(b.String())
}
