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

	styleStatusWarn = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleEnergyReady = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220"))

	styleEnergyTapped = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Bold(false)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeading = lipgloss.NewStyle().
			Bold(true)

	styleCounts = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleCriterion = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	styleElysium = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleBoard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	styleBarDone = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	styleBarTodo = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	styleCastable = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindHeading
	kindCounts
	kindCriterion
	kindElysium
	kindError
	kindTrace
)

// errorPrefixes start the engine's rejection messages.
var errorPrefixes = []string{
	"Not enough energy",
	"I don't know how",
	"no card matches",
	"which ",
	"You can't",
	"Usage:",
	"Positions start",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[x]"), strings.HasPrefix(line, "[ ]"):
		return kindCriterion
	case strings.HasSuffix(line, "reaches Elysium!"):
		return kindElysium
	case strings.HasPrefix(line, "Stack: "):
		return kindCounts
	case !strings.HasPrefix(line, " ") && strings.HasSuffix(line, ":"):
		return kindHeading
	case strings.Contains(line, " is not in your hand"),
		strings.Contains(line, " has no criterion"),
		strings.Contains(line, " is bound to "):
		return kindError
	}
	for _, p := range errorPrefixes {
		if strings.HasPrefix(line, p) {
			return kindError
		}
	}
	return kindNarrative
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindHeading:
		return styleHeading.Render(line)
	case kindCounts:
		return styleCounts.Render(line)
	case kindCriterion:
		return styleCriterion.Render(line)
	case kindElysium:
		return styleElysium.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
