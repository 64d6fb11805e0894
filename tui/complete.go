package tui

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/nathoo/elysium/engine"
	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/engine/parser"
	"github.com/nathoo/elysium/engine/resolve"
	"github.com/nathoo/elysium/types"
)

// completionCandidates lists the names a command's object may take: card
// titles from the zone the verb acts on, or energy type names for tap.
func completionCandidates(eng *engine.Engine, verb string) []string {
	var cards []types.GoalCard
	switch verb {
	case "cast":
		cards = eng.Hand()
	case "check", "uncheck":
		cards = eng.OrderedBattlefield()
	case "move":
		cards = append(eng.Stack(), eng.OrderedBattlefield()...)
	case "show":
		cards = eng.Snapshot().Goals
	case "tap":
		names := make([]string, 0, len(energy.Types))
		for _, t := range energy.Types {
			names = append(names, string(t))
		}
		return names
	default:
		return nil
	}
	titles := make([]string, 0, len(cards))
	for _, c := range cards {
		titles = append(titles, c.Title)
	}
	return titles
}

// complete extends the object of a partially typed command. With a single
// match the full name is filled in; with several, the input grows to their
// common prefix and the matches are returned for display.
func complete(eng *engine.Engine, input string) (string, []string) {
	verbWord, partial, ok := strings.Cut(strings.TrimLeft(input, " "), " ")
	if !ok {
		return input, nil
	}
	verb := parser.Parse(verbWord).Verb

	var matches []string
	partial = strings.TrimLeft(partial, " ")
	key := resolve.Fold(partial)
	for _, c := range completionCandidates(eng, verb) {
		if strings.HasPrefix(resolve.Fold(c), key) && !slices.Contains(matches, c) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return input, nil
	case 1:
		return verbWord + " " + matches[0], nil
	}
	prefix := commonPrefix(matches)
	if utf8.RuneCountInString(prefix) < utf8.RuneCountInString(partial) {
		return input, matches
	}
	return verbWord + " " + prefix, matches
}

// commonPrefix is the longest case-insensitive prefix shared by all names,
// spelled as in the first.
func commonPrefix(names []string) string {
	first := []rune(names[0])
	n := len(first)
	for _, name := range names[1:] {
		r := []rune(name)
		i := 0
		for i < n && i < len(r) && strings.EqualFold(string(first[i]), string(r[i])) {
			i++
		}
		n = i
	}
	return string(first[:n])
}
