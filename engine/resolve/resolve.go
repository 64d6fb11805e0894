// Package resolve maps card references from parsed intents to cards.
package resolve

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/types"
)

// minPrefix is the shortest ID prefix accepted as a reference.
const minPrefix = 4

// AmbiguityError indicates multiple cards matched a reference.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no card matched a reference.
type NotFoundError struct {
	Name  string
	Where string
}

func (e *NotFoundError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("no card matches %q", e.Name)
	}
	return fmt.Sprintf("no card matches %q in %s", e.Name, e.Where)
}

// Goal picks one goal from goals by reference. A reference is tried, in
// order, as a 1-based position, an ID or ID prefix, an exact title, and a
// set of title words.
func Goal(goals []types.GoalCard, ref string) (types.GoalCard, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		if n >= 1 && n <= len(goals) {
			return goals[n-1], nil
		}
		return types.GoalCard{}, &NotFoundError{Name: ref}
	}

	refLower := strings.ToLower(ref)
	if refLower == "" {
		return types.GoalCard{}, &NotFoundError{Name: ref}
	}

	// 1. Exact ID, then unique ID prefix.
	var byPrefix []int
	for i, g := range goals {
		if g.ID == ref {
			return g, nil
		}
		if len(ref) >= minPrefix && strings.HasPrefix(strings.ToLower(g.ID), refLower) {
			byPrefix = append(byPrefix, i)
		}
	}
	if len(byPrefix) == 1 {
		return goals[byPrefix[0]], nil
	}

	// 2. Exact title.
	refKey := Fold(ref)
	var exact []int
	for i, g := range goals {
		if Fold(g.Title) == refKey {
			exact = append(exact, i)
		}
	}
	if g, ok, err := pick(goals, exact, ref); ok {
		return g, err
	}

	// 3. Word-based partial match: every query word appears in the title.
	// e.g. "deep work" matches "Deep work block".
	var partial []int
	for i, g := range goals {
		if matchesWords(g.Title, refKey) {
			partial = append(partial, i)
		}
	}
	if g, ok, err := pick(goals, partial, ref); ok {
		return g, err
	}

	return types.GoalCard{}, &NotFoundError{Name: ref}
}

func pick(goals []types.GoalCard, matches []int, ref string) (types.GoalCard, bool, error) {
	switch len(matches) {
	case 0:
		return types.GoalCard{}, false, nil
	case 1:
		return goals[matches[0]], true, nil
	default:
		var names []string
		for _, i := range matches {
			names = append(names, fmt.Sprintf("%s [%s]", goals[i].Title, shortID(goals[i].ID)))
		}
		return types.GoalCard{}, true, &AmbiguityError{Name: ref, Candidates: names}
	}
}

func matchesWords(title, queryKey string) bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(Fold(title)) {
		words[w] = true
	}
	query := strings.Fields(queryKey)
	if len(query) == 0 {
		return false
	}
	for _, q := range query {
		if !words[q] {
			return false
		}
	}
	return true
}

// Energy picks one energy card from pool by reference: a 1-based position,
// an ID or ID prefix, or an energy type given as value, name, alias or glyph.
func Energy(pool []types.EnergyCard, ref string) (types.EnergyCard, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		if n >= 1 && n <= len(pool) {
			return pool[n-1], nil
		}
		return types.EnergyCard{}, &NotFoundError{Name: ref, Where: "the energy pool"}
	}

	if t, ok := energy.Parse(ref); ok {
		var matches []types.EnergyCard
		for _, e := range pool {
			if e.Type == t {
				matches = append(matches, e)
			}
		}
		switch len(matches) {
		case 0:
		case 1:
			return matches[0], nil
		default:
			// Several cards of one type: prefer one that can still be toggled.
			for _, e := range matches {
				if e.BoundGoalID == "" {
					return e, nil
				}
			}
			return matches[0], nil
		}
	}

	refLower := strings.ToLower(ref)
	var byPrefix []types.EnergyCard
	for _, e := range pool {
		if e.ID == ref {
			return e, nil
		}
		if len(ref) >= minPrefix && strings.HasPrefix(strings.ToLower(e.ID), refLower) {
			byPrefix = append(byPrefix, e)
		}
	}
	if len(byPrefix) == 1 {
		return byPrefix[0], nil
	}

	return types.EnergyCard{}, &NotFoundError{Name: ref, Where: "the energy pool"}
}

// Fold reduces a title or query to its comparison key: diacritics are
// stripped and case is folded, so "schole" matches "Scholē".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	return cases.Fold().String(s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
