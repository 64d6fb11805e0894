package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/elysium/engine"
	"github.com/nathoo/elysium/engine/energy"
)

// MaxCost is the largest per-type cost the card editor offers. Higher
// costs load with a warning.
const MaxCost = 9

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

var knownArt = func() map[string]bool {
	m := map[string]bool{}
	for _, k := range engine.ArtKeys {
		m[k] = true
	}
	return m
}()

// validate checks the compiled deck for consistency.
func validate(deck *Deck, ve *ValidationError) {
	if len(deck.Cards) == 0 {
		ve.Errors = append(ve.Errors, "deck defines no goals")
		return
	}

	titles := map[string]int{}
	for i, g := range deck.Cards {
		label := fmt.Sprintf("goal %q", g.Title)
		if strings.TrimSpace(g.Title) == "" {
			label = fmt.Sprintf("goal %d", i+1)
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s has an empty title", label))
		}

		for j, c := range g.AcceptanceCriteria {
			if strings.TrimSpace(c) == "" {
				ve.Errors = append(ve.Errors, fmt.Sprintf("%s: criterion %d is empty", label, j+1))
			}
		}

		if g.ArtKey != "" && !knownArt[g.ArtKey] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"%s: unknown art %q (known: %s)", label, g.ArtKey, strings.Join(engine.ArtKeys, ", ")))
		}

		for _, t := range energy.Types {
			if n := energy.Requires(g.EnergyCost, t); n > MaxCost {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"%s: %s cost %d exceeds %d", label, t, n, MaxCost))
			}
		}

		key := strings.ToLower(strings.TrimSpace(g.Title))
		if first, dup := titles[key]; dup && key != "" {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"%s: duplicate title (first defined as goal %d)", label, first+1))
		} else {
			titles[key] = i
		}
	}
}
