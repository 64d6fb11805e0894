package loader

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/types"
)

// rawGoal holds a goal table before compilation.
type rawGoal struct {
	title string
	table *lua.LTable
	file  string
}

func (g rawGoal) where() string {
	if g.file == "" {
		return fmt.Sprintf("goal %q", g.title)
	}
	return fmt.Sprintf("goal %q (%s)", g.title, g.file)
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// compile converts collected Lua tables into goal templates. Type problems
// are recorded in ve; the offending field is left empty.
func compile(coll *collector, ve *ValidationError) *Deck {
	deck := &Deck{}
	if coll.deck != nil {
		deck.Title = getString(coll.deck, "title")
	}

	for _, rg := range coll.goals {
		g := types.GoalCard{
			ID:      getString(rg.table, "id"),
			Title:   rg.title,
			Details: getString(rg.table, "details"),
			ArtKey:  getString(rg.table, "art"),
		}
		g.AcceptanceCriteria = compileCriteria(rg, ve)
		g.EnergyCost = compileCost(rg, ve)
		deck.Cards = append(deck.Cards, g)
	}
	return deck
}

func compileCriteria(rg rawGoal, ve *ValidationError) []string {
	v := rg.table.RawGetString("criteria")
	if v == lua.LNil {
		return nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: criteria must be a list of strings", rg.where()))
		return nil
	}

	criteria := make([]string, 0, tbl.MaxN())
	for i := 1; i <= tbl.MaxN(); i++ {
		s, ok := tbl.RawGetInt(i).(lua.LString)
		if !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: criterion %d is not a string", rg.where(), i))
			continue
		}
		criteria = append(criteria, string(s))
	}
	return criteria
}

func compileCost(rg rawGoal, ve *ValidationError) types.EnergyCost {
	v := rg.table.RawGetString("cost")
	if v == lua.LNil {
		return nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: cost must be a table of energy = amount", rg.where()))
		return nil
	}

	cost := types.EnergyCost{}
	tbl.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: cost keys must be energy names", rg.where()))
			return
		}
		t, ok := energy.Parse(string(key))
		if !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown energy type %q", rg.where(), string(key)))
			return
		}
		n, ok := v.(lua.LNumber)
		if !ok || float64(n) != math.Trunc(float64(n)) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %s cost must be a whole number", rg.where(), t))
			return
		}
		if n < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %s cost is negative", rg.where(), t))
			return
		}
		// Aliases may name the same type twice ("soma" and "body").
		cost[t] += int(n)
	})
	return energy.NewCost(cost)
}
