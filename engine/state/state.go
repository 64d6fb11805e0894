// Package state manages the mutable game state: construction, lookups,
// criteria sets, deep copies, and repair of restored snapshots.
package state

import (
	"sort"

	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/types"
)

// NewState creates a fresh game state: no goals and a default energy pool.
func NewState(newID func() string) *types.State {
	return &types.State{
		Goals:            []types.GoalCard{},
		Energies:         NewPool(newID),
		BattlefieldOrder: []string{},
		CriteriaDone:     map[string][]int{},
	}
}

// NewPool returns one untapped, unbound energy card per type in
// declaration order.
func NewPool(newID func() string) []types.EnergyCard {
	pool := make([]types.EnergyCard, 0, len(energy.Types))
	for _, t := range energy.Types {
		pool = append(pool, types.EnergyCard{ID: newID(), Type: t})
	}
	return pool
}

// GoalIndex returns the position of a goal in s.Goals, or -1.
func GoalIndex(s *types.State, goalID string) int {
	for i := range s.Goals {
		if s.Goals[i].ID == goalID {
			return i
		}
	}
	return -1
}

// EnergyIndex returns the position of an energy card in s.Energies, or -1.
func EnergyIndex(s *types.State, energyID string) int {
	for i := range s.Energies {
		if s.Energies[i].ID == energyID {
			return i
		}
	}
	return -1
}

// FirstInZone returns the index of the first goal (list order) in zone, or -1.
func FirstInZone(s *types.State, zone types.Zone) int {
	for i := range s.Goals {
		if s.Goals[i].Zone == zone {
			return i
		}
	}
	return -1
}

// CountInZone returns how many goals are in zone.
func CountInZone(s *types.State, zone types.Zone) int {
	n := 0
	for i := range s.Goals {
		if s.Goals[i].Zone == zone {
			n++
		}
	}
	return n
}

// GoalsInZone returns copies of the goals in zone, in list order.
func GoalsInZone(s *types.State, zone types.Zone) []types.GoalCard {
	var out []types.GoalCard
	for _, g := range s.Goals {
		if g.Zone == zone {
			out = append(out, CloneGoal(g))
		}
	}
	return out
}

// OrderedBattlefield returns copies of the battlefield goals in
// BattlefieldOrder, followed by any battlefield goals missing from the order
// sorted by title (then ID).
func OrderedBattlefield(s *types.State) []types.GoalCard {
	byID := map[string]types.GoalCard{}
	for _, g := range s.Goals {
		if g.Zone == types.ZoneBattlefield {
			byID[g.ID] = g
		}
	}

	out := make([]types.GoalCard, 0, len(byID))
	seen := map[string]bool{}
	for _, id := range s.BattlefieldOrder {
		g, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, CloneGoal(g))
	}

	var extras []types.GoalCard
	for _, g := range s.Goals {
		if g.Zone == types.ZoneBattlefield && !seen[g.ID] {
			extras = append(extras, CloneGoal(g))
		}
	}
	sort.SliceStable(extras, func(i, j int) bool {
		if extras[i].Title != extras[j].Title {
			return extras[i].Title < extras[j].Title
		}
		return extras[i].ID < extras[j].ID
	})
	return append(out, extras...)
}

// IsDone returns true if criterion index is marked done for the goal.
func IsDone(s *types.State, goalID string, index int) bool {
	for _, i := range s.CriteriaDone[goalID] {
		if i == index {
			return true
		}
	}
	return false
}

// MarkDone inserts or removes index in the goal's done set, keeping it
// sorted. Empty sets are removed from the map. Returns true if the set
// changed.
func MarkDone(s *types.State, goalID string, index int, done bool) bool {
	if s.CriteriaDone == nil {
		s.CriteriaDone = map[string][]int{}
	}
	set := s.CriteriaDone[goalID]
	pos := sort.SearchInts(set, index)
	present := pos < len(set) && set[pos] == index

	switch {
	case done && !present:
		set = append(set, 0)
		copy(set[pos+1:], set[pos:])
		set[pos] = index
		s.CriteriaDone[goalID] = set
		return true
	case !done && present:
		set = append(set[:pos], set[pos+1:]...)
		if len(set) == 0 {
			delete(s.CriteriaDone, goalID)
		} else {
			s.CriteriaDone[goalID] = set
		}
		return true
	}
	return false
}

// DoneCount counts marked indices that are valid for the goal's criteria.
func DoneCount(s *types.State, g types.GoalCard) int {
	n := 0
	for _, i := range s.CriteriaDone[g.ID] {
		if i >= 0 && i < len(g.AcceptanceCriteria) {
			n++
		}
	}
	return n
}

// CloneGoal returns a deep copy of g.
func CloneGoal(g types.GoalCard) types.GoalCard {
	c := g
	if g.AcceptanceCriteria != nil {
		c.AcceptanceCriteria = append([]string{}, g.AcceptanceCriteria...)
	}
	if g.EnergyCost != nil {
		c.EnergyCost = make(types.EnergyCost, len(g.EnergyCost))
		for t, n := range g.EnergyCost {
			c.EnergyCost[t] = n
		}
	}
	return c
}

// Clone returns a deep copy of s.
func Clone(s *types.State) types.State {
	c := types.State{
		Goals:            make([]types.GoalCard, len(s.Goals)),
		Energies:         append([]types.EnergyCard{}, s.Energies...),
		BattlefieldOrder: append([]string{}, s.BattlefieldOrder...),
		CriteriaDone:     make(map[string][]int, len(s.CriteriaDone)),
	}
	for i, g := range s.Goals {
		c.Goals[i] = CloneGoal(g)
	}
	for id, set := range s.CriteriaDone {
		c.CriteriaDone[id] = append([]int{}, set...)
	}
	return c
}

// Normalize repairs a restored state so the engine invariants hold:
// nil collections become empty, BattlefieldOrder holds each battlefield goal
// exactly once (missing ones appended in the ordered-view fallback order),
// criteria sets only hold valid indices, costs hold no zero entries, and
// bindings to goals that are not on the battlefield are released.
func Normalize(s *types.State) {
	if s.Goals == nil {
		s.Goals = []types.GoalCard{}
	}
	if s.Energies == nil {
		s.Energies = []types.EnergyCard{}
	}
	if s.CriteriaDone == nil {
		s.CriteriaDone = map[string][]int{}
	}

	for i := range s.Goals {
		if cost := energy.NewCost(s.Goals[i].EnergyCost); len(cost) != len(s.Goals[i].EnergyCost) {
			s.Goals[i].EnergyCost = cost
		}
	}

	ordered := OrderedBattlefield(s)
	s.BattlefieldOrder = make([]string, 0, len(ordered))
	for _, g := range ordered {
		s.BattlefieldOrder = append(s.BattlefieldOrder, g.ID)
	}

	for id, set := range s.CriteriaDone {
		idx := GoalIndex(s, id)
		if idx < 0 {
			delete(s.CriteriaDone, id)
			continue
		}
		limit := len(s.Goals[idx].AcceptanceCriteria)
		sort.Ints(set)
		var kept []int
		for _, v := range set {
			if v < 0 || v >= limit || (len(kept) > 0 && kept[len(kept)-1] == v) {
				continue
			}
			kept = append(kept, v)
		}
		if len(kept) == 0 {
			delete(s.CriteriaDone, id)
		} else {
			s.CriteriaDone[id] = kept
		}
	}

	for i := range s.Energies {
		e := &s.Energies[i]
		if e.BoundGoalID == "" {
			continue
		}
		g := GoalIndex(s, e.BoundGoalID)
		if g < 0 || s.Goals[g].Zone != types.ZoneBattlefield {
			e.BoundGoalID = ""
			e.IsTapped = false
			continue
		}
		e.IsTapped = true
	}
}
