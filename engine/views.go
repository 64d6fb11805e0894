package engine

import (
	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/engine/state"
	"github.com/nathoo/elysium/types"
)

// Views return copies; callers may modify them freely.

// Stack returns the goals waiting to be drawn, next draw first.
func (e *Engine) Stack() []types.GoalCard { return e.zone(types.ZoneStack) }

// Hand returns the goals in hand in list order.
func (e *Engine) Hand() []types.GoalCard { return e.zone(types.ZoneHand) }

// Battlefield returns the battlefield goals in list order.
func (e *Engine) Battlefield() []types.GoalCard { return e.zone(types.ZoneBattlefield) }

// Elysium returns the completed goals in list order.
func (e *Engine) Elysium() []types.GoalCard { return e.zone(types.ZoneElysium) }

func (e *Engine) zone(z types.Zone) []types.GoalCard {
	e.mu.Lock()
	defer e.mu.Unlock()
	return state.GoalsInZone(e.state, z)
}

// OrderedBattlefield returns the battlefield goals in layout order.
func (e *Engine) OrderedBattlefield() []types.GoalCard {
	e.mu.Lock()
	defer e.mu.Unlock()
	return state.OrderedBattlefield(e.state)
}

// Energies returns the energy pool in pool order.
func (e *Engine) Energies() []types.EnergyCard {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]types.EnergyCard{}, e.state.Energies...)
}

// Goal returns the goal with the given ID in any zone.
func (e *Engine) Goal(goalID string) (types.GoalCard, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := state.GoalIndex(e.state, goalID)
	if i < 0 {
		return types.GoalCard{}, false
	}
	return state.CloneGoal(e.state.Goals[i]), true
}

// CriteriaDone returns the sorted done indices for a goal.
func (e *Engine) CriteriaDone(goalID string) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int{}, e.state.CriteriaDone[goalID]...)
}

// Progress returns how many of the goal's criteria are done and how many
// it has.
func (e *Engine) Progress(goalID string) (done, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := state.GoalIndex(e.state, goalID)
	if i < 0 {
		return 0, 0
	}
	g := e.state.Goals[i]
	return state.DoneCount(e.state, g), len(g.AcceptanceCriteria)
}

// Shortfall returns, per energy type, how many more available cards the
// goal's cost needs than the pool currently offers. An empty result means
// the cost can be paid.
func (e *Engine) Shortfall(goalID string) types.EnergyCost {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := types.EnergyCost{}
	i := state.GoalIndex(e.state, goalID)
	if i < 0 {
		return out
	}
	for _, t := range energy.Types {
		need := energy.Requires(e.state.Goals[i].EnergyCost, t)
		if have := len(availableOfType(e.state, t)); need > have {
			out[t] = need - have
		}
	}
	return out
}

// Snapshot returns a deep copy of the full game state.
func (e *Engine) Snapshot() types.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return state.Clone(e.state)
}
