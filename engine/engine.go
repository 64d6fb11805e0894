// Package engine owns the canonical game state and the transitions that
// move goal cards between zones and bind energy to them.
package engine

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/engine/events"
	"github.com/nathoo/elysium/engine/state"
	"github.com/nathoo/elysium/types"
)

// DefaultHandSize is the hand size the engine draws up to after a new game
// and after every successful cast.
const DefaultHandSize = 7

// DefaultArtKey is assigned to goals added without an art key.
const DefaultArtKey = "laurel"

// ArtKeys lists the card art the front-ends know how to draw.
var ArtKeys = []string{"laurel", "column", "mask", "owl", "helm"}

// Engine holds the game state and serializes every transition on it.
type Engine struct {
	HandSize int
	NewID    func() string
	Log      *zap.Logger

	mu    sync.Mutex
	state *types.State
	bus   events.Bus
}

// New creates an engine over a copy of s. A nil s starts from a fresh
// default state. A nil logger disables logging.
func New(s *types.State, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		HandSize: DefaultHandSize,
		NewID:    uuid.NewString,
		Log:      logger,
	}
	if s == nil {
		e.state = state.NewState(e.NewID)
	} else {
		c := state.Clone(s)
		state.Normalize(&c)
		e.state = &c
	}
	return e
}

// Subscribe registers fn to receive the events of every committed
// transition. Handlers run after the engine lock is released.
func (e *Engine) Subscribe(fn events.Handler) (unsubscribe func()) {
	return e.bus.Subscribe(fn)
}

// mutate runs fn under the engine lock and dispatches whatever events it
// produced once the lock is released.
func (e *Engine) mutate(fn func(s *types.State) []types.Event) []types.Event {
	e.mu.Lock()
	evts := fn(e.state)
	e.mu.Unlock()

	e.bus.Dispatch(evts)
	return evts
}

// NewGame resets the energy pool, copies templates into the stack with new
// identities, clears battlefield order and criteria, and draws a hand.
func (e *Engine) NewGame(templates []types.GoalCard) {
	e.mutate(func(s *types.State) []types.Event {
		return e.newGame(s, templates)
	})
	e.Log.Info("new game started", zap.Int("templates", len(templates)))
}

func (e *Engine) newGame(s *types.State, templates []types.GoalCard) []types.Event {
	s.Energies = state.NewPool(e.NewID)
	s.Goals = make([]types.GoalCard, 0, len(templates))
	for _, t := range templates {
		g := state.CloneGoal(t)
		g.ID = e.NewID()
		g.Zone = types.ZoneStack
		g.EnergyCost = energy.NewCost(g.EnergyCost)
		s.Goals = append(s.Goals, g)
	}
	s.BattlefieldOrder = []string{}
	s.CriteriaDone = map[string][]int{}

	evts := []types.Event{events.New(events.GameStarted, "goals", len(s.Goals))}
	return append(evts, e.drawToHand(s, e.HandSize)...)
}

// DrawToHand moves stack cards (first in list order) to the hand until the
// hand holds target cards or the stack is empty. Returns the number drawn.
func (e *Engine) DrawToHand(target int) int {
	evts := e.mutate(func(s *types.State) []types.Event {
		return e.drawToHand(s, target)
	})
	return len(evts)
}

func (e *Engine) drawToHand(s *types.State, target int) []types.Event {
	var evts []types.Event
	for state.CountInZone(s, types.ZoneHand) < target {
		i := state.FirstInZone(s, types.ZoneStack)
		if i < 0 {
			break
		}
		s.Goals[i].Zone = types.ZoneHand
		evts = append(evts, events.New(events.GoalDrawn,
			"goal", s.Goals[i].ID, "title", s.Goals[i].Title))
	}
	return evts
}

// AttemptCast moves a goal from hand to battlefield, tapping and binding
// the first available energy cards of each required type, then refills the
// hand. Either every required type is covered and everything commits, or
// nothing changes and false is returned.
func (e *Engine) AttemptCast(goalID string) bool {
	evts := e.mutate(func(s *types.State) []types.Event {
		return e.attemptCast(s, goalID)
	})
	return len(evts) > 0
}

func (e *Engine) attemptCast(s *types.State, goalID string) []types.Event {
	gi := state.GoalIndex(s, goalID)
	if gi < 0 || s.Goals[gi].Zone != types.ZoneHand {
		e.Log.Debug("cast rejected: not in hand", zap.String("goal", goalID))
		return nil
	}

	// Plan against the untouched pool; nothing is written until every type
	// has enough available cards.
	var selected []int
	cost := s.Goals[gi].EnergyCost
	for _, t := range energy.Types {
		needed := energy.Requires(cost, t)
		if needed == 0 {
			continue
		}
		available := availableOfType(s, t)
		if len(available) < needed {
			e.Log.Debug("cast rejected: insufficient energy",
				zap.String("goal", goalID),
				zap.String("type", string(t)),
				zap.Int("needed", needed),
				zap.Int("available", len(available)))
			return nil
		}
		selected = append(selected, available[:needed]...)
	}

	g := &s.Goals[gi]
	g.Zone = types.ZoneBattlefield
	s.BattlefieldOrder = append(s.BattlefieldOrder, goalID)
	evts := []types.Event{events.New(events.GoalCast, "goal", g.ID, "title", g.Title)}

	for _, i := range selected {
		en := &s.Energies[i]
		en.IsTapped = true
		en.BoundGoalID = goalID
		evts = append(evts, events.New(events.EnergyBound,
			"energy", en.ID, "type", en.Type, "goal", goalID))
	}

	e.Log.Debug("goal cast", zap.String("goal", goalID), zap.Int("bound", len(selected)))
	return append(evts, e.drawToHand(s, e.HandSize)...)
}

// availableOfType returns indices of untapped, unbound cards of type t in
// pool order.
func availableOfType(s *types.State, t types.EnergyType) []int {
	var out []int
	for i, en := range s.Energies {
		if en.Type == t && !en.IsTapped && en.BoundGoalID == "" {
			out = append(out, i)
		}
	}
	return out
}

// ToggleTapEnergy flips the tapped state of an unbound energy card. Bound
// cards and unknown IDs are left alone. Returns true if the card changed.
func (e *Engine) ToggleTapEnergy(energyID string) bool {
	evts := e.mutate(func(s *types.State) []types.Event {
		return e.toggleTapEnergy(s, energyID)
	})
	return len(evts) > 0
}

func (e *Engine) toggleTapEnergy(s *types.State, energyID string) []types.Event {
	i := state.EnergyIndex(s, energyID)
	if i < 0 || s.Energies[i].BoundGoalID != "" {
		return nil
	}
	en := &s.Energies[i]
	en.IsTapped = !en.IsTapped
	return []types.Event{events.New(events.EnergyToggled,
		"energy", en.ID, "type", en.Type, "tapped", en.IsTapped)}
}

// SetCriterionDone marks or unmarks one acceptance criterion, then
// completes the goal if every criterion is done. The index is not checked
// against the goal's criteria here.
func (e *Engine) SetCriterionDone(goalID string, index int, done bool) {
	e.mutate(func(s *types.State) []types.Event {
		return e.setCriterionDone(s, goalID, index, done)
	})
}

func (e *Engine) setCriterionDone(s *types.State, goalID string, index int, done bool) []types.Event {
	var evts []types.Event
	if state.MarkDone(s, goalID, index, done) {
		evts = append(evts, events.New(events.CriterionSet,
			"goal", goalID, "index", index, "done", done))
	}
	if isGoalComplete(s, goalID) {
		evts = append(evts, e.completeGoal(s, goalID)...)
	}
	return evts
}

// IsGoalComplete reports whether the goal has at least one acceptance
// criterion and all of them are marked done.
func (e *Engine) IsGoalComplete(goalID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return isGoalComplete(e.state, goalID)
}

func isGoalComplete(s *types.State, goalID string) bool {
	gi := state.GoalIndex(s, goalID)
	if gi < 0 {
		return false
	}
	g := s.Goals[gi]
	n := len(g.AcceptanceCriteria)
	return n > 0 && state.DoneCount(s, g) == n
}

// CompleteGoal moves a battlefield goal to elysium and releases every
// energy card bound to it. Goals in any other zone are left alone, so
// completing twice changes nothing.
func (e *Engine) CompleteGoal(goalID string) bool {
	evts := e.mutate(func(s *types.State) []types.Event {
		return e.completeGoal(s, goalID)
	})
	return len(evts) > 0
}

func (e *Engine) completeGoal(s *types.State, goalID string) []types.Event {
	gi := state.GoalIndex(s, goalID)
	if gi < 0 || s.Goals[gi].Zone != types.ZoneBattlefield {
		return nil
	}

	g := &s.Goals[gi]
	g.Zone = types.ZoneElysium
	s.BattlefieldOrder = removeID(s.BattlefieldOrder, goalID)
	evts := []types.Event{events.New(events.GoalCompleted, "goal", g.ID, "title", g.Title)}

	// Completion is the only place a binding is released.
	for i := range s.Energies {
		en := &s.Energies[i]
		if en.BoundGoalID != goalID {
			continue
		}
		en.BoundGoalID = ""
		en.IsTapped = false
		evts = append(evts, events.New(events.EnergyReleased,
			"energy", en.ID, "type", en.Type, "goal", goalID))
	}

	e.Log.Debug("goal completed", zap.String("goal", goalID), zap.String("title", g.Title))
	return evts
}

// AddGoal appends a copy of card to the stack under a new identity and
// returns that identity.
func (e *Engine) AddGoal(card types.GoalCard) string {
	var id string
	e.mutate(func(s *types.State) []types.Event {
		var evts []types.Event
		id, evts = e.addGoal(s, card)
		return evts
	})
	return id
}

func (e *Engine) addGoal(s *types.State, card types.GoalCard) (string, []types.Event) {
	g := state.CloneGoal(card)
	g.ID = e.NewID()
	g.Zone = types.ZoneStack
	g.EnergyCost = energy.NewCost(g.EnergyCost)
	if g.ArtKey == "" {
		g.ArtKey = DefaultArtKey
	}
	s.Goals = append(s.Goals, g)
	return g.ID, []types.Event{events.New(events.GoalAdded, "goal", g.ID, "title", g.Title)}
}

// MoveStackCard moves a stack card to position toIndex within the stack
// (0 = drawn next). Positions outside the stack are clamped.
func (e *Engine) MoveStackCard(goalID string, toIndex int) bool {
	evts := e.mutate(func(s *types.State) []types.Event {
		return moveStackCard(s, goalID, toIndex)
	})
	return len(evts) > 0
}

func moveStackCard(s *types.State, goalID string, toIndex int) []types.Event {
	gi := state.GoalIndex(s, goalID)
	if gi < 0 || s.Goals[gi].Zone != types.ZoneStack {
		return nil
	}

	g := s.Goals[gi]
	rest := make([]types.GoalCard, 0, len(s.Goals))
	rest = append(rest, s.Goals[:gi]...)
	rest = append(rest, s.Goals[gi+1:]...)

	var stackPos []int
	from := 0
	for i := range rest {
		if rest[i].Zone != types.ZoneStack {
			continue
		}
		if i < gi {
			from++
		}
		stackPos = append(stackPos, i)
	}

	toIndex = clamp(toIndex, 0, len(stackPos))
	if toIndex == from {
		return nil
	}

	at := len(rest)
	if toIndex < len(stackPos) {
		at = stackPos[toIndex]
	} else if len(stackPos) > 0 {
		at = stackPos[len(stackPos)-1] + 1
	}

	s.Goals = append(rest[:at], append([]types.GoalCard{g}, rest[at:]...)...)
	return []types.Event{events.New(events.StackReordered, "goal", goalID, "index", toIndex)}
}

// MoveBattlefieldCard moves a battlefield goal to position toIndex in the
// battlefield layout order.
func (e *Engine) MoveBattlefieldCard(goalID string, toIndex int) bool {
	evts := e.mutate(func(s *types.State) []types.Event {
		return moveBattlefieldCard(s, goalID, toIndex)
	})
	return len(evts) > 0
}

func moveBattlefieldCard(s *types.State, goalID string, toIndex int) []types.Event {
	from := -1
	for i, id := range s.BattlefieldOrder {
		if id == goalID {
			from = i
			break
		}
	}
	if from < 0 {
		return nil
	}
	toIndex = clamp(toIndex, 0, len(s.BattlefieldOrder)-1)
	if toIndex == from {
		return nil
	}
	order := removeID(s.BattlefieldOrder, goalID)
	order = append(order[:toIndex], append([]string{goalID}, order[toIndex:]...)...)
	s.BattlefieldOrder = order
	return []types.Event{events.New(events.BattlefieldReordered, "goal", goalID, "index", toIndex)}
}

// Restore replaces the game state with a repaired copy of s.
func (e *Engine) Restore(s types.State) {
	e.mutate(func(cur *types.State) []types.Event {
		c := state.Clone(&s)
		state.Normalize(&c)
		*cur = c
		return []types.Event{events.New(events.StateRestored, "goals", len(c.Goals))}
	})
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
