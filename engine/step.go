package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/engine/events"
	"github.com/nathoo/elysium/engine/parser"
	"github.com/nathoo/elysium/engine/resolve"
	"github.com/nathoo/elysium/types"
)

// Step processes one text command and returns the events it committed and
// the lines to show the player.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Empty input.
	if intent.Verb == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	// 3. Run the command. Read-only commands produce output only; mutating
	// commands produce events that are narrated below.
	var evts []types.Event
	var out []string

	switch intent.Verb {
	case "look":
		out = e.describeTable()
	case "hand":
		out = describeZone("Hand", e.Hand(), e.Progress, "Your hand is empty.")
	case "stack":
		out = describeZone("Stack", e.Stack(), e.Progress, "The stack is empty.")
	case "battlefield":
		out = describeZone("Battlefield", e.OrderedBattlefield(), e.Progress, "Nothing on the battlefield.")
	case "elysium":
		out = describeZone("Elysium", e.Elysium(), e.Progress, "Nothing has reached Elysium yet.")
	case "energy":
		out = e.describeEnergy()
	case "show":
		out = e.cmdShow(intent)
	case "draw":
		evts, out = e.cmdDraw(intent)
	case "cast":
		evts, out = e.cmdCast(intent)
	case "tap":
		evts, out = e.cmdTap(intent)
	case "check", "uncheck":
		evts, out = e.cmdCheck(intent, intent.Verb == "check")
	case "add":
		evts, out = e.cmdAdd(input)
	case "move":
		evts, out = e.cmdMove(intent)
	case "help":
		out = helpText
	default:
		out = []string{fmt.Sprintf("I don't know how to %q. Type \"help\" for commands.", intent.Verb)}
	}

	// 4. Narrate committed events.
	result.Events = evts
	result.Output = append(result.Output, out...)
	result.Output = append(result.Output, e.narrate(evts)...)

	e.Log.Debug("step",
		zap.String("verb", intent.Verb),
		zap.String("object", intent.Object),
		zap.Int("events", len(evts)))
	return result
}

var helpText = []string{
	"Commands:",
	"  look                      table overview",
	"  hand | stack | battlefield | elysium",
	"  energy                    show the energy pool",
	"  show <card>               card details",
	"  draw [n]                  draw until the hand holds n cards",
	"  cast <card>               cast a goal from your hand",
	"  tap <energy>              tap or untap an unbound energy card",
	"  check <card> <n>          mark criterion n done",
	"  uncheck <card> <n>        mark criterion n not done",
	"  add <title>               add a new goal to the stack",
	"  move <card> to <n>        reorder the stack or battlefield",
	"Cards can be named by position, title words or ID prefix.",
}

// findGoal resolves ref against each zone listing in turn. A miss in one
// zone falls through to the next; an ambiguous match stops the search.
// Positions are numbered within the first listing only, so they never
// fall through to another zone.
func findGoal(ref string, zones ...[]types.GoalCard) (types.GoalCard, error) {
	if isPosition(ref) && len(zones) > 1 {
		zones = zones[:1]
	}
	var firstErr error
	for _, goals := range zones {
		g, err := resolve.Goal(goals, ref)
		if err == nil {
			return g, nil
		}
		var nf *resolve.NotFoundError
		if !errors.As(err, &nf) {
			return types.GoalCard{}, err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = &resolve.NotFoundError{Name: ref}
	}
	return types.GoalCard{}, firstErr
}

// isPosition reports whether ref is a 1-based position such as "3" or "#3".
func isPosition(ref string) bool {
	_, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(ref), "#"))
	return err == nil
}

func (e *Engine) cmdShow(intent types.Intent) []string {
	if intent.Object == "" {
		return []string{"Show which card?"}
	}
	g, err := findGoal(intent.Object, e.Hand(), e.OrderedBattlefield(), e.Stack(), e.Elysium())
	if err != nil {
		return []string{err.Error()}
	}

	lines := []string{fmt.Sprintf("%s  [%s]  (%s)", g.Title, energy.CastingCost(g.EnergyCost), g.Zone)}
	if g.Details != "" {
		lines = append(lines, g.Details)
	}
	done := map[int]bool{}
	for _, i := range e.CriteriaDone(g.ID) {
		done[i] = true
	}
	for i, c := range g.AcceptanceCriteria {
		mark := " "
		if done[i] {
			mark = "x"
		}
		lines = append(lines, fmt.Sprintf("  [%s] %d. %s", mark, i+1, c))
	}
	if len(g.AcceptanceCriteria) == 0 {
		lines = append(lines, "  (no acceptance criteria)")
	}
	lines = append(lines, fmt.Sprintf("Art: %s  ID: %s", g.ArtKey, g.ID))
	return lines
}

func (e *Engine) cmdDraw(intent types.Intent) ([]types.Event, []string) {
	target := e.HandSize
	if intent.Object != "" {
		n, err := strconv.Atoi(intent.Object)
		if err != nil || n < 0 {
			return nil, []string{"Usage: draw [n]"}
		}
		target = n
	}

	evts := e.mutate(func(s *types.State) []types.Event {
		return e.drawToHand(s, target)
	})
	if len(evts) > 0 {
		return evts, nil
	}
	if len(e.Stack()) == 0 {
		return nil, []string{"The stack is empty."}
	}
	return nil, []string{fmt.Sprintf("Your hand already holds %d or more cards.", target)}
}

func (e *Engine) cmdCast(intent types.Intent) ([]types.Event, []string) {
	if intent.Object == "" {
		return nil, []string{"Cast what?"}
	}
	g, err := findGoal(intent.Object, e.Hand())
	if err != nil {
		if !isPosition(intent.Object) {
			if other, err2 := findGoal(intent.Object, e.OrderedBattlefield(), e.Stack(), e.Elysium()); err2 == nil {
				return nil, []string{fmt.Sprintf("%s is not in your hand (%s).", other.Title, other.Zone)}
			}
		}
		return nil, []string{err.Error()}
	}

	evts := e.mutate(func(s *types.State) []types.Event {
		return e.attemptCast(s, g.ID)
	})
	if len(evts) > 0 {
		return evts, nil
	}
	if short := e.Shortfall(g.ID); len(short) > 0 {
		return nil, []string{fmt.Sprintf("Not enough energy to cast %s (missing %s).",
			g.Title, energy.GlyphString(short))}
	}
	return nil, []string{fmt.Sprintf("You can't cast %s right now.", g.Title)}
}

func (e *Engine) cmdTap(intent types.Intent) ([]types.Event, []string) {
	if intent.Object == "" {
		return nil, []string{"Tap which energy?"}
	}
	en, err := resolve.Energy(e.Energies(), intent.Object)
	if err != nil {
		return nil, []string{err.Error()}
	}
	if en.BoundGoalID != "" {
		return nil, []string{fmt.Sprintf("%s %s is bound to %s and stays tapped until it reaches Elysium.",
			energy.Glyph(en.Type), energy.Name(en.Type), e.goalTitle(en.BoundGoalID))}
	}

	evts := e.mutate(func(s *types.State) []types.Event {
		return e.toggleTapEnergy(s, en.ID)
	})
	return evts, nil
}

func (e *Engine) cmdCheck(intent types.Intent, done bool) ([]types.Event, []string) {
	verb := "Check"
	if !done {
		verb = "Uncheck"
	}
	if intent.Object == "" {
		return nil, []string{verb + " which goal?"}
	}
	g, err := findGoal(intent.Object, e.OrderedBattlefield(), e.Hand(), e.Stack(), e.Elysium())
	if err != nil {
		return nil, []string{err.Error()}
	}
	if len(g.AcceptanceCriteria) == 0 {
		return nil, []string{fmt.Sprintf("%s has no acceptance criteria.", g.Title)}
	}

	var n int
	switch {
	case intent.Target != "":
		n, err = strconv.Atoi(intent.Target)
		if err != nil || n < 1 || n > len(g.AcceptanceCriteria) {
			return nil, []string{fmt.Sprintf("%s has no criterion %s (1-%d).",
				g.Title, intent.Target, len(g.AcceptanceCriteria))}
		}
	case len(g.AcceptanceCriteria) == 1:
		n = 1
	default:
		lines := []string{fmt.Sprintf("Which criterion? Usage: %s <card> <n>", strings.ToLower(verb))}
		for i, c := range g.AcceptanceCriteria {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, c))
		}
		return nil, lines
	}

	evts := e.mutate(func(s *types.State) []types.Event {
		return e.setCriterionDone(s, g.ID, n-1, done)
	})
	if len(evts) == 0 {
		word := "already done"
		if !done {
			word = "not done"
		}
		return nil, []string{fmt.Sprintf("%q is %s.", g.AcceptanceCriteria[n-1], word)}
	}
	return evts, nil
}

func (e *Engine) cmdAdd(input string) ([]types.Event, []string) {
	title := parser.Rest(input)
	if title == "" {
		return nil, []string{"Usage: add <title>"}
	}
	evts := e.mutate(func(s *types.State) []types.Event {
		_, evts := e.addGoal(s, types.GoalCard{Title: title})
		return evts
	})
	return evts, nil
}

func (e *Engine) cmdMove(intent types.Intent) ([]types.Event, []string) {
	if intent.Object == "" || intent.Target == "" {
		return nil, []string{"Usage: move <card> to <n>"}
	}
	pos, err := strconv.Atoi(intent.Target)
	if err != nil || pos < 1 {
		return nil, []string{"Positions start at 1."}
	}
	g, err := findGoal(intent.Object, e.Stack(), e.OrderedBattlefield())
	if err != nil {
		return nil, []string{err.Error()}
	}

	evts := e.mutate(func(s *types.State) []types.Event {
		if g.Zone == types.ZoneStack {
			return moveStackCard(s, g.ID, pos-1)
		}
		return moveBattlefieldCard(s, g.ID, pos-1)
	})
	if len(evts) == 0 {
		return nil, []string{fmt.Sprintf("%s is already there.", g.Title)}
	}
	return evts, nil
}

// narrate turns committed events into player-facing lines.
func (e *Engine) narrate(evts []types.Event) []string {
	var out []string
	for _, ev := range evts {
		title, _ := ev.Data["title"].(string)
		t, _ := ev.Data["type"].(types.EnergyType)
		switch ev.Type {
		case events.GameStarted:
			out = append(out, fmt.Sprintf("A new game begins with %v goals in the stack.", ev.Data["goals"]))
		case events.GoalDrawn:
			out = append(out, fmt.Sprintf("You draw %s.", title))
		case events.GoalCast:
			out = append(out, fmt.Sprintf("You cast %s onto the battlefield.", title))
		case events.EnergyBound:
			out = append(out, fmt.Sprintf("  %s %s is tapped and bound.", energy.Glyph(t), energy.Name(t)))
		case events.EnergyToggled:
			word := "untapped"
			if tapped, _ := ev.Data["tapped"].(bool); tapped {
				word = "tapped"
			}
			out = append(out, fmt.Sprintf("%s %s is now %s.", energy.Glyph(t), energy.Name(t), word))
		case events.CriterionSet:
			out = append(out, e.narrateCriterion(ev))
		case events.GoalCompleted:
			out = append(out, fmt.Sprintf("%s reaches Elysium!", title))
		case events.EnergyReleased:
			out = append(out, fmt.Sprintf("  %s %s returns to your pool.", energy.Glyph(t), energy.Name(t)))
		case events.GoalAdded:
			out = append(out, fmt.Sprintf("Added %s to the stack.", title))
		case events.StackReordered, events.BattlefieldReordered:
			zone := "stack"
			if ev.Type == events.BattlefieldReordered {
				zone = "battlefield"
			}
			goalID, _ := ev.Data["goal"].(string)
			idx, _ := ev.Data["index"].(int)
			out = append(out, fmt.Sprintf("%s moves to position %d on the %s.", e.goalTitle(goalID), idx+1, zone))
		case events.StateRestored:
			out = append(out, "Game restored.")
		}
	}
	return out
}

func (e *Engine) narrateCriterion(ev types.Event) string {
	goalID, _ := ev.Data["goal"].(string)
	idx, _ := ev.Data["index"].(int)
	done, _ := ev.Data["done"].(bool)

	title, text := goalID, fmt.Sprintf("criterion %d", idx+1)
	if g, ok := e.Goal(goalID); ok {
		title = g.Title
		if idx >= 0 && idx < len(g.AcceptanceCriteria) {
			text = g.AcceptanceCriteria[idx]
		}
	}
	d, total := e.Progress(goalID)
	mark := " "
	if done {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s: %s (%d/%d)", mark, title, text, d, total)
}

func (e *Engine) goalTitle(goalID string) string {
	if g, ok := e.Goal(goalID); ok {
		return g.Title
	}
	return goalID
}

func (e *Engine) describeTable() []string {
	counts := fmt.Sprintf("Stack: %d  Hand: %d  Battlefield: %d  Elysium: %d",
		len(e.Stack()), len(e.Hand()), len(e.Battlefield()), len(e.Elysium()))
	out := []string{counts, ""}
	out = append(out, describeZone("Hand", e.Hand(), e.Progress, "Your hand is empty.")...)
	out = append(out, "")
	out = append(out, describeZone("Battlefield", e.OrderedBattlefield(), e.Progress, "Nothing on the battlefield.")...)
	out = append(out, "")
	return append(out, e.describeEnergy()...)
}

func describeZone(name string, goals []types.GoalCard, progress func(string) (int, int), empty string) []string {
	if len(goals) == 0 {
		return []string{empty}
	}
	out := []string{fmt.Sprintf("%s (%d):", name, len(goals))}
	for i, g := range goals {
		line := fmt.Sprintf("  %d. %s  [%s]", i+1, g.Title, energy.CastingCost(g.EnergyCost))
		if done, total := progress(g.ID); total > 0 {
			line += fmt.Sprintf("  %d/%d", done, total)
		}
		out = append(out, line)
	}
	return out
}

func (e *Engine) describeEnergy() []string {
	out := []string{"Energy:"}
	for i, en := range e.Energies() {
		status := "untapped"
		switch {
		case en.BoundGoalID != "":
			status = "bound to " + e.goalTitle(en.BoundGoalID)
		case en.IsTapped:
			status = "tapped"
		}
		out = append(out, fmt.Sprintf("  %d. %s %-7s %s", i+1, energy.Glyph(en.Type), energy.Name(en.Type), status))
	}
	return out
}
